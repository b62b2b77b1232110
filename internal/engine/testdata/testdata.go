// Package testdata embeds a small labelled corpus of incident messages used
// to check classifier output end to end.
package testdata

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed corpus.json
var corpusJSON []byte

// CorpusEntry is a labelled incident message.
type CorpusEntry struct {
	Raw              string `json:"raw"`
	ExpectedLabel    string `json:"expected_label"`
	ExpectedSeverity string `json:"expected_severity"`
	Description      string `json:"description"`
}

// LoadCorpus parses the embedded corpus.json and returns all entries.
func LoadCorpus() ([]CorpusEntry, error) {
	var entries []CorpusEntry
	if err := json.Unmarshal(corpusJSON, &entries); err != nil {
		return nil, fmt.Errorf("parse corpus.json: %w", err)
	}
	return entries, nil
}
