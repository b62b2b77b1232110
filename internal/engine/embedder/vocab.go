package embedder

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// vocab is a WordPiece vocabulary; a token's ID is its 0-based line number.
type vocab struct {
	ids   map[string]int64
	unkID int64
	clsID int64
	sepID int64
}

func loadVocab(path string) (*vocab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vocab: %w", err)
	}
	defer f.Close()

	v, err := readVocab(f)
	if err != nil {
		return nil, fmt.Errorf("vocab: %s: %w", path, err)
	}
	return v, nil
}

func readVocab(r io.Reader) (*vocab, error) {
	ids := make(map[string]int64, 32000)
	var n int64
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		ids[sc.Text()] = n
		n++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read error: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("empty vocabulary")
	}

	v := &vocab{ids: ids}
	for name, dest := range map[string]*int64{
		"[UNK]": &v.unkID,
		"[CLS]": &v.clsID,
		"[SEP]": &v.sepID,
	} {
		id, ok := ids[name]
		if !ok {
			return nil, fmt.Errorf("missing special token %s", name)
		}
		*dest = id
	}
	return v, nil
}

func (v *vocab) has(token string) bool {
	_, ok := v.ids[token]
	return ok
}

func (v *vocab) id(token string) int64 {
	if id, ok := v.ids[token]; ok {
		return id
	}
	return v.unkID
}

func (v *vocab) size() int {
	return len(v.ids)
}
