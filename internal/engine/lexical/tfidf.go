// Package lexical applies a pre-fitted TF-IDF vectorizer to text. The
// vocabulary and IDF weights are frozen at export time; Transform never
// learns new terms.
package lexical

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"
	"unicode"
)

// DefaultTokenPattern is the token pattern most vectorizers are fitted with:
// runs of two or more word characters.
const DefaultTokenPattern = `(?u)\b\w\w+\b`

// Vectorizer produces the lexical half of a feature row.
type Vectorizer interface {
	Transform(text string) ([]float32, error)
	Dim() int
}

// Params is the JSON export of a fitted TF-IDF vectorizer.
type Params struct {
	Vocabulary   map[string]int `json:"vocabulary"`
	IDF          []float64      `json:"idf"`
	Lowercase    *bool          `json:"lowercase,omitempty"`
	TokenPattern string         `json:"token_pattern,omitempty"`
	NgramRange   [2]int         `json:"ngram_range,omitempty"`
	StopWords    []string       `json:"stop_words,omitempty"`
	Norm         string         `json:"norm,omitempty"` // "l2" (default), "l1" or "none"
	UseIDF       *bool          `json:"use_idf,omitempty"`
	SublinearTF  bool           `json:"sublinear_tf,omitempty"`
	Binary       bool           `json:"binary,omitempty"`
}

// TFIDF is a frozen TF-IDF transform. Safe for concurrent use.
type TFIDF struct {
	vocab     map[string]int
	idf       []float64
	lowercase bool
	pattern   *regexp.Regexp // nil means the default word-run splitter
	minN      int
	maxN      int
	stop      map[string]struct{}
	norm      string
	useIDF    bool
	sublinear bool
	binary    bool
}

// Load reads a vectorizer export from path.
func Load(path string) (*TFIDF, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lexical: %w", err)
	}
	var p Params
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("lexical: parse %s: %w", path, err)
	}
	v, err := New(p)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return v, nil
}

// New validates p and builds the transform.
func New(p Params) (*TFIDF, error) {
	if len(p.IDF) == 0 {
		return nil, fmt.Errorf("lexical: empty idf vector")
	}
	for term, col := range p.Vocabulary {
		if col < 0 || col >= len(p.IDF) {
			return nil, fmt.Errorf("lexical: term %q maps to column %d outside [0,%d)", term, col, len(p.IDF))
		}
	}

	v := &TFIDF{
		vocab:     p.Vocabulary,
		idf:       p.IDF,
		lowercase: p.Lowercase == nil || *p.Lowercase,
		minN:      p.NgramRange[0],
		maxN:      p.NgramRange[1],
		norm:      strings.ToLower(p.Norm),
		useIDF:    p.UseIDF == nil || *p.UseIDF,
		sublinear: p.SublinearTF,
		binary:    p.Binary,
	}
	if v.minN == 0 && v.maxN == 0 {
		v.minN, v.maxN = 1, 1
	}
	if v.minN < 1 || v.maxN < v.minN {
		return nil, fmt.Errorf("lexical: invalid ngram_range [%d, %d]", v.minN, v.maxN)
	}
	switch v.norm {
	case "":
		v.norm = "l2"
	case "l1", "l2", "none":
	default:
		return nil, fmt.Errorf("lexical: unsupported norm %q", p.Norm)
	}

	if p.TokenPattern != "" && p.TokenPattern != DefaultTokenPattern {
		// Go regexp has no (?u) flag; \w and \b stay ASCII here.
		re, err := regexp.Compile(strings.TrimPrefix(p.TokenPattern, "(?u)"))
		if err != nil {
			return nil, fmt.Errorf("lexical: token_pattern: %w", err)
		}
		v.pattern = re
	}

	if len(p.StopWords) > 0 {
		v.stop = make(map[string]struct{}, len(p.StopWords))
		for _, w := range p.StopWords {
			v.stop[w] = struct{}{}
		}
	}
	return v, nil
}

// Dim returns the number of output columns.
func (v *TFIDF) Dim() int {
	return len(v.idf)
}

// Transform returns the dense TF-IDF row for text. Terms outside the
// vocabulary are ignored, so unseen text yields a zero vector.
func (v *TFIDF) Transform(text string) ([]float32, error) {
	counts := make(map[int]float64)
	for _, term := range v.terms(text) {
		if col, ok := v.vocab[term]; ok {
			counts[col]++
		}
	}

	row := make([]float64, len(v.idf))
	for col, tf := range counts {
		switch {
		case v.binary:
			tf = 1
		case v.sublinear:
			tf = 1 + math.Log(tf)
		}
		if v.useIDF {
			tf *= v.idf[col]
		}
		row[col] = tf
	}
	v.normalize(row, counts)

	out := make([]float32, len(row))
	for i, x := range row {
		out[i] = float32(x)
	}
	return out, nil
}

func (v *TFIDF) normalize(row []float64, nonzero map[int]float64) {
	var total float64
	switch v.norm {
	case "l2":
		for col := range nonzero {
			total += row[col] * row[col]
		}
		total = math.Sqrt(total)
	case "l1":
		for col := range nonzero {
			total += math.Abs(row[col])
		}
	default:
		return
	}
	if total == 0 {
		return
	}
	for col := range nonzero {
		row[col] /= total
	}
}

// terms tokenizes text and expands it into the configured word n-grams.
func (v *TFIDF) terms(text string) []string {
	if v.lowercase {
		text = strings.ToLower(text)
	}

	var tokens []string
	if v.pattern != nil {
		tokens = v.pattern.FindAllString(text, -1)
	} else {
		tokens = wordRuns(text)
	}
	if v.stop != nil {
		kept := tokens[:0]
		for _, tok := range tokens {
			if _, drop := v.stop[tok]; !drop {
				kept = append(kept, tok)
			}
		}
		tokens = kept
	}

	if v.minN == 1 && v.maxN == 1 {
		return tokens
	}
	var grams []string
	for n := v.minN; n <= v.maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}

// wordRuns returns maximal runs of Unicode word characters that are at least
// two runes long, matching DefaultTokenPattern.
func wordRuns(text string) []string {
	var tokens []string
	start, runes := -1, 0
	flush := func(end int) {
		if start >= 0 && runes >= 2 {
			tokens = append(tokens, text[start:end])
		}
		start, runes = -1, 0
	}
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			runes++
			continue
		}
		flush(i)
	}
	flush(len(text))
	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
