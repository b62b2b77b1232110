package embedder

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	defaultMaxSeqLen = 256
	maxWordRunes     = 100
	unkToken         = "[UNK]"
)

// encoding is one tokenized sequence, unpadded: every position is a real token.
type encoding struct {
	ids     []int64
	mask    []int64
	typeIDs []int64
}

// tokenizer is an uncased BERT WordPiece tokenizer.
type tokenizer struct {
	vocab  *vocab
	maxLen int
}

func newTokenizer(vocabPath string, maxLen int) (*tokenizer, error) {
	v, err := loadVocab(vocabPath)
	if err != nil {
		return nil, err
	}
	return &tokenizer{vocab: v, maxLen: maxLen}, nil
}

// encode produces [CLS] pieces... [SEP], truncated to maxLen.
func (t *tokenizer) encode(text string) encoding {
	pieces := t.pieces(text)
	if limit := t.maxLen - 2; len(pieces) > limit {
		pieces = pieces[:limit]
	}

	n := len(pieces) + 2
	enc := encoding{
		ids:     make([]int64, 0, n),
		mask:    make([]int64, n),
		typeIDs: make([]int64, n),
	}
	enc.ids = append(enc.ids, t.vocab.clsID)
	for _, p := range pieces {
		enc.ids = append(enc.ids, t.vocab.id(p))
	}
	enc.ids = append(enc.ids, t.vocab.sepID)
	for i := range enc.mask {
		enc.mask[i] = 1
	}
	return enc
}

// pieces runs basic tokenization then WordPiece.
func (t *tokenizer) pieces(text string) []string {
	var out []string
	for _, word := range basicTokens(text) {
		out = append(out, t.wordpiece(word)...)
	}
	return out
}

// wordpiece splits word greedily into the longest vocabulary prefixes,
// continuing pieces carrying the "##" marker. Words that cannot be fully
// covered become a single [UNK].
func (t *tokenizer) wordpiece(word string) []string {
	runes := []rune(word)
	if len(runes) > maxWordRunes {
		return []string{unkToken}
	}

	var out []string
	for start := 0; start < len(runes); {
		end := len(runes)
		var piece string
		for ; end > start; end-- {
			cand := string(runes[start:end])
			if start > 0 {
				cand = "##" + cand
			}
			if t.vocab.has(cand) {
				piece = cand
				break
			}
		}
		if piece == "" {
			return []string{unkToken}
		}
		out = append(out, piece)
		start = end
	}
	return out
}

// basicTokens cleans, lowercases and strips accents, then splits on
// whitespace, punctuation and CJK ideographs.
func basicTokens(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == 0 || r == unicode.ReplacementChar || isControl(r):
		case isWhitespace(r):
			b.WriteByte(' ')
		case isCJK(r):
			b.WriteByte(' ')
			b.WriteRune(r)
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	cleaned := stripAccents(strings.ToLower(b.String()))

	var tokens []string
	for _, field := range strings.Fields(cleaned) {
		start := 0
		for i, r := range field {
			if !isPunct(r) {
				continue
			}
			if i > start {
				tokens = append(tokens, field[start:i])
			}
			tokens = append(tokens, string(r))
			start = i + len(string(r))
		}
		if start < len(field) {
			tokens = append(tokens, field[start:])
		}
	}
	return tokens
}

// stripAccents drops nonspacing marks after NFD decomposition.
func stripAccents(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || unicode.Is(unicode.Zs, r)
}

func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return unicode.IsControl(r)
}

// isPunct treats all non-alphanumeric ASCII as punctuation, as BERT does,
// plus the Unicode P* categories.
func isPunct(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) ||
		(r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

var cjkRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x3400, Hi: 0x4DBF, Stride: 1},
		{Lo: 0x4E00, Hi: 0x9FFF, Stride: 1},
		{Lo: 0xF900, Hi: 0xFAFF, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x20000, Hi: 0x2A6DF, Stride: 1},
		{Lo: 0x2A700, Hi: 0x2CEAF, Stride: 1},
		{Lo: 0x2F800, Hi: 0x2FA1F, Stride: 1},
	},
}

func isCJK(r rune) bool {
	return unicode.Is(cjkRanges, r)
}
