package embedder

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

var testVocab = []string{
	"[PAD]", "[UNK]", "[CLS]", "[SEP]",
	"sql", "injection", "on", "login", "form", ",", "!", "'", "=",
	"un", "##aff", "##able", "hello", "world", "cafe", "ddos", "##os",
}

func writeVocab(t *testing.T, tokens []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vocab.txt")
	if err := os.WriteFile(path, []byte(strings.Join(tokens, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testTokenizer(t *testing.T, maxLen int) *tokenizer {
	t.Helper()
	tok, err := newTokenizer(writeVocab(t, testVocab), maxLen)
	if err != nil {
		t.Fatalf("newTokenizer: %v", err)
	}
	return tok
}

func TestVocabLoad(t *testing.T) {
	v, err := loadVocab(writeVocab(t, testVocab))
	if err != nil {
		t.Fatalf("loadVocab: %v", err)
	}
	if v.size() != len(testVocab) {
		t.Errorf("size = %d, want %d", v.size(), len(testVocab))
	}
	if v.unkID != 1 || v.clsID != 2 || v.sepID != 3 {
		t.Errorf("special IDs = unk %d cls %d sep %d", v.unkID, v.clsID, v.sepID)
	}
	if v.id("nope") != v.unkID {
		t.Error("unknown token should map to [UNK]")
	}
}

func TestVocabMissingSpecial(t *testing.T) {
	_, err := loadVocab(writeVocab(t, []string{"[PAD]", "[UNK]", "hello"}))
	if err == nil || !strings.Contains(err.Error(), "missing special token") {
		t.Fatalf("expected missing special token error, got %v", err)
	}
}

func TestBasicTokens(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"Hello, World!", []string{"hello", ",", "world", "!"}},
		{"' OR 1=1", []string{"'", "or", "1", "=", "1"}},
		{"Café\tlogin\n", []string{"cafe", "login"}},
		{"攻击", []string{"攻", "击"}},
		{"   ", nil},
	}
	for _, tt := range tests {
		if got := basicTokens(tt.text); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("basicTokens(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestWordpiece(t *testing.T) {
	tok := testTokenizer(t, defaultMaxSeqLen)
	tests := []struct {
		word string
		want []string
	}{
		{"unaffable", []string{"un", "##aff", "##able"}},
		{"ddos", []string{"ddos"}},
		{"xyz", []string{"[UNK]"}},
		{"unxyz", []string{"[UNK]"}},
	}
	for _, tt := range tests {
		if got := tok.wordpiece(tt.word); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("wordpiece(%q) = %q, want %q", tt.word, got, tt.want)
		}
	}
}

func TestEncode(t *testing.T) {
	tok := testTokenizer(t, defaultMaxSeqLen)
	enc := tok.encode("SQL injection on login form!")

	want := []int64{2, 4, 5, 6, 7, 8, 10, 3}
	if !reflect.DeepEqual(enc.ids, want) {
		t.Errorf("ids = %v, want %v", enc.ids, want)
	}
	if len(enc.mask) != len(want) || len(enc.typeIDs) != len(want) {
		t.Fatalf("mask/typeIDs length mismatch: %d/%d", len(enc.mask), len(enc.typeIDs))
	}
	for i := range enc.mask {
		if enc.mask[i] != 1 || enc.typeIDs[i] != 0 {
			t.Errorf("position %d: mask=%d type=%d", i, enc.mask[i], enc.typeIDs[i])
		}
	}
}

func TestEncodeTruncates(t *testing.T) {
	tok := testTokenizer(t, 5)
	enc := tok.encode("hello world hello world hello world")
	if len(enc.ids) != 5 {
		t.Fatalf("len = %d, want 5", len(enc.ids))
	}
	if enc.ids[0] != tok.vocab.clsID || enc.ids[4] != tok.vocab.sepID {
		t.Errorf("truncated sequence must keep [CLS]/[SEP]: %v", enc.ids)
	}
}

func TestEncodeEmpty(t *testing.T) {
	tok := testTokenizer(t, defaultMaxSeqLen)
	enc := tok.encode("")
	if !reflect.DeepEqual(enc.ids, []int64{2, 3}) {
		t.Errorf("ids = %v, want [CLS SEP]", enc.ids)
	}
}
