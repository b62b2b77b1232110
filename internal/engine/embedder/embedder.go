// Package embedder produces dense sentence embeddings with a BERT-style
// encoder (all-MiniLM-L6-v2) running on ONNX Runtime.
package embedder

import (
	"fmt"
	"path/filepath"
)

// Embedder produces a fixed-width semantic vector for a piece of text.
type Embedder interface {
	Embed(text string) ([]float32, error)
	Dim() int
	Close() error
}

// Options tunes an ONNXEmbedder.
type Options struct {
	// LibraryPath is the ONNX Runtime shared library. Defaults to
	// libonnxruntime.so next to the model file.
	LibraryPath string
	// MaxSeqLen caps [CLS] + tokens + [SEP]. Defaults to 256, the
	// sentence-transformers setting for all-MiniLM-L6-v2.
	MaxSeqLen int
	// Threads is the intra-op thread count. 0 keeps the runtime default.
	Threads int
}

// ONNXEmbedder runs tokenize → encoder → mean pool → L2 normalise.
// Safe for concurrent use; all state is read-only after New.
type ONNXEmbedder struct {
	session *onnxSession
	tok     *tokenizer
}

// New loads the encoder model and WordPiece vocabulary.
func New(modelPath, vocabPath string, opts Options) (*ONNXEmbedder, error) {
	if opts.LibraryPath == "" {
		opts.LibraryPath = filepath.Join(filepath.Dir(modelPath), "libonnxruntime.so")
	}
	if opts.MaxSeqLen <= 0 {
		opts.MaxSeqLen = defaultMaxSeqLen
	}

	tok, err := newTokenizer(vocabPath, opts.MaxSeqLen)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	sess, err := newONNXSession(modelPath, opts.LibraryPath, opts.Threads)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	return &ONNXEmbedder{session: sess, tok: tok}, nil
}

// Dim returns the embedding width (384 for all-MiniLM-L6-v2).
func (e *ONNXEmbedder) Dim() int {
	return int(e.session.hiddenDim)
}

// Embed returns the unit-length sentence embedding of text.
func (e *ONNXEmbedder) Embed(text string) ([]float32, error) {
	enc := e.tok.encode(text)

	hidden, err := e.session.infer(enc)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	vec := meanPool(hidden, enc.mask, e.session.hiddenDim)
	normalize(vec)
	return vec, nil
}

// Close releases ONNX Runtime resources.
func (e *ONNXEmbedder) Close() error {
	if e.session != nil {
		return e.session.close()
	}
	return nil
}
