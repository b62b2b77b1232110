package airs

import (
	"path/filepath"

	"go.uber.org/zap"
)

// Paths locates every model artifact explicitly.
type Paths struct {
	EmbedderModel string // sentence encoder ONNX model
	EmbedderVocab string // WordPiece vocab.txt
	Vectorizer    string // TF-IDF export
	Forest        string // random forest
	Boosted       string // gradient-boosted trees
	Linear        string // logistic regression (safetensors)
	Neural        string // neural network (ONNX)
	Labels        string // label classes
}

type options struct {
	modelDir  string
	paths     *Paths
	ortLib    string
	maxSeqLen int
	threads   int
	logger    *zap.Logger
}

// Option configures an Analyzer.
type Option func(*options)

// WithModelDir sets the directory containing model files.
// Expects: minilm/{model.onnx,vocab.txt} and
// classifiers/{tfidf.json,rf.json,xgb.json,lr.safetensors,ann.onnx,labels.json}.
func WithModelDir(dir string) Option {
	return func(o *options) {
		o.modelDir = dir
	}
}

// WithPaths sets explicit paths for each artifact.
// Use this when model files aren't in the default directory layout.
func WithPaths(p Paths) Option {
	return func(o *options) {
		o.paths = &p
	}
}

// WithRuntimeLibrary sets the ONNX Runtime shared library path.
// Default: libonnxruntime.so next to the embedder model.
func WithRuntimeLibrary(path string) Option {
	return func(o *options) {
		o.ortLib = path
	}
}

// WithMaxSeqLen caps the encoder input length in tokens. Default: 256.
func WithMaxSeqLen(n int) Option {
	return func(o *options) {
		o.maxSeqLen = n
	}
}

// WithThreads sets the intra-op thread count of the ONNX sessions.
// Default: 0 (runtime chooses).
func WithThreads(n int) Option {
	return func(o *options) {
		o.threads = n
	}
}

// WithLogger sets the logger used while loading and exporting.
// Default: no-op.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func defaultOptions() options {
	return options{
		maxSeqLen: 256,
		logger:    zap.NewNop(),
	}
}

// resolvePaths determines the artifact paths from the configured options.
// Explicit paths take precedence over modelDir.
func resolvePaths(o options) Paths {
	if o.paths != nil {
		return *o.paths
	}
	dir := o.modelDir
	if dir == "" {
		dir = "models"
	}
	enc := filepath.Join(dir, "minilm")
	cls := filepath.Join(dir, "classifiers")
	return Paths{
		EmbedderModel: filepath.Join(enc, "model.onnx"),
		EmbedderVocab: filepath.Join(enc, "vocab.txt"),
		Vectorizer:    filepath.Join(cls, "tfidf.json"),
		Forest:        filepath.Join(cls, "rf.json"),
		Boosted:       filepath.Join(cls, "xgb.json"),
		Linear:        filepath.Join(cls, "lr.safetensors"),
		Neural:        filepath.Join(cls, "ann.onnx"),
		Labels:        filepath.Join(cls, "labels.json"),
	}
}
