package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/crimson-sun/airs/internal/engine/classifier"
	"github.com/crimson-sun/airs/internal/engine/embedder"
	"github.com/crimson-sun/airs/internal/engine/lexical"
)

// Artifacts locates the files loaded at startup.
type Artifacts struct {
	EmbedderModel string // sentence encoder ONNX model
	EmbedderVocab string // WordPiece vocab.txt
	ORTLibrary    string // ONNX Runtime shared library; empty uses the default next to the model
	MaxSeqLen     int
	Threads       int

	Vectorizer string // TF-IDF export (JSON)
	Forest     string // random forest (JSON)
	Boosted    string // gradient-boosted trees (JSON dump)
	Linear     string // logistic regression (safetensors)
	Neural     string // neural network (ONNX)
	Labels     string // label encoder (JSON)
}

// Load reads every artifact and assembles an Engine. Any failure is fatal;
// resources opened before the failure are released.
func Load(a Artifacts, log *zap.Logger) (eng *Engine, err error) {
	start := time.Now()

	labels, err := classifier.LoadLabels(a.Labels)
	if err != nil {
		return nil, err
	}
	vec, err := lexical.Load(a.Vectorizer)
	if err != nil {
		return nil, err
	}
	forest, err := classifier.LoadForest(a.Forest)
	if err != nil {
		return nil, err
	}
	boosted, err := classifier.LoadBoosted(a.Boosted)
	if err != nil {
		return nil, err
	}
	linear, err := classifier.LoadLinear(a.Linear)
	if err != nil {
		return nil, err
	}

	emb, err := embedder.New(a.EmbedderModel, a.EmbedderVocab, embedder.Options{
		LibraryPath: a.ORTLibrary,
		MaxSeqLen:   a.MaxSeqLen,
		Threads:     a.Threads,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			emb.Close()
		}
	}()

	neural, err := classifier.LoadNeural(a.Neural, classifier.NeuralOptions{
		LibraryPath: a.ORTLibrary,
		Threads:     a.Threads,
	})
	if err != nil {
		return nil, err
	}

	width := emb.Dim() + vec.Dim()
	for name, got := range map[string]int{
		"rf": forest.Features(), "xgb": boosted.Features(),
		"lr": linear.Features(), "ann": neural.Features(),
	} {
		if got != width {
			log.Warn("model width differs from feature width; predictions will fail",
				zap.String("model", name), zap.Int("model_width", got), zap.Int("feature_width", width))
		}
	}

	eng = New(emb, vec, map[classifier.Kind]classifier.Predictor{
		classifier.KindRF:  forest,
		classifier.KindXGB: boosted,
		classifier.KindLR:  linear,
		classifier.KindANN: classifier.Argmax(neural),
	}, labels)
	eng.closers = append(eng.closers, neural.Close)

	log.Info("engine loaded",
		zap.Int("embedding_dim", emb.Dim()),
		zap.Int("lexical_dim", vec.Dim()),
		zap.Int("classes", labels.Len()),
		zap.Duration("took", time.Since(start)),
	)
	return eng, nil
}

// String summarises the artifact set for logs.
func (a Artifacts) String() string {
	return fmt.Sprintf("embedder=%s vectorizer=%s rf=%s xgb=%s lr=%s ann=%s labels=%s",
		a.EmbedderModel, a.Vectorizer, a.Forest, a.Boosted, a.Linear, a.Neural, a.Labels)
}
