// Package engine runs the classification pipeline: embed, vectorize,
// predict, decode, then grade severity.
package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crimson-sun/airs/internal/engine/classifier"
	"github.com/crimson-sun/airs/internal/engine/embedder"
	"github.com/crimson-sun/airs/internal/engine/lexical"
	"github.com/crimson-sun/airs/internal/engine/severity"
	"github.com/crimson-sun/airs/internal/model"
)

// LabelDecoder maps a class index to its attack label.
type LabelDecoder interface {
	Decode(i int) (string, error)
	Classes() []string
}

// Engine holds the artifacts loaded at startup. It is read-only after New
// and safe for concurrent use when its components are.
type Engine struct {
	embedder embedder.Embedder
	lexical  lexical.Vectorizer
	models   map[classifier.Kind]classifier.Predictor
	labels   LabelDecoder
	now      func() time.Time
	closers  []func() error
}

// New creates an Engine with the provided components.
func New(emb embedder.Embedder, vec lexical.Vectorizer, models map[classifier.Kind]classifier.Predictor, labels LabelDecoder) *Engine {
	m := make(map[classifier.Kind]classifier.Predictor, len(models))
	for k, p := range models {
		m[k] = p
	}
	return &Engine{
		embedder: emb,
		lexical:  vec,
		models:   m,
		labels:   labels,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for result timestamps.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Analyze classifies message with the model named by selector.
func (e *Engine) Analyze(message, selector string) (model.AnalysisResult, error) {
	kind, err := classifier.ParseKind(selector)
	if err != nil {
		return model.AnalysisResult{}, ErrInvalidModel
	}

	features, err := e.Features(message)
	if err != nil {
		return model.AnalysisResult{}, stageErr(StageFeatureExtraction, err)
	}

	pred, ok := e.models[kind]
	if !ok {
		return model.AnalysisResult{}, stageErr(StageModelInvocation, fmt.Errorf("model %s is not loaded", kind))
	}
	idx, err := pred.Predict(features)
	if err != nil {
		return model.AnalysisResult{}, stageErr(StageModelInvocation, err)
	}

	label, err := e.labels.Decode(idx)
	if err != nil {
		return model.AnalysisResult{}, stageErr(StageLabelDecode, err)
	}

	return model.AnalysisResult{
		ModelUsed:  strings.ToUpper(selector),
		AttackType: label,
		Severity:   severity.Classify(label),
		Status:     model.StatusLogged,
		Timestamp:  e.now().Format(model.TimestampLayout),
	}, nil
}

// Features returns the semantic embedding of text followed by its lexical
// embedding.
func (e *Engine) Features(text string) ([]float32, error) {
	dense, err := e.embedder.Embed(text)
	if err != nil {
		return nil, err
	}
	sparse, err := e.lexical.Transform(text)
	if err != nil {
		return nil, err
	}
	row := make([]float32, 0, len(dense)+len(sparse))
	row = append(row, dense...)
	return append(row, sparse...), nil
}

// Models returns the loaded model kinds in dispatch order.
func (e *Engine) Models() []classifier.Kind {
	var out []classifier.Kind
	for _, k := range classifier.Kinds() {
		if _, ok := e.models[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Labels returns the attack labels the models can predict.
func (e *Engine) Labels() []string {
	return e.labels.Classes()
}

// Close releases the embedder and any model runtimes registered by Load.
func (e *Engine) Close() error {
	var errs []error
	for _, c := range e.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.embedder != nil {
		if err := e.embedder.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
