package airs

import (
	"context"
	"fmt"

	"github.com/crimson-sun/airs/internal/engine"
	"github.com/crimson-sun/airs/internal/model"
	"github.com/crimson-sun/airs/internal/report"
)

// ErrInvalidModel is returned by Analyze when the selector is not one of
// rf, xgb, lr or ann.
var ErrInvalidModel = engine.ErrInvalidModel

// Analyzer is an incident classifier backed by the loaded model artifacts.
// Safe for concurrent use.
type Analyzer struct {
	engine   *engine.Engine
	exporter *report.Exporter
}

// New creates an Analyzer, loading the encoder, vectorizer, all four
// classifiers and the label classes. This is an expensive operation;
// create once, reuse across requests.
func New(opts ...Option) (*Analyzer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	p := resolvePaths(o)

	eng, err := engine.Load(engine.Artifacts{
		EmbedderModel: p.EmbedderModel,
		EmbedderVocab: p.EmbedderVocab,
		ORTLibrary:    o.ortLib,
		MaxSeqLen:     o.maxSeqLen,
		Threads:       o.threads,
		Vectorizer:    p.Vectorizer,
		Forest:        p.Forest,
		Boosted:       p.Boosted,
		Linear:        p.Linear,
		Neural:        p.Neural,
		Labels:        p.Labels,
	}, o.logger)
	if err != nil {
		return nil, fmt.Errorf("airs: %w", err)
	}
	return &Analyzer{
		engine:   eng,
		exporter: report.New(report.WithLogger(o.logger)),
	}, nil
}

// Analyze classifies a single message with the named model ("rf", "xgb",
// "lr" or "ann", case-insensitive).
func (a *Analyzer) Analyze(message, selector string) (Result, error) {
	res, err := a.engine.Analyze(message, selector)
	if err != nil {
		return Result{}, err
	}
	return resultFromModel(res), nil
}

// AnalyzeIncident classifies message and returns it as an incident
// attributed to source, ready for Export.
func (a *Analyzer) AnalyzeIncident(message, selector, source string) (Incident, error) {
	res, err := a.engine.Analyze(message, selector)
	if err != nil {
		return Incident{}, err
	}
	return incidentFromModel(res.Incident(source)), nil
}

// Models returns the selectors of the loaded models.
func (a *Analyzer) Models() []string {
	kinds := a.engine.Models()
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = k.String()
	}
	return out
}

// Labels returns the attack labels the models can predict.
func (a *Analyzer) Labels() []string {
	return a.engine.Labels()
}

// Export writes incidents to <dir>/incidents_<date>.csv and .json
// and prints alerts for the critical ones. An empty dir means "logs".
func (a *Analyzer) Export(ctx context.Context, incidents []Incident, dir string) (Report, error) {
	return exportWith(ctx, a.exporter, incidents, dir)
}

// Export writes an incident report without loading any models.
func Export(ctx context.Context, incidents []Incident, dir string) (Report, error) {
	return exportWith(ctx, report.New(), incidents, dir)
}

// Close releases model resources (ONNX runtime, memory).
// Must be called when the Analyzer is no longer needed.
func (a *Analyzer) Close() error {
	return a.engine.Close()
}

func exportWith(ctx context.Context, e *report.Exporter, incidents []Incident, dir string) (Report, error) {
	in := make([]model.Incident, len(incidents))
	for i, inc := range incidents {
		in[i] = model.Incident(inc)
	}
	res, err := e.Export(ctx, in, dir)
	if err != nil {
		return Report{}, err
	}
	out := Report{CSVPath: res.CSVPath, JSONPath: res.JSONPath, Alerts: make([]Incident, len(res.Alerts))}
	for i, inc := range res.Alerts {
		out.Alerts[i] = incidentFromModel(inc)
	}
	return out, nil
}

func resultFromModel(r model.AnalysisResult) Result {
	return Result{
		ModelUsed:  r.ModelUsed,
		AttackType: r.AttackType,
		Severity:   string(r.Severity),
		Status:     r.Status,
		Timestamp:  r.Timestamp,
	}
}

func incidentFromModel(i model.Incident) Incident {
	return Incident(i)
}
