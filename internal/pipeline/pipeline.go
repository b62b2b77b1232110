// Package pipeline classifies a batch of log lines and exports the resulting
// incidents.
package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/crimson-sun/airs/internal/model"
	"github.com/crimson-sun/airs/internal/report"
)

const maxLineSize = 1 << 20

// Analyzer classifies one message.
type Analyzer interface {
	Analyze(message, selector string) (model.AnalysisResult, error)
}

// Exporter writes an incident report.
type Exporter interface {
	Export(ctx context.Context, incidents []model.Incident, dir string) (*report.Result, error)
}

// Pipeline connects an analyzer and an exporter.
type Pipeline struct {
	analyzer Analyzer
	exporter Exporter
	log      *zap.Logger
}

// New creates a Pipeline from the given components.
func New(a Analyzer, e Exporter, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{analyzer: a, exporter: e, log: log}
}

// Classify analyzes every non-blank line with the given model and returns
// one incident per line, attributed to source. The first failure aborts.
func (p *Pipeline) Classify(ctx context.Context, lines []string, source, selector string) ([]model.Incident, error) {
	incidents := make([]model.Incident, 0, len(lines))
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		res, err := p.analyzer.Analyze(line, selector)
		if err != nil {
			return nil, fmt.Errorf("pipeline: line %d: %w", i+1, err)
		}
		p.log.Debug("line classified",
			zap.Int("line", i+1),
			zap.String("attack_type", res.AttackType),
			zap.String("severity", string(res.Severity)),
		)
		incidents = append(incidents, res.Incident(source))
	}
	return incidents, nil
}

// Run classifies lines and exports the incidents into dir.
func (p *Pipeline) Run(ctx context.Context, lines []string, source, selector, dir string) (*report.Result, error) {
	incidents, err := p.Classify(ctx, lines, source, selector)
	if err != nil {
		return nil, err
	}
	p.log.Info("batch classified", zap.Int("lines", len(lines)), zap.Int("incidents", len(incidents)))
	return p.exporter.Export(ctx, incidents, dir)
}

// ReadLines splits r into lines, accepting lines up to 1 MiB.
func ReadLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("pipeline: read lines: %w", err)
	}
	return lines, nil
}
