package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/crimson-sun/airs/internal/engine"
	"github.com/crimson-sun/airs/internal/model"
	"github.com/crimson-sun/airs/internal/report"
)

// mockAnalyzer labels lines containing "flood" as DDoS and everything else
// as Port Scan.
type mockAnalyzer struct {
	calls []string
	err   error
	errAt int // fail on this call number (1-based); 0 never
}

func (m *mockAnalyzer) Analyze(message, selector string) (model.AnalysisResult, error) {
	m.calls = append(m.calls, message)
	if m.errAt > 0 && len(m.calls) == m.errAt {
		return model.AnalysisResult{}, m.err
	}
	label, sev := "Port Scan", model.SeverityLow
	if strings.Contains(message, "flood") {
		label, sev = "DDoS", model.SeverityHigh
	}
	return model.AnalysisResult{
		ModelUsed:  strings.ToUpper(selector),
		AttackType: label,
		Severity:   sev,
		Status:     model.StatusLogged,
		Timestamp:  "2026-01-02 03:04:05",
	}, nil
}

type mockExporter struct {
	got []model.Incident
	dir string
}

func (m *mockExporter) Export(_ context.Context, incidents []model.Incident, dir string) (*report.Result, error) {
	m.got = incidents
	m.dir = dir
	return &report.Result{CSVPath: dir + "/x.csv", JSONPath: dir + "/x.json"}, nil
}

func TestRunOneIncidentPerLine(t *testing.T) {
	a := &mockAnalyzer{}
	e := &mockExporter{}
	p := New(a, e, nil)

	lines := []string{"SYN flood on edge", "", "   ", "probe on 22,80,443"}
	res, err := p.Run(context.Background(), lines, "edge-fw", "xgb", "out")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.CSVPath != "out/x.csv" || e.dir != "out" {
		t.Errorf("export dir not passed through: %+v", res)
	}
	if len(a.calls) != 2 {
		t.Errorf("blank lines should be skipped, analyzer saw %q", a.calls)
	}
	if len(e.got) != 2 {
		t.Fatalf("exported %d incidents, want 2", len(e.got))
	}
	want := model.Incident{
		Timestamp:  "2026-01-02 03:04:05",
		Source:     "edge-fw",
		AttackType: "DDoS",
		Severity:   "high",
		Status:     "logged",
	}
	if e.got[0] != want {
		t.Errorf("incident[0] = %+v, want %+v", e.got[0], want)
	}
	if e.got[1].AttackType != "Port Scan" {
		t.Errorf("incident[1] = %+v", e.got[1])
	}
}

func TestRunAbortsOnFailure(t *testing.T) {
	a := &mockAnalyzer{err: &engine.StageError{Stage: engine.StageModelInvocation, Err: errors.New("boom")}, errAt: 2}
	e := &mockExporter{}
	_, err := New(a, e, nil).Run(context.Background(), []string{"a", "b", "c"}, "s", "rf", "out")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error should name the line: %v", err)
	}
	var se *engine.StageError
	if !errors.As(err, &se) {
		t.Errorf("error should unwrap to *engine.StageError: %v", err)
	}
	if e.got != nil {
		t.Error("exporter should not run after a failure")
	}
	if len(a.calls) != 2 {
		t.Errorf("analyzer called %d times, want 2", len(a.calls))
	}
}

func TestClassifyInvalidModel(t *testing.T) {
	a := &mockAnalyzer{err: engine.ErrInvalidModel, errAt: 1}
	_, err := New(a, &mockExporter{}, nil).Classify(context.Background(), []string{"x"}, "s", "svm")
	if !errors.Is(err, engine.ErrInvalidModel) {
		t.Errorf("error = %v, want ErrInvalidModel", err)
	}
}

func TestClassifyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := &mockAnalyzer{}
	_, err := New(a, &mockExporter{}, nil).Classify(ctx, []string{"a"}, "s", "rf")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if len(a.calls) != 0 {
		t.Error("analyzer called after cancellation")
	}
}

func TestReadLines(t *testing.T) {
	lines, err := ReadLines(strings.NewReader("one\ntwo\r\n\nthree"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"one", "two", "", "three"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("ReadLines = %q, want %q", lines, want)
	}

	long := strings.Repeat("x", maxLineSize+1)
	if _, err := ReadLines(strings.NewReader(long)); err == nil {
		t.Error("expected error for a line over the limit")
	}
}
