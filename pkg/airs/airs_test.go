package airs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

const testModelDir = "../../models"

func skipWithoutModel(t *testing.T) {
	t.Helper()
	for _, p := range []string{"minilm/model.onnx", "classifiers/rf.json", "classifiers/labels.json"} {
		if _, err := os.Stat(filepath.Join(testModelDir, p)); os.IsNotExist(err) {
			t.Skip("model artifacts not available, skipping integration test")
		}
	}
}

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	skipWithoutModel(t)
	a, err := New(WithModelDir(testModelDir))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNewBadPathReturnsError(t *testing.T) {
	_, err := New(WithModelDir("/nonexistent/path"))
	if err == nil {
		t.Fatal("expected error for bad model path, got nil")
	}
	if !strings.HasPrefix(err.Error(), "airs: ") {
		t.Errorf("error should be prefixed, got %v", err)
	}
}

func TestAnalyzeKnownAttack(t *testing.T) {
	a := newTestAnalyzer(t)

	res, err := a.Analyze("Multiple SYN packets detected from 10.0.0.7 flooding port 80", "rf")
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if res.ModelUsed != "RF" {
		t.Errorf("ModelUsed = %q, want RF", res.ModelUsed)
	}
	if res.Status != "logged" {
		t.Errorf("Status = %q, want logged", res.Status)
	}
	if res.Severity != Severity(res.AttackType) {
		t.Errorf("Severity = %q, inconsistent with label %q", res.Severity, res.AttackType)
	}
}

func TestAnalyzeInvalidModel(t *testing.T) {
	a := newTestAnalyzer(t)

	_, err := a.Analyze("anything", "svm")
	if !errors.Is(err, ErrInvalidModel) {
		t.Fatalf("expected ErrInvalidModel, got %v", err)
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	a := newTestAnalyzer(t)

	for _, sel := range a.Models() {
		if _, err := a.Analyze("", sel); err != nil {
			t.Errorf("Analyze(%q, %s) error: %v", "", sel, err)
		}
	}
}

func TestConcurrentAnalyze(t *testing.T) {
	a := newTestAnalyzer(t)

	texts := []string{
		"SELECT * FROM users WHERE id='1' OR '1'='1'",
		"<script>alert(document.cookie)</script>",
		"Failed password for root from 203.0.113.9 port 22",
		"Nmap scan report for 10.0.0.1",
	}
	var wg sync.WaitGroup
	errs := make(chan error, len(texts)*4)
	for _, text := range texts {
		for _, sel := range []string{"rf", "xgb", "lr", "ann"} {
			wg.Add(1)
			go func(text, sel string) {
				defer wg.Done()
				if _, err := a.Analyze(text, sel); err != nil {
					errs <- err
				}
			}(text, sel)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Analyze: %v", err)
	}
}

func TestAnalyzeIncidentAttributesSource(t *testing.T) {
	a := newTestAnalyzer(t)

	inc, err := a.AnalyzeIncident("Nmap scan report for 10.0.0.1", "lr", "IDS")
	if err != nil {
		t.Fatal(err)
	}
	if inc.Source != "IDS" || inc.Status != "logged" || inc.Timestamp == "" {
		t.Errorf("unexpected incident %+v", inc)
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := defaultOptions()
	if o.maxSeqLen != 256 {
		t.Errorf("maxSeqLen = %d, want 256", o.maxSeqLen)
	}
	if o.logger == nil {
		t.Error("logger should default to a no-op logger")
	}
}

func TestResolvePathsExplicit(t *testing.T) {
	want := Paths{EmbedderModel: "/a/enc.onnx", Forest: "/b/forest.json", Labels: "/c/labels.json"}
	o := defaultOptions()
	WithModelDir("/ignored")(&o)
	WithPaths(want)(&o)

	if got := resolvePaths(o); got != want {
		t.Errorf("resolvePaths() = %+v, want %+v", got, want)
	}
}

func TestResolvePathsFromDir(t *testing.T) {
	o := defaultOptions()
	WithModelDir("/opt/airs")(&o)
	p := resolvePaths(o)

	checks := map[string]string{
		p.EmbedderModel: "/opt/airs/minilm/model.onnx",
		p.EmbedderVocab: "/opt/airs/minilm/vocab.txt",
		p.Vectorizer:    "/opt/airs/classifiers/tfidf.json",
		p.Forest:        "/opt/airs/classifiers/rf.json",
		p.Boosted:       "/opt/airs/classifiers/xgb.json",
		p.Linear:        "/opt/airs/classifiers/lr.safetensors",
		p.Neural:        "/opt/airs/classifiers/ann.onnx",
		p.Labels:        "/opt/airs/classifiers/labels.json",
	}
	for got, want := range checks {
		if got != want {
			t.Errorf("path = %q, want %q", got, want)
		}
	}
}

func TestResolvePathsDefaultDir(t *testing.T) {
	p := resolvePaths(defaultOptions())
	if p.Forest != filepath.Join("models", "classifiers", "rf.json") {
		t.Errorf("Forest = %q", p.Forest)
	}
}

func TestSeverityRules(t *testing.T) {
	rules := SeverityRules()
	if len(rules) != 3 {
		t.Fatalf("got %d rules, want 3", len(rules))
	}
	order := []string{"high", "medium", "low"}
	for i, r := range rules {
		if r.Severity != order[i] {
			t.Errorf("rule %d severity = %q, want %q", i, r.Severity, order[i])
		}
	}
	rules[0].Keywords[0] = "mutated"
	if SeverityRules()[0].Keywords[0] == "mutated" {
		t.Error("SeverityRules should return a copy")
	}
}

func TestSeverity(t *testing.T) {
	tests := map[string]string{
		"DDoS":          "high",
		"SQL Injection": "medium",
		"Port Scan":     "low",
		"Phishing":      "unknown",
	}
	for label, want := range tests {
		if got := Severity(label); got != want {
			t.Errorf("Severity(%q) = %q, want %q", label, got, want)
		}
	}
}

func TestExportWithoutModels(t *testing.T) {
	dir := t.TempDir()
	incidents := []Incident{
		{Timestamp: "2026-03-14 09:26:53", Source: "Firewall", AttackType: "DDoS", Severity: "high", Status: "logged"},
		{Timestamp: "2026-03-14 09:27:10", Source: "IDS", AttackType: "Port Scan", Severity: "low", Status: "logged"},
	}

	rep, err := Export(context.Background(), incidents, dir)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	for _, p := range []string{rep.CSVPath, rep.JSONPath} {
		if filepath.Dir(p) != dir {
			t.Errorf("report %q not in %q", p, dir)
		}
		if _, err := os.Stat(p); err != nil {
			t.Errorf("report missing: %v", err)
		}
	}
	if len(rep.Alerts) != 1 || rep.Alerts[0].Source != "Firewall" {
		t.Errorf("Alerts = %+v, want only the Firewall incident", rep.Alerts)
	}
}
