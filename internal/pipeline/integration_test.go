package pipeline

import (
	"bytes"
	"context"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/crimson-sun/airs/internal/alert"
	"github.com/crimson-sun/airs/internal/engine"
	"github.com/crimson-sun/airs/internal/engine/testdata"
	"github.com/crimson-sun/airs/internal/report"
)

var artifacts = engine.Artifacts{
	EmbedderModel: "../../models/minilm/model.onnx",
	EmbedderVocab: "../../models/minilm/vocab.txt",
	Vectorizer:    "../../models/classifiers/tfidf.json",
	Forest:        "../../models/classifiers/rf.json",
	Boosted:       "../../models/classifiers/xgb.json",
	Linear:        "../../models/classifiers/lr.safetensors",
	Neural:        "../../models/classifiers/ann.onnx",
	Labels:        "../../models/classifiers/labels.json",
}

func skipWithoutModel(t *testing.T) {
	t.Helper()
	for _, p := range []string{artifacts.EmbedderModel, artifacts.Forest, artifacts.Neural, artifacts.Labels} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			t.Skip("model artifacts not available, skipping integration test")
		}
	}
}

func TestIntegration_CorpusThroughPipeline(t *testing.T) {
	skipWithoutModel(t)

	eng, err := engine.Load(artifacts, zap.NewNop())
	if err != nil {
		t.Fatalf("engine.Load: %v", err)
	}
	t.Cleanup(func() { eng.Close() })

	corpus, err := testdata.LoadCorpus()
	if err != nil {
		t.Fatal(err)
	}
	lines := make([]string, len(corpus))
	for i, e := range corpus {
		lines[i] = e.Raw
	}

	var out bytes.Buffer
	exp := report.New(report.WithConsole(alert.NewConsole(&out)))
	res, err := New(eng, exp, zap.NewNop()).Run(context.Background(), lines, "corpus", "lr", t.TempDir())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(res.CSVPath)
	if err != nil {
		t.Fatal(err)
	}
	if n := bytes.Count(data, []byte("\r\n")); n != len(lines)+1 {
		t.Errorf("CSV has %d lines, want %d", n, len(lines)+1)
	}
	t.Logf("%d alerts out of %d lines", len(res.Alerts), len(lines))
}
