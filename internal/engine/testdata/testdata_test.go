package testdata

import (
	"testing"

	"github.com/crimson-sun/airs/internal/engine/severity"
)

func TestLoadCorpus(t *testing.T) {
	entries, err := LoadCorpus()
	if err != nil {
		t.Fatalf("LoadCorpus() error: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("corpus is empty")
	}

	for i, e := range entries {
		if e.Raw == "" {
			t.Errorf("entry[%d] has empty raw", i)
		}
		if e.ExpectedLabel == "" {
			t.Errorf("entry[%d] has empty expected_label", i)
		}
	}
}

// The expected severity of every entry must follow from its label.
func TestCorpusSeverityConsistent(t *testing.T) {
	entries, err := LoadCorpus()
	if err != nil {
		t.Fatal(err)
	}
	for i, e := range entries {
		if got := string(severity.Classify(e.ExpectedLabel)); got != e.ExpectedSeverity {
			t.Errorf("entry[%d] %q: severity %q, corpus says %q", i, e.ExpectedLabel, got, e.ExpectedSeverity)
		}
	}
}

func TestCorpusCoverage(t *testing.T) {
	entries, err := LoadCorpus()
	if err != nil {
		t.Fatal(err)
	}
	tiers := map[string]int{}
	for _, e := range entries {
		tiers[e.ExpectedSeverity]++
	}
	for _, tier := range []string{"high", "medium", "low", "unknown"} {
		if tiers[tier] < 2 {
			t.Errorf("severity %q has %d entries, want at least 2", tier, tiers[tier])
		}
	}
}
