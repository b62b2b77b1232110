package classifier

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// twoStumps has one split on feature 0 at 0.5 and one on feature 1 at 1.0.
func twoStumps() forestFile {
	return forestFile{
		NFeatures: 2,
		NClasses:  2,
		Trees: []treeArrays{
			{
				ChildrenLeft:  []int{1, -1, -1},
				ChildrenRight: []int{2, -1, -1},
				Feature:       []int{0, -2, -2},
				Threshold:     []float64{0.5, -2, -2},
				Value:         [][]float64{{3, 3}, {3, 1}, {0, 2}},
			},
			{
				ChildrenLeft:  []int{1, -1, -1},
				ChildrenRight: []int{2, -1, -1},
				Feature:       []int{1, -2, -2},
				Threshold:     []float64{1.0, -2, -2},
				Value:         [][]float64{{1, 5}, {1, 1}, {0, 4}},
			},
		},
	}
}

func TestForestPredict(t *testing.T) {
	f, err := newForest(twoStumps())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		x    []float32
		want int
	}{
		{[]float32{0.2, 0.0}, 0},
		{[]float32{0.9, 2.0}, 1},
		{[]float32{0.5, 2.0}, 1}, // 0.5 <= 0.5 goes left in tree 0
	}
	for _, tt := range tests {
		got, err := f.Predict(tt.x)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("Predict(%v) = %d, want %d", tt.x, got, tt.want)
		}
	}

	probs, err := f.PredictProba([]float32{0.2, 0.0})
	if err != nil {
		t.Fatal(err)
	}
	if probs[0] != 0.625 || probs[1] != 0.375 {
		t.Errorf("PredictProba = %v, want [0.625 0.375]", probs)
	}
}

func TestForestClassesMapping(t *testing.T) {
	ff := twoStumps()
	ff.Classes = []int{2, 5}
	f, err := newForest(ff)
	if err != nil {
		t.Fatal(err)
	}
	got, err := f.Predict([]float32{0.9, 2.0})
	if err != nil {
		t.Fatal(err)
	}
	if got != 5 {
		t.Errorf("Predict = %d, want 5", got)
	}
}

func TestForestWidth(t *testing.T) {
	f, err := newForest(twoStumps())
	if err != nil {
		t.Fatal(err)
	}
	_, err = f.Predict([]float32{1, 2, 3})
	var we *WidthError
	if !errors.As(err, &we) {
		t.Fatalf("expected *WidthError, got %v", err)
	}
}

func TestForestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*forestFile)
	}{
		{"no trees", func(ff *forestFile) { ff.Trees = nil }},
		{"zero features", func(ff *forestFile) { ff.NFeatures = 0 }},
		{"classes length", func(ff *forestFile) { ff.Classes = []int{0} }},
		{"ragged arrays", func(ff *forestFile) { ff.Trees[0].Feature = []int{0} }},
		{"value width", func(ff *forestFile) { ff.Trees[0].Value[1] = []float64{1} }},
		{"child out of range", func(ff *forestFile) { ff.Trees[0].ChildrenRight[0] = 7 }},
		{"feature out of range", func(ff *forestFile) { ff.Trees[1].Feature[0] = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ff := twoStumps()
			tt.mutate(&ff)
			if _, err := newForest(ff); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadForest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rf.json")
	doc := `{
  "n_features": 1,
  "n_classes": 3,
  "trees": [{
    "children_left":  [1, -1, -1],
    "children_right": [2, -1, -1],
    "feature":        [0, -2, -2],
    "threshold":      [10.0, -2.0, -2.0],
    "value":          [[1, 1, 1], [0, 5, 0], [0, 0, 5]]
  }]
}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := LoadForest(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.Features() != 1 {
		t.Errorf("Features() = %d", f.Features())
	}
	if got, _ := f.Predict([]float32{3}); got != 1 {
		t.Errorf("Predict(3) = %d, want 1", got)
	}
	if got, _ := f.Predict([]float32{30}); got != 2 {
		t.Errorf("Predict(30) = %d, want 2", got)
	}

	if _, err := LoadForest(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
