package classifier

import (
	"encoding/json"
	"fmt"
	"os"
)

// treeArrays is one decision tree as parallel node arrays. A node is a leaf
// when ChildrenLeft is -1.
type treeArrays struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

type forestFile struct {
	NFeatures int          `json:"n_features"`
	NClasses  int          `json:"n_classes"`
	Classes   []int        `json:"classes,omitempty"`
	Trees     []treeArrays `json:"trees"`
}

// Forest is a random forest: the class with the highest mean leaf
// distribution across trees wins.
type Forest struct {
	nFeatures int
	nClasses  int
	classes   []int
	trees     []treeArrays
}

// LoadForest reads a forest exported as JSON node arrays.
func LoadForest(path string) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("forest: %w", err)
	}
	var ff forestFile
	if err := json.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("forest: parse %s: %w", path, err)
	}
	f, err := newForest(ff)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return f, nil
}

func newForest(ff forestFile) (*Forest, error) {
	if ff.NFeatures <= 0 || ff.NClasses <= 0 {
		return nil, fmt.Errorf("forest: n_features and n_classes must be positive")
	}
	if len(ff.Trees) == 0 {
		return nil, fmt.Errorf("forest: no trees")
	}
	if ff.Classes != nil && len(ff.Classes) != ff.NClasses {
		return nil, fmt.Errorf("forest: %d classes listed for n_classes=%d", len(ff.Classes), ff.NClasses)
	}
	for i, t := range ff.Trees {
		if err := t.validate(ff.NFeatures, ff.NClasses); err != nil {
			return nil, fmt.Errorf("forest: tree %d: %w", i, err)
		}
	}
	return &Forest{nFeatures: ff.NFeatures, nClasses: ff.NClasses, classes: ff.Classes, trees: ff.Trees}, nil
}

func (t treeArrays) validate(nFeatures, nClasses int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays differ in length")
	}
	for i := 0; i < n; i++ {
		if len(t.Value[i]) != nClasses {
			return fmt.Errorf("node %d: %d values for %d classes", i, len(t.Value[i]), nClasses)
		}
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if l == -1 {
			continue
		}
		if l <= i || l >= n || r <= i || r >= n {
			return fmt.Errorf("node %d: children (%d, %d) out of range", i, l, r)
		}
		if f := t.Feature[i]; f < 0 || f >= nFeatures {
			return fmt.Errorf("node %d: feature %d out of range", i, f)
		}
	}
	return nil
}

// Features returns the trained input width.
func (f *Forest) Features() int { return f.nFeatures }

// PredictProba averages the normalised leaf distributions of every tree.
func (f *Forest) PredictProba(x []float32) ([]float32, error) {
	if err := checkWidth("RandomForestClassifier", x, f.nFeatures); err != nil {
		return nil, err
	}
	sum := make([]float64, f.nClasses)
	for _, t := range f.trees {
		leaf := t.Value[t.leaf(x)]
		var total float64
		for _, v := range leaf {
			total += v
		}
		if total == 0 {
			continue
		}
		for c, v := range leaf {
			sum[c] += v / total
		}
	}
	out := make([]float32, f.nClasses)
	for c := range sum {
		out[c] = float32(sum[c] / float64(len(f.trees)))
	}
	return out, nil
}

// Predict returns the class with the highest mean probability.
func (f *Forest) Predict(x []float32) (int, error) {
	probs, err := f.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return classOf(f.classes, argmax(probs)), nil
}

// leaf walks from the root, going left when x[feature] <= threshold.
func (t treeArrays) leaf(x []float32) int {
	node := 0
	for t.ChildrenLeft[node] != -1 {
		if float64(x[t.Feature[node]]) <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return node
}
