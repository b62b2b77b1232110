package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// dumpNode is one node of a gradient-boosted tree in the JSON model dump.
// Leaves carry Leaf; split nodes carry the rest.
type dumpNode struct {
	NodeID         int        `json:"nodeid"`
	Split          string     `json:"split,omitempty"`
	SplitCondition float64    `json:"split_condition,omitempty"`
	Yes            int        `json:"yes,omitempty"`
	No             int        `json:"no,omitempty"`
	Missing        int        `json:"missing,omitempty"`
	Leaf           *float64   `json:"leaf,omitempty"`
	Children       []dumpNode `json:"children,omitempty"`
}

type boostedFile struct {
	NFeatures       int        `json:"n_features"`
	NumClass        int        `json:"num_class"`
	NumParallelTree int        `json:"num_parallel_tree,omitempty"`
	BaseScore       *float64   `json:"base_score,omitempty"`
	Trees           []dumpNode `json:"trees"`
}

// boostedTree is a dumped tree flattened by node id.
type boostedTree struct {
	feature   []int
	condition []float64
	yes       []int
	no        []int
	missing   []int
	leaf      []float64
	isLeaf    []bool
}

// Boosted is a gradient-boosted tree ensemble. Tree i contributes to class
// (i / num_parallel_tree) % num_class; a binary model (num_class <= 1)
// predicts class 1 when its margin is positive.
type Boosted struct {
	nFeatures int
	numClass  int
	parallel  int
	baseScore float64
	trees     []boostedTree
}

// LoadBoosted reads a JSON dump of a gradient-boosted ensemble.
func LoadBoosted(path string) (*Boosted, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("boosted: %w", err)
	}
	var bf boostedFile
	if err := json.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("boosted: parse %s: %w", path, err)
	}
	b, err := newBoosted(bf)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return b, nil
}

func newBoosted(bf boostedFile) (*Boosted, error) {
	if bf.NFeatures <= 0 {
		return nil, fmt.Errorf("boosted: n_features must be positive")
	}
	if len(bf.Trees) == 0 {
		return nil, fmt.Errorf("boosted: no trees")
	}
	b := &Boosted{
		nFeatures: bf.NFeatures,
		numClass:  bf.NumClass,
		parallel:  bf.NumParallelTree,
		baseScore: 0.5,
	}
	if b.parallel <= 0 {
		b.parallel = 1
	}
	if bf.BaseScore != nil {
		b.baseScore = *bf.BaseScore
	}
	if b.binary() && (b.baseScore <= 0 || b.baseScore >= 1) {
		return nil, fmt.Errorf("boosted: base_score %v outside (0, 1)", b.baseScore)
	}
	for i, root := range bf.Trees {
		t, err := flatten(root, bf.NFeatures)
		if err != nil {
			return nil, fmt.Errorf("boosted: tree %d: %w", i, err)
		}
		b.trees = append(b.trees, t)
	}
	return b, nil
}

func (b *Boosted) binary() bool { return b.numClass <= 1 }

// Features returns the trained input width.
func (b *Boosted) Features() int { return b.nFeatures }

// Margins returns the raw per-class scores. A binary model yields one score.
func (b *Boosted) Margins(x []float32) ([]float64, error) {
	if err := checkWidth("XGBClassifier", x, b.nFeatures); err != nil {
		return nil, err
	}
	if b.binary() {
		m := math.Log(b.baseScore / (1 - b.baseScore))
		for _, t := range b.trees {
			m += t.eval(x)
		}
		return []float64{m}, nil
	}
	m := make([]float64, b.numClass)
	for c := range m {
		m[c] = b.baseScore
	}
	for i, t := range b.trees {
		m[(i/b.parallel)%b.numClass] += t.eval(x)
	}
	return m, nil
}

// Predict returns the class with the highest margin.
func (b *Boosted) Predict(x []float32) (int, error) {
	m, err := b.Margins(x)
	if err != nil {
		return 0, err
	}
	if b.binary() {
		if m[0] > 0 {
			return 1, nil
		}
		return 0, nil
	}
	return argmax(m), nil
}

// eval goes to yes when x < condition, and follows missing on NaN.
func (t boostedTree) eval(x []float32) float64 {
	node := 0
	for !t.isLeaf[node] {
		v := x[t.feature[node]]
		switch {
		case math.IsNaN(float64(v)):
			node = t.missing[node]
		case float64(v) < t.condition[node]:
			node = t.yes[node]
		default:
			node = t.no[node]
		}
	}
	return t.leaf[node]
}

func flatten(root dumpNode, nFeatures int) (boostedTree, error) {
	var nodes []dumpNode
	var collect func(n dumpNode)
	collect = func(n dumpNode) {
		nodes = append(nodes, n)
		for _, c := range n.Children {
			collect(c)
		}
	}
	collect(root)

	n := len(nodes)
	t := boostedTree{
		feature:   make([]int, n),
		condition: make([]float64, n),
		yes:       make([]int, n),
		no:        make([]int, n),
		missing:   make([]int, n),
		leaf:      make([]float64, n),
		isLeaf:    make([]bool, n),
	}
	seen := make([]bool, n)
	for _, nd := range nodes {
		id := nd.NodeID
		if id < 0 || id >= n {
			return t, fmt.Errorf("node id %d out of range [0,%d)", id, n)
		}
		if seen[id] {
			return t, fmt.Errorf("duplicate node id %d", id)
		}
		seen[id] = true
		if nd.Leaf != nil {
			t.isLeaf[id] = true
			t.leaf[id] = *nd.Leaf
			continue
		}
		f, err := splitFeature(nd.Split)
		if err != nil {
			return t, fmt.Errorf("node %d: %w", id, err)
		}
		if f >= nFeatures {
			return t, fmt.Errorf("node %d: feature %d out of range", id, f)
		}
		t.feature[id] = f
		t.condition[id] = nd.SplitCondition
		t.yes[id], t.no[id], t.missing[id] = nd.Yes, nd.No, nd.Missing
	}
	for id := 0; id < n; id++ {
		if t.isLeaf[id] {
			continue
		}
		for _, c := range []int{t.yes[id], t.no[id], t.missing[id]} {
			if c <= 0 || c >= n {
				return t, fmt.Errorf("node %d: child %d out of range", id, c)
			}
		}
	}
	return t, nil
}

// splitFeature accepts both "f12" and "12".
func splitFeature(s string) (int, error) {
	f, err := strconv.Atoi(strings.TrimPrefix(s, "f"))
	if err != nil || f < 0 {
		return 0, fmt.Errorf("bad split feature %q", s)
	}
	return f, nil
}
