package classifier

import (
	"fmt"

	"github.com/crimson-sun/airs/internal/engine/weights"
)

// Linear is a multinomial (or binary) logistic regression stored as a
// "coef" [K, F] and "intercept" [K] tensor pair. An optional "classes"
// vector maps output columns to class indices.
type Linear struct {
	coef      weights.Tensor
	intercept []float64
	classes   []int
}

// LoadLinear reads logistic regression weights from a safetensors file.
func LoadLinear(path string) (*Linear, error) {
	f, err := weights.Load(path)
	if err != nil {
		return nil, err
	}
	l, err := NewLinear(f)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return l, nil
}

// NewLinear builds a Linear from decoded tensors.
func NewLinear(f weights.File) (*Linear, error) {
	coef, err := f.Get("coef", 2)
	if err != nil {
		return nil, fmt.Errorf("linear: %w", err)
	}
	intercept, err := f.Get("intercept", 1)
	if err != nil {
		return nil, fmt.Errorf("linear: %w", err)
	}
	if coef.Rows() == 0 || coef.Cols() == 0 {
		return nil, fmt.Errorf("linear: empty coef %v", coef.Shape)
	}
	if intercept.Cols() != coef.Rows() {
		return nil, fmt.Errorf("linear: intercept %v doesn't match coef %v", intercept.Shape, coef.Shape)
	}

	l := &Linear{coef: coef, intercept: intercept.Data}
	if ct, ok := f["classes"]; ok {
		want := coef.Rows()
		if want == 1 {
			want = 2
		}
		if len(ct.Shape) != 1 || ct.Cols() != want {
			return nil, fmt.Errorf("linear: classes %v doesn't match %d outputs", ct.Shape, want)
		}
		l.classes = make([]int, want)
		for i, v := range ct.Data {
			l.classes[i] = int(v)
		}
	}
	return l, nil
}

// Features returns the trained input width.
func (l *Linear) Features() int { return l.coef.Cols() }

// Scores returns the decision function, one value per coef row.
func (l *Linear) Scores(x []float32) ([]float64, error) {
	if err := checkWidth("LogisticRegression", x, l.coef.Cols()); err != nil {
		return nil, err
	}
	out := make([]float64, l.coef.Rows())
	for k := range out {
		s := l.intercept[k]
		for j, w := range l.coef.Row(k) {
			s += w * float64(x[j])
		}
		out[k] = s
	}
	return out, nil
}

// Predict returns the highest-scoring class. A single-row model is binary
// and predicts the second class when its score is positive.
func (l *Linear) Predict(x []float32) (int, error) {
	s, err := l.Scores(x)
	if err != nil {
		return 0, err
	}
	col := 0
	if len(s) == 1 {
		if s[0] > 0 {
			col = 1
		}
	} else {
		col = argmax(s)
	}
	return classOf(l.classes, col), nil
}
