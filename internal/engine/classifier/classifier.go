// Package classifier evaluates pre-trained attack classifiers exported from
// the training pipeline: a random forest, gradient-boosted trees, a logistic
// regression and a small neural network.
package classifier

import (
	"errors"
	"fmt"
	"strings"
)

// Kind selects one of the four trained models.
type Kind int

const (
	KindRF Kind = iota + 1
	KindXGB
	KindLR
	KindANN
)

// ErrUnknownKind is returned by ParseKind for an unrecognised selector.
var ErrUnknownKind = errors.New("unknown model kind")

// Kinds lists every model kind in dispatch order.
func Kinds() []Kind {
	return []Kind{KindRF, KindXGB, KindLR, KindANN}
}

// ParseKind maps a case-insensitive selector ("rf", "xgb", "lr", "ann") to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "rf":
		return KindRF, nil
	case "xgb":
		return KindXGB, nil
	case "lr":
		return KindLR, nil
	case "ann":
		return KindANN, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// String returns the lowercase selector.
func (k Kind) String() string {
	switch k {
	case KindRF:
		return "rf"
	case KindXGB:
		return "xgb"
	case KindLR:
		return "lr"
	case KindANN:
		return "ann"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Predictor returns a class index for one feature row.
type Predictor interface {
	Predict(features []float32) (int, error)
}

// ProbabilityModel returns a probability per class for one feature row.
type ProbabilityModel interface {
	PredictProba(features []float32) ([]float32, error)
}

// PredictorFunc adapts a function to Predictor.
type PredictorFunc func(features []float32) (int, error)

func (f PredictorFunc) Predict(features []float32) (int, error) { return f(features) }

// Argmax turns a probability model into a Predictor choosing the most
// probable class. Ties go to the lowest index.
func Argmax(m ProbabilityModel) Predictor {
	return PredictorFunc(func(features []float32) (int, error) {
		probs, err := m.PredictProba(features)
		if err != nil {
			return 0, err
		}
		if len(probs) == 0 {
			return 0, fmt.Errorf("classifier: model returned no class probabilities")
		}
		return argmax(probs), nil
	})
}

// WidthError reports a feature row whose width differs from the one the
// model was trained on.
type WidthError struct {
	Model string
	Got   int
	Want  int
}

func (e *WidthError) Error() string {
	return fmt.Sprintf("X has %d features, but %s is expecting %d features as input", e.Got, e.Model, e.Want)
}

func checkWidth(model string, features []float32, want int) error {
	if len(features) != want {
		return &WidthError{Model: model, Got: len(features), Want: want}
	}
	return nil
}

func argmax[T float32 | float64](xs []T) int {
	best := 0
	for i := 1; i < len(xs); i++ {
		if xs[i] > xs[best] {
			best = i
		}
	}
	return best
}

// classOf maps an output column to a class index through an optional
// classes table.
func classOf(classes []int, col int) int {
	if classes == nil {
		return col
	}
	return classes[col]
}
