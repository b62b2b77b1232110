package engine

import "errors"

// ErrInvalidModel is returned when the model selector is not one of the
// known kinds. It is detected before any feature extraction.
var ErrInvalidModel = errors.New("invalid model")

// Stage identifies the step of an analysis that failed.
type Stage string

const (
	StageFeatureExtraction Stage = "feature_extraction"
	StageModelInvocation   Stage = "model_invocation"
	StageLabelDecode       Stage = "label_decode"
)

// StageError wraps a failure inside the analysis pipeline. Its message is
// the underlying error's message alone.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(s Stage, err error) error {
	return &StageError{Stage: s, Err: err}
}
