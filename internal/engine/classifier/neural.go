package classifier

import (
	"fmt"
	"path/filepath"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/crimson-sun/airs/internal/engine/ortenv"
)

// Neural is a feed-forward network exported to ONNX with a [batch, F]
// float input and a [batch, K] probability output.
type Neural struct {
	session   *ort.DynamicAdvancedSession
	nFeatures int64
	nClasses  int64
}

// NeuralOptions configures ONNX Runtime for the network.
type NeuralOptions struct {
	// LibraryPath defaults to libonnxruntime.so next to the model file.
	LibraryPath string
	Threads     int
}

// LoadNeural opens an ONNX classifier. When a model has several outputs, the
// one named "probabilities" is used, otherwise the last 2D output.
func LoadNeural(path string, opts NeuralOptions) (*Neural, error) {
	if opts.LibraryPath == "" {
		opts.LibraryPath = filepath.Join(filepath.Dir(path), "libonnxruntime.so")
	}
	if err := ortenv.Init(opts.LibraryPath); err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("neural: failed to read model info: %w", err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("neural: expected 1 input, got %d", len(inputs))
	}
	in := inputs[0]
	if len(in.Dimensions) != 2 || in.Dimensions[1] <= 0 {
		return nil, fmt.Errorf("neural: input %q must be [batch, features], got %v", in.Name, in.Dimensions)
	}

	out, err := probabilityOutput(outputs)
	if err != nil {
		return nil, err
	}

	so, err := ortenv.SessionOptions(opts.Threads)
	if err != nil {
		return nil, err
	}
	defer so.Destroy()

	session, err := ort.NewDynamicAdvancedSession(path, []string{in.Name}, []string{out.Name}, so)
	if err != nil {
		return nil, fmt.Errorf("neural: failed to create session: %w", err)
	}
	return &Neural{session: session, nFeatures: in.Dimensions[1], nClasses: out.Dimensions[1]}, nil
}

func probabilityOutput(outputs []ort.InputOutputInfo) (ort.InputOutputInfo, error) {
	var pick *ort.InputOutputInfo
	for i := range outputs {
		o := &outputs[i]
		if len(o.Dimensions) != 2 {
			continue
		}
		pick = o
		if o.Name == "probabilities" {
			break
		}
	}
	if pick == nil {
		return ort.InputOutputInfo{}, fmt.Errorf("neural: model has no [batch, classes] output")
	}
	if pick.Dimensions[1] <= 0 {
		return ort.InputOutputInfo{}, fmt.Errorf("neural: class dimension of %q must be static, got %v", pick.Name, pick.Dimensions)
	}
	return *pick, nil
}

// Features returns the trained input width.
func (n *Neural) Features() int { return int(n.nFeatures) }

// PredictProba runs one row through the network.
func (n *Neural) PredictProba(x []float32) ([]float32, error) {
	if err := checkWidth("ANN", x, int(n.nFeatures)); err != nil {
		return nil, err
	}
	in, err := ort.NewTensor(ort.NewShape(1, n.nFeatures), x)
	if err != nil {
		return nil, fmt.Errorf("neural: failed to create input tensor: %w", err)
	}
	defer in.Destroy()

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(1, n.nClasses))
	if err != nil {
		return nil, fmt.Errorf("neural: failed to create output tensor: %w", err)
	}
	defer out.Destroy()

	if err := n.session.Run([]ort.Value{in}, []ort.Value{out}); err != nil {
		return nil, fmt.Errorf("neural: inference failed: %w", err)
	}
	probs := make([]float32, n.nClasses)
	copy(probs, out.GetData())
	return probs, nil
}

// Close releases the ONNX session.
func (n *Neural) Close() error {
	return n.session.Destroy()
}
