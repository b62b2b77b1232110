package embedder

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/crimson-sun/airs/internal/engine/ortenv"
)

// onnxSession wraps a DynamicAdvancedSession for a BERT-style encoder whose
// first output is last_hidden_state [batch, seq, hidden].
type onnxSession struct {
	session    *ort.DynamicAdvancedSession
	inputNames []string
	outputName string
	hiddenDim  int64
	withTypes  bool // model takes token_type_ids
}

func newONNXSession(modelPath, libPath string, threads int) (*onnxSession, error) {
	if err := ortenv.Init(libPath); err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}

	inputNames, withTypes, err := encoderInputs(inputs)
	if err != nil {
		return nil, err
	}

	if len(outputs) == 0 {
		return nil, fmt.Errorf("onnx: model has no outputs")
	}
	dims := outputs[0].Dimensions
	if len(dims) != 3 {
		return nil, fmt.Errorf("onnx: expected 3D output tensor, got %v", dims)
	}
	if dims[2] <= 0 {
		return nil, fmt.Errorf("onnx: hidden dimension must be static, got %v", dims)
	}

	opts, err := ortenv.SessionOptions(threads)
	if err != nil {
		return nil, err
	}
	defer opts.Destroy()

	session, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, []string{outputs[0].Name}, opts)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}

	return &onnxSession{
		session:    session,
		inputNames: inputNames,
		outputName: outputs[0].Name,
		hiddenDim:  dims[2],
		withTypes:  withTypes,
	}, nil
}

// encoderInputs checks for input_ids and attention_mask. token_type_ids is
// optional; some MiniLM exports drop it.
func encoderInputs(inputs []ort.InputOutputInfo) ([]string, bool, error) {
	have := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		have[in.Name] = true
	}
	for _, name := range []string{"input_ids", "attention_mask"} {
		if !have[name] {
			return nil, false, fmt.Errorf("onnx: model missing required input %q", name)
		}
	}
	names := []string{"input_ids", "attention_mask"}
	if have["token_type_ids"] {
		return append(names, "token_type_ids"), true, nil
	}
	return names, false, nil
}

// infer runs one sequence through the encoder and returns the flat
// [seqLen * hiddenDim] hidden states.
func (s *onnxSession) infer(enc encoding) ([]float32, error) {
	seqLen := int64(len(enc.ids))
	shape := ort.NewShape(1, seqLen)

	var inputs []ort.Value
	defer func() {
		for _, v := range inputs {
			v.Destroy()
		}
	}()

	feeds := [][]int64{enc.ids, enc.mask}
	if s.withTypes {
		feeds = append(feeds, enc.typeIDs)
	}
	for i, data := range feeds {
		t, err := ort.NewTensor(shape, data)
		if err != nil {
			return nil, fmt.Errorf("onnx: failed to create %s tensor: %w", s.inputNames[i], err)
		}
		inputs = append(inputs, t)
	}

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(1, seqLen, s.hiddenDim))
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create output tensor: %w", err)
	}
	defer out.Destroy()

	if err := s.session.Run(inputs, []ort.Value{out}); err != nil {
		return nil, fmt.Errorf("onnx: inference failed: %w", err)
	}

	src := out.GetData()
	hidden := make([]float32, len(src))
	copy(hidden, src)
	return hidden, nil
}

func (s *onnxSession) close() error {
	return s.session.Destroy()
}
