// Package weights reads dense tensors from safetensors files.
package weights

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
)

// Tensor is a dense row-major tensor widened to float64.
type Tensor struct {
	Shape []int
	Data  []float64
}

// Rows returns Shape[0], or 1 for a vector.
func (t Tensor) Rows() int {
	if len(t.Shape) < 2 {
		return 1
	}
	return t.Shape[0]
}

// Cols returns the size of the last dimension.
func (t Tensor) Cols() int {
	if len(t.Shape) == 0 {
		return 0
	}
	return t.Shape[len(t.Shape)-1]
}

// Row returns row i of a 2D tensor without copying.
func (t Tensor) Row(i int) []float64 {
	c := t.Cols()
	return t.Data[i*c : (i+1)*c]
}

// File is the set of tensors stored in one safetensors file.
type File map[string]Tensor

// Names returns the tensor names in sorted order.
func (f File) Names() []string {
	names := make([]string, 0, len(f))
	for n := range f {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Get returns the named tensor, checking its rank.
func (f File) Get(name string, rank int) (Tensor, error) {
	t, ok := f[name]
	if !ok {
		return Tensor{}, fmt.Errorf("weights: tensor %q not found (have %v)", name, f.Names())
	}
	if len(t.Shape) != rank {
		return Tensor{}, fmt.Errorf("weights: tensor %q: expected rank %d, got shape %v", name, rank, t.Shape)
	}
	return t, nil
}

type tensorMeta struct {
	Dtype       string `json:"dtype"`
	Shape       []int  `json:"shape"`
	DataOffsets [2]int `json:"data_offsets"`
}

// Load reads every F32/F64 tensor from the safetensors file at path.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("weights: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return f, nil
}

// Parse decodes a safetensors blob: an 8-byte little-endian header length,
// a JSON header, then the raw tensor bytes.
func Parse(data []byte) (File, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("weights: file too small: %d bytes", len(data))
	}
	headerLen := binary.LittleEndian.Uint64(data[:8])
	if uint64(len(data)) < 8+headerLen {
		return nil, fmt.Errorf("weights: header length %d exceeds file size", headerLen)
	}

	var header map[string]json.RawMessage
	if err := json.Unmarshal(data[8:8+headerLen], &header); err != nil {
		return nil, fmt.Errorf("weights: failed to parse header: %w", err)
	}

	body := data[8+headerLen:]
	out := make(File, len(header))
	for name, raw := range header {
		if name == "__metadata__" {
			continue
		}
		var meta tensorMeta
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("weights: tensor %q: bad metadata: %w", name, err)
		}
		t, err := decodeTensor(meta, body)
		if err != nil {
			return nil, fmt.Errorf("weights: tensor %q: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

func decodeTensor(meta tensorMeta, body []byte) (Tensor, error) {
	var width int
	switch meta.Dtype {
	case "F32":
		width = 4
	case "F64":
		width = 8
	default:
		return Tensor{}, fmt.Errorf("unsupported dtype %s", meta.Dtype)
	}

	n := 1
	for _, d := range meta.Shape {
		if d < 0 {
			return Tensor{}, fmt.Errorf("negative dimension in shape %v", meta.Shape)
		}
		n *= d
	}

	start, end := meta.DataOffsets[0], meta.DataOffsets[1]
	if start < 0 || end < start || end > len(body) {
		return Tensor{}, fmt.Errorf("data range [%d:%d] exceeds body size %d", start, end, len(body))
	}
	if end-start != n*width {
		return Tensor{}, fmt.Errorf("data size %d doesn't match shape %v", end-start, meta.Shape)
	}

	raw := body[start:end]
	vals := make([]float64, n)
	for i := range vals {
		if width == 4 {
			vals[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
		} else {
			vals[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}
	}
	return Tensor{Shape: append([]int(nil), meta.Shape...), Data: vals}, nil
}
