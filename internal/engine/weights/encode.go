package weights

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Encode serialises tensors as F32 safetensors. Used by tooling and tests to
// produce small weight files.
func Encode(f File) ([]byte, error) {
	header := make(map[string]tensorMeta, len(f))
	var body []byte
	for _, name := range f.Names() {
		t := f[name]
		n := 1
		for _, d := range t.Shape {
			n *= d
		}
		if n != len(t.Data) {
			return nil, fmt.Errorf("weights: tensor %q: %d values for shape %v", name, len(t.Data), t.Shape)
		}
		start := len(body)
		for _, v := range t.Data {
			body = binary.LittleEndian.AppendUint32(body, math.Float32bits(float32(v)))
		}
		header[name] = tensorMeta{Dtype: "F32", Shape: t.Shape, DataOffsets: [2]int{start, len(body)}}
	}

	hdr, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("weights: marshal header: %w", err)
	}
	out := binary.LittleEndian.AppendUint64(nil, uint64(len(hdr)))
	out = append(out, hdr...)
	return append(out, body...), nil
}

// Save writes f to path in safetensors format.
func Save(path string, f File) error {
	data, err := Encode(f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	return nil
}
