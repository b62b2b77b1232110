package embedder

import "math"

// meanPool averages the hidden states of real (mask == 1) tokens.
//
// hidden: flat [seqLen * dim] per-token states
// mask:   [seqLen], 1 for real tokens and 0 for padding
func meanPool(hidden []float32, mask []int64, dim int64) []float32 {
	out := make([]float32, dim)
	var count float32
	for s, m := range mask {
		if m != 1 {
			continue
		}
		count++
		tok := hidden[int64(s)*dim : int64(s+1)*dim]
		for d, v := range tok {
			out[d] += v
		}
	}
	if count == 0 {
		return out
	}
	inv := 1 / count
	for d := range out {
		out[d] *= inv
	}
	return out
}

// normalize scales vec to unit L2 length in place. Zero vectors are left alone.
func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
}
