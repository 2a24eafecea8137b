package embedding

import "math"

// Normalize reconciles a raw backend vector with the collection's declared
// dimension and scales it to unit L2 norm so cosine distance and dot product
// rank identically. A zero vector is returned unchanged: it cannot be
// normalized and is treated as a defined degenerate case, not an error.
func Normalize(raw []float32, targetDim int) []float32 {
	v := raw
	if len(v) != targetDim {
		if len(v) > targetDim {
			v = downsample(v, targetDim)
		} else {
			v = upsample(v, targetDim)
		}
	}
	return l2Normalize(v)
}

// downsample partitions the vector into targetDim contiguous chunks (the
// first len%targetDim chunks take one extra element) and emits each chunk's
// mean scaled by chunkNorm/sqrt(chunkSize). The norm weighting keeps more of
// the magnitude signal than a plain mean would.
func downsample(v []float32, targetDim int) []float32 {
	chunkSize := len(v) / targetDim
	remainder := len(v) % targetDim

	out := make([]float32, targetDim)
	idx := 0
	for i := 0; i < targetDim; i++ {
		size := chunkSize
		if i < remainder {
			size++
		}
		chunk := v[idx : idx+size]
		idx += size

		var sum, sqSum float64
		for _, x := range chunk {
			sum += float64(x)
			sqSum += float64(x) * float64(x)
		}
		norm := math.Sqrt(sqSum)
		if norm > 0 {
			mean := sum / float64(size)
			out[i] = float32(mean * (norm / math.Sqrt(float64(size))))
		}
	}
	return out
}

// upsample linearly interpolates the vector over the normalized index range
// [0,1] to targetDim samples, then rescales so the L2 norm matches the
// original vector's.
func upsample(v []float32, targetDim int) []float32 {
	if len(v) == 0 {
		return make([]float32, targetDim)
	}
	if len(v) == 1 {
		out := make([]float32, targetDim)
		for i := range out {
			out[i] = v[0]
		}
		return rescaleTo(out, norm32(v))
	}

	out := make([]float32, targetDim)
	step := float64(len(v)-1) / float64(targetDim-1)
	for i := 0; i < targetDim; i++ {
		pos := float64(i) * step
		lo := int(pos)
		if lo >= len(v)-1 {
			out[i] = v[len(v)-1]
			continue
		}
		frac := pos - float64(lo)
		out[i] = float32(float64(v[lo])*(1-frac) + float64(v[lo+1])*frac)
	}
	return rescaleTo(out, norm32(v))
}

// rescaleTo scales v so its L2 norm equals target (no-op for zero vectors).
func rescaleTo(v []float32, target float64) []float32 {
	cur := norm32(v)
	if cur == 0 || target == 0 {
		return v
	}
	factor := target / cur
	for i := range v {
		v[i] = float32(float64(v[i]) * factor)
	}
	return v
}

func l2Normalize(v []float32) []float32 {
	n := norm32(v)
	if n == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i := range v {
		out[i] = float32(float64(v[i]) / n)
	}
	return out
}

func norm32(v []float32) float64 {
	var sq float64
	for _, x := range v {
		sq += float64(x) * float64(x)
	}
	return math.Sqrt(sq)
}
