package embedding

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vecNorm(v []float32) float64 {
	var sq float64
	for _, x := range v {
		sq += float64(x) * float64(x)
	}
	return math.Sqrt(sq)
}

func randomVec(n int, seed int64) []float32 {
	rng := rand.New(rand.NewSource(seed))
	v := make([]float32, n)
	for i := range v {
		v[i] = float32(rng.NormFloat64())
	}
	return v
}

func TestNormalize_SameDimension(t *testing.T) {
	out := Normalize([]float32{3, 4}, 2)
	require.Len(t, out, 2)
	assert.InDelta(t, 0.6, out[0], 1e-6)
	assert.InDelta(t, 0.8, out[1], 1e-6)
}

func TestNormalize_UnitNorm(t *testing.T) {
	for _, target := range []int{64, 128, 512, 1024, 1536} {
		out := Normalize(randomVec(1024, 42), target)
		require.Len(t, out, target)
		assert.InDelta(t, 1.0, vecNorm(out), 1e-5, "target dim %d", target)
	}
}

func TestNormalize_Downsample(t *testing.T) {
	out := Normalize(randomVec(1024, 7), 512)
	require.Len(t, out, 512)
	assert.InDelta(t, 1.0, vecNorm(out), 1e-5)
}

func TestNormalize_DownsampleUneven(t *testing.T) {
	// 10 -> 3: chunks of 4, 3, 3.
	out := Normalize(randomVec(10, 3), 3)
	require.Len(t, out, 3)
	assert.InDelta(t, 1.0, vecNorm(out), 1e-5)
}

func TestNormalize_Upsample(t *testing.T) {
	out := Normalize(randomVec(512, 11), 1024)
	require.Len(t, out, 1024)
	assert.InDelta(t, 1.0, vecNorm(out), 1e-5)
}

func TestNormalize_UpsampleByOne(t *testing.T) {
	out := Normalize(randomVec(1024, 13), 1025)
	require.Len(t, out, 1025)
	assert.InDelta(t, 1.0, vecNorm(out), 1e-5)
}

func TestNormalize_UpsamplePreservesEndpoints(t *testing.T) {
	raw := []float32{1, 2, 3, 4}
	up := upsample(append([]float32(nil), raw...), 7)
	// Interpolation keeps the endpoint ratio after rescaling.
	assert.InDelta(t, float64(up[6])/float64(up[0]), 4.0, 1e-5)
}

func TestNormalize_SingleElementUpsample(t *testing.T) {
	out := Normalize([]float32{2}, 4)
	require.Len(t, out, 4)
	assert.InDelta(t, 1.0, vecNorm(out), 1e-5)
	for _, x := range out {
		assert.InDelta(t, 0.5, x, 1e-6)
	}
}

func TestNormalize_ZeroVectorPassthrough(t *testing.T) {
	out := Normalize(make([]float32, 8), 8)
	require.Len(t, out, 8)
	for _, x := range out {
		assert.Zero(t, x)
	}
}

func TestNormalize_ZeroVectorResized(t *testing.T) {
	out := Normalize(make([]float32, 16), 8)
	require.Len(t, out, 8)
	assert.Zero(t, vecNorm(out))
}

func TestNormalize_Idempotent(t *testing.T) {
	first := Normalize(randomVec(256, 99), 256)
	second := Normalize(first, 256)
	for i := range first {
		assert.InDelta(t, first[i], second[i], 1e-6)
	}
}
