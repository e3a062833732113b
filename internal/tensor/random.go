package tensor

import "math/rand"

// RandnLike returns a tensor shaped like a filled with standard normal draws
// from rng. The caller owns seeding; the same rng state gives the same
// tensor.
func RandnLike(a *Tensor, rng *rand.Rand) *Tensor {
	out := New(a.shape...)
	for i := range out.data {
		out.data[i] = float32(rng.NormFloat64())
	}
	return out
}

// FillUniform fills t with values drawn uniformly from [-bound, bound).
func FillUniform(t *Tensor, rng *rand.Rand, bound float32) {
	for i := range t.data {
		t.data[i] = (rng.Float32()*2 - 1) * bound
	}
}

// FillRand fills t with reproducible pseudo‑random values in roughly
// (-0.01, 0.01). Multiple calls with the same seed produce identical tensors.
func FillRand(t *Tensor, seed int64) {
	FillUniform(t, rand.New(rand.NewSource(seed)), 0.01)
}
