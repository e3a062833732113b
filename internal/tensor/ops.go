package tensor

import (
	"fmt"
	"math"
)

// Add returns a + b. Shapes must match exactly; there is no broadcasting.
func Add(a, b *Tensor) (*Tensor, error) {
	return AddScaled(a, b, 1)
}

// Sub returns a - b.
func Sub(a, b *Tensor) (*Tensor, error) {
	return AddScaled(a, b, -1)
}

// AddScaled returns a + s*b.
func AddScaled(a, b *Tensor, s float32) (*Tensor, error) {
	if !SameShape(a, b) {
		return nil, fmt.Errorf("%w: %v and %v", ErrShapeMismatch, a.shape, b.shape)
	}
	out := New(a.shape...)
	for i := range out.data {
		out.data[i] = a.data[i] + s*b.data[i]
	}
	return out, nil
}

// Scale returns s*a.
func Scale(a *Tensor, s float32) *Tensor {
	return Map(a, func(v float32) float32 { return v * s })
}

// Map applies fn element-wise into a new tensor.
func Map(a *Tensor, fn func(float32) float32) *Tensor {
	out := New(a.shape...)
	for i, v := range a.data {
		out.data[i] = fn(v)
	}
	return out
}

// Mean returns the mean of all elements, accumulated in float64.
func Mean(a *Tensor) float64 {
	var sum float64
	for _, v := range a.data {
		sum += float64(v)
	}
	return sum / float64(len(a.data))
}

// Std returns the population standard deviation of all elements.
func Std(a *Tensor) float64 {
	m := Mean(a)
	var sum float64
	for _, v := range a.data {
		d := float64(v) - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(a.data)))
}

// Sigmoid computes the logistic sigmoid activation.
func Sigmoid(x float32) float32 {
	return float32(1.0 / (1.0 + math.Exp(float64(-x))))
}

// Silu computes the Sigmoid Linear Unit (SiLU) activation.
func Silu(x float32) float32 {
	return x * Sigmoid(x)
}

// SiluTensor applies Silu element-wise.
func SiluTensor(a *Tensor) *Tensor {
	return Map(a, Silu)
}

// Softmax applies softmax over the last dimension into a new tensor.
func Softmax(a *Tensor) *Tensor {
	out := a.Clone()
	last := a.shape[len(a.shape)-1]
	for off := 0; off < len(out.data); off += last {
		softmaxInPlace(out.data[off : off+last])
	}
	return out
}

func softmaxInPlace(x []float32) {
	maxv := x[0]
	for i := 1; i < len(x); i++ {
		if x[i] > maxv {
			maxv = x[i]
		}
	}
	var sum float64
	for i := range x {
		v := math.Exp(float64(x[i] - maxv))
		x[i] = float32(v)
		sum += v
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / sum)
	for i := range x {
		x[i] *= inv
	}
}

// Linear computes x @ w^T + b over the last dimension of x.
// w has shape [out, in] and b, when non-nil, has shape [out].
func Linear(x, w, b *Tensor) (*Tensor, error) {
	if w.Dims() != 2 {
		return nil, fmt.Errorf("%w: linear weight must be 2D, got %v", ErrShapeMismatch, w.shape)
	}
	outF, inF := w.shape[0], w.shape[1]
	if x.Dim(-1) != inF {
		return nil, fmt.Errorf("%w: input last dim %d, weight expects %d", ErrShapeMismatch, x.Dim(-1), inF)
	}
	if b != nil && (b.Dims() != 1 || b.shape[0] != outF) {
		return nil, fmt.Errorf("%w: bias %v for %d outputs", ErrShapeMismatch, b.shape, outF)
	}
	shape := x.Shape()
	shape[len(shape)-1] = outF
	out := New(shape...)
	rows := len(x.data) / inF
	for r := 0; r < rows; r++ {
		src := x.data[r*inF : (r+1)*inF]
		dst := out.data[r*outF : (r+1)*outF]
		for o := 0; o < outF; o++ {
			sum := dot(src, w.data[o*inF:(o+1)*inF])
			if b != nil {
				sum += b.data[o]
			}
			dst[o] = sum
		}
	}
	return out, nil
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// TimestepEmbedding builds sinusoidal embeddings for a 1-D tensor of
// timesteps. The result has shape [N, dim]: cosines in the first half,
// sines in the second, and a zero column when dim is odd.
func TimestepEmbedding(ts *Tensor, dim int, maxPeriod float64) (*Tensor, error) {
	if ts.Dims() != 1 {
		return nil, fmt.Errorf("%w: timesteps must be 1D, got %v", ErrShapeMismatch, ts.shape)
	}
	if dim < 2 {
		return nil, fmt.Errorf("%w: embedding dim %d", ErrInvalidShape, dim)
	}
	n := ts.shape[0]
	half := dim / 2
	out := New(n, dim)
	for i := 0; i < n; i++ {
		t := float64(ts.data[i])
		row := out.data[i*dim : (i+1)*dim]
		for j := 0; j < half; j++ {
			freq := math.Exp(-math.Log(maxPeriod) * float64(j) / float64(half))
			row[j] = float32(math.Cos(t * freq))
			row[half+j] = float32(math.Sin(t * freq))
		}
	}
	return out, nil
}
