package tensor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrShapeMismatch indicates incompatible tensor shapes for an operation.
	ErrShapeMismatch = errors.New("tensor: shape mismatch")

	// ErrInvalidShape indicates a shape with no elements or a bad rank.
	ErrInvalidShape = errors.New("tensor: invalid shape")
)

// Tensor is a dense row‑major array of float32 values.
//
// The shape slice is owned by the tensor and never exposed directly; Shape
// returns a copy. Data does expose the backing slice so kernels can work on
// it without an extra copy. Tensor is not safe for concurrent mutation.
type Tensor struct {
	shape []int
	data  []float32
}

// New allocates a zero initialised tensor. It panics on an empty shape or a
// non‑positive dimension; those are programmer errors.
func New(shape ...int) *Tensor {
	n, err := numElements(shape)
	if err != nil {
		panic(err.Error())
	}
	return &Tensor{
		shape: cloneInts(shape),
		data:  make([]float32, n),
	}
}

// FromData wraps data in a tensor of the given shape. The slice is not
// copied.
func FromData(data []float32, shape ...int) (*Tensor, error) {
	n, err := numElements(shape)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d values for shape %v", ErrShapeMismatch, len(data), shape)
	}
	return &Tensor{shape: cloneInts(shape), data: data}, nil
}

// Full returns a tensor with every element set to v.
func Full(v float32, shape ...int) *Tensor {
	t := New(shape...)
	for i := range t.data {
		t.data[i] = v
	}
	return t
}

// Shape returns a copy of the tensor's shape.
func (t *Tensor) Shape() []int {
	return cloneInts(t.shape)
}

// Dims returns the rank of the tensor.
func (t *Tensor) Dims() int {
	return len(t.shape)
}

// Dim returns the size of dimension i. Negative i counts from the end.
func (t *Tensor) Dim(i int) int {
	if i < 0 {
		i += len(t.shape)
	}
	return t.shape[i]
}

// Len returns the number of elements.
func (t *Tensor) Len() int {
	return len(t.data)
}

// Data returns the backing slice.
func (t *Tensor) Data() []float32 {
	return t.data
}

// At returns the element at the given indices.
func (t *Tensor) At(idx ...int) float32 {
	return t.data[t.offset(idx)]
}

// Set writes v at the given indices.
func (t *Tensor) Set(v float32, idx ...int) {
	t.data[t.offset(idx)] = v
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	data := make([]float32, len(t.data))
	copy(data, t.data)
	return &Tensor{shape: cloneInts(t.shape), data: data}
}

// Reshape returns a view with a new shape over the same data.
func (t *Tensor) Reshape(shape ...int) (*Tensor, error) {
	n, err := numElements(shape)
	if err != nil {
		return nil, err
	}
	if n != len(t.data) {
		return nil, fmt.Errorf("%w: cannot reshape %v to %v", ErrShapeMismatch, t.shape, shape)
	}
	return &Tensor{shape: cloneInts(shape), data: t.data}, nil
}

// String renders the shape only; tensors can be large.
func (t *Tensor) String() string {
	parts := make([]string, len(t.shape))
	for i, d := range t.shape {
		parts[i] = fmt.Sprint(d)
	}
	return "tensor[" + strings.Join(parts, "x") + "]"
}

// SameShape reports whether a and b have identical shapes.
func SameShape(a, b *Tensor) bool {
	if len(a.shape) != len(b.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	return true
}

func (t *Tensor) offset(idx []int) int {
	if len(idx) != len(t.shape) {
		panic(fmt.Sprintf("tensor: expected %d indices, got %d", len(t.shape), len(idx)))
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= t.shape[i] {
			panic(fmt.Sprintf("tensor: index %d out of range for dim %d (size %d)", v, i, t.shape[i]))
		}
		off = off*t.shape[i] + v
	}
	return off
}

func numElements(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, fmt.Errorf("%w: empty shape", ErrInvalidShape)
	}
	n := 1
	for _, d := range shape {
		if d <= 0 {
			return 0, fmt.Errorf("%w: dimension %d", ErrInvalidShape, d)
		}
		if n > (int(^uint(0)>>1))/d {
			return 0, fmt.Errorf("%w: tensor too large", ErrInvalidShape)
		}
		n *= d
	}
	return n, nil
}

func cloneInts(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)
	return out
}
