package models

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/samcharles93/cadenza/internal/params"
	"github.com/samcharles93/cadenza/internal/safetensors"
	"github.com/samcharles93/cadenza/internal/state"
	"github.com/samcharles93/cadenza/internal/tensor"
)

// Linear projects the last dimension of its single argument.
type Linear struct {
	Weight *tensor.Tensor // [out, in]
	Bias   *tensor.Tensor // [out], may be nil
}

// NewLinear initialises weights uniformly in ±1/sqrt(in) from rng.
func NewLinear(in, out int, bias bool, rng *rand.Rand) *Linear {
	bound := float32(1 / math.Sqrt(float64(in)))
	l := &Linear{Weight: tensor.New(out, in)}
	tensor.FillUniform(l.Weight, rng, bound)
	if bias {
		l.Bias = tensor.New(out)
		tensor.FillUniform(l.Bias, rng, bound)
	}
	return l
}

func (l *Linear) Forward(args ...state.Value) (state.Value, error) {
	ts, err := tensorArgs(args, 1)
	if err != nil {
		return state.Value{}, err
	}
	out, err := l.apply(ts[0])
	if err != nil {
		return state.Value{}, err
	}
	return state.TensorValue(out), nil
}

func (l *Linear) apply(x *tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.Linear(x, l.Weight, l.Bias)
}

func buildLinear(spec Spec) (Module, error) {
	if spec.Checkpoint != "" {
		prefix, _, err := params.String(spec.Params, "prefix")
		if err != nil {
			return nil, err
		}
		if prefix == "" {
			prefix = spec.Name
		}
		return loadLinear(spec.Checkpoint, prefix)
	}

	in, err := params.RequireInt(spec.Params, "in_features")
	if err != nil {
		return nil, err
	}
	out, err := params.RequireInt(spec.Params, "out_features")
	if err != nil {
		return nil, err
	}
	if in <= 0 || out <= 0 {
		return nil, fmt.Errorf("features must be positive, got in=%d out=%d", in, out)
	}
	bias := true
	if v, ok := spec.Params["bias"].(bool); ok {
		bias = v
	}
	return NewLinear(int(in), int(out), bias, rand.New(rand.NewSource(spec.Seed))), nil
}

// loadLinear reads <prefix>.weight and, if present, <prefix>.bias.
func loadLinear(path, prefix string) (*Linear, error) {
	f, err := safetensors.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	w, err := f.ReadTensorF32(prefix + ".weight")
	if err != nil {
		return nil, err
	}
	if w.Dims() != 2 {
		return nil, fmt.Errorf("%s.weight: expected 2D tensor, got %v", prefix, w.Shape())
	}
	l := &Linear{Weight: w}
	if _, ok := f.Tensor(prefix + ".bias"); ok {
		b, err := f.ReadTensorF32(prefix + ".bias")
		if err != nil {
			return nil, err
		}
		if b.Dims() != 1 || b.Dim(0) != w.Dim(0) {
			return nil, fmt.Errorf("%s.bias: shape %v does not match weight %v", prefix, b.Shape(), w.Shape())
		}
		l.Bias = b
	}
	return l, nil
}
