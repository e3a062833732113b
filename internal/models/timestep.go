package models

import (
	"math/rand"

	"github.com/samcharles93/cadenza/internal/params"
	"github.com/samcharles93/cadenza/internal/state"
	"github.com/samcharles93/cadenza/internal/tensor"
)

// TimestepEmbed turns a [N] tensor of diffusion timesteps into [N, Dim]
// conditioning vectors: sinusoidal features followed by linear, SiLU,
// linear.
type TimestepEmbed struct {
	Dim       int
	MaxPeriod float64
	In, Out   *Linear
}

func NewTimestepEmbed(dim int, maxPeriod float64, rng *rand.Rand) *TimestepEmbed {
	return &TimestepEmbed{
		Dim:       dim,
		MaxPeriod: maxPeriod,
		In:        NewLinear(dim, dim, true, rng),
		Out:       NewLinear(dim, dim, true, rng),
	}
}

func (m *TimestepEmbed) Forward(args ...state.Value) (state.Value, error) {
	ts, err := tensorArgs(args, 1)
	if err != nil {
		return state.Value{}, err
	}
	h, err := tensor.TimestepEmbedding(ts[0], m.Dim, m.MaxPeriod)
	if err != nil {
		return state.Value{}, err
	}
	if h, err = m.In.apply(h); err != nil {
		return state.Value{}, err
	}
	h = tensor.SiluTensor(h)
	if h, err = m.Out.apply(h); err != nil {
		return state.Value{}, err
	}
	return state.TensorValue(h), nil
}

func buildTimestepEmbed(spec Spec) (Module, error) {
	dim, err := params.RequireInt(spec.Params, "dim")
	if err != nil {
		return nil, err
	}
	maxPeriod, err := params.FloatOr(spec.Params, "max_period", 10000)
	if err != nil {
		return nil, err
	}
	return NewTimestepEmbed(int(dim), maxPeriod, rand.New(rand.NewSource(spec.Seed))), nil
}
