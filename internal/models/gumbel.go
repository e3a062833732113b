package models

import (
	"fmt"
	"math"

	"github.com/samcharles93/cadenza/internal/params"
	"github.com/samcharles93/cadenza/internal/state"
	"github.com/samcharles93/cadenza/internal/tensor"
)

// GumbelAnnealer tracks the gumbel-softmax temperature of a code quantizer.
// The temperature holds at MaxTemp while the quantizer is frozen, then decays
// geometrically after FreezeUntil, never dropping below MinTemp.
//
// Forward divides its input by the current temperature and returns
// [scaled, temperature].
type GumbelAnnealer struct {
	MaxTemp     float64
	MinTemp     float64
	Decay       float64
	FreezeUntil int64

	temp float64
	step int64
}

func NewGumbelAnnealer(maxTemp, minTemp, decay float64, freezeUntil int64) *GumbelAnnealer {
	return &GumbelAnnealer{
		MaxTemp:     maxTemp,
		MinTemp:     minTemp,
		Decay:       decay,
		FreezeUntil: freezeUntil,
		temp:        maxTemp,
	}
}

// UpdateForStep recomputes the temperature for step.
func (g *GumbelAnnealer) UpdateForStep(step int64) {
	g.step = step
	qstep := max(0, step-g.FreezeUntil)
	g.temp = math.Max(g.MaxTemp*math.Pow(g.Decay, float64(qstep)), g.MinTemp)
}

// Temperature returns the temperature set by the last UpdateForStep.
func (g *GumbelAnnealer) Temperature() float64 {
	return g.temp
}

// Frozen reports whether the quantizer is still inside its freeze window.
func (g *GumbelAnnealer) Frozen() bool {
	return g.step <= g.FreezeUntil
}

func (g *GumbelAnnealer) Forward(args ...state.Value) (state.Value, error) {
	ts, err := tensorArgs(args, 1)
	if err != nil {
		return state.Value{}, err
	}
	scaled := tensor.Scale(ts[0], float32(1/g.temp))
	return state.SequenceValue(state.TensorValue(scaled), state.ScalarValue(g.temp)), nil
}

func buildGumbelAnnealer(spec Spec) (Module, error) {
	maxT, err := params.FloatOr(spec.Params, "max_temperature", 4)
	if err != nil {
		return nil, err
	}
	minT, err := params.FloatOr(spec.Params, "min_temperature", 0.5)
	if err != nil {
		return nil, err
	}
	decay, err := params.FloatOr(spec.Params, "decay", 0.999995)
	if err != nil {
		return nil, err
	}
	freeze, err := params.IntOr(spec.Params, "freeze_until", 20000)
	if err != nil {
		return nil, err
	}
	if minT <= 0 || maxT < minT {
		return nil, fmt.Errorf("temperatures must satisfy 0 < min <= max, got min=%v max=%v", minT, maxT)
	}
	if decay <= 0 || decay > 1 {
		return nil, fmt.Errorf("decay must be in (0, 1], got %v", decay)
	}
	return NewGumbelAnnealer(maxT, minT, decay, freeze), nil
}
