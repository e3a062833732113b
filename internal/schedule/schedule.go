// Package schedule maps a training step to a weight. Schedules are pure
// functions of the step and their own static configuration.
package schedule

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/samcharles93/cadenza/internal/params"
)

var ErrInvalidSchedule = errors.New("schedule: invalid spec")

// Scheduler yields the weight for a step.
type Scheduler interface {
	WeightForStep(step int64) float64
}

// Fixed always returns Weight.
type Fixed struct {
	Weight float64
}

func (f Fixed) WeightForStep(int64) float64 { return f.Weight }

// Linear holds Initial until Start, ramps to Final at End, then holds Final.
type Linear struct {
	Initial, Final float64
	Start, End     int64
}

func (l Linear) WeightForStep(step int64) float64 {
	switch {
	case step <= l.Start:
		return l.Initial
	case step >= l.End:
		return l.Final
	}
	frac := float64(step-l.Start) / float64(l.End-l.Start)
	return l.Initial + frac*(l.Final-l.Initial)
}

// LinearDecay falls from Initial by a fixed amount per step after Start
// until it reaches LowerBound.
type LinearDecay struct {
	Initial    float64
	LowerBound float64
	Steps      int64
	Start      int64
}

func (d LinearDecay) WeightForStep(step int64) float64 {
	step -= d.Start
	if step <= 0 {
		return d.Initial
	}
	perStep := (d.Initial - d.LowerBound) / float64(d.Steps)
	return math.Max(d.LowerBound, d.Initial-float64(step)*perStep)
}

// MultiStep multiplies Initial by Gamma once for every boundary in Steps
// that has been reached.
type MultiStep struct {
	Initial float64
	Steps   []int64
	Gamma   float64
}

func (m MultiStep) WeightForStep(step int64) float64 {
	w := m.Initial
	for _, b := range m.Steps {
		if step < b {
			break
		}
		w *= m.Gamma
	}
	return w
}

// Sinusoidal holds Upper until Start, then oscillates between Upper and
// Lower with the given Period, beginning at Upper.
type Sinusoidal struct {
	Upper, Lower float64
	Period       int64
	Start        int64
}

func (s Sinusoidal) WeightForStep(step int64) float64 {
	if step < s.Start {
		return s.Upper
	}
	phase := 2 * math.Pi * float64(step-s.Start) / float64(s.Period)
	return s.Lower + (s.Upper-s.Lower)*(1+math.Cos(phase))/2
}

// FromSpec builds a Scheduler from a decoded config mapping selected by its
// "type" field.
func FromSpec(spec map[string]any) (Scheduler, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: empty", ErrInvalidSchedule)
	}
	typ, _, err := params.String(spec, "type")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}
	s, err := build(typ, spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSchedule, typ, err)
	}
	return s, nil
}

func build(typ string, spec map[string]any) (Scheduler, error) {
	switch typ {
	case "fixed":
		w, err := params.RequireFloat(spec, "weight")
		if err != nil {
			return nil, err
		}
		return Fixed{Weight: w}, nil

	case "linear":
		var l Linear
		var err error
		if l.Initial, err = params.RequireFloat(spec, "initial_weight"); err != nil {
			return nil, err
		}
		if l.Final, err = params.RequireFloat(spec, "final_weight"); err != nil {
			return nil, err
		}
		if l.Start, err = params.IntOr(spec, "step_start", 0); err != nil {
			return nil, err
		}
		if l.End, err = params.RequireInt(spec, "step_end"); err != nil {
			return nil, err
		}
		if l.End <= l.Start {
			return nil, fmt.Errorf("step_end %d must be after step_start %d", l.End, l.Start)
		}
		return l, nil

	case "linear_decay":
		var d LinearDecay
		var err error
		if d.Initial, err = params.RequireFloat(spec, "initial_weight"); err != nil {
			return nil, err
		}
		if d.LowerBound, err = params.FloatOr(spec, "lower_bound", 0); err != nil {
			return nil, err
		}
		if d.Steps, err = params.RequireInt(spec, "steps"); err != nil {
			return nil, err
		}
		if d.Start, err = params.IntOr(spec, "start_step", 0); err != nil {
			return nil, err
		}
		if d.Steps <= 0 {
			return nil, fmt.Errorf("steps must be positive, got %d", d.Steps)
		}
		return d, nil

	case "step", "multistep":
		var m MultiStep
		var err error
		if m.Initial, err = params.RequireFloat(spec, "initial_weight"); err != nil {
			return nil, err
		}
		if m.Gamma, err = params.RequireFloat(spec, "gamma"); err != nil {
			return nil, err
		}
		steps, ok, err := params.IntSlice(spec, "steps")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("missing required field %q", "steps")
		}
		m.Steps = slices.Sorted(slices.Values(steps))
		return m, nil

	case "sinusoidal":
		var s Sinusoidal
		var err error
		if s.Upper, err = params.RequireFloat(spec, "upper_weight"); err != nil {
			return nil, err
		}
		if s.Lower, err = params.RequireFloat(spec, "lower_weight"); err != nil {
			return nil, err
		}
		if s.Period, err = params.RequireInt(spec, "period"); err != nil {
			return nil, err
		}
		if s.Start, err = params.IntOr(spec, "start_step", 0); err != nil {
			return nil, err
		}
		if s.Period <= 0 {
			return nil, fmt.Errorf("period must be positive, got %d", s.Period)
		}
		return s, nil

	case "":
		return nil, errors.New("missing type")
	default:
		return nil, fmt.Errorf("unknown schedule type %q", typ)
	}
}
