package schedule

import (
	"errors"
	"math"
	"testing"
)

func TestFromSpecTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		spec map[string]any
		step int64
		want float64
	}{
		{"fixed", map[string]any{"type": "fixed", "weight": 0.3}, 100, 0.3},
		{"linear before", map[string]any{"type": "linear", "initial_weight": 0, "final_weight": 1, "step_start": 10, "step_end": 20}, 5, 0},
		{"linear mid", map[string]any{"type": "linear", "initial_weight": 0, "final_weight": 1, "step_start": 10, "step_end": 20}, 15, 0.5},
		{"linear after", map[string]any{"type": "linear", "initial_weight": 0, "final_weight": 1, "step_start": 10, "step_end": 20}, 50, 1},
		{"decay mid", map[string]any{"type": "linear_decay", "initial_weight": 1.0, "lower_bound": 0.2, "steps": 8}, 4, 0.6},
		{"decay floor", map[string]any{"type": "linear_decay", "initial_weight": 1.0, "lower_bound": 0.2, "steps": 8}, 100, 0.2},
		{"multistep", map[string]any{"type": "step", "initial_weight": 1, "gamma": 0.5, "steps": []any{20, 10}}, 15, 0.5},
		{"multistep both", map[string]any{"type": "step", "initial_weight": 1, "gamma": 0.5, "steps": []any{10, 20}}, 20, 0.25},
		{"sinusoidal start", map[string]any{"type": "sinusoidal", "upper_weight": 1, "lower_weight": 0, "period": 100}, 0, 1},
		{"sinusoidal half", map[string]any{"type": "sinusoidal", "upper_weight": 1, "lower_weight": 0, "period": 100}, 50, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s, err := FromSpec(tc.spec)
			if err != nil {
				t.Fatalf("FromSpec: %v", err)
			}
			if got := s.WeightForStep(tc.step); math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("WeightForStep(%d): got %v want %v", tc.step, got, tc.want)
			}
		})
	}
}

func TestFromSpecErrors(t *testing.T) {
	t.Parallel()
	bad := []map[string]any{
		nil,
		{},
		{"type": "cosine"},
		{"type": "fixed"},
		{"type": "linear", "initial_weight": 0, "final_weight": 1, "step_start": 5, "step_end": 5},
		{"type": "sinusoidal", "upper_weight": 1, "lower_weight": 0, "period": 0},
		{"type": "linear_decay", "initial_weight": 1, "steps": "many"},
	}
	for i, spec := range bad {
		if _, err := FromSpec(spec); !errors.Is(err, ErrInvalidSchedule) {
			t.Fatalf("case %d: expected ErrInvalidSchedule, got %v", i, err)
		}
	}
}

func TestLinearIsMonotonicAndPure(t *testing.T) {
	t.Parallel()
	s := Linear{Initial: 0, Final: 0.1, Start: 0, End: 100}
	prev := s.WeightForStep(0)
	for step := int64(1); step <= 150; step++ {
		w := s.WeightForStep(step)
		if w < prev {
			t.Fatalf("weight decreased at step %d: %v < %v", step, w, prev)
		}
		if again := s.WeightForStep(step); again != w {
			t.Fatalf("weight not pure at step %d", step)
		}
		if w > 0.1 {
			t.Fatalf("weight %v exceeds final", w)
		}
		prev = w
	}
}

func TestSinusoidalBounded(t *testing.T) {
	t.Parallel()
	s := Sinusoidal{Upper: 2, Lower: -1, Period: 37, Start: 5}
	for step := int64(0); step < 500; step++ {
		w := s.WeightForStep(step)
		if w > 2+1e-12 || w < -1-1e-12 {
			t.Fatalf("step %d weight %v out of bounds", step, w)
		}
	}
}
