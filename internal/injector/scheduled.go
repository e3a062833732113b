package injector

import (
	"github.com/samcharles93/cadenza/internal/params"
	"github.com/samcharles93/cadenza/internal/schedule"
	"github.com/samcharles93/cadenza/internal/state"
)

// scheduledScalar emits the scheduler's weight for the current step. It
// ignores the state.
type scheduledScalar struct {
	base
	sched schedule.Scheduler
}

func newScheduledScalar(cfg Config, env *Environment) (Injector, error) {
	b, err := newBase(cfg, env)
	if err != nil {
		return nil, err
	}
	if cfg.Out.Len() != 1 {
		return nil, configErr(cfg.Type, "out", "expected exactly one key, got %d", cfg.Out.Len())
	}
	spec, ok, err := params.Map(cfg.Params, "scheduler")
	if err != nil {
		return nil, &ConfigurationError{Type: cfg.Type, Field: "scheduler", Err: err}
	}
	if !ok {
		return nil, configErr(cfg.Type, "scheduler", "missing required field")
	}
	sched, err := schedule.FromSpec(spec)
	if err != nil {
		return nil, &ConfigurationError{Type: cfg.Type, Field: "scheduler", Err: err}
	}
	return &scheduledScalar{base: b, sched: sched}, nil
}

func (s *scheduledScalar) Apply(state.State) (state.State, error) {
	return s.single(state.ScalarValue(s.sched.WeightForStep(s.env.Step()))), nil
}
