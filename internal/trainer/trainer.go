package trainer

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/samcharles93/cadenza/internal/history"
	"github.com/samcharles93/cadenza/internal/injector"
	"github.com/samcharles93/cadenza/internal/logger"
	"github.com/samcharles93/cadenza/internal/metrics"
	"github.com/samcharles93/cadenza/internal/models"
	"github.com/samcharles93/cadenza/internal/state"
)

// StepError reports the injector that aborted a step.
type StepError struct {
	Step  int64
	Index int
	Type  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: injector %d (%s): %v", e.Step, e.Index, e.Type, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Feed supplies the seed state for a step.
type Feed func(step int64) (state.State, error)

// Trainer executes a pipeline one step at a time. It is not safe for
// concurrent use.
type Trainer struct {
	pipeline *Pipeline
	runID    string
	history  history.Store
	log      logger.Logger
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithHistory records every scalar in the final step state to store.
func WithHistory(store history.Store) Option {
	return func(t *Trainer) { t.history = store }
}

// WithRunID sets the run identifier used for history and logs.
func WithRunID(id string) Option {
	return func(t *Trainer) { t.runID = id }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Trainer) { t.log = l }
}

func New(p *Pipeline, opts ...Option) *Trainer {
	t := &Trainer{pipeline: p, log: logger.Discard()}
	for _, opt := range opts {
		opt(t)
	}
	if t.runID == "" {
		t.runID = history.NewRunID()
	}
	t.log = t.log.With("run", t.runID, "pipeline", p.Name)
	return t
}

// RunID returns the run identifier.
func (t *Trainer) RunID() string { return t.runID }

// Pipeline returns the pipeline being executed.
func (t *Trainer) Pipeline() *Pipeline { return t.pipeline }

// CurrentStep returns the step the next call to Step will execute.
func (t *Trainer) CurrentStep() int64 { return t.pipeline.Env.Step() }

// Step runs every injector once, in order, starting from seed. It returns
// the merged state, or the first injector error wrapped in a *StepError. A
// failed step yields no state. The environment step is not advanced; Run
// does that.
func (t *Trainer) Step(ctx context.Context, seed state.State) (state.State, error) {
	env := t.pipeline.Env
	step := env.Step()
	start := time.Now()
	log := t.log.With("step", step)

	t.notifyStep(step)

	st := seed
	if st == nil {
		st = state.New()
	}
	for _, stage := range t.pipeline.Stages {
		applyStart := time.Now()
		partial, err := stage.Injector.Apply(st)
		if err != nil {
			metrics.RecordInjectorError(stage.Type, errorKind(err))
			log.Debug("injector failed", "index", stage.Index, "type", stage.Type, "err", err)
			return nil, &StepError{Step: step, Index: stage.Index, Type: stage.Type, Err: err}
		}
		elapsed := time.Since(applyStart)
		metrics.RecordApply(stage.Type, elapsed)
		log.Debug("injector applied",
			"index", stage.Index,
			"type", stage.Type,
			"keys", partial.Keys(),
			"duration", elapsed,
		)
		st = state.Merge(st, partial)
	}

	if err := t.recordScalars(ctx, step, st); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.RecordStep(elapsed)
	log.Info("step complete", "keys", len(st), "duration", elapsed)
	return st, nil
}

// Run executes steps consecutive steps, advancing the environment step after
// each success. ctx is checked between steps. It returns the state of the
// last successful step.
func (t *Trainer) Run(ctx context.Context, steps int, feed Feed) (state.State, error) {
	env := t.pipeline.Env
	var last state.State
	for range steps {
		if err := ctx.Err(); err != nil {
			return last, err
		}
		step := env.Step()
		seed := state.New()
		if feed != nil {
			var err error
			if seed, err = feed(step); err != nil {
				return last, fmt.Errorf("step %d: feed: %w", step, err)
			}
		}
		st, err := t.Step(ctx, seed)
		if err != nil {
			return last, err
		}
		last = st
		env.SetStep(step + 1)
	}
	return last, nil
}

// notifyStep tells step-dependent models the step about to run. Models are
// visited in sorted order so their updates are reproducible.
func (t *Trainer) notifyStep(step int64) {
	mods := t.pipeline.Env.Modules()
	for _, name := range slices.Sorted(maps.Keys(mods)) {
		if u, ok := mods[name].(models.StepUpdater); ok {
			u.UpdateForStep(step)
		}
	}
}

func (t *Trainer) recordScalars(ctx context.Context, step int64, st state.State) error {
	for _, key := range st.Keys() {
		v, err := st[key].AsScalar()
		if err != nil {
			continue
		}
		metrics.RecordScalar(key, v)
		if t.history == nil {
			continue
		}
		if err := t.history.Record(ctx, t.runID, step, key, v); err != nil {
			return fmt.Errorf("step %d: record %s: %w", step, key, err)
		}
	}
	return nil
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, injector.ErrShapeMismatch):
		return "shape_mismatch"
	case errors.Is(err, state.ErrMissingKey):
		return "missing_key"
	case errors.Is(err, state.ErrKind):
		return "kind"
	case errors.Is(err, models.ErrArgs):
		return "model_args"
	default:
		return "other"
	}
}
