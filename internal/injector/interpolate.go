package injector

import (
	"github.com/samcharles93/cadenza/internal/params"
	"github.com/samcharles93/cadenza/internal/state"
	"github.com/samcharles93/cadenza/internal/tensor"
)

// interpolate resamples the spatial dimensions of its input.
type interpolate struct {
	base
	scale float64
	mode  tensor.Mode
}

func newInterpolate(cfg Config, env *Environment) (Injector, error) {
	b, err := newBase(cfg, env)
	if err != nil {
		return nil, err
	}
	if err := requireSingleIO(cfg); err != nil {
		return nil, err
	}
	scale, err := params.RequireFloat(cfg.Params, "scale_factor")
	if err != nil {
		return nil, &ConfigurationError{Type: cfg.Type, Field: "scale_factor", Err: err}
	}
	if scale <= 0 {
		return nil, configErr(cfg.Type, "scale_factor", "must be positive, got %v", scale)
	}
	name, ok, err := params.String(cfg.Params, "mode")
	if err != nil {
		return nil, &ConfigurationError{Type: cfg.Type, Field: "mode", Err: err}
	}
	if !ok || name == "" {
		return nil, configErr(cfg.Type, "mode", "missing required field")
	}
	mode, err := tensor.ParseMode(name)
	if err != nil {
		return nil, &ConfigurationError{Type: cfg.Type, Field: "mode", Err: err}
	}
	return &interpolate{base: b, scale: scale, mode: mode}, nil
}

func (p *interpolate) Apply(st state.State) (state.State, error) {
	key := p.in.First()
	x, err := st.Tensor(key)
	if err != nil {
		return nil, err
	}
	out, err := tensor.Interpolate(x, p.scale, p.mode)
	if err != nil {
		return nil, &ShapeMismatchError{Type: p.typ, Key: key, Err: err}
	}
	return p.single(state.TensorValue(out)), nil
}
