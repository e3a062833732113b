package injector

import (
	"fmt"

	"github.com/samcharles93/cadenza/internal/models"
	"github.com/samcharles93/cadenza/internal/params"
	"github.com/samcharles93/cadenza/internal/state"
)

// modelInjector runs a named generator or discriminator on the configured
// inputs.
type modelInjector struct {
	base
	name  string
	model models.Module
}

func newGenerator(cfg Config, env *Environment) (Injector, error) {
	return newModelInjector(cfg, env, "generator", func(e *Environment) map[string]models.Module { return e.Generators })
}

func newDiscriminator(cfg Config, env *Environment) (Injector, error) {
	return newModelInjector(cfg, env, "discriminator", func(e *Environment) map[string]models.Module { return e.Discriminators })
}

func newModelInjector(cfg Config, env *Environment, field string, pick func(*Environment) map[string]models.Module) (Injector, error) {
	b, err := newBase(cfg, env)
	if err != nil {
		return nil, err
	}
	name, ok, err := params.String(cfg.Params, field)
	if err != nil {
		return nil, &ConfigurationError{Type: cfg.Type, Field: field, Err: err}
	}
	if !ok || name == "" {
		return nil, configErr(cfg.Type, field, "missing required field")
	}
	m, ok := pick(env)[name]
	if !ok || m == nil {
		return nil, configErr(cfg.Type, field, "unknown %s %q", field, name)
	}
	return &modelInjector{base: b, name: name, model: m}, nil
}

func (m *modelInjector) Apply(st state.State) (state.State, error) {
	args := make([]state.Value, 0, m.in.Len())
	for _, key := range m.in.Names() {
		v, err := st.Get(key)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	result, err := m.model.Forward(args...)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", m.typ, m.name, err)
	}

	if m.out.Single() {
		return m.single(result), nil
	}

	seq, err := result.AsSequence()
	if err != nil {
		return nil, &ShapeMismatchError{
			Type: m.typ,
			Key:  m.out.String(),
			Msg:  fmt.Sprintf("%d out keys need a sequence result", m.out.Len()),
			Err:  err,
		}
	}
	if len(seq) != m.out.Len() {
		return nil, &ShapeMismatchError{
			Type: m.typ,
			Key:  m.out.String(),
			Msg:  fmt.Sprintf("model %s returned %d values for %d out keys", m.name, len(seq), m.out.Len()),
		}
	}
	out := make(state.State, len(seq))
	for i, key := range m.out.Names() {
		out[key] = seq[i]
	}
	return out, nil
}
