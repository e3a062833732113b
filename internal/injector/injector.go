// Package injector implements the pluggable state transforms that make up a
// training step. Each injector reads named values from the step state and
// returns a partial state holding only the keys it produced.
package injector

import (
	"fmt"
	"maps"
	"slices"

	"github.com/samcharles93/cadenza/internal/state"
)

// Injector transforms a step state. Apply must not modify st and must return
// exactly the configured out keys.
type Injector interface {
	Apply(st state.State) (state.State, error)
}

// Constructor builds an injector from its config.
type Constructor func(cfg Config, env *Environment) (Injector, error)

// base holds the fields every injector shares.
type base struct {
	typ string
	in  Keys
	out Keys
	env *Environment
}

func newBase(cfg Config, env *Environment) (base, error) {
	if cfg.Out.IsZero() {
		return base{}, configErr(cfg.Type, "out", "missing required field")
	}
	if env == nil {
		return base{}, configErr(cfg.Type, "", "nil environment")
	}
	return base{typ: cfg.Type, in: cfg.In, out: cfg.Out, env: env}, nil
}

// single returns a partial state holding v under the only out key.
func (b base) single(v state.Value) state.State {
	return state.State{b.out.First(): v}
}

// requireSingleIO is the precondition of the element-wise transforms: one
// input key and one output key.
func requireSingleIO(cfg Config) error {
	if cfg.In.Len() != 1 {
		return configErr(cfg.Type, "in", "expected exactly one key, got %d", cfg.In.Len())
	}
	if cfg.Out.Len() != 1 {
		return configErr(cfg.Type, "out", "expected exactly one key, got %d", cfg.Out.Len())
	}
	return nil
}

// Registry maps injector type names to constructors.
type Registry struct {
	ctors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// DefaultRegistry returns a registry holding the built-in injector types.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("generator", newGenerator)
	r.Register("discriminator", newDiscriminator)
	r.Register("scheduled_scalar", newScheduledScalar)
	r.Register("img_grad", newImageGradient)
	r.Register("add_noise", newAddNoise)
	r.Register("greyscale", newGreyscale)
	r.Register("interpolate", newInterpolate)
	return r
}

// Register adds a constructor. Registering the same type twice panics.
func (r *Registry) Register(typ string, ctor Constructor) {
	if _, exists := r.ctors[typ]; exists {
		panic(fmt.Sprintf("injector type '%s' already registered", typ))
	}
	r.ctors[typ] = ctor
}

// Create builds the injector described by cfg. Unknown types fail with a
// *ConfigurationError wrapping ErrUnsupportedType.
func (r *Registry) Create(cfg Config, env *Environment) (Injector, error) {
	ctor, ok := r.ctors[cfg.Type]
	if !ok {
		return nil, &ConfigurationError{Type: cfg.Type, Field: "type", Err: ErrUnsupportedType}
	}
	return ctor(cfg, env)
}

// Types returns the registered type names in sorted order.
func (r *Registry) Types() []string {
	return slices.Sorted(maps.Keys(r.ctors))
}
