// Package models provides the sub-networks that generator and discriminator
// injectors invoke, and a registry that builds them from configuration.
package models

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/samcharles93/cadenza/internal/state"
	"github.com/samcharles93/cadenza/internal/tensor"
)

var (
	ErrUnknownArch = errors.New("models: unknown arch")
	ErrArgs        = errors.New("models: bad arguments")
)

// Module is a callable sub-network. Arguments are positional and the result
// may be a single value or a sequence.
type Module interface {
	Forward(args ...state.Value) (state.Value, error)
}

// StepUpdater is implemented by modules whose behaviour depends on the
// global training step. The executor calls UpdateForStep before each step.
type StepUpdater interface {
	UpdateForStep(step int64)
}

// Spec describes one model instance in a pipeline file.
type Spec struct {
	Name       string         `yaml:"-" json:"-"`
	Arch       string         `yaml:"arch" json:"arch"`
	Seed       int64          `yaml:"seed" json:"seed"`
	Checkpoint string         `yaml:"checkpoint" json:"checkpoint"`
	Params     map[string]any `yaml:"params" json:"params"`
}

// Builder constructs a module from its spec.
type Builder func(Spec) (Module, error)

// Registry maps arch names to builders.
type Registry struct {
	builders map[string]Builder
}

func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// DefaultRegistry returns a registry holding every built-in arch.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("linear", buildLinear)
	r.Register("timestep_embedding", buildTimestepEmbed)
	r.Register("mean_discriminator", buildMeanDiscriminator)
	r.Register("channel_split", buildChannelSplit)
	r.Register("gumbel_annealer", buildGumbelAnnealer)
	return r
}

// Register adds a builder. Registering the same arch twice panics.
func (r *Registry) Register(arch string, b Builder) {
	if _, exists := r.builders[arch]; exists {
		panic(fmt.Sprintf("model arch '%s' already registered", arch))
	}
	r.builders[arch] = b
}

// Build constructs the module described by spec.
func (r *Registry) Build(spec Spec) (Module, error) {
	b, ok := r.builders[spec.Arch]
	if !ok {
		return nil, fmt.Errorf("%w: %q (model %s)", ErrUnknownArch, spec.Arch, spec.Name)
	}
	m, err := b(spec)
	if err != nil {
		return nil, fmt.Errorf("build model %s (%s): %w", spec.Name, spec.Arch, err)
	}
	return m, nil
}

// Arches returns the registered arch names in sorted order.
func (r *Registry) Arches() []string {
	return slices.Sorted(maps.Keys(r.builders))
}

func tensorArgs(args []state.Value, n int) ([]*tensor.Tensor, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%w: expected %d arguments, got %d", ErrArgs, n, len(args))
	}
	out := make([]*tensor.Tensor, n)
	for i, a := range args {
		t, err := a.AsTensor()
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d: %w", ErrArgs, i, err)
		}
		out[i] = t
	}
	return out, nil
}
