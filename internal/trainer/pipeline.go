// Package trainer builds pipelines from configuration and executes training
// steps by running their injectors in order.
package trainer

import (
	"fmt"
	"maps"
	"slices"

	"github.com/samcharles93/cadenza/internal/config"
	"github.com/samcharles93/cadenza/internal/injector"
	"github.com/samcharles93/cadenza/internal/models"
)

// Stage is one constructed injector with its position in the pipeline.
type Stage struct {
	Index    int
	Type     string
	Out      []string
	Injector injector.Injector
}

// Pipeline is a fully constructed, ready-to-run step definition.
type Pipeline struct {
	Name   string
	Env    *injector.Environment
	Stages []Stage
}

// Builder constructs pipelines from configuration.
type Builder struct {
	Injectors *injector.Registry
	Models    *models.Registry
}

// DefaultBuilder uses the built-in injector and model registries.
func DefaultBuilder() *Builder {
	return &Builder{
		Injectors: injector.DefaultRegistry(),
		Models:    models.DefaultRegistry(),
	}
}

// Build constructs every model and injector in cfg. All configuration
// errors surface here, before any step runs.
func (b *Builder) Build(cfg *config.Pipeline) (*Pipeline, error) {
	env := injector.NewEnvironment(cfg.Seed)
	if cfg.Device != "" {
		env.Device = cfg.Device
	}
	env.SetStep(cfg.StartStep)

	if err := b.buildModels(env.Generators, "generator", cfg.Models.Generators); err != nil {
		return nil, err
	}
	if err := b.buildModels(env.Discriminators, "discriminator", cfg.Models.Discriminators); err != nil {
		return nil, err
	}

	p := &Pipeline{Name: cfg.Name, Env: env, Stages: make([]Stage, 0, len(cfg.Injectors))}
	for i, ic := range cfg.Injectors {
		inj, err := b.Injectors.Create(ic, env)
		if err != nil {
			return nil, fmt.Errorf("injector %d: %w", i, err)
		}
		p.Stages = append(p.Stages, Stage{Index: i, Type: ic.Type, Out: ic.Out.Names(), Injector: inj})
	}
	return p, nil
}

func (b *Builder) buildModels(dst map[string]models.Module, kind string, specs map[string]models.Spec) error {
	for _, name := range slices.Sorted(maps.Keys(specs)) {
		spec := specs[name]
		spec.Name = name
		m, err := b.Models.Build(spec)
		if err != nil {
			return &injector.ConfigurationError{Type: kind, Field: name, Err: err}
		}
		dst[name] = m
	}
	return nil
}

// Types returns the injector type of every stage in order.
func (p *Pipeline) Types() []string {
	out := make([]string, len(p.Stages))
	for i, s := range p.Stages {
		out[i] = s.Type
	}
	return out
}
