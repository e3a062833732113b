// Package config loads pipeline definitions from YAML or JSON files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/cadenza/internal/injector"
	"github.com/samcharles93/cadenza/internal/models"
)

// Format is a pipeline file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the encoding from a file extension. Anything that is
// not .json is read as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Models groups the named sub-models of a pipeline.
type Models struct {
	Generators     map[string]models.Spec `yaml:"generators" json:"generators"`
	Discriminators map[string]models.Spec `yaml:"discriminators" json:"discriminators"`
}

// Pipeline is a complete training-step definition.
type Pipeline struct {
	Name      string            `yaml:"name" json:"name"`
	Seed      int64             `yaml:"seed" json:"seed"`
	Device    string            `yaml:"device" json:"device"`
	StartStep int64             `yaml:"start_step" json:"start_step"`
	Models    Models            `yaml:"models" json:"models"`
	Injectors []injector.Config `yaml:"injectors" json:"injectors"`
}

// Load reads and validates the pipeline at path.
func Load(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline %s: %w", path, err)
	}
	p, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a pipeline.
func Parse(data []byte, format Format) (*Pipeline, error) {
	var p Pipeline
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &p)
	case FormatYAML:
		err = yaml.Unmarshal(data, &p)
	default:
		return nil, fmt.Errorf("%w: unknown pipeline format %q", injector.ErrConfiguration, format)
	}
	if err != nil {
		if errors.Is(err, injector.ErrConfiguration) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: decode %s: %w", injector.ErrConfiguration, format, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the structural requirements that do not need a registry:
// every injector has a type and out keys, and every model has an arch. It
// also fills in the model spec names.
func (p *Pipeline) Validate() error {
	if p.Device == "" {
		p.Device = injector.DeviceCPU
	}
	if p.Device != injector.DeviceCPU {
		return fmt.Errorf("%w: unsupported device %q", injector.ErrConfiguration, p.Device)
	}
	if p.StartStep < 0 {
		return fmt.Errorf("%w: start_step must not be negative, got %d", injector.ErrConfiguration, p.StartStep)
	}
	if len(p.Injectors) == 0 {
		return fmt.Errorf("%w: pipeline has no injectors", injector.ErrConfiguration)
	}

	for _, group := range []struct {
		kind  string
		specs map[string]models.Spec
	}{
		{"generator", p.Models.Generators},
		{"discriminator", p.Models.Discriminators},
	} {
		for name, spec := range group.specs {
			if spec.Arch == "" {
				return fmt.Errorf("%w: %s %q: missing arch", injector.ErrConfiguration, group.kind, name)
			}
			spec.Name = name
			group.specs[name] = spec
		}
	}

	for i, cfg := range p.Injectors {
		if cfg.Type == "" {
			return fmt.Errorf("%w: injector %d: missing type", injector.ErrConfiguration, i)
		}
		if cfg.Out.IsZero() {
			return fmt.Errorf("%w: injector %d (%s): missing out", injector.ErrConfiguration, i, cfg.Type)
		}
	}
	return nil
}

// ModelNames returns the sorted names of every configured model.
func (p *Pipeline) ModelNames() []string {
	names := make([]string, 0, len(p.Models.Generators)+len(p.Models.Discriminators))
	for name := range p.Models.Generators {
		names = append(names, name)
	}
	for name := range p.Models.Discriminators {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
