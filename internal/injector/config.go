package injector

import (
	"fmt"
	"maps"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Config is one injector entry from a pipeline file. Type, in and out are
// lifted into fields; every other entry stays in Params for the variant to
// interpret.
type Config struct {
	Type   string
	In     Keys
	Out    Keys
	Params map[string]any
}

// ConfigFromMap builds a Config from a decoded mapping.
func ConfigFromMap(m map[string]any) (Config, error) {
	cfg := Config{Params: make(map[string]any, len(m))}
	for k, v := range m {
		switch k {
		case "type":
			s, ok := v.(string)
			if !ok {
				return Config{}, configErr("", "type", "expected string, got %T", v)
			}
			cfg.Type = s
		case "in", "out":
		default:
			cfg.Params[k] = v
		}
	}
	var err error
	if cfg.In, err = KeysFrom(m["in"]); err != nil {
		return Config{}, &ConfigurationError{Type: cfg.Type, Field: "in", Err: err}
	}
	if cfg.Out, err = KeysFrom(m["out"]); err != nil {
		return Config{}, &ConfigurationError{Type: cfg.Type, Field: "out", Err: err}
	}
	return cfg, nil
}

// Map renders the config back to its decoded form.
func (c Config) Map() map[string]any {
	m := make(map[string]any, len(c.Params)+3)
	maps.Copy(m, c.Params)
	m["type"] = c.Type
	if !c.In.IsZero() {
		m["in"] = keysValue(c.In)
	}
	if !c.Out.IsZero() {
		m["out"] = keysValue(c.Out)
	}
	return m
}

func keysValue(k Keys) any {
	if k.Single() {
		return k.First()
	}
	return k.Names()
}

func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	var m map[string]any
	if err := node.Decode(&m); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	cfg, err := ConfigFromMap(m)
	if err != nil {
		return err
	}
	*c = cfg
	return nil
}

func (c *Config) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	cfg, err := ConfigFromMap(m)
	if err != nil {
		return err
	}
	*c = cfg
	return nil
}

func (c Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Map())
}
