package injector

import (
	"fmt"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Keys is an ordered list of state keys. Config files may give a single
// string or a list; both decode to Keys, and Single records which form was
// used because a single out key stores a composite result whole while a
// list unpacks it.
type Keys struct {
	names  []string
	single bool
}

// One returns a single-key Keys.
func One(name string) Keys {
	return Keys{names: []string{name}, single: true}
}

// List returns a list-form Keys.
func List(names ...string) Keys {
	return Keys{names: append([]string(nil), names...)}
}

// Names returns a copy of the keys in order.
func (k Keys) Names() []string {
	return append([]string(nil), k.names...)
}

// Len returns the number of keys.
func (k Keys) Len() int { return len(k.names) }

// IsZero reports whether no key was configured.
func (k Keys) IsZero() bool { return len(k.names) == 0 }

// Single reports whether the keys were given as one string.
func (k Keys) Single() bool { return k.single }

// First returns the first key, or "" when empty.
func (k Keys) First() string {
	if len(k.names) == 0 {
		return ""
	}
	return k.names[0]
}

func (k Keys) String() string {
	if k.single {
		return k.First()
	}
	return fmt.Sprint(k.names)
}

// KeysFrom converts a decoded config value (string or list of strings).
// A nil value gives zero Keys.
func KeysFrom(raw any) (Keys, error) {
	switch v := raw.(type) {
	case nil:
		return Keys{}, nil
	case string:
		if v == "" {
			return Keys{}, fmt.Errorf("empty key")
		}
		return One(v), nil
	case []string:
		return listFrom(v)
	case []any:
		names := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return Keys{}, fmt.Errorf("key %d: expected string, got %T", i, item)
			}
			names[i] = s
		}
		return listFrom(names)
	default:
		return Keys{}, fmt.Errorf("expected string or list of strings, got %T", raw)
	}
}

func listFrom(names []string) (Keys, error) {
	if len(names) == 0 {
		return Keys{}, fmt.Errorf("empty key list")
	}
	for i, n := range names {
		if n == "" {
			return Keys{}, fmt.Errorf("key %d is empty", i)
		}
	}
	return List(names...), nil
}

func (k *Keys) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := KeysFrom(raw)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k *Keys) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := KeysFrom(raw)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k Keys) MarshalJSON() ([]byte, error) {
	if k.single {
		return json.Marshal(k.First())
	}
	return json.Marshal(k.names)
}

func (k Keys) MarshalYAML() (any, error) {
	if k.single {
		return k.First(), nil
	}
	return k.names, nil
}
