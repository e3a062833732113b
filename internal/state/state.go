// Package state holds the per-step mapping that injectors read from and
// write to.
package state

import (
	"errors"
	"maps"
	"slices"

	"github.com/samcharles93/cadenza/internal/tensor"
)

// State maps names to values for one training step.
type State map[string]Value

// New returns an empty state.
func New() State {
	return make(State)
}

// Get returns the value at key or a *MissingKeyError.
func (s State) Get(key string) (Value, error) {
	v, ok := s[key]
	if !ok {
		return Value{}, &MissingKeyError{Key: key}
	}
	return v, nil
}

// Tensor returns the tensor stored at key.
func (s State) Tensor(key string) (*tensor.Tensor, error) {
	v, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	t, err := v.AsTensor()
	if err != nil {
		return nil, withKey(err, key)
	}
	return t, nil
}

// Scalar returns the scalar stored at key.
func (s State) Scalar(key string) (float64, error) {
	v, err := s.Get(key)
	if err != nil {
		return 0, err
	}
	f, err := v.AsScalar()
	if err != nil {
		return 0, withKey(err, key)
	}
	return f, nil
}

// Keys returns the keys in sorted order.
func (s State) Keys() []string {
	return slices.Sorted(maps.Keys(s))
}

// Clone returns a shallow copy; values are shared.
func (s State) Clone() State {
	out := make(State, len(s))
	maps.Copy(out, s)
	return out
}

// Merge returns a new state holding existing overlaid with partial. Keys in
// partial win. Neither argument is modified.
func Merge(existing, partial State) State {
	out := make(State, len(existing)+len(partial))
	maps.Copy(out, existing)
	maps.Copy(out, partial)
	return out
}

func withKey(err error, key string) error {
	var ke *KindError
	if errors.As(err, &ke) {
		return &KindError{Key: key, Want: ke.Want, Got: ke.Got}
	}
	return err
}
