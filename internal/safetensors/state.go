package safetensors

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samcharles93/cadenza/internal/state"
	"github.com/samcharles93/cadenza/internal/tensor"
)

// scalarPrefix marks metadata entries that carry scalar state values.
const scalarPrefix = "scalar."

// LoadState reads every tensor in path into a state, plus any scalars
// recorded in the metadata by SaveState.
func LoadState(path string) (state.State, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	st := state.New()
	for _, name := range f.Names() {
		t, err := f.ReadTensorF32(name)
		if err != nil {
			return nil, err
		}
		st[name] = state.TensorValue(t)
	}
	for k, v := range f.Metadata {
		key, ok := strings.CutPrefix(k, scalarPrefix)
		if !ok {
			continue
		}
		fv, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("metadata %s: %w", k, err)
		}
		st[key] = state.ScalarValue(fv)
	}
	return st, nil
}

// SaveState writes the tensors and scalars of st to path. Sequence values
// are flattened to "<key>.<index>".
func SaveState(path string, st state.State) error {
	tensors := map[string]*tensor.Tensor{}
	metadata := map[string]string{}
	for _, key := range st.Keys() {
		if err := flatten(key, st[key], tensors, metadata); err != nil {
			return err
		}
	}
	return WriteFile(path, tensors, metadata)
}

func flatten(key string, v state.Value, tensors map[string]*tensor.Tensor, metadata map[string]string) error {
	switch v.Kind() {
	case state.KindTensor:
		t, _ := v.AsTensor()
		tensors[key] = t
	case state.KindScalar:
		f, _ := v.AsScalar()
		metadata[scalarPrefix+key] = strconv.FormatFloat(f, 'g', -1, 64)
	case state.KindSequence:
		items, _ := v.AsSequence()
		for i, item := range items {
			if err := flatten(fmt.Sprintf("%s.%d", key, i), item, tensors, metadata); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("state key %s: cannot save %s value", key, v.Kind())
	}
	return nil
}
