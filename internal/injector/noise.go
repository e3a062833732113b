package injector

import (
	"fmt"

	"github.com/samcharles93/cadenza/internal/params"
	"github.com/samcharles93/cadenza/internal/state"
	"github.com/samcharles93/cadenza/internal/tensor"
)

// addNoise emits in + scale*N(0,1). The scale is either a fixed number or
// the name of a state key holding one.
type addNoise struct {
	base
	scale    float64
	scaleKey string
}

func newAddNoise(cfg Config, env *Environment) (Injector, error) {
	b, err := newBase(cfg, env)
	if err != nil {
		return nil, err
	}
	if err := requireSingleIO(cfg); err != nil {
		return nil, err
	}
	n := &addNoise{base: b}
	switch raw := cfg.Params["scale"].(type) {
	case nil:
		return nil, configErr(cfg.Type, "scale", "missing required field")
	case string:
		if raw == "" {
			return nil, configErr(cfg.Type, "scale", "empty state key")
		}
		n.scaleKey = raw
	default:
		f, err := params.ToFloat(raw)
		if err != nil {
			return nil, &ConfigurationError{Type: cfg.Type, Field: "scale", Err: err}
		}
		n.scale = f
	}
	if env.Rand == nil {
		return nil, configErr(cfg.Type, "", "environment has no random source")
	}
	return n, nil
}

func (n *addNoise) resolveScale(st state.State) (float64, error) {
	if n.scaleKey == "" {
		return n.scale, nil
	}
	v, err := st.Get(n.scaleKey)
	if err != nil {
		return 0, err
	}
	if f, err := v.AsScalar(); err == nil {
		return f, nil
	}
	t, err := v.AsTensor()
	if err != nil {
		return 0, &state.KindError{Key: n.scaleKey, Want: state.KindScalar, Got: v.Kind()}
	}
	if t == nil {
		return 0, &ShapeMismatchError{Type: n.typ, Key: n.scaleKey, Msg: "scale tensor is nil"}
	}
	if t.Len() != 1 {
		return 0, &ShapeMismatchError{
			Type: n.typ,
			Key:  n.scaleKey,
			Msg:  fmt.Sprintf("scale tensor must hold one element, got %v", t.Shape()),
		}
	}
	return float64(t.Data()[0]), nil
}

func (n *addNoise) Apply(st state.State) (state.State, error) {
	x, err := st.Tensor(n.in.First())
	if err != nil {
		return nil, err
	}
	scale, err := n.resolveScale(st)
	if err != nil {
		return nil, err
	}
	noise := tensor.RandnLike(x, n.env.Rand)
	out, err := tensor.AddScaled(x, noise, float32(scale))
	if err != nil {
		return nil, err
	}
	return n.single(state.TensorValue(out)), nil
}
