package injector

import (
	"github.com/samcharles93/cadenza/internal/state"
	"github.com/samcharles93/cadenza/internal/tensor"
)

const greyscaleChannels = 3

// greyscale replaces every channel with the per-pixel channel mean, emitting
// a 3-channel image.
type greyscale struct {
	base
}

func newGreyscale(cfg Config, env *Environment) (Injector, error) {
	b, err := newBase(cfg, env)
	if err != nil {
		return nil, err
	}
	if err := requireSingleIO(cfg); err != nil {
		return nil, err
	}
	return &greyscale{base: b}, nil
}

func (g *greyscale) Apply(st state.State) (state.State, error) {
	key := g.in.First()
	x, err := st.Tensor(key)
	if err != nil {
		return nil, err
	}
	if x.Dims() != 4 {
		return nil, &ShapeMismatchError{Type: g.typ, Key: key, Msg: "expected [N,C,H,W], got " + x.String()}
	}
	mean, err := tensor.MeanChannels(x)
	if err != nil {
		return nil, &ShapeMismatchError{Type: g.typ, Key: key, Err: err}
	}
	out, err := tensor.RepeatChannels(mean, greyscaleChannels)
	if err != nil {
		return nil, err
	}
	return g.single(state.TensorValue(out)), nil
}
