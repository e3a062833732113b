package injector

import (
	"github.com/samcharles93/cadenza/internal/state"
	"github.com/samcharles93/cadenza/internal/tensor"
)

var (
	gradKernelX = tensor.Kernel3{{0, 0, 0}, {-1, 0, 1}, {0, 0, 0}}
	gradKernelY = tensor.Kernel3{{0, -1, 0}, {0, 0, 0}, {0, 1, 0}}
)

const gradEps = 1e-6

// imageGradient emits the per-channel gradient magnitude of a 4-D image.
type imageGradient struct {
	base
}

func newImageGradient(cfg Config, env *Environment) (Injector, error) {
	b, err := newBase(cfg, env)
	if err != nil {
		return nil, err
	}
	if err := requireSingleIO(cfg); err != nil {
		return nil, err
	}
	return &imageGradient{base: b}, nil
}

func (g *imageGradient) Apply(st state.State) (state.State, error) {
	key := g.in.First()
	x, err := st.Tensor(key)
	if err != nil {
		return nil, err
	}
	if x.Dims() != 4 {
		return nil, &ShapeMismatchError{Type: g.typ, Key: key, Msg: "expected [N,C,H,W], got " + x.String()}
	}
	gx, err := tensor.Conv2D3(x, gradKernelX)
	if err != nil {
		return nil, &ShapeMismatchError{Type: g.typ, Key: key, Err: err}
	}
	gy, err := tensor.Conv2D3(x, gradKernelY)
	if err != nil {
		return nil, &ShapeMismatchError{Type: g.typ, Key: key, Err: err}
	}
	mag, err := tensor.Magnitude(gx, gy, gradEps)
	if err != nil {
		return nil, err
	}
	return g.single(state.TensorValue(mag)), nil
}
