package models

import (
	"fmt"

	"github.com/samcharles93/cadenza/internal/state"
	"github.com/samcharles93/cadenza/internal/tensor"
)

// MeanDiscriminator scores each batch element by the mean of its values,
// returning an [N, 1] tensor.
type MeanDiscriminator struct{}

func (MeanDiscriminator) Forward(args ...state.Value) (state.Value, error) {
	ts, err := tensorArgs(args, 1)
	if err != nil {
		return state.Value{}, err
	}
	x := ts[0]
	if x.Dims() < 2 {
		return state.Value{}, fmt.Errorf("%w: discriminator input needs a batch dim, got %v", ErrArgs, x.Shape())
	}
	n := x.Dim(0)
	per := x.Len() / n
	out := tensor.New(n, 1)
	data := x.Data()
	for b := 0; b < n; b++ {
		var sum float64
		for _, v := range data[b*per : (b+1)*per] {
			sum += float64(v)
		}
		out.Data()[b] = float32(sum / float64(per))
	}
	return state.TensorValue(out), nil
}

func buildMeanDiscriminator(Spec) (Module, error) {
	return MeanDiscriminator{}, nil
}
