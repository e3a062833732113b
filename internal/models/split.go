package models

import (
	"github.com/samcharles93/cadenza/internal/params"
	"github.com/samcharles93/cadenza/internal/state"
	"github.com/samcharles93/cadenza/internal/tensor"
)

// ChannelSplit returns its input split into Chunks pieces along dim 1, as a
// sequence.
type ChannelSplit struct {
	Chunks int
}

func (m ChannelSplit) Forward(args ...state.Value) (state.Value, error) {
	ts, err := tensorArgs(args, 1)
	if err != nil {
		return state.Value{}, err
	}
	parts, err := tensor.SplitChannels(ts[0], m.Chunks)
	if err != nil {
		return state.Value{}, err
	}
	vs := make([]state.Value, len(parts))
	for i, p := range parts {
		vs[i] = state.TensorValue(p)
	}
	return state.SequenceValue(vs...), nil
}

func buildChannelSplit(spec Spec) (Module, error) {
	chunks, err := params.IntOr(spec.Params, "chunks", 2)
	if err != nil {
		return nil, err
	}
	return ChannelSplit{Chunks: int(chunks)}, nil
}
