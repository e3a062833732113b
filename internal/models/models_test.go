package models

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/samcharles93/cadenza/internal/safetensors"
	"github.com/samcharles93/cadenza/internal/state"
	"github.com/samcharles93/cadenza/internal/tensor"
)

func TestRegistryBuildUnknownArch(t *testing.T) {
	t.Parallel()
	_, err := DefaultRegistry().Build(Spec{Name: "g", Arch: "unet"})
	if !errors.Is(err, ErrUnknownArch) {
		t.Fatalf("expected ErrUnknownArch, got %v", err)
	}
}

func TestRegistryDuplicatePanics(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Register("x", buildMeanDiscriminator)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate arch")
		}
	}()
	r.Register("x", buildMeanDiscriminator)
}

func TestArchesSorted(t *testing.T) {
	t.Parallel()
	got := DefaultRegistry().Arches()
	want := []string{"channel_split", "gumbel_annealer", "linear", "mean_discriminator", "timestep_embedding"}
	if len(got) != len(want) {
		t.Fatalf("Arches: got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Arches: got %v want %v", got, want)
		}
	}
}

func TestLinearSeededBuildIsDeterministic(t *testing.T) {
	t.Parallel()
	spec := Spec{Name: "g", Arch: "linear", Seed: 3, Params: map[string]any{"in_features": 4, "out_features": 2}}
	a, err := DefaultRegistry().Build(spec)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, _ := DefaultRegistry().Build(spec)
	x := state.TensorValue(tensor.Full(1, 3, 4))
	ra, err := a.Forward(x)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	rb, _ := b.Forward(x)
	ta, _ := ra.AsTensor()
	tb, _ := rb.AsTensor()
	if s := ta.Shape(); s[0] != 3 || s[1] != 2 {
		t.Fatalf("shape got %v", s)
	}
	for i := range ta.Data() {
		if ta.Data()[i] != tb.Data()[i] {
			t.Fatalf("same seed produced different outputs")
		}
	}
}

func TestLinearFromCheckpoint(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "gen.safetensors")
	w, _ := tensor.FromData([]float32{2, 0, 0, 3}, 2, 2)
	b, _ := tensor.FromData([]float32{1, 1}, 2)
	if err := safetensors.WriteFile(path, map[string]*tensor.Tensor{"proj.weight": w, "proj.bias": b}, nil); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	m, err := DefaultRegistry().Build(Spec{Name: "proj", Arch: "linear", Checkpoint: path})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	x, _ := tensor.FromData([]float32{1, 1}, 1, 2)
	out, err := m.Forward(state.TensorValue(x))
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	got, _ := out.AsTensor()
	if got.Data()[0] != 3 || got.Data()[1] != 4 {
		t.Fatalf("got %v want [3 4]", got.Data())
	}
}

func TestLinearArgumentErrors(t *testing.T) {
	t.Parallel()
	m, err := DefaultRegistry().Build(Spec{Arch: "linear", Params: map[string]any{"in_features": 2, "out_features": 2}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := m.Forward(); !errors.Is(err, ErrArgs) {
		t.Fatalf("expected ErrArgs for no args, got %v", err)
	}
	if _, err := m.Forward(state.ScalarValue(1)); !errors.Is(err, ErrArgs) {
		t.Fatalf("expected ErrArgs for scalar arg, got %v", err)
	}
	if _, err := DefaultRegistry().Build(Spec{Arch: "linear", Params: map[string]any{"in_features": 2}}); err == nil {
		t.Fatalf("expected missing out_features to fail")
	}
}

func TestTimestepEmbedShape(t *testing.T) {
	t.Parallel()
	m, err := DefaultRegistry().Build(Spec{Arch: "timestep_embedding", Seed: 1, Params: map[string]any{"dim": 8}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ts, _ := tensor.FromData([]float32{600, 600}, 2)
	out, err := m.Forward(state.TensorValue(ts))
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	got, _ := out.AsTensor()
	if s := got.Shape(); s[0] != 2 || s[1] != 8 {
		t.Fatalf("shape got %v", s)
	}
	for i := 0; i < 8; i++ {
		if got.At(0, i) != got.At(1, i) {
			t.Fatalf("equal timesteps gave different embeddings at %d", i)
		}
	}
}

func TestMeanDiscriminator(t *testing.T) {
	t.Parallel()
	x, _ := tensor.FromData([]float32{1, 3, 10, 20}, 2, 2)
	out, err := MeanDiscriminator{}.Forward(state.TensorValue(x))
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	got, _ := out.AsTensor()
	if got.Data()[0] != 2 || got.Data()[1] != 15 {
		t.Fatalf("got %v", got.Data())
	}
}

func TestChannelSplitReturnsSequence(t *testing.T) {
	t.Parallel()
	out, err := ChannelSplit{Chunks: 3}.Forward(state.TensorValue(tensor.New(1, 6, 2)))
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	items, err := out.AsSequence()
	if err != nil || len(items) != 3 {
		t.Fatalf("expected 3-element sequence, got %v, %v", out, err)
	}
}

func TestGumbelAnnealerSchedule(t *testing.T) {
	t.Parallel()
	g := NewGumbelAnnealer(4, 0.5, 0.5, 10)

	tests := []struct {
		step   int64
		want   float64
		frozen bool
	}{
		{0, 4, true},
		{10, 4, true},
		{11, 2, false},
		{12, 1, false},
		{13, 0.5, false},
		{100, 0.5, false},
	}
	for _, tc := range tests {
		g.UpdateForStep(tc.step)
		if math.Abs(g.Temperature()-tc.want) > 1e-12 {
			t.Fatalf("step %d: temperature %v want %v", tc.step, g.Temperature(), tc.want)
		}
		if g.Frozen() != tc.frozen {
			t.Fatalf("step %d: frozen %v want %v", tc.step, g.Frozen(), tc.frozen)
		}
	}

	g.UpdateForStep(11)
	out, err := g.Forward(state.TensorValue(tensor.Full(4, 2)))
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	items, err := out.AsSequence()
	if err != nil || len(items) != 2 {
		t.Fatalf("expected pair, got %v, %v", out, err)
	}
	scaled, _ := items[0].AsTensor()
	if scaled.Data()[0] != 2 {
		t.Fatalf("scaled got %v want 2", scaled.Data()[0])
	}
	if temp, _ := items[1].AsScalar(); temp != 2 {
		t.Fatalf("temperature got %v want 2", temp)
	}
}

func TestGumbelAnnealerImplementsStepUpdater(t *testing.T) {
	t.Parallel()
	m, err := DefaultRegistry().Build(Spec{Arch: "gumbel_annealer"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := m.(StepUpdater); !ok {
		t.Fatalf("gumbel annealer should implement StepUpdater")
	}
	if _, err := DefaultRegistry().Build(Spec{Arch: "gumbel_annealer", Params: map[string]any{"decay": 2}}); err == nil {
		t.Fatalf("expected decay > 1 to be rejected")
	}
}
