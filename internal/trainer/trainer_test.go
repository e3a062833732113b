package trainer

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/samcharles93/cadenza/internal/config"
	"github.com/samcharles93/cadenza/internal/history"
	"github.com/samcharles93/cadenza/internal/injector"
	"github.com/samcharles93/cadenza/internal/models"
	"github.com/samcharles93/cadenza/internal/state"
	"github.com/samcharles93/cadenza/internal/tensor"
)

const quantPipeline = `
name: quant
seed: 7
models:
  generators:
    quant: {arch: gumbel_annealer, params: {max_temperature: 4, min_temperature: 0.5, decay: 0.5, freeze_until: 1}}
  discriminators:
    disc: {arch: mean_discriminator}
injectors:
  - {type: scheduled_scalar, out: noise_scale, scheduler: {type: linear, initial_weight: 0, final_weight: 1, step_start: 0, step_end: 4}}
  - {type: add_noise, in: img, out: noisy, scale: noise_scale}
  - {type: greyscale, in: noisy, out: grey}
  - {type: generator, generator: quant, in: grey, out: [codes, temperature]}
  - {type: discriminator, discriminator: disc, in: codes, out: score}
`

func buildPipeline(t *testing.T, src string) *Pipeline {
	t.Helper()
	cfg, err := config.Parse([]byte(src), config.FormatYAML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p, err := DefaultBuilder().Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return p
}

func imageFeed(int64) (state.State, error) {
	img := tensor.Full(1, 1, 3, 2, 2)
	return state.State{"img": state.TensorValue(img)}, nil
}

func TestRunRecordsScheduleAndTemperature(t *testing.T) {
	t.Parallel()
	store := history.NewMemoryStore()
	tr := New(buildPipeline(t, quantPipeline), WithHistory(store))

	last, err := tr.Run(context.Background(), 4, imageFeed)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if tr.CurrentStep() != 4 {
		t.Fatalf("step got %d want 4", tr.CurrentStep())
	}

	want := []string{"codes", "grey", "img", "noise_scale", "noisy", "score", "temperature"}
	if got := last.Keys(); !slices.Equal(got, want) {
		t.Fatalf("final keys got %v want %v", got, want)
	}

	ctx := context.Background()
	scales, err := store.Series(ctx, tr.RunID(), "noise_scale")
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	temps, err := store.Series(ctx, tr.RunID(), "temperature")
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	wantScale := []float64{0, 0.25, 0.5, 0.75}
	wantTemp := []float64{4, 4, 2, 1}
	if len(scales) != 4 || len(temps) != 4 {
		t.Fatalf("series lengths got %d/%d want 4", len(scales), len(temps))
	}
	for i := range 4 {
		if scales[i].Step != int64(i) || math.Abs(scales[i].Value-wantScale[i]) > 1e-9 {
			t.Fatalf("noise_scale[%d] got %+v want %v", i, scales[i], wantScale[i])
		}
		if math.Abs(temps[i].Value-wantTemp[i]) > 1e-9 {
			t.Fatalf("temperature[%d] got %v want %v", i, temps[i].Value, wantTemp[i])
		}
	}
}

func TestStepZeroScaleLeavesImage(t *testing.T) {
	t.Parallel()
	tr := New(buildPipeline(t, quantPipeline))
	seed, _ := imageFeed(0)
	st, err := tr.Step(context.Background(), seed)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	grey, err := st.Tensor("grey")
	if err != nil {
		t.Fatalf("grey: %v", err)
	}
	for _, v := range grey.Data() {
		if v != 1 {
			t.Fatalf("grey got %v want all ones", grey.Data())
		}
	}
	if tr.CurrentStep() != 0 {
		t.Fatalf("Step must not advance the counter, got %d", tr.CurrentStep())
	}
	if len(seed) != 1 {
		t.Fatalf("Step mutated the seed state: %v", seed.Keys())
	}
}

func TestRunIsReproducible(t *testing.T) {
	t.Parallel()
	run := func() []float32 {
		tr := New(buildPipeline(t, quantPipeline))
		st, err := tr.Run(context.Background(), 3, imageFeed)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		noisy, _ := st.Tensor("noisy")
		return noisy.Data()
	}
	if a, b := run(), run(); !slices.Equal(a, b) {
		t.Fatalf("same seed gave different results: %v vs %v", a, b)
	}
}

func TestStepErrorAbortsStep(t *testing.T) {
	t.Parallel()
	tr := New(buildPipeline(t, quantPipeline))
	bad := func(int64) (state.State, error) {
		return state.State{"img": state.TensorValue(tensor.New(3, 2, 2))}, nil
	}
	last, err := tr.Run(context.Background(), 2, bad)
	if !errors.Is(err, injector.ErrShapeMismatch) {
		t.Fatalf("expected shape mismatch, got %v", err)
	}
	var se *StepError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StepError, got %T", err)
	}
	if se.Index != 2 || se.Type != "greyscale" || se.Step != 0 {
		t.Fatalf("step error got %+v", se)
	}
	if last != nil {
		t.Fatalf("failed run returned state %v", last.Keys())
	}
	if tr.CurrentStep() != 0 {
		t.Fatalf("failed step advanced the counter to %d", tr.CurrentStep())
	}
}

func TestRunMissingSeedKey(t *testing.T) {
	t.Parallel()
	tr := New(buildPipeline(t, quantPipeline))
	_, err := tr.Run(context.Background(), 1, nil)
	if !errors.Is(err, state.ErrMissingKey) {
		t.Fatalf("expected missing key, got %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()
	tr := New(buildPipeline(t, quantPipeline))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := tr.Run(ctx, 3, imageFeed); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if tr.CurrentStep() != 0 {
		t.Fatalf("cancelled run advanced to %d", tr.CurrentStep())
	}
}

func TestStartStep(t *testing.T) {
	t.Parallel()
	src := `
start_step: 3
injectors:
  - {type: scheduled_scalar, out: w, scheduler: {type: fixed, weight: 2}}
`
	tr := New(buildPipeline(t, src))
	if tr.CurrentStep() != 3 {
		t.Fatalf("start step got %d want 3", tr.CurrentStep())
	}
	st, err := tr.Run(context.Background(), 2, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if w, _ := st.Scalar("w"); w != 2 {
		t.Fatalf("w got %v want 2", w)
	}
	if tr.CurrentStep() != 5 {
		t.Fatalf("step got %d want 5", tr.CurrentStep())
	}
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
		is   []error
	}{
		{
			name: "unknown injector type",
			src:  `injectors: [{type: blur, in: x, out: y}]`,
			is:   []error{injector.ErrConfiguration, injector.ErrUnsupportedType},
		},
		{
			name: "unknown model arch",
			src:  "models: {generators: {g: {arch: transformer}}}\ninjectors: [{type: generator, generator: g, out: y}]",
			is:   []error{injector.ErrConfiguration, models.ErrUnknownArch},
		},
		{
			name: "unknown generator",
			src:  `injectors: [{type: generator, generator: missing, out: y}]`,
			is:   []error{injector.ErrConfiguration},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := config.Parse([]byte(tc.src), config.FormatYAML)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			_, err = DefaultBuilder().Build(cfg)
			for _, target := range tc.is {
				if !errors.Is(err, target) {
					t.Fatalf("expected %v in %v", target, err)
				}
			}
		})
	}
}

func TestPipelineTypes(t *testing.T) {
	t.Parallel()
	p := buildPipeline(t, quantPipeline)
	want := []string{"scheduled_scalar", "add_noise", "greyscale", "generator", "discriminator"}
	if got := p.Types(); !slices.Equal(got, want) {
		t.Fatalf("types got %v want %v", got, want)
	}
}
