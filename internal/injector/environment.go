package injector

import (
	"fmt"
	"math/rand"
	"sync/atomic"

	"github.com/samcharles93/cadenza/internal/models"
)

// DeviceCPU is the only supported device.
const DeviceCPU = "cpu"

// Environment is the read-only context shared by every injector in a
// pipeline: the named sub-models, the device, the seeded random source and
// the current training step.
type Environment struct {
	Generators     map[string]models.Module
	Discriminators map[string]models.Module
	Device         string
	Rand           *rand.Rand

	step atomic.Int64
}

// NewEnvironment returns an empty CPU environment seeded with seed.
func NewEnvironment(seed int64) *Environment {
	return &Environment{
		Generators:     make(map[string]models.Module),
		Discriminators: make(map[string]models.Module),
		Device:         DeviceCPU,
		Rand:           rand.New(rand.NewSource(seed)),
	}
}

// Step returns the current global training step.
func (e *Environment) Step() int64 {
	return e.step.Load()
}

// SetStep moves the step counter. It panics if step goes backwards.
func (e *Environment) SetStep(step int64) {
	if cur := e.step.Load(); step < cur {
		panic(fmt.Sprintf("injector: step moved backwards from %d to %d", cur, step))
	}
	e.step.Store(step)
}

// Modules returns every registered model keyed by role/name, for example
// "generator/quant".
func (e *Environment) Modules() map[string]models.Module {
	out := make(map[string]models.Module, len(e.Generators)+len(e.Discriminators))
	for name, m := range e.Generators {
		out["generator/"+name] = m
	}
	for name, m := range e.Discriminators {
		out["discriminator/"+name] = m
	}
	return out
}
