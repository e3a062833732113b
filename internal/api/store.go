package api

import (
	"maps"
	"slices"
	"sync"

	"github.com/samcharles93/cadenza/internal/trainer"
)

// run serializes access to one trainer; steps of a run never overlap.
type run struct {
	mu      sync.Mutex
	trainer *trainer.Trainer
}

// RunStore holds the live runs of a server.
type RunStore struct {
	mu   sync.Mutex
	runs map[string]*run
}

func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[string]*run)}
}

func (s *RunStore) Add(t *trainer.Trainer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[t.RunID()] = &run{trainer: t}
}

func (s *RunStore) get(id string) (*run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	return r, ok
}

func (s *RunStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return false
	}
	delete(s.runs, id)
	return true
}

// IDs returns the live run ids, sorted.
func (s *RunStore) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.runs))
}
