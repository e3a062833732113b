// Package history records the scalar values a run produces at each step so
// they can be charted or queried after the fact.
package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var ErrNotInitialized = errors.New("history: store is not initialized")

// Point is one recorded scalar.
type Point struct {
	Step  int64   `json:"step"`
	Value float64 `json:"value"`
}

// Store persists scalar series keyed by run and state key. Recording the
// same (run, step, key) twice keeps the latest value.
type Store interface {
	Init(ctx context.Context) error
	Record(ctx context.Context, runID string, step int64, key string, value float64) error
	Series(ctx context.Context, runID, key string) ([]Point, error)
	Close() error
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// ValidRunID reports whether id parses as a run identifier.
func ValidRunID(id string) bool {
	return uuid.Validate(id) == nil
}

// NewStore returns the store for backend kind. An empty kind is memory.
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(path), nil
	default:
		return nil, fmt.Errorf("unsupported history backend: %s", kind)
	}
}

type seriesKey struct {
	run string
	key string
}

// MemoryStore keeps series in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	series map[seriesKey]map[int64]float64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{series: make(map[seriesKey]map[int64]float64)}
}

func (s *MemoryStore) Init(context.Context) error { return nil }

func (s *MemoryStore) Record(_ context.Context, runID string, step int64, key string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := seriesKey{run: runID, key: key}
	points, ok := s.series[k]
	if !ok {
		points = make(map[int64]float64)
		s.series[k] = points
	}
	points[step] = value
	return nil
}

func (s *MemoryStore) Series(_ context.Context, runID, key string) ([]Point, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points := s.series[seriesKey{run: runID, key: key}]
	out := make([]Point, 0, len(points))
	for step, v := range points {
		out = append(out, Point{Step: step, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Step < out[j].Step })
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
