package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	run := NewRunID()
	other := NewRunID()
	for _, rec := range []struct {
		run  string
		step int64
		key  string
		v    float64
	}{
		{run, 2, "w", 0.2},
		{run, 0, "w", 0.0},
		{run, 1, "w", 0.1},
		{run, 1, "w", 0.15},
		{run, 1, "other", 9},
		{other, 1, "w", 7},
	} {
		if err := s.Record(ctx, rec.run, rec.step, rec.key, rec.v); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := s.Series(ctx, run, "w")
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	want := []Point{{0, 0}, {1, 0.15}, {2, 0.2}}
	if len(got) != len(want) {
		t.Fatalf("series got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("series got %v want %v", got, want)
		}
	}

	empty, err := s.Series(ctx, run, "missing")
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty series, got %v", empty)
	}
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()
	exerciseStore(t, NewSQLiteStore(filepath.Join(t.TempDir(), "history.db")))
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	t.Parallel()
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	if err := s.Record(context.Background(), NewRunID(), 0, "w", 1); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if err := NewSQLiteStore("").Init(context.Background()); err == nil {
		t.Fatalf("expected empty path to fail")
	}
}

func TestNewStore(t *testing.T) {
	t.Parallel()
	if _, err := NewStore("redis", ""); err == nil {
		t.Fatalf("expected unknown backend to fail")
	}
	s, err := NewStore("", "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Fatalf("default backend got %T", s)
	}
}

func TestRunID(t *testing.T) {
	t.Parallel()
	id := NewRunID()
	if !ValidRunID(id) {
		t.Fatalf("NewRunID produced invalid id %q", id)
	}
	if ValidRunID("not-a-uuid") {
		t.Fatalf("accepted invalid id")
	}
}
