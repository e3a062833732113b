package main

import (
	"os"
	"path/filepath"
	"testing"
)

type fakeFlags map[string]bool

func (f fakeFlags) IsSet(name string) bool { return f[name] }

func TestLoadConfigFrom(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	src := "log_level: debug\nhistory_path: /tmp/h.db\nsteps: 25\nserver_address: 0.0.0.0:9000\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := loadConfigFrom(path)
	if cfg.LogLevel != "debug" || cfg.HistoryPath != "/tmp/h.db" || cfg.ServerAddress != "0.0.0.0:9000" {
		t.Fatalf("config got %+v", cfg)
	}
	if cfg.Steps == nil || *cfg.Steps != 25 {
		t.Fatalf("steps got %v", cfg.Steps)
	}

	if got := loadConfigFrom(filepath.Join(dir, "missing.yaml")); got != (Config{}) {
		t.Fatalf("missing file should give zero config, got %+v", got)
	}
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("steps: [1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := loadConfigFrom(bad); got != (Config{}) {
		t.Fatalf("bad file should give zero config, got %+v", got)
	}
}

func TestApplyRunConfig(t *testing.T) {
	t.Parallel()
	n := int64(40)
	cfg := Config{Steps: &n, HistoryPath: "runs.db"}

	steps, backend, path := int64(1), "memory", ""
	applyRunConfig(fakeFlags{}, cfg, &steps, &backend, &path)
	if steps != 40 || path != "runs.db" || backend != "sqlite" {
		t.Fatalf("unset flags: got steps=%d backend=%s path=%s", steps, backend, path)
	}

	steps, backend, path = 3, "memory", "cli.db"
	applyRunConfig(fakeFlags{"steps": true, "history": true}, cfg, &steps, &backend, &path)
	if steps != 3 || path != "cli.db" || backend != "memory" {
		t.Fatalf("explicit flags overridden: steps=%d backend=%s path=%s", steps, backend, path)
	}
}

func TestApplyServeConfig(t *testing.T) {
	t.Parallel()
	limit := int64(5)
	cfg := Config{ServerAddress: ":9999", MaxSteps: &limit, HistoryBackend: "memory"}

	addr, maxSteps, backend, path := "127.0.0.1:8080", int64(10000), "sqlite", "x.db"
	applyServeConfig(fakeFlags{"history-backend": true}, cfg, &addr, &maxSteps, &backend, &path)
	if addr != ":9999" || maxSteps != 5 {
		t.Fatalf("got addr=%s max=%d", addr, maxSteps)
	}
	if backend != "sqlite" {
		t.Fatalf("explicit --history-backend overridden to %s", backend)
	}
}
