package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestForFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   string
	}{
		{"json", `"step":3`},
		{"text", "step=3"},
		{"pretty", "step=3"},
		{"", "step=3"},
		{"JSON", `"step":3`},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		log, err := ForFormat(tc.format, &buf, slog.LevelInfo)
		if err != nil {
			t.Fatalf("ForFormat(%q): %v", tc.format, err)
		}
		log.Info("step complete", "step", 3)
		if !strings.Contains(buf.String(), tc.want) {
			t.Fatalf("ForFormat(%q): expected %q in output, got: %s", tc.format, tc.want, buf.String())
		}
	}

	if _, err := ForFormat("xml", &bytes.Buffer{}, slog.LevelInfo); err == nil {
		t.Fatal("expected unknown format to fail")
	}
}

func TestJSONLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelWarn)
	log.Info("should not appear")
	log.Debug("also should not appear")
	if buf.Len() > 0 {
		t.Fatalf("expected no output below warn, got: %s", buf.String())
	}
	log.Warn("should appear")
	if !strings.Contains(buf.String(), `"level":"WARN"`) {
		t.Fatalf("expected warn record, got: %s", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	log := Discard().With("run", "x").WithGroup("g")
	log.Error("dropped")
}

func TestWith(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo).With("injector", "greyscale")
	log.Info("applied")
	if !strings.Contains(buf.String(), `"injector":"greyscale"`) {
		t.Fatalf("expected injector attr, got: %s", buf.String())
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), JSON(&buf, slog.LevelInfo))
	FromContext(ctx).Info("roundtrip")
	if !strings.Contains(buf.String(), "roundtrip") {
		t.Fatalf("expected message via context logger, got: %s", buf.String())
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext without a logger returned nil")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tc := range tests {
		if got := ParseLevel(tc.input); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestPrettyHandlerEnabled(t *testing.T) {
	t.Parallel()
	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected info to be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected error to be enabled at warn level")
	}
}

func TestPrettyFormatsValues(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, nil))
	logger.Info("step complete",
		"weight", 0.1234567891,
		"duration", 1500*time.Microsecond,
		"keys", "a b",
		"empty", "",
		"err", errors.New("boom"),
	)

	output := buf.String()
	for _, want := range []string{
		"step complete",
		"weight=0.123457",
		"duration=1.5ms",
		`keys="a b"`,
		`empty=""`,
		colorRed + "err=boom",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestPrettyHandlerGroups(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)
	if h.WithGroup("") != slog.Handler(h) {
		t.Fatal("WithGroup(\"\") should return the same handler")
	}

	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("run", "r1")}).WithGroup("a").WithGroup("b"))
	logger.Info("nested", "key", "val")
	output := buf.String()
	if !strings.Contains(output, "run=r1") || !strings.Contains(output, "a.b.key=val") {
		t.Fatalf("expected run attr and nested group key, got: %s", output)
	}
}

func TestNeedsQuoting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"simple", false},
		{"no-special-chars", false},
		{"has space", true},
		{"has\ttab", true},
		{`has"quote`, true},
		{"k=v", true},
		{"", true},
	}
	for _, tc := range tests {
		if got := needsQuoting(tc.input); got != tc.want {
			t.Errorf("needsQuoting(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}
