package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := ParseLevel(tc.in); got != tc.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestInitWriter_FiltersByLevel(t *testing.T) {
	t.Setenv("GO_ENV", "")
	var buf bytes.Buffer
	l := InitWriter("warn", &buf)

	l.Info("hidden")
	l.Warn("shown", "target", "orange")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "target=orange") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestFor_TagsComponent(t *testing.T) {
	t.Setenv("GO_ENV", "")
	var buf bytes.Buffer
	InitWriter("info", &buf)

	For("camera").Info("opened")

	if !strings.Contains(buf.String(), "component=camera") {
		t.Errorf("component attribute missing: %q", buf.String())
	}
}

func TestL_InitializesOnFirstUse(t *testing.T) {
	mu.Lock()
	prev := logger
	logger = nil
	mu.Unlock()
	defer func() {
		mu.Lock()
		logger = prev
		mu.Unlock()
	}()

	if L() == nil {
		t.Fatal("L() returned nil before Init")
	}
}

func TestError_WritesToGlobalLogger(t *testing.T) {
	t.Setenv("GO_ENV", "")
	var buf bytes.Buffer
	InitWriter("error", &buf)

	Error("camera failed", "error", "device unplugged")

	if !strings.Contains(buf.String(), `level=ERROR msg="camera failed" error="device unplugged"`) {
		t.Errorf("error line missing: %q", buf.String())
	}
}
