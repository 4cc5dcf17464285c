package logx

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeRunID(t *testing.T) {
	valid := "d4f9cbf0-5b95-4efe-a542-24f55108db4f"
	if got := NormalizeRunID(valid); got != valid {
		t.Fatalf("expected valid v4 run id to be preserved, got %q", got)
	}

	got := NormalizeRunID("nightly")
	if got == "nightly" {
		t.Fatalf("expected invalid run id to be replaced")
	}
	if !IsUUIDv4(got) {
		t.Fatalf("expected generated run id to be uuid v4, got %q", got)
	}
}

func TestRunIDContext(t *testing.T) {
	if got := RunIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty run id, got %q", got)
	}
	ctx := WithRunID(context.Background(), "abc")
	if got := RunIDFromContext(ctx); got != "abc" {
		t.Fatalf("expected run id abc, got %q", got)
	}
	if LoggerWithRunID(ctx) == nil {
		t.Fatalf("expected logger")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv(envLogLevel, "debug")
	t.Setenv(envLogFormat, "JSON")
	t.Setenv(envLogOutput, "nowhere")
	t.Setenv(envLogFileMaxSizeMB, "-3")

	cfg := LoadConfig("logging-hosts")
	if cfg.Level != slog.LevelDebug {
		t.Fatalf("unexpected level %v", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Fatalf("unexpected format %q", cfg.Format)
	}
	if cfg.Output != defaultOutput {
		t.Fatalf("expected invalid output to fall back, got %q", cfg.Output)
	}
	if cfg.MaxSizeMB != defaultMaxSizeMB {
		t.Fatalf("expected invalid size to fall back, got %d", cfg.MaxSizeMB)
	}
}

func TestBuildWriterConsoleAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "audit.log")
	var console bytes.Buffer
	cfg := Config{Output: "stderr,file", FilePath: path, MaxSizeMB: 1, Format: "text"}

	writer, closeFn, err := buildWriter(cfg, &console)
	if err != nil {
		t.Fatalf("buildWriter error: %v", err)
	}
	logger := slog.New(buildHandler(cfg, writer))
	logger.Info("hello", "component", "test")
	if err := closeFn(); err != nil {
		t.Fatalf("close error: %v", err)
	}

	if !strings.Contains(console.String(), "msg=hello") {
		t.Fatalf("expected console output, got %q", console.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "component=test") {
		t.Fatalf("expected file output, got %q", string(data))
	}
}
