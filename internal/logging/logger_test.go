package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rpgdecrypt/internal/config"
	"rpgdecrypt/internal/logging"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	var console bytes.Buffer
	logger, err := logging.NewFromConfig(&cfg, &console)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("file message")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "rpgdecrypt.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "file message") {
		t.Fatalf("expected message in log file, got %q", content)
	}
	if !strings.Contains(console.String(), "file message") {
		t.Fatalf("expected message on console, got %q", console.String())
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	if strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", buf.String())
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	if !strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", buf.String())
	}
}

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	logging.NewComponentLogger(logger, "pipeline").Warn("asset failed",
		logging.String(logging.FieldPath, "img/a b.rpgmvp"),
		logging.Error(errors.New("boom")),
	)

	line := buf.String()
	for _, want := range []string{"WARN pipeline: asset failed", `path="img/a b.rpgmvp"`, "error=boom"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be rendered as a prefix, got %q", line)
	}
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.String("k", "v"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "json message" || record["k"] != "v" || record["level"] != "info" {
		t.Fatalf("unexpected record: %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "invalid", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected info level filtering, got %q", buf.String())
	}
}

func TestWithContextAddsRunID(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	ctx := logging.WithRunID(context.Background(), "run-xyz")
	logging.WithContext(ctx, logger).Info("contextual log")

	if !strings.Contains(buf.String(), "run_id=run-xyz") {
		t.Fatalf("expected run_id field, got %q", buf.String())
	}
	if id, ok := logging.RunIDFromContext(ctx); !ok || id != "run-xyz" {
		t.Fatalf("RunIDFromContext = %q, %v", id, ok)
	}
	if _, ok := logging.RunIDFromContext(context.Background()); ok {
		t.Fatal("expected no run id on a bare context")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logging.WarnWithContext(logger, "partial run", "run_partial",
		logging.String(logging.FieldImpact, "manifest left unchanged"))

	out := buf.String()
	for _, want := range []string{"event_type=run_partial", "error_hint=", `impact="manifest left unchanged"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}
