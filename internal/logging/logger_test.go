package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"screendoc/internal/config"
	"screendoc/internal/logging"
	"screendoc/internal/services"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := logging.New(logging.Options{Format: "xml"})
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = dir
	cfg.Logging.Format = "json"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("daemon started", logging.String("version", "test"))

	data, err := os.ReadFile(filepath.Join(dir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "daemon started") {
		t.Fatalf("log file missing message: %s", data)
	}
	if !strings.Contains(string(data), `"level":"info"`) {
		t.Fatalf("expected normalized level key: %s", data)
	}
}

func TestWithContextAttachesFields(t *testing.T) {
	ctx := services.WithJobID(context.Background(), 42)
	ctx = services.WithStage(ctx, "scanning")

	fields := logging.ContextFields(ctx)
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	joined := strings.Join(keys, ",")
	if !strings.Contains(joined, logging.FieldJobID) || !strings.Contains(joined, logging.FieldStage) {
		t.Fatalf("missing context fields: %v", keys)
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "old.log")
	fresh := filepath.Join(dir, logging.LogFileName)
	for _, p := range []string{stale, fresh} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-10 * 24 * time.Hour)
	if err := os.Chtimes(stale, past, past); err != nil {
		t.Fatal(err)
	}

	removed, err := logging.CleanupOldLogs(dir, 7)
	if err != nil {
		t.Fatalf("CleanupOldLogs: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatal("active log file should survive cleanup")
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("stale log file should be removed")
	}
}
