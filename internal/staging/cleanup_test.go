package staging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"screendoc/internal/logging"
	"screendoc/internal/testsupport"
)

func makeJobDir(t *testing.T, stagingDir string, name string, age time.Duration) string {
	t.Helper()
	dir := filepath.Join(stagingDir, name)
	if err := os.MkdirAll(filepath.Join(dir, "frames"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "frames", "frame_0001.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	stamp := time.Now().Add(-age)
	if err := os.Chtimes(dir, stamp, stamp); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	return dir
}

func TestCleanStaleRemovesOldInactiveDirs(t *testing.T) {
	stagingDir := t.TempDir()
	old := makeJobDir(t, stagingDir, "job-1", 2*time.Hour)
	fresh := makeJobDir(t, stagingDir, "job-2", time.Minute)
	activeOld := makeJobDir(t, stagingDir, "job-3", 2*time.Hour)

	result := CleanStale(stagingDir, time.Hour, map[int64]struct{}{3: {}}, logging.NewNop())
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected cleanup errors: %v", result.Errors)
	}
	if len(result.Removed) != 1 || result.Removed[0] != old {
		t.Fatalf("expected only %s removed, got %v", old, result.Removed)
	}
	for _, dir := range []string{fresh, activeOld} {
		if _, err := os.Stat(dir); err != nil {
			t.Fatalf("directory %s should survive the sweep: %v", dir, err)
		}
	}
}

func TestCleanStaleEmptyStagingDir(t *testing.T) {
	result := CleanStale("", time.Hour, nil, nil)
	if len(result.Removed) != 0 || len(result.Errors) != 0 {
		t.Fatalf("empty staging dir should be a no-op: %#v", result)
	}

	result = CleanStale(filepath.Join(t.TempDir(), "missing"), time.Hour, nil, nil)
	if len(result.Errors) != 0 {
		t.Fatalf("missing staging dir should not error: %v", result.Errors)
	}
}

func TestListDirectories(t *testing.T) {
	stagingDir := t.TempDir()
	makeJobDir(t, stagingDir, "job-1", time.Minute)
	makeJobDir(t, stagingDir, "job-2", time.Minute)

	dirs, err := ListDirectories(stagingDir)
	if err != nil {
		t.Fatalf("ListDirectories: %v", err)
	}
	if len(dirs) != 2 {
		t.Fatalf("expected 2 directories, got %d", len(dirs))
	}
	for _, dir := range dirs {
		if dir.Size <= 0 {
			t.Fatalf("expected nonzero size for %s", dir.Name)
		}
	}
}

func TestSweeperKeepsActiveJobArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	cfg.Retention.ArtifactMinutes = 30

	job := testsupport.NewJob(t, store, "/tmp/demo.mp4")
	activeDir := makeJobDir(t, cfg.Paths.StagingDir, fmt.Sprintf("job-%d", job.ID), time.Hour)
	orphanDir := makeJobDir(t, cfg.Paths.StagingDir, fmt.Sprintf("job-%d", job.ID+50), time.Hour)

	sweeper := NewSweeper(cfg, store, logging.NewNop())
	sweeper.Sweep(context.Background())

	if _, err := os.Stat(activeDir); err != nil {
		t.Fatalf("active job artifacts removed: %v", err)
	}
	if _, err := os.Stat(orphanDir); !os.IsNotExist(err) {
		t.Fatal("orphaned artifacts should be removed")
	}
}

func TestJobDir(t *testing.T) {
	got := JobDir("/tmp/staging", 42)
	if got != filepath.Join("/tmp/staging", "job-42") {
		t.Fatalf("unexpected job dir: %s", got)
	}
}
