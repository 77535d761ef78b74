package document_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"screendoc/internal/config"
	"screendoc/internal/document"
	"screendoc/internal/logging"
	"screendoc/internal/queue"
	"screendoc/internal/redact"
	"screendoc/internal/staging"
	"screendoc/internal/testsupport"
)

func writeImage(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
}

func assemblyJob(t *testing.T, cfg *config.Config, store *queue.Store) *queue.Job {
	t.Helper()
	job := testsupport.NewJob(t, store, filepath.Join(testsupport.BaseDir(cfg), "signup-flow.mp4"))

	jobDir := staging.JobDir(cfg.Paths.StagingDir, job.ID)
	framesDir := filepath.Join(jobDir, "frames")
	writeImage(t, filepath.Join(framesDir, "frame_0001.png"), "raw frame")
	finalPath := filepath.Join(jobDir, "finals", "redacted_0001.png")
	writeImage(t, finalPath, "final frame")

	narrativePath := filepath.Join(jobDir, "narrative.md")
	narrative := "# Signup Flow\n\nIn frame 1 the user opens the signup page.\n"
	if err := os.WriteFile(narrativePath, []byte(narrative), 0o644); err != nil {
		t.Fatalf("write narrative: %v", err)
	}

	encoded, err := redact.EncodeFinalImages([]redact.FinalImage{
		{Position: 1, FrameIndex: 3, Path: finalPath, Redacted: true},
	})
	if err != nil {
		t.Fatalf("encode finals: %v", err)
	}

	job.Status = queue.StatusAssembling
	job.NarrativePath = narrativePath
	job.FinalImagesJSON = encoded
	job.FramesDir = framesDir
	if err := store.Update(context.Background(), job); err != nil {
		t.Fatalf("update job: %v", err)
	}
	return job
}

func TestAssemblerExecuteWritesBundle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := assemblyJob(t, cfg, store)
	assembler := document.NewAssembler(cfg, store, logging.NewNop())
	ctx := context.Background()

	if err := assembler.Prepare(ctx, job); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := assembler.Execute(ctx, job); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if job.DocumentPath == "" {
		t.Fatal("expected document path to be set")
	}
	if !strings.Contains(job.DocumentPath, "signup-flow-") {
		t.Fatalf("expected slugged bundle name, got %s", job.DocumentPath)
	}
	data, err := os.ReadFile(job.DocumentPath)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	if !strings.Contains(string(data), "![Frame 1](images/frame_01.png)") {
		t.Fatalf("expected embedded image, got:\n%s", data)
	}

	copied := filepath.Join(filepath.Dir(job.DocumentPath), "images", "frame_01.png")
	content, err := os.ReadFile(copied)
	if err != nil {
		t.Fatalf("read copied image: %v", err)
	}
	if string(content) != "final frame" {
		t.Fatalf("unexpected copied image content %q", content)
	}

	if _, err := os.Stat(staging.JobDir(cfg.Paths.StagingDir, job.ID)); !os.IsNotExist(err) {
		t.Fatalf("expected staging workspace removed, stat err %v", err)
	}
}

func TestAssemblerPrepareRequiresNarrative(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, filepath.Join(testsupport.BaseDir(cfg), "demo.mp4"))

	assembler := document.NewAssembler(cfg, store, logging.NewNop())
	if err := assembler.Prepare(context.Background(), job); err == nil {
		t.Fatal("expected error without narrative")
	}
}

func TestAssemblerExecuteMissingNarrativeFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, filepath.Join(testsupport.BaseDir(cfg), "demo.mp4"))
	job.NarrativePath = filepath.Join(testsupport.BaseDir(cfg), "missing.md")

	assembler := document.NewAssembler(cfg, store, logging.NewNop())
	if err := assembler.Execute(context.Background(), job); err == nil {
		t.Fatal("expected error for missing narrative file")
	}
}

func TestAssemblerHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	assembler := document.NewAssembler(cfg, store, logging.NewNop())

	health := assembler.HealthCheck(context.Background())
	if !health.Ready {
		t.Fatalf("expected healthy assembler, got %+v", health)
	}

	cfg.Paths.OutputDir = ""
	health = assembler.HealthCheck(context.Background())
	if health.Ready {
		t.Fatal("expected unhealthy assembler without output dir")
	}
}
