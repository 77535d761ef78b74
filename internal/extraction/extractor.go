package extraction

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"screendoc/internal/config"
	"screendoc/internal/frames"
	"screendoc/internal/logging"
	"screendoc/internal/queue"
	"screendoc/internal/services"
	"screendoc/internal/stage"
	"screendoc/internal/staging"
)

// MinFrames is the smallest usable recording. Below this there is nothing
// to document.
const MinFrames = 3

// Extractor is the stage handler that runs ffmpeg against the source
// recording and leaves sampled JPEG frames in the job's staging directory.
type Extractor struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	runner CommandRunner
}

// CommandRunner abstracts process execution for tests.
type CommandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)

func defaultRunner(ctx context.Context, name string, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// NewExtractor constructs the extractor stage handler.
func NewExtractor(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Extractor {
	return &Extractor{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "extractor"),
		runner: defaultRunner,
	}
}

// WithRunner swaps the process runner (used in tests).
func (e *Extractor) WithRunner(runner CommandRunner) *Extractor {
	e.runner = runner
	return e
}

func (e *Extractor) Prepare(ctx context.Context, job *queue.Job) error {
	if _, err := os.Stat(job.SourcePath); err != nil {
		return services.Wrap(
			services.ErrNotFound,
			"extracting",
			"validate source",
			"Source recording not found; check the path passed to 'screendoc add'",
			err,
		)
	}
	job.SetProgress("Extracting frames", "Preparing frame extraction", 0)
	job.ErrorMessage = ""
	return nil
}

func (e *Extractor) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, e.logger)

	framesDir := filepath.Join(staging.JobDir(e.cfg.Paths.StagingDir, job.ID), "frames")
	if err := os.MkdirAll(framesDir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "extracting", "create frames directory", "Cannot create staging directory for frames", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(e.cfg.Extraction.TimeoutSeconds)*time.Second)
	defer cancel()

	filter := fmt.Sprintf("fps=1/%d,scale=%d:-2", e.cfg.Extraction.FrameInterval, e.cfg.Extraction.MaxWidth)
	args := []string{
		"-i", job.SourcePath,
		"-vf", filter,
		"-q:v", "2",
		filepath.Join(framesDir, "frame_%04d.jpg"),
		"-y",
	}
	logger.Info("running frame extraction",
		logging.String("source", job.SourcePath),
		logging.String("filter", filter))

	_, stderr, err := e.runner(runCtx, e.cfg.FFmpegBinary(), args...)
	if err != nil {
		detail := strings.TrimSpace(stderr)
		if detail == "" {
			detail = "unknown ffmpeg error"
		}
		return services.Wrap(
			services.ErrExternalTool,
			"extracting",
			"run ffmpeg",
			fmt.Sprintf("Frame extraction failed: %s", lastLine(detail)),
			err,
		)
	}

	list, err := frames.List(framesDir)
	if err != nil {
		return services.Wrap(services.ErrTransient, "extracting", "list frames", "Extracted frames unreadable", err)
	}
	if len(list) < MinFrames {
		return services.Wrap(
			services.ErrValidation,
			"extracting",
			"validate frame count",
			fmt.Sprintf("Recording too short: only %d frames extracted, need at least %d", len(list), MinFrames),
			nil,
		)
	}

	kept, err := capFrames(list, e.cfg.Extraction.MaxFrames)
	if err != nil {
		return services.Wrap(services.ErrTransient, "extracting", "cap frames", "Failed to prune oversampled frames", err)
	}

	job.FramesDir = framesDir
	job.FrameCount = len(kept)
	job.SetProgressComplete("Extracting frames", fmt.Sprintf("Extracted %d frames", len(kept)))

	logger.Info("frames extracted",
		logging.Int("extracted", len(list)),
		logging.Int("kept", len(kept)))
	return nil
}

func (e *Extractor) HealthCheck(ctx context.Context) stage.Health {
	if _, err := exec.LookPath(e.cfg.FFmpegBinary()); err != nil {
		return stage.Unhealthy("extractor", "ffmpeg not found on PATH")
	}
	return stage.Healthy("extractor")
}

// capFrames samples evenly down to maxFrames and deletes unsampled files so
// later stages only ever see the kept set.
func capFrames(list []frames.Frame, maxFrames int) ([]frames.Frame, error) {
	if maxFrames <= 0 || len(list) <= maxFrames {
		return list, nil
	}

	step := float64(len(list)) / float64(maxFrames)
	keep := make(map[int]struct{}, maxFrames)
	for i := 0; i < maxFrames; i++ {
		keep[int(float64(i)*step)] = struct{}{}
	}

	kept := make([]frames.Frame, 0, maxFrames)
	for i, frame := range list {
		if _, ok := keep[i]; ok {
			kept = append(kept, frame)
			continue
		}
		if err := os.Remove(frame.Path); err != nil {
			return nil, fmt.Errorf("remove unsampled frame: %w", err)
		}
	}
	for i := range kept {
		kept[i].Index = i
	}
	return kept, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
