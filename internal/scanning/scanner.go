package scanning

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"screendoc/internal/config"
	"screendoc/internal/keyframes"
	"screendoc/internal/logging"
	"screendoc/internal/ocr"
	"screendoc/internal/pii"
	"screendoc/internal/queue"
	"screendoc/internal/redact"
	"screendoc/internal/services"
	"screendoc/internal/stage"
)

// TextRecognizer abstracts the OCR engine for tests.
type TextRecognizer interface {
	Available() bool
	ExtractRegions(ctx context.Context, imagePath string) []ocr.TextRegion
}

// Scanner is the stage handler that detects PII on every key frame and
// renders review previews.
type Scanner struct {
	cfg        *config.Config
	store      *queue.Store
	logger     *slog.Logger
	recognizer TextRecognizer
	detector   *pii.Scanner
}

// NewScanner constructs the scanner stage handler with the configured OCR
// engine and name detector.
func NewScanner(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Scanner {
	engine := ocr.NewEngine(cfg.OCR.Command, time.Duration(cfg.OCR.TimeoutSeconds)*time.Second, logger)
	names := pii.NewCommandNameDetector(cfg.PII.NERCommand, time.Duration(cfg.PII.NERTimeout)*time.Second)
	detector := pii.NewScanner(cfg.PII.EnableOptional, names, logger)
	return NewScannerWithDependencies(cfg, store, logger, engine, detector)
}

// NewScannerWithDependencies allows injecting collaborators (used in tests).
func NewScannerWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, recognizer TextRecognizer, detector *pii.Scanner) *Scanner {
	return &Scanner{
		cfg:        cfg,
		store:      store,
		logger:     logging.NewComponentLogger(logger, "scanner"),
		recognizer: recognizer,
		detector:   detector,
	}
}

func (s *Scanner) Prepare(ctx context.Context, job *queue.Job) error {
	if job.KeyFramesJSON == "" {
		return services.Wrap(
			services.ErrValidation,
			"scanning",
			"validate inputs",
			"No key frames recorded; selection must run before scanning",
			nil,
		)
	}
	job.SetProgress("Scanning for PII", "Preparing text recognition", 0)
	job.ErrorMessage = ""
	return nil
}

func (s *Scanner) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, s.logger)

	keyFrames, err := keyframes.Decode(job.KeyFramesJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, "scanning", "decode key frames", "Stored key frame list unreadable", err)
	}

	results, scanErr := s.scanAll(ctx, job, keyFrames)
	if scanErr != nil {
		// Detection failures never block the pipeline; the document is
		// produced without redaction annotations instead.
		logger.Error("scan degraded to empty match sets", logging.Error(scanErr))
		results = emptyResults(keyFrames)
	}

	encoded, err := pii.EncodeFrameMatches(results)
	if err != nil {
		return services.Wrap(services.ErrTransient, "scanning", "encode matches", "Failed to persist scan results", err)
	}
	job.MatchesJSON = encoded

	total := pii.TotalMatches(results)
	job.SetProgressComplete("Scanning for PII", fmt.Sprintf("Found %d PII matches across %d frames", total, len(keyFrames)))
	logger.Info("scan complete",
		logging.Int("key_frames", len(keyFrames)),
		logging.Int("matches", total),
		logging.Bool("ocr_available", s.recognizer.Available()))
	return nil
}

func (s *Scanner) scanAll(ctx context.Context, job *queue.Job, keyFrames []keyframes.KeyFrame) ([]pii.FrameMatches, error) {
	previewDir := filepath.Join(job.FramesDir, "previews")
	if err := os.MkdirAll(previewDir, 0o755); err != nil {
		return nil, fmt.Errorf("create preview directory: %w", err)
	}

	results := make([]pii.FrameMatches, len(keyFrames))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.workerLimit())

	for i, kf := range keyFrames {
		i, kf := i, kf
		group.Go(func() error {
			position := i + 1
			regions := s.recognizer.ExtractRegions(groupCtx, kf.Path)
			matches := s.detector.Scan(groupCtx, regions)

			result := pii.FrameMatches{
				Position:   position,
				FrameIndex: kf.Index,
				Path:       kf.Path,
				Matches:    matches,
			}
			if len(matches) > 0 {
				previewPath := filepath.Join(previewDir, fmt.Sprintf("preview_%04d%s", position, filepath.Ext(kf.Path)))
				if err := redact.Preview(kf.Path, previewPath, matches); err != nil {
					return fmt.Errorf("render preview for frame %d: %w", kf.Index, err)
				}
				result.PreviewPath = previewPath
			}
			results[i] = result
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Scanner) workerLimit() int {
	if s.cfg != nil && s.cfg.Workflow.Workers > 0 {
		return s.cfg.Workflow.Workers
	}
	return 1
}

func emptyResults(keyFrames []keyframes.KeyFrame) []pii.FrameMatches {
	results := make([]pii.FrameMatches, len(keyFrames))
	for i, kf := range keyFrames {
		results[i] = pii.FrameMatches{Position: i + 1, FrameIndex: kf.Index, Path: kf.Path}
	}
	return results
}

func (s *Scanner) HealthCheck(ctx context.Context) stage.Health {
	if !s.recognizer.Available() {
		return stage.Unhealthy("scanner", "ocr command unavailable; scans will find no text")
	}
	return stage.Healthy("scanner")
}
