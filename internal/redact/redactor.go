package redact

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"screendoc/internal/config"
	"screendoc/internal/keyframes"
	"screendoc/internal/logging"
	"screendoc/internal/pii"
	"screendoc/internal/queue"
	"screendoc/internal/services"
	"screendoc/internal/stage"
)

// Redactor is the stage handler that applies approved redactions and
// records the final image list for assembly.
type Redactor struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
}

// NewRedactor constructs the redactor stage handler.
func NewRedactor(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Redactor {
	return &Redactor{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "redactor"),
	}
}

func (r *Redactor) Prepare(ctx context.Context, job *queue.Job) error {
	if job.KeyFramesJSON == "" {
		return services.Wrap(
			services.ErrValidation,
			"redacting",
			"validate inputs",
			"No key frames recorded; selection must run before redaction",
			nil,
		)
	}
	if _, err := r.batchMode(job); err != nil {
		return services.Wrap(services.ErrConfiguration, "redacting", "resolve mode", "Invalid redaction mode on job or config", err)
	}
	job.SetProgress("Applying redactions", "Resolving review decisions", 0)
	job.ErrorMessage = ""
	return nil
}

func (r *Redactor) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, r.logger)

	keyFrames, err := keyframes.Decode(job.KeyFramesJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, "redacting", "decode key frames", "Stored key frame list unreadable", err)
	}
	frameMatches, err := pii.DecodeFrameMatches(job.MatchesJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, "redacting", "decode matches", "Stored match list unreadable", err)
	}
	decisions, err := DecodeDecisions(job.DecisionsJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, "redacting", "decode decisions", "Stored review decisions unreadable", err)
	}
	mode, err := r.batchMode(job)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "redacting", "resolve mode", "Invalid redaction mode on job or config", err)
	}

	outputDir := filepath.Join(job.FramesDir, "redacted")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "redacting", "create output directory", "Cannot create redaction output directory", err)
	}

	matchesByPosition := make(map[int][]pii.Match, len(frameMatches))
	for _, fm := range frameMatches {
		matchesByPosition[fm.Position] = fm.Matches
	}

	finals := make([]FinalImage, 0, len(keyFrames))
	failures := 0
	for i, kf := range keyFrames {
		if err := ctx.Err(); err != nil {
			return err
		}
		position := i + 1
		matches := matchesByPosition[position]
		stored, hasRecord := DecisionsFor(decisions, position)
		var toRedact []pii.Match
		if hasRecord {
			toRedact = Resolve(matches, stored)
		} else {
			toRedact = Resolve(matches, nil)
		}

		if len(toRedact) == 0 {
			finals = append(finals, FinalImage{Position: position, FrameIndex: kf.Index, Path: kf.Path})
			continue
		}

		outputPath := filepath.Join(outputDir, fmt.Sprintf("redacted_%04d%s", position, filepath.Ext(kf.Path)))
		if err := Apply(kf.Path, outputPath, toRedact, mode); err != nil {
			failures++
			logger.Error("redaction failed for frame",
				logging.Int(logging.FieldFrame, kf.Index),
				logging.Error(err))
			if r.cfg.Redaction.KeepUnredactedOnError {
				finals = append(finals, FinalImage{Position: position, FrameIndex: kf.Index, Path: kf.Path})
			}
			continue
		}
		finals = append(finals, FinalImage{Position: position, FrameIndex: kf.Index, Path: outputPath, Redacted: true})
		job.SetProgress("Applying redactions", fmt.Sprintf("Redacted frame %d of %d", position, len(keyFrames)), float64(position)/float64(len(keyFrames))*100)
	}

	encoded, err := EncodeFinalImages(finals)
	if err != nil {
		return services.Wrap(services.ErrTransient, "redacting", "encode final images", "Failed to persist final image list", err)
	}
	job.FinalImagesJSON = encoded
	if failures > 0 {
		job.NeedsReview = true
		job.ReviewReason = fmt.Sprintf("%d frame(s) failed redaction", failures)
	}
	job.SetProgressComplete("Applying redactions", fmt.Sprintf("Rendered %d final images", len(finals)))

	logger.Info("redactions applied",
		logging.Int("frames", len(keyFrames)),
		logging.Int("failures", failures),
		logging.String("mode", string(mode)))
	return nil
}

func (r *Redactor) HealthCheck(ctx context.Context) stage.Health {
	if _, err := ParseMode(r.cfg.Redaction.DefaultMode); err != nil {
		return stage.Unhealthy("redactor", err.Error())
	}
	return stage.Healthy("redactor")
}

// batchMode prefers the mode chosen during review, falling back to config.
func (r *Redactor) batchMode(job *queue.Job) (Mode, error) {
	if job.RedactionMode != "" {
		return ParseMode(job.RedactionMode)
	}
	return ParseMode(r.cfg.Redaction.DefaultMode)
}
