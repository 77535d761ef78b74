package keyframes

import (
	"context"
	"fmt"
	"log/slog"

	"screendoc/internal/config"
	"screendoc/internal/frames"
	"screendoc/internal/logging"
	"screendoc/internal/queue"
	"screendoc/internal/services"
	"screendoc/internal/stage"
)

// Selector is the stage handler that scores extracted frames and persists
// the selected key-frame list on the job.
type Selector struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	differ *frames.Differencer
}

// NewSelector constructs the selector stage handler.
func NewSelector(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Selector {
	return &Selector{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "selector"),
		differ: frames.NewDifferencer(cfg.Selection.StabilityWindow, cfg.Selection.TailStabilityBonus, logger),
	}
}

func (s *Selector) Prepare(ctx context.Context, job *queue.Job) error {
	if job.FramesDir == "" || job.FrameCount == 0 {
		return services.Wrap(
			services.ErrValidation,
			"selecting",
			"validate inputs",
			"No extracted frames present; extraction must run before selection",
			nil,
		)
	}
	job.SetProgress("Selecting key frames", "Scoring extracted frames", 0)
	job.ErrorMessage = ""
	return nil
}

func (s *Selector) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, s.logger)

	list, err := frames.List(job.FramesDir)
	if err != nil {
		return services.Wrap(
			services.ErrValidation,
			"selecting",
			"list frames",
			"Frames directory unreadable; rerun extraction",
			err,
		)
	}
	if len(list) == 0 {
		return services.Wrap(
			services.ErrValidation,
			"selecting",
			"list frames",
			"Frames directory is empty; rerun extraction",
			nil,
		)
	}

	scores := s.differ.Score(ctx, list)
	if err := ctx.Err(); err != nil {
		return err
	}
	job.SetProgress("Selecting key frames", "Choosing embed subset", 60)

	heuristics := HeuristicsFromConfig(s.cfg)
	indices := Select(scores, heuristics)

	selected := make([]KeyFrame, len(indices))
	for i, idx := range indices {
		selected[i] = KeyFrame{Index: idx, Path: list[idx].Path}
	}
	encoded, err := Encode(selected)
	if err != nil {
		return services.Wrap(services.ErrTransient, "selecting", "encode key frames", "Failed to persist key frame selection", err)
	}
	job.KeyFramesJSON = encoded
	job.SetProgressComplete("Selecting key frames", fmt.Sprintf("Selected %d of %d frames", len(selected), len(list)))

	logger.Info("key frames selected",
		logging.Int("frames", len(list)),
		logging.Int("selected", len(selected)),
		logging.Int("budget", heuristics.MaxEmbed))
	return nil
}

func (s *Selector) HealthCheck(ctx context.Context) stage.Health {
	if s.cfg == nil || s.cfg.Selection.MaxEmbed <= 0 {
		return stage.Unhealthy("selector", "selection budget not configured")
	}
	return stage.Healthy("selector")
}
