package narrative

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

// Narrator is the stage handler that generates the markdown narrative from
// the key frames. Jobs with no PII matches skip the human review gate and
// land directly in approved.
type Narrator struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	client *Client
}

// NewNarrator constructs the narrator stage handler.
func NewNarrator(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Narrator {
	client := NewClient(Config{
		APIKey:         cfg.Narrative.APIKey,
		BaseURL:        cfg.Narrative.BaseURL,
		Model:          cfg.Narrative.Model,
		MaxTokens:      cfg.Narrative.MaxTokens,
		TimeoutSeconds: cfg.Narrative.TimeoutSeconds,
	})
	return NewNarratorWithClient(cfg, store, logger, client)
}

// NewNarratorWithClient allows injecting the client (used in tests).
func NewNarratorWithClient(cfg *config.Config, store *queue.Store, logger *slog.Logger, client *Client) *Narrator {
	return &Narrator{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "narrator"),
		client: client,
	}
}

func (n *Narrator) Prepare(ctx context.Context, job *queue.Job) error {
	if job.KeyFramesJSON == "" {
		return services.Wrap(
			services.ErrValidation,
			"narrating",
			"validate inputs",
			"No key frames recorded; selection must run before narration",
			nil,
		)
	}
	if !n.client.Configured() {
		return services.Wrap(
			services.ErrConfiguration,
			"narrating",
			"validate configuration",
			"Narrative API key or model missing; set narrative.api_key and narrative.model in config",
			nil,
		)
	}
	job.SetProgress("Writing narrative", "Sending key frames to the vision model", 0)
	job.ErrorMessage = ""
	return nil
}

func (n *Narrator) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, n.logger)

	keyFrames, err := keyframes.Decode(job.KeyFramesJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, "narrating", "decode key frames", "Stored key frame list unreadable", err)
	}
	paths := make([]string, len(keyFrames))
	for i, kf := range keyFrames {
		paths[i] = kf.Path
	}

	markdown, err := n.client.Narrate(ctx, paths)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "narrating", "generate narrative", "Vision model request failed", err)
	}

	narrativePath := filepath.Join(filepath.Dir(job.FramesDir), "narrative.md")
	if err := os.WriteFile(narrativePath, []byte(markdown), 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "narrating", "write narrative", "Cannot write narrative file", err)
	}
	job.NarrativePath = narrativePath

	frameMatches, err := pii.DecodeFrameMatches(job.MatchesJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, "narrating", "decode matches", "Stored match list unreadable", err)
	}
	total := pii.TotalMatches(frameMatches)
	if total == 0 {
		// Nothing to review; the redactor will pass frames through untouched.
		job.Status = queue.StatusApproved
		job.SetProgressComplete("Writing narrative", "No PII found, skipping review")
	} else {
		job.SetProgressComplete("Writing narrative", fmt.Sprintf("Awaiting review of %d PII matches", total))
	}

	logger.Info("narrative generated",
		logging.Int("key_frames", len(keyFrames)),
		logging.Int("pii_matches", total),
		logging.Bool("review_required", total > 0))
	return nil
}

func (n *Narrator) HealthCheck(ctx context.Context) stage.Health {
	if !n.client.Configured() {
		return stage.Unhealthy("narrator", "narrative api key or model not configured")
	}
	return stage.Healthy("narrator")
}
