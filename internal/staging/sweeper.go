package staging

import (
	"context"
	"log/slog"
	"time"

	"screendoc/internal/config"
	"screendoc/internal/logging"
	"screendoc/internal/queue"
)

// Sweeper periodically reclaims staging directories and aged log files.
type Sweeper struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
}

// NewSweeper constructs a sweeper over the configured retention policy.
func NewSweeper(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "staging-sweeper"),
	}
}

// Run sweeps on the configured interval until the context is cancelled.
// The first sweep happens immediately.
func (s *Sweeper) Run(ctx context.Context) {
	interval := time.Duration(s.cfg.Retention.SweepIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs a single cleanup pass.
func (s *Sweeper) Sweep(ctx context.Context) {
	maxAge := time.Duration(s.cfg.Retention.ArtifactMinutes) * time.Minute
	if maxAge <= 0 {
		maxAge = time.Hour
	}

	active, err := s.activeJobIDs(ctx)
	if err != nil {
		s.logger.Warn("skipping staging sweep, queue unavailable", logging.Error(err))
		return
	}

	result := CleanStale(s.cfg.Paths.StagingDir, maxAge, active, s.logger)
	if len(result.Removed) > 0 {
		s.logger.Info("staging sweep complete", logging.Int("removed", len(result.Removed)))
	}

	if removed, err := logging.CleanupOldLogs(s.cfg.Paths.LogDir, s.cfg.Logging.RetentionDays); err != nil {
		s.logger.Warn("log cleanup failed", logging.Error(err))
	} else if removed > 0 {
		s.logger.Info("removed aged log files", logging.Int("count", removed))
	}
}

// activeJobIDs returns identifiers for jobs whose staging artifacts must
// survive a sweep. Failed and review jobs stay active so their frames are
// still on disk when someone investigates.
func (s *Sweeper) activeJobIDs(ctx context.Context) (map[int64]struct{}, error) {
	statuses := make([]queue.Status, 0, len(queue.AllStatuses()))
	for _, status := range queue.AllStatuses() {
		if status == queue.StatusCompleted {
			continue
		}
		statuses = append(statuses, status)
	}
	jobs, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	active := make(map[int64]struct{}, len(jobs))
	for _, job := range jobs {
		active[job.ID] = struct{}{}
	}
	return active, nil
}
