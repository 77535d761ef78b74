package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"screendoc/internal/logging"
	"screendoc/internal/queue"
)

// HeartbeatMonitor keeps claimed jobs fresh and reclaims jobs whose owner
// stopped heartbeating.
type HeartbeatMonitor struct {
	store    *queue.Store
	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration
}

// NewHeartbeatMonitor creates a new monitor.
func NewHeartbeatMonitor(store *queue.Store, logger *slog.Logger, interval, timeout time.Duration) *HeartbeatMonitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &HeartbeatMonitor{
		store:    store,
		logger:   logging.NewComponentLogger(logger, "workflow-heartbeat"),
		interval: interval,
		timeout:  timeout,
	}
}

// ReclaimStaleItems rolls jobs with expired heartbeats back to the start of
// their stage so they are retried instead of stranded.
func (h *HeartbeatMonitor) ReclaimStaleItems(ctx context.Context, logger *slog.Logger) error {
	if h.timeout <= 0 {
		return nil
	}
	cutoff := time.Now().Add(-h.timeout)
	reclaimed, err := h.store.ReclaimStaleProcessing(ctx, cutoff)
	if err != nil {
		return err
	}
	if reclaimed > 0 {
		logger.Info("reclaimed stale jobs", logging.Int64("count", reclaimed))
	}
	return nil
}

// StartLoop updates the heartbeat for one job until context cancellation.
func (h *HeartbeatMonitor) StartLoop(ctx context.Context, wg *sync.WaitGroup, jobID int64) {
	defer wg.Done()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	logger := logging.WithContext(ctx, h.logger)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.store.UpdateHeartbeat(ctx, jobID); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				logger.Warn("heartbeat update failed", logging.Error(err))
			}
		}
	}
}
