package workflow

import (
	"context"
	"errors"
	"time"

	"screendoc/internal/logging"
)

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}

		if err := m.heartbeat.ReclaimStaleItems(ctx, m.logger); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Warn("stale job reclaim failed", logging.Error(err))
		}

		job, err := m.store.NextForStatuses(ctx, m.startOrd...)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.logger.Error("queue poll failed", logging.Error(err))
			if !m.sleep(ctx, m.errorRetryInterval()) {
				return
			}
			continue
		}
		if job == nil {
			if !m.sleep(ctx, m.pollInterval()) {
				return
			}
			continue
		}

		m.processJob(ctx, job)
	}
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = time.Second
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (m *Manager) pollInterval() time.Duration {
	if m.cfg != nil && m.cfg.Workflow.QueuePollInterval > 0 {
		return time.Duration(m.cfg.Workflow.QueuePollInterval) * time.Second
	}
	return 5 * time.Second
}

func (m *Manager) errorRetryInterval() time.Duration {
	if m.cfg != nil && m.cfg.Workflow.ErrorRetryInterval > 0 {
		return time.Duration(m.cfg.Workflow.ErrorRetryInterval) * time.Second
	}
	return 30 * time.Second
}
