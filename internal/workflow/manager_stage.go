package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"screendoc/internal/logging"
	"screendoc/internal/pii"
	"screendoc/internal/queue"
	"screendoc/internal/services"
)

func (m *Manager) processJob(ctx context.Context, job *queue.Job) {
	stg, ok := m.stageForStatus(job.Status)
	if !ok {
		m.logger.Warn("no stage registered for status",
			logging.Int64("job_id", job.ID),
			logging.String("status", string(job.Status)))
		m.sleep(ctx, m.pollInterval())
		return
	}

	stageCtx := services.WithJobID(ctx, job.ID)
	stageCtx = services.WithStage(stageCtx, stg.name)
	stageCtx = services.WithRequestID(stageCtx, uuid.NewString())
	logger := logging.WithContext(stageCtx, m.logger)

	if err := m.transitionToProcessing(stageCtx, job, stg); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Error("failed to claim job", logging.Error(err))
		m.sleep(ctx, m.errorRetryInterval())
		return
	}

	logger.Info("stage started", logging.String("source", job.SourcePath))
	start := time.Now()
	if err := m.executeStage(stageCtx, job, stg, logger); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("stage interrupted by shutdown")
			return
		}
		m.handleStageFailure(stageCtx, job, stg, err, logger)
		m.sleep(ctx, m.errorRetryInterval())
		return
	}
	logger.Info("stage finished",
		logging.String("status", string(job.Status)),
		logging.Duration("elapsed", time.Since(start)))
	m.notifyTransition(stageCtx, job, logger)
}

// notifyTransition pushes a notification for the user-facing milestones:
// the approval gate and the finished document. Delivery failures are logged
// and never affect the job.
func (m *Manager) notifyTransition(ctx context.Context, job *queue.Job, logger *slog.Logger) {
	var err error
	switch job.Status {
	case queue.StatusAwaitingApproval:
		matches := 0
		if frames, decodeErr := pii.DecodeFrameMatches(job.MatchesJSON); decodeErr == nil {
			matches = pii.TotalMatches(frames)
		}
		err = m.notifier.NotifyAwaitingApproval(ctx, job.Title, matches)
	case queue.StatusCompleted:
		err = m.notifier.NotifyDocumentReady(ctx, job.Title, job.DocumentPath)
	default:
		return
	}
	if err != nil {
		logger.Warn("notification delivery failed", logging.Error(err))
	}
}

func (m *Manager) transitionToProcessing(ctx context.Context, job *queue.Job, stg pipelineStage) error {
	now := time.Now().UTC()
	job.Status = stg.processingStatus
	job.ErrorMessage = ""
	job.LastHeartbeat = &now
	job.SetProgress("", "", 0)
	return m.store.Update(ctx, job)
}

func (m *Manager) executeStage(ctx context.Context, job *queue.Job, stg pipelineStage, logger *slog.Logger) error {
	if err := stg.handler.Prepare(ctx, job); err != nil {
		return err
	}
	if err := m.store.Update(ctx, job); err != nil {
		return err
	}

	if err := m.executeWithHeartbeat(ctx, job, stg); err != nil {
		return err
	}

	// Handlers may route the job themselves, e.g. skipping the approval
	// gate when there is nothing to review. Only apply the default
	// transition when the handler left the status alone.
	if job.Status == stg.processingStatus || job.Status == "" {
		job.Status = stg.doneStatus
	}
	job.LastHeartbeat = nil
	return m.store.Update(ctx, job)
}

func (m *Manager) executeWithHeartbeat(ctx context.Context, job *queue.Job, stg pipelineStage) error {
	hbCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &wg, job.ID)

	err := stg.handler.Execute(ctx, job)
	cancel()
	wg.Wait()
	return err
}

func (m *Manager) handleStageFailure(ctx context.Context, job *queue.Job, stg pipelineStage, stageErr error, logger *slog.Logger) {
	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = stg.name + " failed"
	}

	status := services.FailureStatus(stageErr)
	if status == queue.StatusReview {
		job.Status = queue.StatusReview
		job.ErrorMessage = message
		job.NeedsReview = true
		job.ReviewReason = message
		job.LastHeartbeat = nil
		job.SetProgress("Review required", message, 0)
	} else {
		job.SetFailed(message)
	}

	logger.Error("stage failed",
		logging.String("resolved_status", string(status)),
		logging.Error(stageErr))

	if err := m.store.Update(ctx, job); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("shutdown before stage failure could be persisted")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
		return
	}

	var notifyErr error
	if status == queue.StatusReview {
		notifyErr = m.notifier.NotifyReviewRequired(ctx, job.Title, message)
	} else {
		notifyErr = m.notifier.NotifyJobFailed(ctx, job.Title, message)
	}
	if notifyErr != nil {
		logger.Warn("notification delivery failed", logging.Error(notifyErr))
	}
}
