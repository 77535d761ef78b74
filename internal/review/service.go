package review

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"screendoc/internal/logging"
	"screendoc/internal/pii"
	"screendoc/internal/queue"
	"screendoc/internal/redact"
	"screendoc/internal/services"
)

// Service drives the approval workflow over the job store.
type Service struct {
	store  *queue.Store
	logger *slog.Logger
}

// NewService constructs a review service.
func NewService(store *queue.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logging.NewComponentLogger(logger, "review"),
	}
}

// Pending lists jobs waiting at the approval gate, oldest first.
func (s *Service) Pending(ctx context.Context) ([]*queue.Job, error) {
	jobs, err := s.store.JobsByStatus(ctx, queue.StatusAwaitingApproval)
	if err != nil {
		return nil, err
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.Before(jobs[j].CreatedAt) })
	return jobs, nil
}

// Detail bundles a parked job with its decoded scan results.
type Detail struct {
	Job     *queue.Job
	Frames  []pii.FrameMatches
	Matches int
}

// Describe loads one parked job and its per-frame matches.
func (s *Service) Describe(ctx context.Context, id int64) (*Detail, error) {
	job, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, services.Wrap(services.ErrNotFound, "review", "describe", fmt.Sprintf("Job %d not found", id), nil)
	}
	frames, err := pii.DecodeFrameMatches(job.MatchesJSON)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "review", "decode matches", "Stored scan results unreadable", err)
	}
	return &Detail{Job: job, Frames: frames, Matches: pii.TotalMatches(frames)}, nil
}

// Approve records the reviewer's decisions and releases the job to the
// redactor. A nil decision list approves the defaults, which redact every
// detected match. An empty mode keeps the configured default.
func (s *Service) Approve(ctx context.Context, id int64, decisions []redact.FrameDecisions, mode string) error {
	job, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if job == nil {
		return services.Wrap(services.ErrNotFound, "review", "approve", fmt.Sprintf("Job %d not found", id), nil)
	}
	if job.Status != queue.StatusAwaitingApproval {
		return services.Wrap(
			services.ErrValidation,
			"review",
			"approve",
			fmt.Sprintf("Job %d is %s, only jobs awaiting approval can be approved", id, job.Status),
			nil,
		)
	}

	if mode != "" {
		parsed, err := redact.ParseMode(mode)
		if err != nil {
			return services.Wrap(services.ErrValidation, "review", "approve", "Unknown redaction mode", err)
		}
		job.RedactionMode = string(parsed)
	}
	if decisions != nil {
		encoded, err := redact.EncodeDecisions(decisions)
		if err != nil {
			return services.Wrap(services.ErrValidation, "review", "approve", "Cannot persist review decisions", err)
		}
		job.DecisionsJSON = encoded
	}

	job.Status = queue.StatusApproved
	job.SetProgress("Approved", "Waiting for redaction", 0)
	if err := s.store.Update(ctx, job); err != nil {
		return err
	}
	s.logger.Info("job approved",
		logging.Int64("job_id", id),
		logging.Bool("explicit_decisions", decisions != nil),
		logging.String("mode", job.RedactionMode))
	return nil
}

// Reopen returns a job parked in review (after a classified failure) to the
// front of the pipeline so it is reprocessed from scratch.
func (s *Service) Reopen(ctx context.Context, id int64) error {
	job, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if job == nil {
		return services.Wrap(services.ErrNotFound, "review", "reopen", fmt.Sprintf("Job %d not found", id), nil)
	}
	if job.Status != queue.StatusReview {
		return services.Wrap(
			services.ErrValidation,
			"review",
			"reopen",
			fmt.Sprintf("Job %d is %s, only jobs parked in review can be reopened", id, job.Status),
			nil,
		)
	}

	job.Status = queue.StatusPending
	job.ErrorMessage = ""
	job.NeedsReview = false
	job.ReviewReason = ""
	job.SetProgress("Reopened", "Waiting for processing", 0)
	if err := s.store.Update(ctx, job); err != nil {
		return err
	}
	s.logger.Info("job reopened", logging.Int64("job_id", id))
	return nil
}
