package workflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"screendoc/internal/logging"
	"screendoc/internal/queue"
	"screendoc/internal/services"
	"screendoc/internal/stage"
	"screendoc/internal/testsupport"
	"screendoc/internal/workflow"
)

type stubHandler struct {
	name    string
	execute func(ctx context.Context, job *queue.Job) error
}

func (s *stubHandler) Prepare(ctx context.Context, job *queue.Job) error { return nil }

func (s *stubHandler) Execute(ctx context.Context, job *queue.Job) error {
	if s.execute != nil {
		return s.execute(ctx, job)
	}
	return nil
}

func (s *stubHandler) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy(s.name)
}

func passthroughStages() workflow.StageSet {
	return workflow.StageSet{
		Extractor: &stubHandler{name: "extractor"},
		Selector:  &stubHandler{name: "selector"},
		Scanner:   &stubHandler{name: "scanner"},
		Narrator:  &stubHandler{name: "narrator"},
		Redactor:  &stubHandler{name: "redactor"},
		Assembler: &stubHandler{name: "assembler"},
	}
}

func waitForStatus(t *testing.T, store *queue.Store, id int64, want queue.Status) *queue.Job {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if job.Status == want {
			return job
		}
		if job.Status == queue.StatusFailed && want != queue.StatusFailed {
			t.Fatalf("job failed while waiting for %s: %s", want, job.ErrorMessage)
		}
		time.Sleep(20 * time.Millisecond)
	}
	job, _ := store.GetByID(context.Background(), id)
	t.Fatalf("timed out waiting for status %s, job at %s", want, job.Status)
	return nil
}

func TestManagerRunsPipelineToCompletion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	stages := passthroughStages()
	// No matches to review, so the narrator routes past the approval gate.
	stages.Narrator = &stubHandler{name: "narrator", execute: func(ctx context.Context, job *queue.Job) error {
		job.Status = queue.StatusApproved
		return nil
	}}

	manager := workflow.NewManager(cfg, store, logging.NewNop(), stages)
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop(context.Background())

	job := testsupport.NewJob(t, store, "/tmp/demo.mp4")
	final := waitForStatus(t, store, job.ID, queue.StatusCompleted)
	if final.ErrorMessage != "" {
		t.Fatalf("completed job carries error message %q", final.ErrorMessage)
	}
	if final.LastHeartbeat != nil {
		t.Fatal("completed job should have no heartbeat")
	}
}

func TestManagerStopsAtApprovalGate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	manager := workflow.NewManager(cfg, store, logging.NewNop(), passthroughStages())
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop(context.Background())

	job := testsupport.NewJob(t, store, "/tmp/demo.mp4")
	waitForStatus(t, store, job.ID, queue.StatusAwaitingApproval)

	// The manager never polls awaiting_approval; the job must stay parked.
	time.Sleep(200 * time.Millisecond)
	current, err := store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if current.Status != queue.StatusAwaitingApproval {
		t.Fatalf("job moved past approval gate to %s", current.Status)
	}
}

func TestManagerParksValidationFailuresForReview(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	stages := passthroughStages()
	stages.Extractor = &stubHandler{name: "extractor", execute: func(ctx context.Context, job *queue.Job) error {
		return services.Wrap(services.ErrValidation, "extracting", "probe source", "Recording too short", nil)
	}}

	manager := workflow.NewManager(cfg, store, logging.NewNop(), stages)
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop(context.Background())

	job := testsupport.NewJob(t, store, "/tmp/short.mp4")
	parked := waitForStatus(t, store, job.ID, queue.StatusReview)
	if !parked.NeedsReview {
		t.Fatal("review job should be flagged for review")
	}
	if parked.ErrorMessage == "" {
		t.Fatal("review job should record the failure message")
	}
}

func TestManagerFailsOnTransientErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	stages := passthroughStages()
	stages.Extractor = &stubHandler{name: "extractor", execute: func(ctx context.Context, job *queue.Job) error {
		return errors.New("ffmpeg crashed")
	}}

	manager := workflow.NewManager(cfg, store, logging.NewNop(), stages)
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop(context.Background())

	job := testsupport.NewJob(t, store, "/tmp/demo.mp4")
	failed := waitForStatus(t, store, job.ID, queue.StatusFailed)
	if failed.ErrorMessage == "" {
		t.Fatal("failed job should record the failure message")
	}
}

func TestManagerResetsStuckJobsOnStart(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	job := testsupport.NewJob(t, store, "/tmp/demo.mp4")
	job.Status = queue.StatusSelecting
	if err := store.Update(context.Background(), job); err != nil {
		t.Fatalf("Update: %v", err)
	}

	stages := passthroughStages()
	stages.Narrator = &stubHandler{name: "narrator", execute: func(ctx context.Context, job *queue.Job) error {
		job.Status = queue.StatusApproved
		return nil
	}}
	manager := workflow.NewManager(cfg, store, logging.NewNop(), stages)
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop(context.Background())

	// The stuck selecting job rolls back to extracted and then runs through.
	waitForStatus(t, store, job.ID, queue.StatusCompleted)
}

func TestManagerHealthChecks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	manager := workflow.NewManager(cfg, store, logging.NewNop(), passthroughStages())
	checks := manager.HealthChecks(context.Background())
	if len(checks) != 6 {
		t.Fatalf("expected 6 health checks, got %d", len(checks))
	}
	for _, check := range checks {
		if !check.Ready {
			t.Fatalf("stub handler %s reported unhealthy", check.Name)
		}
	}
}
