package queue_test

import (
	"context"
	"testing"
	"time"

	"screendoc/internal/queue"
	"screendoc/internal/testsupport"
)

func TestNewJobDefaults(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	job, err := store.NewJob(context.Background(), "/recordings/onboarding_flow-v2.mp4")
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if job.ID == 0 {
		t.Fatal("expected assigned job id")
	}
	if job.Status != queue.StatusPending {
		t.Fatalf("expected pending status, got %s", job.Status)
	}
	if job.Title != "Onboarding Flow V2" {
		t.Fatalf("unexpected inferred title: %q", job.Title)
	}
	if job.CreatedAt.IsZero() || job.UpdatedAt.IsZero() {
		t.Fatal("timestamps must be set")
	}
}

func TestGetByIDMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	job, err := store.GetByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if job != nil {
		t.Fatal("expected nil for missing job")
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	job := testsupport.NewJob(t, store, "/recordings/demo.mp4")
	now := time.Now().UTC()
	job.Status = queue.StatusScanned
	job.FramesDir = "/staging/job-1/frames"
	job.FrameCount = 42
	job.KeyFramesJSON = `[{"index":0,"path":"/staging/job-1/frames/frame_0000.jpg"}]`
	job.MatchesJSON = `[]`
	job.RedactionMode = "pixelate"
	job.LastHeartbeat = &now
	job.NeedsReview = true
	job.ReviewReason = "manual check"
	job.SetProgress("Scanning for PII", "done", 100)
	if err := store.Update(context.Background(), job); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != queue.StatusScanned || got.FrameCount != 42 {
		t.Fatalf("round trip lost fields: %#v", got)
	}
	if got.KeyFramesJSON != job.KeyFramesJSON || got.RedactionMode != "pixelate" {
		t.Fatalf("round trip lost payloads: %#v", got)
	}
	if got.LastHeartbeat == nil {
		t.Fatal("heartbeat lost in round trip")
	}
	if !got.NeedsReview || got.ReviewReason != "manual check" {
		t.Fatalf("review flags lost: %#v", got)
	}
}

func TestFindBySourcePath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	created := testsupport.NewJob(t, store, "/recordings/demo.mp4")
	found, err := store.FindBySourcePath(context.Background(), "/recordings/demo.mp4")
	if err != nil {
		t.Fatalf("FindBySourcePath: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatalf("expected job %d, got %#v", created.ID, found)
	}

	missing, err := store.FindBySourcePath(context.Background(), "/recordings/other.mp4")
	if err != nil {
		t.Fatalf("FindBySourcePath: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for unknown source path")
	}
}

func TestNextForStatusesOldestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	first := testsupport.NewJob(t, store, "/recordings/a.mp4")
	second := testsupport.NewJob(t, store, "/recordings/b.mp4")
	second.Status = queue.StatusExtracted
	if err := store.Update(context.Background(), second); err != nil {
		t.Fatalf("Update: %v", err)
	}

	next, err := store.NextForStatuses(context.Background(), queue.StatusPending, queue.StatusExtracted)
	if err != nil {
		t.Fatalf("NextForStatuses: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected oldest job %d, got %#v", first.ID, next)
	}

	none, err := store.NextForStatuses(context.Background(), queue.StatusCompleted)
	if err != nil {
		t.Fatalf("NextForStatuses: %v", err)
	}
	if none != nil {
		t.Fatal("expected nil when no job matches")
	}
}

func TestResetStuckProcessingRollsBackStageStatuses(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	cases := map[queue.Status]queue.Status{
		queue.StatusExtracting: queue.StatusPending,
		queue.StatusSelecting:  queue.StatusExtracted,
		queue.StatusScanning:   queue.StatusSelected,
		queue.StatusNarrating:  queue.StatusScanned,
		queue.StatusRedacting:  queue.StatusApproved,
		queue.StatusAssembling: queue.StatusRedacted,
	}

	ids := make(map[queue.Status]int64, len(cases))
	for from := range cases {
		job := testsupport.NewJob(t, store, "/recordings/"+string(from)+".mp4")
		job.Status = from
		if err := store.Update(context.Background(), job); err != nil {
			t.Fatalf("Update: %v", err)
		}
		ids[from] = job.ID
	}

	reset, err := store.ResetStuckProcessing(context.Background())
	if err != nil {
		t.Fatalf("ResetStuckProcessing: %v", err)
	}
	if reset != int64(len(cases)) {
		t.Fatalf("expected %d resets, got %d", len(cases), reset)
	}
	for from, want := range cases {
		got, err := store.GetByID(context.Background(), ids[from])
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Status != want {
			t.Fatalf("%s should roll back to %s, got %s", from, want, got.Status)
		}
	}
}

func TestReclaimStaleProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	stale := testsupport.NewJob(t, store, "/recordings/stale.mp4")
	old := time.Now().Add(-time.Hour)
	stale.Status = queue.StatusScanning
	stale.LastHeartbeat = &old
	if err := store.Update(context.Background(), stale); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fresh := testsupport.NewJob(t, store, "/recordings/fresh.mp4")
	now := time.Now()
	fresh.Status = queue.StatusScanning
	fresh.LastHeartbeat = &now
	if err := store.Update(context.Background(), fresh); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reclaimed, err := store.ReclaimStaleProcessing(context.Background(), time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("ReclaimStaleProcessing: %v", err)
	}
	if reclaimed != 1 {
		t.Fatalf("expected 1 reclaimed job, got %d", reclaimed)
	}

	gotStale, _ := store.GetByID(context.Background(), stale.ID)
	if gotStale.Status != queue.StatusSelected {
		t.Fatalf("stale scanning job should roll back to selected, got %s", gotStale.Status)
	}
	gotFresh, _ := store.GetByID(context.Background(), fresh.ID)
	if gotFresh.Status != queue.StatusScanning {
		t.Fatalf("fresh job must keep its status, got %s", gotFresh.Status)
	}
}

func TestRetryFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	job := testsupport.NewJob(t, store, "/recordings/demo.mp4")
	job.SetFailed("ffmpeg crashed")
	if err := store.Update(context.Background(), job); err != nil {
		t.Fatalf("Update: %v", err)
	}

	retried, err := store.RetryFailed(context.Background())
	if err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}
	if retried != 1 {
		t.Fatalf("expected 1 retried job, got %d", retried)
	}
	got, _ := store.GetByID(context.Background(), job.ID)
	if got.Status != queue.StatusPending {
		t.Fatalf("expected pending after retry, got %s", got.Status)
	}
	if got.ErrorMessage != "" {
		t.Fatalf("error message should clear on retry, got %q", got.ErrorMessage)
	}
}

func TestFailInFlight(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	processing := testsupport.NewJob(t, store, "/recordings/a.mp4")
	processing.Status = queue.StatusExtracting
	if err := store.Update(context.Background(), processing); err != nil {
		t.Fatalf("Update: %v", err)
	}
	parked := testsupport.NewJob(t, store, "/recordings/b.mp4")
	parked.Status = queue.StatusAwaitingApproval
	if err := store.Update(context.Background(), parked); err != nil {
		t.Fatalf("Update: %v", err)
	}

	failed, err := store.FailInFlight(context.Background(), queue.DaemonStopReason)
	if err != nil {
		t.Fatalf("FailInFlight: %v", err)
	}
	if failed != 1 {
		t.Fatalf("expected 1 failed job, got %d", failed)
	}
	gotParked, _ := store.GetByID(context.Background(), parked.ID)
	if gotParked.Status != queue.StatusAwaitingApproval {
		t.Fatalf("parked job must survive shutdown, got %s", gotParked.Status)
	}
	gotProcessing, _ := store.GetByID(context.Background(), processing.ID)
	if gotProcessing.Status != queue.StatusFailed || gotProcessing.ErrorMessage != queue.DaemonStopReason {
		t.Fatalf("processing job should fail with stop reason: %#v", gotProcessing)
	}
}

func TestStatsAndHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	statuses := []queue.Status{
		queue.StatusPending,
		queue.StatusScanning,
		queue.StatusAwaitingApproval,
		queue.StatusCompleted,
		queue.StatusFailed,
	}
	for _, status := range statuses {
		job := testsupport.NewJob(t, store, "/recordings/"+string(status)+".mp4")
		if status != queue.StatusPending {
			job.Status = status
			if err := store.Update(context.Background(), job); err != nil {
				t.Fatalf("Update: %v", err)
			}
		}
	}

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	for _, status := range statuses {
		if stats[status] != 1 {
			t.Fatalf("expected 1 job in %s, got %d", status, stats[status])
		}
	}

	health, err := store.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Total != len(statuses) {
		t.Fatalf("expected total %d, got %d", len(statuses), health.Total)
	}
	if health.Processing != 1 || health.AwaitingApproval != 1 || health.Failed != 1 || health.Completed != 1 {
		t.Fatalf("unexpected health summary: %#v", health)
	}
}

func TestClearHelpers(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	done := testsupport.NewJob(t, store, "/recordings/done.mp4")
	done.Status = queue.StatusCompleted
	if err := store.Update(context.Background(), done); err != nil {
		t.Fatalf("Update: %v", err)
	}
	failed := testsupport.NewJob(t, store, "/recordings/broken.mp4")
	failed.SetFailed("boom")
	if err := store.Update(context.Background(), failed); err != nil {
		t.Fatalf("Update: %v", err)
	}
	testsupport.NewJob(t, store, "/recordings/waiting.mp4")

	if n, err := store.ClearCompleted(context.Background()); err != nil || n != 1 {
		t.Fatalf("ClearCompleted = %d, %v", n, err)
	}
	if n, err := store.ClearFailed(context.Background()); err != nil || n != 1 {
		t.Fatalf("ClearFailed = %d, %v", n, err)
	}

	remaining, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected 1 remaining job, got %d", len(remaining))
	}

	if n, err := store.Clear(context.Background()); err != nil || n != 1 {
		t.Fatalf("Clear = %d, %v", n, err)
	}
}

func TestRemove(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	job := testsupport.NewJob(t, store, "/recordings/demo.mp4")
	removed, err := store.Remove(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !removed {
		t.Fatal("expected removal")
	}
	removed, err = store.Remove(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if removed {
		t.Fatal("second removal should report false")
	}
}
