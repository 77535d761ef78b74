package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a processing job.
type Status string

const (
	StatusPending          Status = "pending"
	StatusExtracting       Status = "extracting"
	StatusExtracted        Status = "extracted"
	StatusSelecting        Status = "selecting"
	StatusSelected         Status = "selected"
	StatusScanning         Status = "scanning"
	StatusScanned          Status = "scanned"
	StatusNarrating        Status = "narrating"
	StatusAwaitingApproval Status = "awaiting_approval"
	StatusApproved         Status = "approved"
	StatusRedacting        Status = "redacting"
	StatusRedacted         Status = "redacted"
	StatusAssembling       Status = "assembling"
	StatusCompleted        Status = "completed"
	StatusFailed           Status = "failed"
	StatusReview           Status = "review"
)

// DaemonStopReason is the error message set when jobs are failed due to daemon shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusPending,
	StatusExtracting,
	StatusExtracted,
	StatusSelecting,
	StatusSelected,
	StatusScanning,
	StatusScanned,
	StatusNarrating,
	StatusAwaitingApproval,
	StatusApproved,
	StatusRedacting,
	StatusRedacted,
	StatusAssembling,
	StatusCompleted,
	StatusFailed,
	StatusReview,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusExtracting: {},
	StatusSelecting:  {},
	StatusScanning:   {},
	StatusNarrating:  {},
	StatusRedacting:  {},
	StatusAssembling: {},
}

type statusTransition struct {
	from Status
	to   Status
}

// stageRollbackTransitions map in-flight statuses back to the status a stage
// starts from, so interrupted work is retried rather than stranded.
var stageRollbackTransitions = []statusTransition{
	{from: StatusExtracting, to: StatusPending},
	{from: StatusSelecting, to: StatusExtracted},
	{from: StatusScanning, to: StatusSelected},
	{from: StatusNarrating, to: StatusScanned},
	{from: StatusRedacting, to: StatusApproved},
	{from: StatusAssembling, to: StatusRedacted},
}

func processingRollbackTransitions() []statusTransition {
	return stageRollbackTransitions
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total            int
	Pending          int
	Processing       int
	AwaitingApproval int
	Failed           int
	Completed        int
}

// Job represents a processing job persisted in SQLite.
type Job struct {
	ID              int64
	SourcePath      string
	Title           string
	Status          Status
	FramesDir       string
	FrameCount      int
	KeyFramesJSON   string
	MatchesJSON     string
	DecisionsJSON   string
	RedactionMode   string
	NarrativePath   string
	FinalImagesJSON string
	DocumentPath    string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	LastHeartbeat   *time.Time
	NeedsReview     bool
	ReviewReason    string
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight operation.
func (j Job) IsProcessing() bool {
	_, ok := processingStatuses[j.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight operation.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsTerminal reports whether a job has reached a final state.
func (j Job) IsTerminal() bool {
	switch j.Status {
	case StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// SetProgress updates all three progress fields atomically.
// Use this instead of setting ProgressStage, ProgressPercent, and
// ProgressMessage individually.
func (j *Job) SetProgress(stage, message string, percent float64) {
	j.ProgressStage = stage
	j.ProgressMessage = message
	j.ProgressPercent = percent
}

// SetProgressComplete sets progress to 100% with the given stage and message.
func (j *Job) SetProgressComplete(stage, message string) {
	j.SetProgress(stage, message, 100)
}

// SetFailed marks the job as failed with the given error message.
// Clears heartbeat and sets progress fields appropriately.
func (j *Job) SetFailed(message string) {
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.ProgressPercent = 0
	j.ProgressMessage = message
	j.LastHeartbeat = nil
	j.ProgressStage = "Failed"
}

// StageKey returns the normalized stage identifier used in CLI presentation.
func (s Status) StageKey() string {
	switch s {
	case "":
		return ""
	case StatusPending:
		return "planned"
	case StatusCompleted:
		return "final"
	default:
		if _, ok := statusSet[s]; ok {
			return string(s)
		}
		return ""
	}
}
