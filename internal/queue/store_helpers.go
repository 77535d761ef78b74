package queue

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const jobColumns = `id, source_path, title, status, frames_dir, frame_count,
    key_frames_json, matches_json, decisions_json, redaction_mode,
    narrative_path, final_images_json, document_path, error_message,
    created_at, updated_at, progress_stage, progress_percent, progress_message,
    last_heartbeat, needs_review, review_reason`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(scanner rowScanner) (*Job, error) {
	var (
		job             Job
		sourcePath      sql.NullString
		title           sql.NullString
		framesDir       sql.NullString
		keyFramesJSON   sql.NullString
		matchesJSON     sql.NullString
		decisionsJSON   sql.NullString
		redactionMode   sql.NullString
		narrativePath   sql.NullString
		finalImagesJSON sql.NullString
		documentPath    sql.NullString
		errorMessage    sql.NullString
		createdAt       string
		updatedAt       string
		progressStage   sql.NullString
		progressMessage sql.NullString
		lastHeartbeat   sql.NullString
		needsReview     int
		reviewReason    sql.NullString
	)

	if err := scanner.Scan(
		&job.ID,
		&sourcePath,
		&title,
		&job.Status,
		&framesDir,
		&job.FrameCount,
		&keyFramesJSON,
		&matchesJSON,
		&decisionsJSON,
		&redactionMode,
		&narrativePath,
		&finalImagesJSON,
		&documentPath,
		&errorMessage,
		&createdAt,
		&updatedAt,
		&progressStage,
		&job.ProgressPercent,
		&progressMessage,
		&lastHeartbeat,
		&needsReview,
		&reviewReason,
	); err != nil {
		return nil, err
	}

	job.SourcePath = sourcePath.String
	job.Title = title.String
	job.FramesDir = framesDir.String
	job.KeyFramesJSON = keyFramesJSON.String
	job.MatchesJSON = matchesJSON.String
	job.DecisionsJSON = decisionsJSON.String
	job.RedactionMode = redactionMode.String
	job.NarrativePath = narrativePath.String
	job.FinalImagesJSON = finalImagesJSON.String
	job.DocumentPath = documentPath.String
	job.ErrorMessage = errorMessage.String
	job.ProgressStage = progressStage.String
	job.ProgressMessage = progressMessage.String
	job.NeedsReview = needsReview != 0
	job.ReviewReason = reviewReason.String

	created, err := parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	job.CreatedAt = created

	updated, err := parseTimestamp(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	job.UpdatedAt = updated

	if lastHeartbeat.Valid && strings.TrimSpace(lastHeartbeat.String) != "" {
		hb, err := parseTimestamp(lastHeartbeat.String)
		if err != nil {
			return nil, fmt.Errorf("parse last_heartbeat: %w", err)
		}
		job.LastHeartbeat = &hb
	}

	return &job, nil
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil || value.IsZero() {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}

var titleCaser = cases.Title(language.English)

// inferTitleFromPath derives a human-readable job title from a recording
// filename: "onboarding_flow-v2.mp4" becomes "Onboarding Flow V2".
func inferTitleFromPath(sourcePath string) string {
	base := filepath.Base(strings.TrimSpace(sourcePath))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	replacer := strings.NewReplacer("_", " ", "-", " ", ".", " ")
	cleaned := strings.Join(strings.Fields(replacer.Replace(base)), " ")
	if cleaned == "" {
		return "Untitled Recording"
	}
	return titleCaser.String(cleaned)
}
