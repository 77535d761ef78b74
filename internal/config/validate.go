package config

import (
	"fmt"
	"slices"
)

var validRedactionModes = []string{"blur", "black", "pixelate"}
var validLogFormats = []string{"console", "json"}
var validLogLevels = []string{"debug", "info", "warn", "error"}
var validOptionalDetectors = []string{"url", "date"}

// Validate checks the configuration for values that would break the pipeline.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateSelection(); err != nil {
		return err
	}
	if err := c.validatePII(); err != nil {
		return err
	}
	if err := c.validateRedaction(); err != nil {
		return err
	}
	if err := c.validateNarrative(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateRetention(); err != nil {
		return err
	}
	return c.validateNotifications()
}

func (c *Config) validatePaths() error {
	if c.Paths.StagingDir == "" {
		return fmt.Errorf("paths.staging_dir must not be empty")
	}
	if c.Paths.OutputDir == "" {
		return fmt.Errorf("paths.output_dir must not be empty")
	}
	if c.Paths.LogDir == "" {
		return fmt.Errorf("paths.log_dir must not be empty")
	}
	return nil
}

func (c *Config) validateExtraction() error {
	if c.Extraction.FrameInterval <= 0 {
		return fmt.Errorf("extraction.frame_interval must be positive, got %d", c.Extraction.FrameInterval)
	}
	if c.Extraction.MaxFrames < 3 {
		return fmt.Errorf("extraction.max_frames must be at least 3, got %d", c.Extraction.MaxFrames)
	}
	if c.Extraction.MaxWidth <= 0 {
		return fmt.Errorf("extraction.max_width must be positive, got %d", c.Extraction.MaxWidth)
	}
	if c.Extraction.TimeoutSeconds <= 0 {
		return fmt.Errorf("extraction.timeout_seconds must be positive, got %d", c.Extraction.TimeoutSeconds)
	}
	return nil
}

func (c *Config) validateSelection() error {
	if c.Selection.MaxEmbed <= 0 {
		return fmt.Errorf("selection.max_embed must be positive, got %d", c.Selection.MaxEmbed)
	}
	if c.Selection.StabilityWindow <= 0 {
		return fmt.Errorf("selection.stability_window must be positive, got %d", c.Selection.StabilityWindow)
	}
	if c.Selection.AnchorTailFrames < 0 {
		return fmt.Errorf("selection.anchor_tail_frames must not be negative, got %d", c.Selection.AnchorTailFrames)
	}
	if c.Selection.CompletionZoneStart <= 0 || c.Selection.CompletionZoneStart >= 1 {
		return fmt.Errorf("selection.completion_zone_start must be between 0 and 1, got %g", c.Selection.CompletionZoneStart)
	}
	if c.Selection.FinalZoneStart <= c.Selection.CompletionZoneStart || c.Selection.FinalZoneStart >= 1 {
		return fmt.Errorf("selection.final_zone_start must be between completion_zone_start and 1, got %g", c.Selection.FinalZoneStart)
	}
	if c.Selection.CompletionZoneBoost < 1 {
		return fmt.Errorf("selection.completion_zone_boost must be at least 1, got %g", c.Selection.CompletionZoneBoost)
	}
	if c.Selection.FinalZoneBoost < 1 {
		return fmt.Errorf("selection.final_zone_boost must be at least 1, got %g", c.Selection.FinalZoneBoost)
	}
	if c.Selection.MaxSegments <= 0 {
		return fmt.Errorf("selection.max_segments must be positive, got %d", c.Selection.MaxSegments)
	}
	return nil
}

func (c *Config) validatePII() error {
	for _, name := range c.PII.EnableOptional {
		if !slices.Contains(validOptionalDetectors, name) {
			return fmt.Errorf("pii.enable_optional: unknown detector %q (valid: %v)", name, validOptionalDetectors)
		}
	}
	if c.PII.NERTimeout <= 0 {
		return fmt.Errorf("pii.ner_timeout_seconds must be positive, got %d", c.PII.NERTimeout)
	}
	return nil
}

func (c *Config) validateRedaction() error {
	if !slices.Contains(validRedactionModes, c.Redaction.DefaultMode) {
		return fmt.Errorf("redaction.default_mode must be one of %v, got %q", validRedactionModes, c.Redaction.DefaultMode)
	}
	return nil
}

func (c *Config) validateNarrative() error {
	if c.Narrative.BaseURL == "" {
		return fmt.Errorf("narrative.base_url must not be empty")
	}
	if c.Narrative.Model == "" {
		return fmt.Errorf("narrative.model must not be empty")
	}
	if c.Narrative.MaxTokens <= 0 {
		return fmt.Errorf("narrative.max_tokens must be positive, got %d", c.Narrative.MaxTokens)
	}
	if c.Narrative.TimeoutSeconds <= 0 {
		return fmt.Errorf("narrative.timeout_seconds must be positive, got %d", c.Narrative.TimeoutSeconds)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.QueuePollInterval <= 0 {
		return fmt.Errorf("workflow.queue_poll_interval must be positive, got %d", c.Workflow.QueuePollInterval)
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		return fmt.Errorf("workflow.error_retry_interval must be positive, got %d", c.Workflow.ErrorRetryInterval)
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		return fmt.Errorf("workflow.heartbeat_interval must be positive, got %d", c.Workflow.HeartbeatInterval)
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return fmt.Errorf("workflow.heartbeat_timeout must exceed heartbeat_interval, got %d", c.Workflow.HeartbeatTimeout)
	}
	if c.Workflow.Workers <= 0 {
		return fmt.Errorf("workflow.workers must be positive, got %d", c.Workflow.Workers)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !slices.Contains(validLogFormats, c.Logging.Format) {
		return fmt.Errorf("logging.format must be one of %v, got %q", validLogFormats, c.Logging.Format)
	}
	if !slices.Contains(validLogLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of %v, got %q", validLogLevels, c.Logging.Level)
	}
	if c.Logging.RetentionDays <= 0 {
		return fmt.Errorf("logging.retention_days must be positive, got %d", c.Logging.RetentionDays)
	}
	return nil
}

func (c *Config) validateRetention() error {
	if c.Retention.ArtifactMinutes <= 0 {
		return fmt.Errorf("retention.artifact_minutes must be positive, got %d", c.Retention.ArtifactMinutes)
	}
	if c.Retention.SweepIntervalMinutes <= 0 {
		return fmt.Errorf("retention.sweep_interval_minutes must be positive, got %d", c.Retention.SweepIntervalMinutes)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic != "" && c.Notifications.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("notifications.request_timeout_seconds must be positive, got %d", c.Notifications.RequestTimeoutSeconds)
	}
	return nil
}
