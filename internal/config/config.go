package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	OutputDir  string `toml:"output_dir"`
	LogDir     string `toml:"log_dir"`
}

// Extraction contains configuration for ffmpeg frame sampling.
type Extraction struct {
	FrameInterval  int `toml:"frame_interval"`
	MaxFrames      int `toml:"max_frames"`
	MaxWidth       int `toml:"max_width"`
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Selection contains the key-frame selection budget and heuristic knobs.
// The zone boundaries and boosts are untuned priors; they are exposed here
// rather than hard-coded so they can be adjusted per workload.
type Selection struct {
	MaxEmbed            int     `toml:"max_embed"`
	StabilityWindow     int     `toml:"stability_window"`
	TailStabilityBonus  float64 `toml:"tail_stability_bonus"`
	AnchorTailFrames    int     `toml:"anchor_tail_frames"`
	CompletionZoneStart float64 `toml:"completion_zone_start"`
	FinalZoneStart      float64 `toml:"final_zone_start"`
	CompletionZoneBoost float64 `toml:"completion_zone_boost"`
	FinalZoneBoost      float64 `toml:"final_zone_boost"`
	MaxSegments         int     `toml:"max_segments"`
}

// OCR contains configuration for the external text-recognition command.
type OCR struct {
	Command        string `toml:"command"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// PII contains configuration for the pattern scanner and the optional
// person-name detector.
type PII struct {
	EnableOptional []string `toml:"enable_optional"`
	NERCommand     string   `toml:"ner_command"`
	NERTimeout     int      `toml:"ner_timeout_seconds"`
}

// Redaction contains configuration for rendering redacted images.
type Redaction struct {
	DefaultMode           string `toml:"default_mode"`
	KeepUnredactedOnError bool   `toml:"keep_unredacted_on_error"`
}

// Narrative contains connection settings for the vision-language model that
// writes the step-by-step documentation.
type Narrative struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	MaxTokens      int    `toml:"max_tokens"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Workflow contains configuration for daemon timing and parallelism.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
	HeartbeatInterval  int `toml:"heartbeat_interval"`
	HeartbeatTimeout   int `toml:"heartbeat_timeout"`
	Workers            int `toml:"workers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Retention contains configuration for workspace artifact cleanup.
type Retention struct {
	ArtifactMinutes      int `toml:"artifact_minutes"`
	SweepIntervalMinutes int `toml:"sweep_interval_minutes"`
}

// Notifications contains settings for ntfy push notifications. An empty
// topic URL disables notifications entirely.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Config encapsulates all configuration values for screendoc.
//
// Configuration sections by subsystem:
//   - Paths: staging, output, and log directories
//   - Extraction: ffmpeg frame sampling
//   - Selection: key-frame budget and heuristics
//   - OCR: external text-recognition command
//   - PII: optional detectors and name recognition
//   - Redaction: default rendering mode and failure policy
//   - Narrative: vision-language model connection
//   - Workflow: daemon polling intervals and worker pool size
//   - Logging: log format, level, and retention
//   - Retention: workspace artifact cleanup
//   - Notifications: ntfy push notifications
type Config struct {
	Paths         Paths         `toml:"paths"`
	Extraction    Extraction    `toml:"extraction"`
	Selection     Selection     `toml:"selection"`
	OCR           OCR           `toml:"ocr"`
	PII           PII           `toml:"pii"`
	Redaction     Redaction     `toml:"redaction"`
	Narrative     Narrative     `toml:"narrative"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
	Retention     Retention     `toml:"retention"`
	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/screendoc/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("screendoc.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for frame extraction.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
