package config

// Default values applied before a config file is decoded. Path defaults live
// under the user home directory and are expanded during normalization.
const (
	defaultStagingDir = "~/.local/share/screendoc/staging"
	defaultOutputDir  = "~/Documents/screendoc"
	defaultLogDir     = "~/.local/share/screendoc/logs"

	defaultFrameInterval     = 2
	defaultMaxFrames         = 50
	defaultMaxWidth          = 1920
	defaultExtractionTimeout = 300

	defaultMaxEmbed            = 12
	defaultStabilityWindow     = 3
	defaultTailStabilityBonus  = 20.0
	defaultAnchorTailFrames    = 5
	defaultCompletionZoneStart = 0.70
	defaultFinalZoneStart      = 0.90
	defaultCompletionBoost     = 1.5
	defaultFinalBoost          = 2.0
	defaultMaxSegments         = 5

	defaultOCRTimeout = 60
	defaultNERTimeout = 60

	defaultRedactionMode = "blur"

	defaultNarrativeBaseURL = "https://openrouter.ai/api/v1"
	defaultNarrativeModel   = "anthropic/claude-sonnet-4"
	defaultNarrativeTokens  = 4000
	defaultNarrativeTimeout = 120

	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 30
	defaultHeartbeatInterval  = 10
	defaultHeartbeatTimeout   = 120
	defaultWorkers            = 4

	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 7

	defaultArtifactMinutes      = 60
	defaultSweepIntervalMinutes = 10

	defaultNtfyTimeout = 10
)

// Default returns the built-in configuration used when no file is present.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
		},
		Extraction: Extraction{
			FrameInterval:  defaultFrameInterval,
			MaxFrames:      defaultMaxFrames,
			MaxWidth:       defaultMaxWidth,
			TimeoutSeconds: defaultExtractionTimeout,
		},
		Selection: Selection{
			MaxEmbed:            defaultMaxEmbed,
			StabilityWindow:     defaultStabilityWindow,
			TailStabilityBonus:  defaultTailStabilityBonus,
			AnchorTailFrames:    defaultAnchorTailFrames,
			CompletionZoneStart: defaultCompletionZoneStart,
			FinalZoneStart:      defaultFinalZoneStart,
			CompletionZoneBoost: defaultCompletionBoost,
			FinalZoneBoost:      defaultFinalBoost,
			MaxSegments:         defaultMaxSegments,
		},
		OCR: OCR{
			Command:        "",
			TimeoutSeconds: defaultOCRTimeout,
		},
		PII: PII{
			EnableOptional: nil,
			NERCommand:     "",
			NERTimeout:     defaultNERTimeout,
		},
		Redaction: Redaction{
			DefaultMode:           defaultRedactionMode,
			KeepUnredactedOnError: false,
		},
		Narrative: Narrative{
			BaseURL:        defaultNarrativeBaseURL,
			Model:          defaultNarrativeModel,
			MaxTokens:      defaultNarrativeTokens,
			TimeoutSeconds: defaultNarrativeTimeout,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
			Workers:            defaultWorkers,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Retention: Retention{
			ArtifactMinutes:      defaultArtifactMinutes,
			SweepIntervalMinutes: defaultSweepIntervalMinutes,
		},
		Notifications: Notifications{
			NtfyTopic:             "",
			RequestTimeoutSeconds: defaultNtfyTimeout,
		},
	}
}
