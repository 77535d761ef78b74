package deps

import "screendoc/internal/config"

// Requirements builds the dependency list for the given configuration.
// FFmpeg is mandatory; text recognition and name detection degrade
// gracefully when their commands are missing, so they are optional.
func Requirements(cfg *config.Config) []Requirement {
	requirements := []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for frame extraction",
		},
	}
	if cfg.OCR.Command != "" {
		requirements = append(requirements, Requirement{
			Name:        "OCR",
			Command:     cfg.OCR.Command,
			Description: "Extracts on-screen text for PII scanning",
			Optional:    true,
		})
	}
	if cfg.PII.NERCommand != "" {
		requirements = append(requirements, Requirement{
			Name:        "Name detector",
			Command:     cfg.PII.NERCommand,
			Description: "Flags personal names in recognized text",
			Optional:    true,
		})
	}
	return requirements
}
