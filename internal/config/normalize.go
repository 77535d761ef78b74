package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStrings()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStrings() {
	c.Redaction.DefaultMode = strings.ToLower(strings.TrimSpace(c.Redaction.DefaultMode))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Narrative.BaseURL = strings.TrimRight(strings.TrimSpace(c.Narrative.BaseURL), "/")
	c.Narrative.Model = strings.TrimSpace(c.Narrative.Model)
	c.OCR.Command = strings.TrimSpace(c.OCR.Command)
	c.PII.NERCommand = strings.TrimSpace(c.PII.NERCommand)

	optional := make([]string, 0, len(c.PII.EnableOptional))
	for _, name := range c.PII.EnableOptional {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			optional = append(optional, name)
		}
	}
	c.PII.EnableOptional = optional
}
