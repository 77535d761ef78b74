package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"screendoc/internal/logging"
)

// TextRegion is one recognized text block with its pixel bounding box.
type TextRegion struct {
	Text       string  `json:"text"`
	X1         int     `json:"x1"`
	Y1         int     `json:"y1"`
	X2         int     `json:"x2"`
	Y2         int     `json:"y2"`
	Confidence float64 `json:"confidence"`
}

// Engine wraps the external OCR command. The command is invoked per image
// with the image path as its single argument and must print a JSON array of
// text regions on stdout.
type Engine struct {
	command string
	timeout time.Duration
	logger  *slog.Logger
}

// NewEngine constructs an Engine. An empty command yields a disabled engine
// that always returns no regions.
func NewEngine(command string, timeout time.Duration, logger *slog.Logger) *Engine {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Engine{
		command: strings.TrimSpace(command),
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "ocr"),
	}
}

// Available reports whether the engine can recognize text at all.
func (e *Engine) Available() bool {
	if e.command == "" {
		return false
	}
	_, err := exec.LookPath(e.command)
	return err == nil
}

// ExtractRegions runs recognition on one image. Missing files, command
// failures, and malformed output all degrade to an empty region list.
func (e *Engine) ExtractRegions(ctx context.Context, imagePath string) []TextRegion {
	if e.command == "" {
		return nil
	}
	if _, err := os.Stat(imagePath); err != nil {
		e.logger.Warn("image missing for recognition", logging.String("path", imagePath))
		return nil
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, e.command, imagePath)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		e.logger.Warn("recognition command failed",
			logging.String("path", imagePath),
			logging.String("stderr", strings.TrimSpace(stderr.String())),
			logging.Error(err))
		return nil
	}

	regions, err := parseRegions(stdout.Bytes())
	if err != nil {
		e.logger.Warn("recognition output malformed",
			logging.String("path", imagePath),
			logging.Error(err))
		return nil
	}
	return regions
}

func parseRegions(data []byte) ([]TextRegion, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	var regions []TextRegion
	if err := json.Unmarshal(trimmed, &regions); err != nil {
		return nil, fmt.Errorf("decode regions: %w", err)
	}
	out := regions[:0]
	for _, region := range regions {
		if strings.TrimSpace(region.Text) == "" {
			continue
		}
		out = append(out, region)
	}
	return out, nil
}
