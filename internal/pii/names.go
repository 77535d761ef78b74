package pii

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"screendoc/internal/ocr"
)

// NameDetector recognizes person names in text regions. Implementations
// that cannot run in the current environment report unavailability instead
// of erroring; scans then proceed without name matches.
type NameDetector interface {
	Available() bool
	DetectNames(ctx context.Context, regions []ocr.TextRegion) ([]Match, error)
}

// UnavailableNameDetector is the explicit no-op implementation.
type UnavailableNameDetector struct{}

func (UnavailableNameDetector) Available() bool { return false }

func (UnavailableNameDetector) DetectNames(context.Context, []ocr.TextRegion) ([]Match, error) {
	return nil, nil
}

// CommandNameDetector shells out to an external NER command. Regions are
// written to stdin as a JSON array; the command prints a JSON array of
// objects with "region_index" and "text" fields for each detected name.
type CommandNameDetector struct {
	command string
	timeout time.Duration
}

// NewCommandNameDetector constructs a CommandNameDetector. An empty command
// yields a detector that reports unavailable.
func NewCommandNameDetector(command string, timeout time.Duration) *CommandNameDetector {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &CommandNameDetector{command: strings.TrimSpace(command), timeout: timeout}
}

func (d *CommandNameDetector) Available() bool {
	if d.command == "" {
		return false
	}
	_, err := exec.LookPath(d.command)
	return err == nil
}

type nameResult struct {
	RegionIndex int    `json:"region_index"`
	Text        string `json:"text"`
}

func (d *CommandNameDetector) DetectNames(ctx context.Context, regions []ocr.TextRegion) ([]Match, error) {
	if len(regions) == 0 {
		return nil, nil
	}

	input, err := json.Marshal(regions)
	if err != nil {
		return nil, fmt.Errorf("encode regions: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, d.command)
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("name detector: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}

	trimmed := bytes.TrimSpace(stdout.Bytes())
	if len(trimmed) == 0 {
		return nil, nil
	}
	var results []nameResult
	if err := json.Unmarshal(trimmed, &results); err != nil {
		return nil, fmt.Errorf("decode name results: %w", err)
	}

	var matches []Match
	for _, result := range results {
		if result.RegionIndex < 0 || result.RegionIndex >= len(regions) {
			continue
		}
		text := strings.TrimSpace(result.Text)
		if text == "" {
			continue
		}
		matches = append(matches, Match{
			Region:     regions[result.RegionIndex],
			Type:       TypePersonName,
			Confidence: ConfidenceMedium,
			Text:       text,
		})
	}
	return matches, nil
}
