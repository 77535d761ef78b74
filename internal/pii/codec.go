package pii

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FrameMatches groups scan results for one key frame. Position is the
// 1-based key-frame position; FrameIndex is the original extraction index.
type FrameMatches struct {
	Position    int     `json:"position"`
	FrameIndex  int     `json:"frame_index"`
	Path        string  `json:"path"`
	PreviewPath string  `json:"preview_path,omitempty"`
	Matches     []Match `json:"matches,omitempty"`
}

// TotalMatches counts matches across all frames.
func TotalMatches(list []FrameMatches) int {
	total := 0
	for _, fm := range list {
		total += len(fm.Matches)
	}
	return total
}

// EncodeFrameMatches serializes scan results for storage in the job record.
func EncodeFrameMatches(list []FrameMatches) (string, error) {
	if len(list) == 0 {
		return "", nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encode matches: %w", err)
	}
	return string(data), nil
}

// DecodeFrameMatches parses stored scan results. Empty input yields nil.
func DecodeFrameMatches(raw string) ([]FrameMatches, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var list []FrameMatches
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("decode matches: %w", err)
	}
	return list, nil
}
