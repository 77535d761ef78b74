package keyframes

import (
	"encoding/json"
	"fmt"
	"strings"
)

// KeyFrame is a selected frame persisted against the job. Index is the
// original extraction index; the slice order gives the 1-based position used
// by document frame markers.
type KeyFrame struct {
	Index int    `json:"index"`
	Path  string `json:"path"`
}

// Encode serializes key frames for storage in the job record.
func Encode(list []KeyFrame) (string, error) {
	if len(list) == 0 {
		return "", nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encode key frames: %w", err)
	}
	return string(data), nil
}

// Decode parses a stored key-frame list. Empty input yields an empty slice.
func Decode(raw string) ([]KeyFrame, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var list []KeyFrame
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("decode key frames: %w", err)
	}
	return list, nil
}
