package redact

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FinalImage is one output frame after redaction, in embed order.
type FinalImage struct {
	Position   int    `json:"position"`
	FrameIndex int    `json:"frame_index"`
	Path       string `json:"path"`
	Redacted   bool   `json:"redacted"`
}

// EncodeFinalImages serializes the final image list for the job record.
func EncodeFinalImages(list []FinalImage) (string, error) {
	if len(list) == 0 {
		return "", nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encode final images: %w", err)
	}
	return string(data), nil
}

// DecodeFinalImages parses a stored final image list. Empty input yields nil.
func DecodeFinalImages(raw string) ([]FinalImage, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var list []FinalImage
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("decode final images: %w", err)
	}
	return list, nil
}
