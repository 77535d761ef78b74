package redact

import (
	"fmt"
	"strings"
)

// Mode selects how redacted regions are rendered. One mode applies to every
// frame and every match in a batch.
type Mode string

const (
	ModeBlur     Mode = "blur"
	ModeBlack    Mode = "black"
	ModePixelate Mode = "pixelate"
)

// ParseMode validates a mode string. Unknown values are rejected at the
// boundary so render code never sees them.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeBlur:
		return ModeBlur, nil
	case ModeBlack:
		return ModeBlack, nil
	case ModePixelate:
		return ModePixelate, nil
	default:
		return "", fmt.Errorf("unknown redaction mode %q (valid: blur, black, pixelate)", value)
	}
}
