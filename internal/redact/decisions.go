package redact

import (
	"encoding/json"
	"fmt"
	"strings"

	"screendoc/internal/pii"
)

// Decision records a reviewer's call against one match, addressed by its
// index in the frame's match-list snapshot.
type Decision struct {
	MatchIndex int  `json:"match_index"`
	Redact     bool `json:"redact"`
}

// FrameDecisions groups decisions for one key frame by its 1-based position.
type FrameDecisions struct {
	Position  int        `json:"position"`
	Decisions []Decision `json:"decisions"`
}

// Resolve returns the matches to redact for one frame. With no stored
// decisions every match is redacted; with decisions, exactly the matches
// marked redact=true come back. Out-of-range indices are ignored.
func Resolve(matches []pii.Match, decisions []Decision) []pii.Match {
	if decisions == nil {
		out := make([]pii.Match, len(matches))
		copy(out, matches)
		return out
	}

	var out []pii.Match
	seen := make(map[int]bool, len(decisions))
	for _, d := range decisions {
		if d.MatchIndex < 0 || d.MatchIndex >= len(matches) {
			continue
		}
		if seen[d.MatchIndex] {
			continue
		}
		seen[d.MatchIndex] = true
		if d.Redact {
			out = append(out, matches[d.MatchIndex])
		}
	}
	return out
}

// DecisionsFor finds the stored decisions for a frame position. The second
// return reports whether a record exists.
func DecisionsFor(list []FrameDecisions, position int) ([]Decision, bool) {
	for _, fd := range list {
		if fd.Position == position {
			if fd.Decisions == nil {
				return []Decision{}, true
			}
			return fd.Decisions, true
		}
	}
	return nil, false
}

// EncodeDecisions serializes review decisions for storage in the job record.
func EncodeDecisions(list []FrameDecisions) (string, error) {
	if len(list) == 0 {
		return "", nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encode decisions: %w", err)
	}
	return string(data), nil
}

// DecodeDecisions parses stored review decisions. Empty input yields nil.
func DecodeDecisions(raw string) ([]FrameDecisions, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var list []FrameDecisions
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("decode decisions: %w", err)
	}
	return list, nil
}
