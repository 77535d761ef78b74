package keyframes

import "screendoc/internal/config"

// Heuristics collects every tunable used by Select. Zero values are replaced
// with the built-in defaults so partially filled structs stay usable in tests.
type Heuristics struct {
	MaxEmbed            int
	AnchorTailFrames    int
	CompletionZoneStart float64
	FinalZoneStart      float64
	CompletionZoneBoost float64
	FinalZoneBoost      float64
	MaxSegments         int
	PriorityTailFrames  int
}

// HeuristicsFromConfig maps the selection config section onto Heuristics.
func HeuristicsFromConfig(cfg *config.Config) Heuristics {
	if cfg == nil {
		return Heuristics{}.normalized()
	}
	return Heuristics{
		MaxEmbed:            cfg.Selection.MaxEmbed,
		AnchorTailFrames:    cfg.Selection.AnchorTailFrames,
		CompletionZoneStart: cfg.Selection.CompletionZoneStart,
		FinalZoneStart:      cfg.Selection.FinalZoneStart,
		CompletionZoneBoost: cfg.Selection.CompletionZoneBoost,
		FinalZoneBoost:      cfg.Selection.FinalZoneBoost,
		MaxSegments:         cfg.Selection.MaxSegments,
	}.normalized()
}

func (h Heuristics) normalized() Heuristics {
	if h.MaxEmbed <= 0 {
		h.MaxEmbed = 12
	}
	if h.AnchorTailFrames <= 0 {
		h.AnchorTailFrames = 5
	}
	if h.CompletionZoneStart <= 0 || h.CompletionZoneStart >= 1 {
		h.CompletionZoneStart = 0.70
	}
	if h.FinalZoneStart <= h.CompletionZoneStart || h.FinalZoneStart >= 1 {
		h.FinalZoneStart = 0.90
	}
	if h.CompletionZoneBoost < 1 {
		h.CompletionZoneBoost = 1.5
	}
	if h.FinalZoneBoost < 1 {
		h.FinalZoneBoost = 2.0
	}
	if h.MaxSegments <= 0 {
		h.MaxSegments = 5
	}
	if h.PriorityTailFrames <= 0 {
		h.PriorityTailFrames = 3
	}
	return h
}
