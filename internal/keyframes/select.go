package keyframes

import (
	"sort"

	"screendoc/internal/frames"
)

// Select returns the indices of the frames to embed, sorted ascending.
// When the frame count fits the budget every frame is returned; otherwise
// exactly MaxEmbed indices come back. Ties break by ascending index, so the
// result is fully deterministic for a given score slice.
func Select(scores []frames.Score, h Heuristics) []int {
	h = h.normalized()
	n := len(scores)
	if n == 0 {
		return nil
	}
	if n <= h.MaxEmbed {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}

	boosted := boostedScores(scores, h)
	selected := make(map[int]bool, h.MaxEmbed)
	admit := func(i int) bool {
		if len(selected) >= h.MaxEmbed || selected[i] {
			return false
		}
		selected[i] = true
		return true
	}

	admitAnchors(n, boosted, h, admit, selected)
	admitDistributed(n, boosted, h, admit, selected)
	admitFill(n, boosted, h, admit, selected)

	result := make([]int, 0, len(selected))
	for i := range selected {
		result = append(result, i)
	}
	sort.Ints(result)
	return result
}

func boostedScores(scores []frames.Score, h Heuristics) []float64 {
	n := len(scores)
	finalStart := int(float64(n) * h.FinalZoneStart)
	completionStart := int(float64(n) * h.CompletionZoneStart)

	boosted := make([]float64, n)
	for i, score := range scores {
		value := score.Combined()
		switch {
		case i >= finalStart:
			value *= h.FinalZoneBoost
		case i >= completionStart:
			value *= h.CompletionZoneBoost
		}
		boosted[i] = value
	}
	return boosted
}

// admitAnchors seeds the selection with the frames every document needs:
// the opening frame, the ending frames, and the best of the completion zone.
func admitAnchors(n int, boosted []float64, h Heuristics, admit func(int) bool, selected map[int]bool) {
	admit(0)
	admit(n - 1)
	for i := n - 2; i >= n-h.AnchorTailFrames && i > 0; i-- {
		admit(i)
	}

	completionStart := int(float64(n) * h.CompletionZoneStart)
	zone := make([]int, 0, n-completionStart)
	for i := completionStart; i < n-h.AnchorTailFrames; i++ {
		if i > 0 && !selected[i] {
			zone = append(zone, i)
		}
	}
	sortByScoreDesc(zone, boosted)
	for _, i := range zone {
		admit(i)
	}
}

// admitDistributed spreads the remaining budget across equal timeline
// segments so the middle of the recording is represented. Priority frames do
// not consume segment quota.
func admitDistributed(n int, boosted []float64, h Heuristics, admit func(int) bool, selected map[int]bool) {
	segments := h.MaxEmbed / 3
	if segments > h.MaxSegments {
		segments = h.MaxSegments
	}
	if segments < 1 {
		segments = 1
	}
	quota := h.MaxEmbed / segments

	finalStart := int(float64(n) * h.FinalZoneStart)
	priority := func(i int) bool {
		return i == 0 || i >= n-h.PriorityTailFrames || i >= finalStart
	}

	for s := 0; s < segments; s++ {
		lo := s * n / segments
		hi := (s + 1) * n / segments

		used := 0
		candidates := make([]int, 0, hi-lo)
		for i := lo; i < hi; i++ {
			if selected[i] {
				if !priority(i) {
					used++
				}
				continue
			}
			candidates = append(candidates, i)
		}
		sortByScoreDesc(candidates, boosted)

		for _, i := range candidates {
			if used >= quota {
				break
			}
			if admit(i) && !priority(i) {
				used++
			}
		}
	}
}

// admitFill tops the selection up to the budget, ignoring segment quotas.
func admitFill(n int, boosted []float64, h Heuristics, admit func(int) bool, selected map[int]bool) {
	candidates := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if !selected[i] {
			candidates = append(candidates, i)
		}
	}
	sortByScoreDesc(candidates, boosted)
	for _, i := range candidates {
		if !admit(i) {
			if len(selected) >= h.MaxEmbed {
				break
			}
		}
	}
}

func sortByScoreDesc(indices []int, boosted []float64) {
	sort.Slice(indices, func(a, b int) bool {
		ia, ib := indices[a], indices[b]
		if boosted[ia] != boosted[ib] {
			return boosted[ia] > boosted[ib]
		}
		return ia < ib
	})
}
