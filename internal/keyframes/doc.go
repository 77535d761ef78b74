// Package keyframes picks the subset of extracted frames worth embedding in
// the finished document. Selection favors workflow anchors (the start, the
// ending frames) and stable, high-change frames, with extra weight on the
// completion zone at the end of the recording where results appear on screen.
package keyframes
