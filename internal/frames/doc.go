// Package frames models extracted video stills and scores them for change
// and stability. Scoring runs on a small grayscale downsample so it stays
// cheap regardless of source resolution.
package frames
