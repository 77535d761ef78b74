// Package extraction samples still frames from screen recordings with
// ffmpeg. It is the first pipeline stage: output frames feed scoring,
// selection, and every later stage.
package extraction
