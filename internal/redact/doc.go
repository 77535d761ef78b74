// Package redact renders PII redactions onto frame images and resolves
// reviewer decisions about which matches to redact. Review previews draw
// red outlines without touching source pixels; final rendering applies one
// batch-wide mode (blur, black, or pixelate) inside padded bounding boxes.
package redact
