// Package document assembles the final documentation bundle: the narrative
// markdown with frame-reference markers resolved to embedded images, plus
// the final image files themselves.
package document
