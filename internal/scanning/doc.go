// Package scanning runs OCR, PII detection, and preview rendering over the
// selected key frames. Frames are independent, so the work fans out over a
// bounded worker pool and results are reassembled in frame order.
package scanning
