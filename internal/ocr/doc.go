// Package ocr extracts text regions from frame images through an external
// recognition command. OCR is best-effort throughout the pipeline: any
// failure degrades to an empty region list so scanning never blocks a job.
package ocr
