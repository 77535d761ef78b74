// Package review implements the human gate between PII scanning and
// redaction. It lists jobs parked for approval, exposes the per-frame
// matches and preview images, and records the reviewer's keep/redact
// decisions before releasing the job back to the pipeline.
package review
