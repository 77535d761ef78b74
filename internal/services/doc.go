// Package services provides the shared error taxonomy and context plumbing
// used by stage handlers and the collaborator clients that call external
// tools (ffmpeg, the OCR engine, the narrative model).
//
// Stage errors are wrapped with a sentinel marker so the workflow manager
// can classify failures: validation, configuration, and not-found errors
// park the job for manual review, everything else fails the job outright.
package services
