// Package workflow drives queued jobs through the processing pipeline.
// A single manager polls the queue, claims the oldest ready job, and runs
// the stage registered for its status while a heartbeat goroutine keeps the
// claim fresh. Jobs parked for human review are never picked up here; the
// CLI moves them forward.
package workflow
