// Package queue persists processing jobs in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, heartbeat
// tracking, stuck-job recovery, and the status transitions that mirror the
// public workflow enum. Jobs capture extracted-frame locations, the selected
// key-frame set, detected PII matches, reviewer decisions, and final artifact
// paths so stages can coordinate without additional state.
//
// The database is treated as transient storage for in-flight jobs rather than
// a long-term archive. Schema changes bump the version in schema.go; users
// clear the database to adopt the new schema.
package queue
