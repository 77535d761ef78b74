// Command screendoc turns screen recordings into redacted markdown
// documentation. It enqueues recordings, runs the processing daemon in
// the foreground, and drives the human review step for detected PII.
package main
