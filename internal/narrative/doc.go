// Package narrative turns selected key frames into step-by-step markdown
// documentation through an OpenAI-compatible vision chat endpoint. Requests
// retry on transient HTTP failures with capped exponential backoff.
package narrative
