// Package staging manages the scratch directories that hold extracted
// frames, previews, and redacted images while a job moves through the
// pipeline. A background sweeper reclaims directories left behind by
// finished or removed jobs.
package staging
