package stage

import (
	"context"

	"screendoc/internal/queue"
)

// Handler describes the contract the workflow manager needs from each stage.
//
// Prepare runs quick, fail-fast setup before the job transitions into its
// processing status. Execute does the work and mutates the job in place; the
// manager persists it afterwards. HealthCheck reports stage readiness for
// preflight and diagnostics.
type Handler interface {
	Prepare(context.Context, *queue.Job) error
	Execute(context.Context, *queue.Job) error
	HealthCheck(context.Context) Health
}
