// Package workers provides background jobs that feed the sync engine:
// currently the periodic trigger that requests a sync cycle on a fixed
// interval, complementing event-driven triggers from the application.
package workers

import (
	"context"
	"time"
)

// TriggerTarget is the engine surface a background job drives. Satisfied by
// the service orchestrator.
type TriggerTarget interface {
	TriggerSync(reason string)
}

// TriggerJob periodically requests sync cycles. The job is idle until Start
// is called.
type TriggerJob interface {
	// Start launches the background ticker. A running job is stopped and
	// replaced.
	Start(ctx context.Context, interval time.Duration)

	// Stop halts the ticker and blocks until the background goroutine has
	// exited. Safe to call when the job is not running.
	Stop()
}
