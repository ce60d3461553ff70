package workers

import (
	"context"
	"sync"
	"time"
)

// TriggerReasonInterval labels cycles requested by the periodic job in
// telemetry.
const TriggerReasonInterval = "interval"

const defaultInterval = 5 * time.Minute

type triggerJob struct {
	target TriggerTarget

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTriggerJob creates a triggerJob that calls target.TriggerSync on a
// ticker. The job is idle until Start is called.
func NewTriggerJob(target TriggerTarget) TriggerJob {
	return &triggerJob{target: target}
}

// Start implements [TriggerJob]. If interval is zero or negative it
// defaults to 5 minutes. The goroutine exits when ctx is cancelled or Stop
// is called.
func (j *triggerJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultInterval
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.target.TriggerSync(TriggerReasonInterval)
			}
		}
	}()
}

// Stop implements [TriggerJob].
func (j *triggerJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
