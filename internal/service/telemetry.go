package service

import "sync"

// Telemetry is an in-memory tally of engine activity for observability. It
// is reset on process restart; durable conflict history lives in the
// persisted audit log.
type Telemetry struct {
	mu            sync.Mutex
	triggers      map[string]int
	totalFailures int
}

func NewTelemetry() *Telemetry {
	return &Telemetry{triggers: make(map[string]int)}
}

func (t *Telemetry) RecordTrigger(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.triggers[reason]++
}

func (t *Telemetry) RecordFailure() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalFailures++
}

// TelemetrySnapshot is a point-in-time copy of the counters.
type TelemetrySnapshot struct {
	TriggersByReason map[string]int `json:"triggers_by_reason"`
	TotalFailures    int            `json:"total_failures"`
}

func (t *Telemetry) Snapshot() TelemetrySnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	triggers := make(map[string]int, len(t.triggers))
	for reason, count := range t.triggers {
		triggers[reason] = count
	}
	return TelemetrySnapshot{TriggersByReason: triggers, TotalFailures: t.totalFailures}
}
