// Package service contains the engine's decision and orchestration layer:
// the pure conflict-resolution policy, the sync-cycle state machine, the
// trigger debouncer, and in-memory telemetry.
package service

import (
	"context"

	"github.com/ortano/docsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// Orchestrator drives sync cycles and owns the engine's observable state.
// At most one cycle runs at a time; triggers arriving while a cycle is busy
// coalesce into a single follow-up run.
type Orchestrator interface {
	// Start binds the orchestrator to its lifetime context. Triggers before
	// Start are dropped.
	Start(ctx context.Context)

	// Stop cancels any in-flight cycle and waits for it to exit.
	Stop()

	// TriggerSync requests a debounced sync cycle. The reason string is a
	// free-form label used only for telemetry grouping.
	TriggerSync(reason string)

	// State returns the current engine state snapshot.
	State() models.EngineState

	// Conflicts lists unresolved conflicts awaiting a manual choice.
	Conflicts() []models.Conflict

	// ResolveKeepMine manually resolves one conflict in favor of the local
	// intent and retriggers a cycle. Safe to call for a conflict that has
	// already disappeared.
	ResolveKeepMine(ctx context.Context, opID string) error

	// ResolveKeepServer manually resolves one conflict in favor of the
	// server copy and retriggers a cycle. Safe to call for a conflict that
	// has already disappeared.
	ResolveKeepServer(ctx context.Context, opID string) error

	// ResolveAll applies one resolution to every unresolved conflict, then
	// retriggers a single cycle.
	ResolveAll(ctx context.Context, resolution models.Resolution) error

	// SetSyncEnabled toggles the engine and, when enabling, triggers a
	// cycle.
	SetSyncEnabled(ctx context.Context, enabled bool) error

	// Subscribe registers an observer notified on every state change.
	Subscribe(fn func(models.EngineState))

	// Telemetry returns the in-memory counters.
	Telemetry() TelemetrySnapshot
}
