package models

import "time"

// SyncPhase is the orchestrator's coarse state.
type SyncPhase string

const (
	PhaseIdle     SyncPhase = "idle"
	PhaseSyncing  SyncPhase = "syncing"
	PhaseConflict SyncPhase = "conflict"
	PhaseFailed   SyncPhase = "failed"
)

// EngineState is the read-only snapshot the UI observes.
type EngineState struct {
	Phase SyncPhase `json:"phase"`

	// ConflictCount is the number of unresolved conflicts; meaningful when
	// Phase is conflict.
	ConflictCount int `json:"conflict_count,omitempty"`

	// Message is a short human-readable failure description; meaningful when
	// Phase is failed.
	Message string `json:"message,omitempty"`

	// ConsecutiveFailures counts failed cycles since the last success.
	ConsecutiveFailures int `json:"consecutive_failures,omitempty"`

	// LastSyncAt is the last successful cycle completion time.
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
}
