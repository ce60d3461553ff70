package models

import "time"

// ConflictEventType tags an audit-log entry.
type ConflictEventType string

const (
	EventConflictDetected ConflictEventType = "detected"
	EventKeptMine         ConflictEventType = "kept_mine"
	EventKeptServer       ConflictEventType = "kept_server"
)

// ConflictEvent is one entry of the bounded, persisted conflict audit log.
// Every detection and every resolution, automatic or manual, appends one.
type ConflictEvent struct {
	ID        int64             `json:"id,omitempty"`
	Type      ConflictEventType `json:"type"`
	Entity    EntityKind        `json:"entity"`
	EntityID  string            `json:"entity_id"`
	Reason    string            `json:"reason"`
	Timestamp time.Time         `json:"timestamp"`
}
