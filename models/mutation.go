package models

import (
	"fmt"
	"time"
)

// MutationType tags a pending mutation as an upsert or a delete.
type MutationType string

const (
	MutationUpsert MutationType = "upsert"
	MutationDelete MutationType = "delete"
)

// ParseMutationType validates tag against the closed mutation-type set.
func ParseMutationType(tag string) (MutationType, error) {
	switch t := MutationType(tag); t {
	case MutationUpsert, MutationDelete:
		return t, nil
	default:
		return "", fmt.Errorf("unknown mutation type %q", tag)
	}
}

// PendingMutation is one queued local write awaiting upload. The queue holds
// at most one row per (Entity, EntityID): a newer local intent for the same
// key always replaces the older one, so a stale queued upsert can never
// resurrect a row deleted later, and a later upsert supersedes a queued
// delete.
type PendingMutation struct {
	// OpID is the unique operation identifier (canonical lowercase UUID).
	OpID string `json:"op_id"`

	// Entity is the kind of the target row.
	Entity EntityKind `json:"entity"`

	// EntityID is the target row id (canonical lowercase UUID).
	EntityID string `json:"entity_id"`

	// Type is upsert or delete.
	Type MutationType `json:"type"`

	// BaseVersion is the server row version this mutation believes it is
	// updating. The server rejects the push with a conflict when its current
	// version differs.
	BaseVersion int64 `json:"base_version"`

	// Payload is the opaque document for upserts; nil for deletes.
	Payload Document `json:"payload,omitempty"`

	// CreatedAt orders the queue. ProcessPushResponse re-stamps it on failure
	// so a failing row drifts to the back of its priority tier.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAtClient is the domain-level last-modified time of the row,
	// used for last-writer-wins comparison.
	UpdatedAtClient time.Time `json:"updated_at_client"`

	// Attempts counts how many pushes have failed for this row.
	Attempts int `json:"attempts"`

	// LastError holds the most recent failure or conflict reason, if any.
	LastError string `json:"last_error,omitempty"`
}

// IsDelete reports whether the mutation discards the row.
func (m PendingMutation) IsDelete() bool { return m.Type == MutationDelete }
