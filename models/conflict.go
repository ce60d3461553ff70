package models

import "time"

// ConflictReason is the server's classification of why a pushed mutation was
// not applied.
type ConflictReason string

const (
	ReasonVersionMismatch ConflictReason = "version_mismatch"
	ReasonInvalidPayload  ConflictReason = "invalid_payload"
	ReasonInsertFailed    ConflictReason = "insert_failed"
	ReasonUpdateFailed    ConflictReason = "update_failed"
)

// DisplayString renders the reason for the manual-review UI.
func (r ConflictReason) DisplayString() string {
	switch r {
	case ReasonVersionMismatch:
		return "another device changed this item"
	case ReasonInvalidPayload:
		return "the server rejected the item's contents"
	case ReasonInsertFailed:
		return "the server could not create this item"
	case ReasonUpdateFailed:
		return "the server could not update this item"
	default:
		return string(r)
	}
}

// Conflict is one push rejection reported by the server.
type Conflict struct {
	// OpID identifies the pending mutation that was rejected.
	OpID string `json:"op_id"`

	Entity   EntityKind     `json:"entity"`
	EntityID string         `json:"entity_id"`
	Reason   ConflictReason `json:"reason"`

	// ServerVersion is the server's current row version. Nil means the
	// server has no such row.
	ServerVersion *int64 `json:"server_version,omitempty"`

	// ServerDoc is the server's current document, when it has one. It may
	// carry an "is_deleted" tombstone flag, "updated_at"/"updated_at_client"
	// timestamps, and a "last_op_id" marker of the operation that produced
	// the server's version.
	ServerDoc Document `json:"server_doc,omitempty"`
}

// ServerDeleted reports whether the server's copy is a tombstone.
func (c Conflict) ServerDeleted() bool {
	return c.ServerDoc.GetBool("is_deleted")
}

// ServerUpdatedAt returns the server document's domain last-modified time,
// preferring "updated_at_client" over "updated_at". ok is false when neither
// field carries a parseable timestamp.
func (c Conflict) ServerUpdatedAt() (time.Time, bool) {
	if t, ok := c.ServerDoc.GetTime("updated_at_client"); ok {
		return t, true
	}
	return c.ServerDoc.GetTime("updated_at")
}

// ServerLastOpID returns the server-reported identifier of the operation
// behind its current version, or "" when the server did not populate it.
func (c Conflict) ServerLastOpID() string {
	return c.ServerDoc.GetString("last_op_id")
}

// Resolution is a conflict-policy verdict.
type Resolution int

const (
	// KeepMine rebases the pending mutation onto the server version and
	// retries it.
	KeepMine Resolution = iota + 1

	// KeepServer discards the local intent and adopts the server's copy.
	KeepServer

	// ManualReview leaves the conflict for an explicit user choice.
	ManualReview
)

// String implements fmt.Stringer.
func (r Resolution) String() string {
	switch r {
	case KeepMine:
		return "keep_mine"
	case KeepServer:
		return "keep_server"
	case ManualReview:
		return "manual_review"
	default:
		return "unknown"
	}
}
