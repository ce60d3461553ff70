package models

import "time"

// SyncState is the engine's singleton bookkeeping row.
type SyncState struct {
	// DeviceID is a stable per-install identifier (canonical lowercase UUID).
	DeviceID string `json:"device_id"`

	// UserID identifies the signed-in account, empty when signed out.
	// Switching accounts resets the cursor, the bootstrap flag, and discards
	// the pending-mutation queue: a new account must not inherit another
	// account's unsynced writes.
	UserID string `json:"user_id,omitempty"`

	// LastCursor is the opaque pagination token of the last fully applied
	// pull page.
	LastCursor string `json:"last_cursor,omitempty"`

	// LastSuccessfulSyncAt is the watermark of the last cycle that completed
	// without error.
	LastSuccessfulSyncAt *time.Time `json:"last_successful_sync_at,omitempty"`

	// IsSyncEnabled gates the whole engine. A cycle started while disabled
	// returns to idle without touching the network.
	IsSyncEnabled bool `json:"is_sync_enabled"`

	// DidBootstrapLocalSnapshot records that pre-existing local rows have
	// been enqueued for first upload at least once.
	DidBootstrapLocalSnapshot bool `json:"did_bootstrap_local_snapshot"`
}

// LocalDocument is one mirrored entity row as the engine sees it. Domain
// field semantics live entirely inside Doc.
type LocalDocument struct {
	Entity EntityKind `json:"entity"`

	// ID is the row id (canonical lowercase UUID).
	ID string `json:"id"`

	// Doc is the opaque field bag.
	Doc Document `json:"doc"`

	// SyncVersion mirrors the server's monotonic per-row version counter;
	// zero means the server has never acknowledged this row.
	SyncVersion int64 `json:"sync_version"`

	// UpdatedAtClient is the domain-level last-modified time.
	UpdatedAtClient time.Time `json:"updated_at_client"`

	// IsSoftDeleted marks the row as a tombstone. Tombstones propagate the
	// deletion to other devices and are physically removed only by
	// compaction, after they are synced and past the retention window.
	IsSoftDeleted bool `json:"is_soft_deleted"`
}

// Tombstone lifecycle states, derived rather than stored so the compaction
// precondition stays explicit.
const (
	DocLive                = "live"
	DocTombstonePending    = "tombstoned_pending_sync"
	DocTombstoneCompactable = "tombstoned_compactable"
)

// Lifecycle classifies the row: live, tombstoned but not yet uploaded, or
// tombstoned-and-synced (eligible for compaction once past retention).
func (d LocalDocument) Lifecycle() string {
	switch {
	case !d.IsSoftDeleted:
		return DocLive
	case d.SyncVersion == 0:
		return DocTombstonePending
	default:
		return DocTombstoneCompactable
	}
}
