package service

import (
	"github.com/ortano/docsync/models"
)

// Resolve classifies a server-reported push conflict. It is pure: no I/O,
// no clock reads, always exactly one outcome.
//
// Decision order:
//  1. Anything but a version mismatch goes to manual review.
//  2. A server tombstone dominates any stale local upsert, so the row is
//     not resurrected remotely.
//  3. A pending delete keeps pushing (rebased) while the server still has
//     the row; once the server row is gone there is nothing left to delete.
//  4. A missing server row on an upsert is the first-sync race: the local
//     copy is the only copy.
//  5. Last writer wins by domain timestamp; a lone timestamp beats none.
//  6. Remaining ties break lexicographically on "<deviceID>|<opID>" against
//     the server's last_op_id, so both devices reach the same verdict
//     without coordinating.
func Resolve(c models.Conflict, pending models.PendingMutation, deviceID string) models.Resolution {
	if c.Reason != models.ReasonVersionMismatch {
		return models.ManualReview
	}

	if c.ServerDeleted() {
		return models.KeepServer
	}

	if pending.IsDelete() {
		if c.ServerVersion == nil {
			return models.KeepServer
		}
		return models.KeepMine
	}

	if c.ServerVersion == nil {
		return models.KeepMine
	}

	localAt := pending.UpdatedAtClient
	serverAt, serverHas := c.ServerUpdatedAt()
	localHas := !localAt.IsZero()

	switch {
	case localHas && serverHas && localAt.After(serverAt):
		return models.KeepMine
	case localHas && serverHas && serverAt.After(localAt):
		return models.KeepServer
	case localHas && !serverHas:
		return models.KeepMine
	case !localHas && serverHas:
		return models.KeepServer
	}

	// An empty server last_op_id loses to any composite, which favors
	// keep-mine. Accepted: the local intent is the only attributable write.
	if deviceID+"|"+pending.OpID > c.ServerLastOpID() {
		return models.KeepMine
	}
	return models.KeepServer
}
