package store

import (
	"context"
	"time"

	"github.com/ortano/docsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// MutationStore owns the pending-mutation queue, the mirrored local
// documents, and the singleton sync state. All operations are serialized by
// the implementation: no two calls interleave on the underlying storage.
type MutationStore interface {
	// EnqueueMutation records a local write intent for (entity, entityID).
	// Any existing queue entry for the same key is replaced, so the queue
	// holds at most one row per key and it is always the newest intent.
	EnqueueMutation(ctx context.Context, entity models.EntityKind, entityID string, mutationType models.MutationType, baseVersion int64, payload models.Document, updatedAtClient time.Time) (models.PendingMutation, error)

	// FetchPendingMutations returns up to limit queued mutations ordered
	// deletes first, then fewest attempts, then oldest created_at.
	FetchPendingMutations(ctx context.Context, limit int) ([]models.PendingMutation, error)

	// FetchPendingMutation returns the queue entry identified by opID, or
	// ErrMutationNotFound.
	FetchPendingMutation(ctx context.Context, opID string) (models.PendingMutation, error)

	// ProcessPushResponse removes acknowledged entries, bumps the attempt
	// counter and error reason of failed or conflicted ones, and persists
	// the push cursor when the server advanced it.
	ProcessPushResponse(ctx context.Context, resp models.PushResponse) error

	// ResolveConflictKeepMine rebases the stored mutation onto the server
	// version and clears its failure bookkeeping so the next push retries
	// it. Idempotent: a missing queue entry is not an error.
	ResolveConflictKeepMine(ctx context.Context, opID string, serverVersion *int64) error

	// ResolveConflictKeepServer discards the queued local intent outright.
	// Idempotent: a missing queue entry is not an error.
	ResolveConflictKeepServer(ctx context.Context, opID string) error

	// AdoptServerState mirrors the conflict's server-side row into the local
	// documents, tombstoning it when the server copy is deleted.
	AdoptServerState(ctx context.Context, c models.Conflict) error

	// ApplyPullResponse applies one pull page atomically: every change, the
	// new cursor, the success watermark, deferred link resolution, and
	// tombstone compaction commit together.
	ApplyPullResponse(ctx context.Context, resp models.PullResponse) error

	// EnqueueLocalSnapshotIfNeeded queues an upload mutation for every local
	// row the server has never seen or that changed after the last
	// successful sync, skipping keys already queued. Returns the number of
	// mutations enqueued.
	EnqueueLocalSnapshotIfNeeded(ctx context.Context) (int, error)

	// LoadOrCreateSyncState returns the singleton state row, creating it
	// with a fresh device id on first use.
	LoadOrCreateSyncState(ctx context.Context) (models.SyncState, error)

	// SetSyncEnabled toggles the engine on or off.
	SetSyncEnabled(ctx context.Context, enabled bool) error

	// SetUser records the signed-in account. Switching to a different
	// account resets the cursor and bootstrap flag and discards the queue.
	SetUser(ctx context.Context, userID string) error

	// SaveLocal is the local-write entry point for live application data:
	// it upserts the mirrored document and enqueues the matching upsert
	// mutation in one transaction.
	SaveLocal(ctx context.Context, entity models.EntityKind, entityID string, doc models.Document, updatedAtClient time.Time) (models.PendingMutation, error)

	// DeleteLocal soft-deletes the mirrored document and enqueues the
	// matching delete mutation in one transaction.
	DeleteLocal(ctx context.Context, entity models.EntityKind, entityID string, deletedAt time.Time) (models.PendingMutation, error)

	// GetLocalDocument returns one mirrored row, or ErrDocumentNotFound.
	GetLocalDocument(ctx context.Context, entity models.EntityKind, entityID string) (models.LocalDocument, error)

	// CountPendingMutations reports the queue depth.
	CountPendingMutations(ctx context.Context) (int, error)

	// CountPendingLinks reports pulled documents whose referenced parent
	// has not arrived yet.
	CountPendingLinks(ctx context.Context) (int, error)

	// AppendConflictEvent appends to the bounded persisted audit log,
	// pruning the oldest entries beyond the cap.
	AppendConflictEvent(ctx context.Context, ev models.ConflictEvent) error

	// ListConflictEvents returns up to limit audit entries, newest first.
	ListConflictEvents(ctx context.Context, limit int) ([]models.ConflictEvent, error)
}
