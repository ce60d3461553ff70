package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortano/docsync/internal/config"
	"github.com/ortano/docsync/internal/logger"
	"github.com/ortano/docsync/models"
)

func newTestStore(t *testing.T) *localStore {
	t.Helper()

	log := logger.Nop()
	db, err := NewConnectSQLite(context.Background(), config.DB{DSN: ":memory:"}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	return NewLocalStore(db, config.Sync{Retention: config.DefaultRetention}, log).(*localStore)
}

func noteDoc(title string) models.Document {
	return models.Document{
		"title": models.String(title),
		"body":  models.String("text"),
	}
}

func TestEnqueueMutation_DedupPerKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	entityID := uuid.NewString()

	first, err := s.EnqueueMutation(ctx, models.EntityNote, entityID, models.MutationUpsert, 0, noteDoc("v1"), time.Now())
	require.NoError(t, err)
	second, err := s.EnqueueMutation(ctx, models.EntityNote, entityID, models.MutationUpsert, 0, noteDoc("v2"), time.Now())
	require.NoError(t, err)

	assert.NotEqual(t, first.OpID, second.OpID)

	count, err := s.CountPendingMutations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	pending, err := s.FetchPendingMutations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.OpID, pending[0].OpID)
	assert.Equal(t, "v2", pending[0].Payload.GetString("title"))
}

func TestEnqueueMutation_DeleteSupersedesUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	entityID := uuid.NewString()

	_, err := s.EnqueueMutation(ctx, models.EntityNote, entityID, models.MutationUpsert, 3, noteDoc("draft"), time.Now())
	require.NoError(t, err)
	deleted, err := s.EnqueueMutation(ctx, models.EntityNote, entityID, models.MutationDelete, 3, nil, time.Now())
	require.NoError(t, err)

	pending, err := s.FetchPendingMutations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, deleted.OpID, pending[0].OpID)
	assert.Equal(t, models.MutationDelete, pending[0].Type)
	assert.Nil(t, pending[0].Payload)
}

func TestEnqueueMutation_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.EnqueueMutation(ctx, "spreadsheet", uuid.NewString(), models.MutationUpsert, 0, noteDoc("x"), time.Now())
	assert.ErrorIs(t, err, ErrUnknownEntity)

	_, err = s.EnqueueMutation(ctx, models.EntityNote, "not-a-uuid", models.MutationUpsert, 0, noteDoc("x"), time.Now())
	assert.ErrorIs(t, err, ErrMalformedID)

	_, err = s.EnqueueMutation(ctx, models.EntityNote, uuid.NewString(), "merge", 0, noteDoc("x"), time.Now())
	assert.ErrorIs(t, err, ErrUnknownMutationType)

	_, err = s.EnqueueMutation(ctx, models.EntityNote, uuid.NewString(), models.MutationUpsert, 0, nil, time.Now())
	assert.ErrorIs(t, err, ErrMalformedPayload)

	// A rejected enqueue must leave the queue fetchable.
	pending, err := s.FetchPendingMutations(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestEnqueueMutation_NormalizesID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := uuid.NewString()

	mutation, err := s.EnqueueMutation(ctx, models.EntityTag, strings.ToUpper(id), models.MutationUpsert, 0, noteDoc("x"), time.Now())
	require.NoError(t, err)
	assert.Equal(t, id, mutation.EntityID)
}

func TestFetchPendingMutations_DeletesFirstThenOldest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { now = now.Add(time.Second); return now }

	upsertOld, err := s.EnqueueMutation(ctx, models.EntityNote, uuid.NewString(), models.MutationUpsert, 0, noteDoc("old"), now)
	require.NoError(t, err)
	upsertNew, err := s.EnqueueMutation(ctx, models.EntityNote, uuid.NewString(), models.MutationUpsert, 0, noteDoc("new"), now)
	require.NoError(t, err)
	del, err := s.EnqueueMutation(ctx, models.EntityTag, uuid.NewString(), models.MutationDelete, 2, nil, now)
	require.NoError(t, err)

	pending, err := s.FetchPendingMutations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, del.OpID, pending[0].OpID)
	assert.Equal(t, upsertOld.OpID, pending[1].OpID)
	assert.Equal(t, upsertNew.OpID, pending[2].OpID)
}

func TestProcessPushResponse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acked, err := s.EnqueueMutation(ctx, models.EntityNote, uuid.NewString(), models.MutationUpsert, 0, noteDoc("ok"), time.Now())
	require.NoError(t, err)
	conflicted, err := s.EnqueueMutation(ctx, models.EntityNote, uuid.NewString(), models.MutationUpsert, 1, noteDoc("clash"), time.Now())
	require.NoError(t, err)
	failed, err := s.EnqueueMutation(ctx, models.EntityTag, uuid.NewString(), models.MutationUpsert, 0, noteDoc("bad"), time.Now())
	require.NoError(t, err)

	err = s.ProcessPushResponse(ctx, models.PushResponse{
		AcknowledgedOpIDs: []string{acked.OpID},
		Conflicts: []models.Conflict{{
			OpID:     conflicted.OpID,
			Entity:   models.EntityNote,
			EntityID: conflicted.EntityID,
			Reason:   models.ReasonVersionMismatch,
		}},
		Failed:    []models.FailedOp{{OpID: failed.OpID, Reason: "payload too large"}},
		NewCursor: "cursor-42",
	})
	require.NoError(t, err)

	_, err = s.FetchPendingMutation(ctx, acked.OpID)
	assert.ErrorIs(t, err, ErrMutationNotFound)

	got, err := s.FetchPendingMutation(ctx, conflicted.OpID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Attempts)
	assert.Equal(t, string(models.ReasonVersionMismatch), got.LastError)

	got, err = s.FetchPendingMutation(ctx, failed.OpID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Attempts)
	assert.Equal(t, "payload too large", got.LastError)

	state, err := s.LoadOrCreateSyncState(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cursor-42", state.LastCursor)
}

func TestProcessPushResponse_AckMarksDocumentSynced(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	entityID := uuid.NewString()

	saved, err := s.SaveLocal(ctx, models.EntityNote, entityID, noteDoc("v1"), time.Now())
	require.NoError(t, err)

	require.NoError(t, s.ProcessPushResponse(ctx, models.PushResponse{
		AcknowledgedOpIDs: []string{saved.OpID},
	}))

	doc, err := s.GetLocalDocument(ctx, models.EntityNote, entityID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.SyncVersion)

	// An acked local delete becomes a synced tombstone, eligible for
	// compaction once past retention.
	deleted, err := s.DeleteLocal(ctx, models.EntityNote, entityID, time.Now())
	require.NoError(t, err)
	require.NoError(t, s.ProcessPushResponse(ctx, models.PushResponse{
		AcknowledgedOpIDs: []string{deleted.OpID},
	}))

	doc, err = s.GetLocalDocument(ctx, models.EntityNote, entityID)
	require.NoError(t, err)
	assert.Equal(t, models.DocTombstoneCompactable, doc.Lifecycle())
}

func TestResolveConflictKeepMine_RebasesOntoServerVersion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mutation, err := s.EnqueueMutation(ctx, models.EntityNote, uuid.NewString(), models.MutationUpsert, 2, noteDoc("mine"), time.Now())
	require.NoError(t, err)
	err = s.ProcessPushResponse(ctx, models.PushResponse{
		Conflicts: []models.Conflict{{OpID: mutation.OpID, Reason: models.ReasonVersionMismatch}},
	})
	require.NoError(t, err)

	serverVersion := int64(7)
	require.NoError(t, s.ResolveConflictKeepMine(ctx, mutation.OpID, &serverVersion))

	got, err := s.FetchPendingMutation(ctx, mutation.OpID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.BaseVersion)
	assert.Equal(t, 0, got.Attempts)
	assert.Empty(t, got.LastError)
}

func TestResolveConflictKeepMine_ServerRowAbsent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mutation, err := s.EnqueueMutation(ctx, models.EntityNote, uuid.NewString(), models.MutationUpsert, 5, noteDoc("mine"), time.Now())
	require.NoError(t, err)

	require.NoError(t, s.ResolveConflictKeepMine(ctx, mutation.OpID, nil))

	got, err := s.FetchPendingMutation(ctx, mutation.OpID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.BaseVersion)
}

func TestResolveConflictKeepMine_MissingMutationIsNoop(t *testing.T) {
	s := newTestStore(t)

	assert.NoError(t, s.ResolveConflictKeepMine(context.Background(), uuid.NewString(), nil))
}

func TestResolveConflictKeepServer_DiscardsMutation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mutation, err := s.EnqueueMutation(ctx, models.EntityNote, uuid.NewString(), models.MutationUpsert, 1, noteDoc("mine"), time.Now())
	require.NoError(t, err)

	require.NoError(t, s.ResolveConflictKeepServer(ctx, mutation.OpID))

	_, err = s.FetchPendingMutation(ctx, mutation.OpID)
	assert.ErrorIs(t, err, ErrMutationNotFound)
}

func TestAdoptServerState_MirrorsServerDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	entityID := uuid.NewString()
	serverVersion := int64(4)

	err := s.AdoptServerState(ctx, models.Conflict{
		Entity:        models.EntityNote,
		EntityID:      entityID,
		ServerVersion: &serverVersion,
		ServerDoc: models.Document{
			"title":             models.String("server wins"),
			"version":           models.Number(4),
			"updated_at_client": models.Time(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		},
	})
	require.NoError(t, err)

	doc, err := s.GetLocalDocument(ctx, models.EntityNote, entityID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), doc.SyncVersion)
	assert.Equal(t, "server wins", doc.Doc.GetString("title"))
	assert.False(t, doc.IsSoftDeleted)

	// Envelope fields never land in the stored payload.
	_, versionKeyPresent := doc.Doc["version"]
	assert.False(t, versionKeyPresent)
}

func TestAdoptServerState_ServerDeleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	entityID := uuid.NewString()

	_, err := s.SaveLocal(ctx, models.EntityNote, entityID, noteDoc("doomed"), time.Now())
	require.NoError(t, err)

	serverVersion := int64(9)
	err = s.AdoptServerState(ctx, models.Conflict{
		Entity:        models.EntityNote,
		EntityID:      entityID,
		ServerVersion: &serverVersion,
		ServerDoc:     models.Document{"is_deleted": models.Bool(true)},
	})
	require.NoError(t, err)

	doc, err := s.GetLocalDocument(ctx, models.EntityNote, entityID)
	require.NoError(t, err)
	assert.True(t, doc.IsSoftDeleted)
	assert.Equal(t, int64(9), doc.SyncVersion)
}

func TestSaveLocal_UpsertsAndEnqueues(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	entityID := uuid.NewString()
	at := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)

	mutation, err := s.SaveLocal(ctx, models.EntityNote, entityID, noteDoc("hello"), at)
	require.NoError(t, err)
	assert.Equal(t, models.MutationUpsert, mutation.Type)
	assert.Equal(t, int64(0), mutation.BaseVersion)

	doc, err := s.GetLocalDocument(ctx, models.EntityNote, entityID)
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.Doc.GetString("title"))
	assert.WithinDuration(t, at, doc.UpdatedAtClient, time.Second)

	count, err := s.CountPendingMutations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSaveLocal_PreservesSyncVersionAsBase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	entityID := uuid.NewString()

	// Row arrives from the server at version 6, then is edited locally.
	require.NoError(t, s.ApplyPullResponse(ctx, models.PullResponse{
		Changes: []models.Change{{
			Entity:   models.EntityNote,
			Type:     models.ChangeUpsert,
			EntityID: entityID,
			Version:  6,
			Doc:      noteDoc("from server"),
		}},
	}))

	mutation, err := s.SaveLocal(ctx, models.EntityNote, entityID, noteDoc("edited"), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(6), mutation.BaseVersion)

	doc, err := s.GetLocalDocument(ctx, models.EntityNote, entityID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), doc.SyncVersion)
	assert.Equal(t, "edited", doc.Doc.GetString("title"))
}

func TestDeleteLocal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	entityID := uuid.NewString()

	_, err := s.SaveLocal(ctx, models.EntityNote, entityID, noteDoc("bye"), time.Now())
	require.NoError(t, err)

	mutation, err := s.DeleteLocal(ctx, models.EntityNote, entityID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.MutationDelete, mutation.Type)

	doc, err := s.GetLocalDocument(ctx, models.EntityNote, entityID)
	require.NoError(t, err)
	assert.True(t, doc.IsSoftDeleted)
	assert.Equal(t, models.DocTombstonePending, doc.Lifecycle())

	// The delete replaced the queued upsert.
	pending, err := s.FetchPendingMutations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.MutationDelete, pending[0].Type)
}

func TestDeleteLocal_MissingDocument(t *testing.T) {
	s := newTestStore(t)

	_, err := s.DeleteLocal(context.Background(), models.EntityNote, uuid.NewString(), time.Now())
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestApplyPullResponse_UpsertAndCursor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	entityID := uuid.NewString()

	err := s.ApplyPullResponse(ctx, models.PullResponse{
		Changes: []models.Change{{
			Entity:   models.EntityBookmark,
			Type:     models.ChangeUpsert,
			EntityID: entityID,
			Version:  3,
			Doc: models.Document{
				"url":        models.String("https://example.org"),
				"version":    models.Number(3),
				"is_deleted": models.Bool(false),
			},
		}},
		NextCursor: "cursor-7",
	})
	require.NoError(t, err)

	doc, err := s.GetLocalDocument(ctx, models.EntityBookmark, entityID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), doc.SyncVersion)
	assert.Equal(t, "https://example.org", doc.Doc.GetString("url"))
	_, hasEnvelope := doc.Doc["is_deleted"]
	assert.False(t, hasEnvelope)

	state, err := s.LoadOrCreateSyncState(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cursor-7", state.LastCursor)
	require.NotNil(t, state.LastSuccessfulSyncAt)
}

func TestApplyPullResponse_UpsertCarryingTombstoneFlag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	entityID := uuid.NewString()

	err := s.ApplyPullResponse(ctx, models.PullResponse{
		Changes: []models.Change{{
			Entity:   models.EntityNote,
			Type:     models.ChangeUpsert,
			EntityID: entityID,
			Version:  6,
			Doc: models.Document{
				"title":      models.String("gone"),
				"is_deleted": models.Bool(true),
			},
		}},
	})
	require.NoError(t, err)

	doc, err := s.GetLocalDocument(ctx, models.EntityNote, entityID)
	require.NoError(t, err)
	assert.True(t, doc.IsSoftDeleted)
	assert.Equal(t, int64(6), doc.SyncVersion)
}

func TestApplyPullResponse_FinalPageAdvancesWatermark(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ApplyPullResponse(ctx, models.PullResponse{
		Changes: []models.Change{{
			Entity:   models.EntityNote,
			Type:     models.ChangeUpsert,
			EntityID: uuid.NewString(),
			Version:  1,
			Doc:      models.Document{"title": models.String("one")},
		}},
		NextCursor: "c1",
	}))

	// The last page of a stream may come without a fresh cursor; the
	// success watermark still has to move.
	require.NoError(t, s.ApplyPullResponse(ctx, models.PullResponse{
		Changes: []models.Change{{
			Entity:   models.EntityNote,
			Type:     models.ChangeUpsert,
			EntityID: uuid.NewString(),
			Version:  2,
			Doc:      models.Document{"title": models.String("two")},
		}},
	}))

	state, err := s.LoadOrCreateSyncState(ctx)
	require.NoError(t, err)
	require.NotNil(t, state.LastSuccessfulSyncAt)
	assert.Equal(t, "c1", state.LastCursor)
}

func TestApplyPullResponse_VersionFallbackFromDoc(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	entityID := uuid.NewString()

	err := s.ApplyPullResponse(ctx, models.PullResponse{
		Changes: []models.Change{{
			Entity:   models.EntityTag,
			Type:     models.ChangeUpsert,
			EntityID: entityID,
			Doc: models.Document{
				"name":    models.String("inbox"),
				"version": models.Number(9),
			},
		}},
	})
	require.NoError(t, err)

	doc, err := s.GetLocalDocument(ctx, models.EntityTag, entityID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), doc.SyncVersion)
}

func TestApplyPullResponse_ReapplyingPageIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	entityID := uuid.NewString()

	page := models.PullResponse{
		Changes: []models.Change{{
			Entity:   models.EntityNote,
			Type:     models.ChangeUpsert,
			EntityID: entityID,
			Version:  4,
			Doc: models.Document{
				"title":   models.String("draft"),
				"version": models.Number(4),
			},
		}},
		NextCursor: "cursor-4",
	}

	require.NoError(t, s.ApplyPullResponse(ctx, page))
	require.NoError(t, s.ApplyPullResponse(ctx, page))

	doc, err := s.GetLocalDocument(ctx, models.EntityNote, entityID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), doc.SyncVersion)
	assert.Equal(t, "draft", doc.Doc.GetString("title"))

	state, err := s.LoadOrCreateSyncState(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cursor-4", state.LastCursor)

	count, err := s.CountPendingMutations(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestApplyPullResponse_DeleteOfAbsentRowIsNoop(t *testing.T) {
	s := newTestStore(t)

	err := s.ApplyPullResponse(context.Background(), models.PullResponse{
		Changes: []models.Change{{
			Entity:   models.EntityNote,
			Type:     models.ChangeDelete,
			EntityID: uuid.NewString(),
			Version:  5,
		}},
	})
	assert.NoError(t, err)
}

func TestApplyPullResponse_ForwardReferenceDefersLink(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	noteID := uuid.NewString()
	notebookID := uuid.NewString()

	// Page 1 delivers the note before its notebook.
	err := s.ApplyPullResponse(ctx, models.PullResponse{
		Changes: []models.Change{{
			Entity:   models.EntityNote,
			Type:     models.ChangeUpsert,
			EntityID: noteID,
			Version:  1,
			Doc: models.Document{
				"title":       models.String("orphan for now"),
				"notebook_id": models.String(notebookID),
			},
		}},
		NextCursor: "p1",
	})
	require.NoError(t, err)

	links, err := s.CountPendingLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, links)

	// Page 2 delivers the parent; the deferred link resolves.
	err = s.ApplyPullResponse(ctx, models.PullResponse{
		Changes: []models.Change{{
			Entity:   models.EntityNotebook,
			Type:     models.ChangeUpsert,
			EntityID: notebookID,
			Version:  1,
			Doc:      models.Document{"name": models.String("inbox")},
		}},
		NextCursor: "p2",
	})
	require.NoError(t, err)

	links, err = s.CountPendingLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, links)
}

func TestApplyPullResponse_CompactsSyncedTombstonesPastRetention(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	oldID := uuid.NewString()
	freshID := uuid.NewString()
	unsyncedID := uuid.NewString()

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	// Synced tombstone, deleted long ago.
	require.NoError(t, s.ApplyPullResponse(ctx, models.PullResponse{
		Changes: []models.Change{
			{Entity: models.EntityNote, Type: models.ChangeUpsert, EntityID: oldID, Version: 2, Doc: noteDoc("old")},
			{Entity: models.EntityNote, Type: models.ChangeUpsert, EntityID: freshID, Version: 2, Doc: noteDoc("fresh")},
		},
	}))
	require.NoError(t, s.ApplyPullResponse(ctx, models.PullResponse{
		Changes: []models.Change{{Entity: models.EntityNote, Type: models.ChangeDelete, EntityID: oldID, Version: 3}},
	}))

	// Local-only tombstone (never synced): must survive compaction.
	_, err := s.SaveLocal(ctx, models.EntityNote, unsyncedID, noteDoc("local only"), base)
	require.NoError(t, err)
	_, err = s.DeleteLocal(ctx, models.EntityNote, unsyncedID, base)
	require.NoError(t, err)

	// Recent synced tombstone.
	s.now = func() time.Time { return base.Add(config.DefaultRetention - time.Hour) }
	require.NoError(t, s.ApplyPullResponse(ctx, models.PullResponse{
		Changes: []models.Change{{Entity: models.EntityNote, Type: models.ChangeDelete, EntityID: freshID, Version: 3}},
	}))

	// A later pull past the retention window compacts only the old synced one.
	s.now = func() time.Time { return base.Add(config.DefaultRetention + time.Hour) }
	require.NoError(t, s.ApplyPullResponse(ctx, models.PullResponse{NextCursor: "tick"}))

	_, err = s.GetLocalDocument(ctx, models.EntityNote, oldID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	doc, err := s.GetLocalDocument(ctx, models.EntityNote, freshID)
	require.NoError(t, err)
	assert.True(t, doc.IsSoftDeleted)

	doc, err = s.GetLocalDocument(ctx, models.EntityNote, unsyncedID)
	require.NoError(t, err)
	assert.True(t, doc.IsSoftDeleted)
	assert.Equal(t, models.DocTombstonePending, doc.Lifecycle())
}

func TestEnqueueLocalSnapshotIfNeeded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Pre-existing local rows, as if written before sync was ever enabled.
	noteID := uuid.NewString()
	tagID := uuid.NewString()
	_, err := s.SaveLocal(ctx, models.EntityNote, noteID, noteDoc("existing"), time.Now())
	require.NoError(t, err)
	_, err = s.SaveLocal(ctx, models.EntityTag, tagID, models.Document{"name": models.String("work")}, time.Now())
	require.NoError(t, err)

	// SaveLocal already queued both keys, so the bootstrap must skip them.
	enqueued, err := s.EnqueueLocalSnapshotIfNeeded(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, enqueued)

	state, err := s.LoadOrCreateSyncState(ctx)
	require.NoError(t, err)
	assert.True(t, state.DidBootstrapLocalSnapshot)
}

func TestEnqueueLocalSnapshotIfNeeded_QueuesUnsyncedRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// A row mirrored with sync_version 0 and an empty queue simulates data
	// created before the engine ran. Discarding the queued intent leaves the
	// document behind without a pending upload.
	entityID := uuid.NewString()
	saved, err := s.SaveLocal(ctx, models.EntityHabit, entityID, models.Document{"name": models.String("run")}, time.Now())
	require.NoError(t, err)
	require.NoError(t, s.ResolveConflictKeepServer(ctx, saved.OpID))

	count, err := s.CountPendingMutations(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, count)

	enqueued, err := s.EnqueueLocalSnapshotIfNeeded(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, enqueued)

	pending, err := s.FetchPendingMutations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.EntityHabit, pending[0].Entity)
	assert.Equal(t, entityID, pending[0].EntityID)
}

func TestSnapshotRoundTripsPulledDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	entityID := uuid.NewString()

	// Apply the page with a backdated clock so the success watermark lands
	// before the document's own client timestamp, making the row eligible
	// for re-upload on the next snapshot pass.
	editedAt := time.Now().UTC().Truncate(time.Second)
	s.now = func() time.Time { return editedAt.Add(-time.Hour) }

	err := s.ApplyPullResponse(ctx, models.PullResponse{
		Changes: []models.Change{{
			Entity:   models.EntityBookmark,
			Type:     models.ChangeUpsert,
			EntityID: entityID,
			Version:  3,
			Doc: models.Document{
				"url":               models.String("https://example.org"),
				"folder":            models.String("reading"),
				"pinned":            models.Bool(true),
				"version":           models.Number(3),
				"updated_at_client": models.Time(editedAt),
			},
		}},
		NextCursor: "cursor-3",
	})
	require.NoError(t, err)
	s.now = time.Now

	enqueued, err := s.EnqueueLocalSnapshotIfNeeded(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, enqueued)

	pending, err := s.FetchPendingMutations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.MutationUpsert, pending[0].Type)
	assert.Equal(t, int64(3), pending[0].BaseVersion)
	assert.Equal(t, "https://example.org", pending[0].Payload.GetString("url"))
	assert.Equal(t, "reading", pending[0].Payload.GetString("folder"))
	assert.True(t, pending[0].Payload.GetBool("pinned"))
	assert.True(t, pending[0].UpdatedAtClient.Equal(editedAt))
}

func TestLoadOrCreateSyncState_StableDeviceID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.LoadOrCreateSyncState(ctx)
	require.NoError(t, err)
	_, err = uuid.Parse(first.DeviceID)
	require.NoError(t, err)
	assert.False(t, first.IsSyncEnabled)

	second, err := s.LoadOrCreateSyncState(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.DeviceID, second.DeviceID)
}

func TestSetSyncEnabled(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.LoadOrCreateSyncState(ctx)
	require.NoError(t, err)

	require.NoError(t, s.SetSyncEnabled(ctx, true))

	state, err := s.LoadOrCreateSyncState(ctx)
	require.NoError(t, err)
	assert.True(t, state.IsSyncEnabled)
}

func TestSetUser_SwitchResetsProgress(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.LoadOrCreateSyncState(ctx)
	require.NoError(t, err)
	require.NoError(t, s.SetUser(ctx, "alice"))

	_, err = s.SaveLocal(ctx, models.EntityNote, uuid.NewString(), noteDoc("alice's"), time.Now())
	require.NoError(t, err)
	require.NoError(t, s.ProcessPushResponse(ctx, models.PushResponse{NewCursor: "alice-cursor"}))

	require.NoError(t, s.SetUser(ctx, "bob"))

	state, err := s.LoadOrCreateSyncState(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob", state.UserID)
	assert.Empty(t, state.LastCursor)
	assert.False(t, state.DidBootstrapLocalSnapshot)

	count, err := s.CountPendingMutations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSetUser_SameUserKeepsProgress(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.LoadOrCreateSyncState(ctx)
	require.NoError(t, err)
	require.NoError(t, s.SetUser(ctx, "alice"))
	require.NoError(t, s.ProcessPushResponse(ctx, models.PushResponse{NewCursor: "c1"}))

	require.NoError(t, s.SetUser(ctx, "alice"))

	state, err := s.LoadOrCreateSyncState(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c1", state.LastCursor)
}

func TestConflictEvents_AppendAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entityID := uuid.NewString()
	require.NoError(t, s.AppendConflictEvent(ctx, models.ConflictEvent{
		Type:     models.EventConflictDetected,
		Entity:   models.EntityNote,
		EntityID: entityID,
		Reason:   string(models.ReasonVersionMismatch),
	}))
	require.NoError(t, s.AppendConflictEvent(ctx, models.ConflictEvent{
		Type:     models.EventKeptServer,
		Entity:   models.EntityNote,
		EntityID: entityID,
		Reason:   string(models.ReasonVersionMismatch),
	}))

	events, err := s.ListConflictEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	// Newest first.
	assert.Equal(t, models.EventKeptServer, events[0].Type)
	assert.Equal(t, models.EventConflictDetected, events[1].Type)
	assert.False(t, events[0].Timestamp.IsZero())
}
