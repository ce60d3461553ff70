package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ortano/docsync/internal/config"
	"github.com/ortano/docsync/internal/logger"
	"github.com/ortano/docsync/internal/utils"
	"github.com/ortano/docsync/models"
)

// auditLogCap bounds the persisted conflict-event log. Older entries are
// pruned as new ones arrive.
const auditLogCap = 500

type localStore struct {
	db *DB

	// mu serializes every operation: the queue and the mirrored documents
	// share one storage backend and must never see interleaved writers.
	mu sync.Mutex

	retention time.Duration
	ids       *utils.UUIDGenerator
	logger    *logger.Logger

	// now is replaced in tests.
	now func() time.Time
}

// NewLocalStore constructs the SQLite-backed MutationStore.
func NewLocalStore(db *DB, cfg config.Sync, log *logger.Logger) MutationStore {
	return &localStore{
		db:        db,
		retention: cfg.Retention,
		ids:       utils.NewUUIDGenerator(),
		logger:    log,
		now:       time.Now,
	}
}

func (s *localStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}

	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommittingTransaction, err)
	}
	return nil
}

// normalizeUUID validates id and returns its canonical lowercase form.
func normalizeUUID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedID, id)
	}
	return strings.ToLower(parsed.String()), nil
}

// EnqueueMutation implements [MutationStore]. The delete-then-insert keeps
// the at-most-one-entry-per-key invariant: a stale queued upsert can never
// outlive a later local delete, and a later upsert supersedes a queued
// delete.
func (s *localStore) EnqueueMutation(
	ctx context.Context,
	entity models.EntityKind,
	entityID string,
	mutationType models.MutationType,
	baseVersion int64,
	payload models.Document,
	updatedAtClient time.Time,
) (models.PendingMutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var mutation models.PendingMutation
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var txErr error
		mutation, txErr = s.enqueueLocked(ctx, tx, entity, entityID, mutationType, baseVersion, payload, updatedAtClient)
		return txErr
	})
	if err != nil {
		return models.PendingMutation{}, err
	}

	s.logger.Debug().
		Str("func", "localStore.EnqueueMutation").
		Str("entity", string(entity)).
		Str("entity_id", mutation.EntityID).
		Str("op_id", mutation.OpID).
		Str("type", string(mutationType)).
		Msg("mutation enqueued")

	return mutation, nil
}

func (s *localStore) enqueueLocked(
	ctx context.Context,
	tx *sql.Tx,
	entity models.EntityKind,
	entityID string,
	mutationType models.MutationType,
	baseVersion int64,
	payload models.Document,
	updatedAtClient time.Time,
) (models.PendingMutation, error) {
	if !entity.Valid() {
		return models.PendingMutation{}, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
	if _, err := models.ParseMutationType(string(mutationType)); err != nil {
		return models.PendingMutation{}, fmt.Errorf("%w: %q", ErrUnknownMutationType, mutationType)
	}
	normalizedID, err := normalizeUUID(entityID)
	if err != nil {
		return models.PendingMutation{}, err
	}

	mutation := models.PendingMutation{
		OpID:            s.ids.Generate(),
		Entity:          entity,
		EntityID:        normalizedID,
		Type:            mutationType,
		BaseVersion:     baseVersion,
		CreatedAt:       s.now().UTC(),
		UpdatedAtClient: updatedAtClient.UTC(),
	}

	var payloadArg any
	if mutationType == models.MutationUpsert {
		if payload == nil {
			return models.PendingMutation{}, fmt.Errorf("%w: upsert requires a payload (entity=%s id=%s)", ErrMalformedPayload, entity, normalizedID)
		}
		mutation.Payload = payload
		encoded, encErr := payload.Encode()
		if encErr != nil {
			return models.PendingMutation{}, fmt.Errorf("%w: %w", ErrMalformedPayload, encErr)
		}
		payloadArg = string(encoded)
	}

	if _, err = tx.ExecContext(ctx, deleteMutationByKey, string(entity), normalizedID); err != nil {
		return models.PendingMutation{}, fmt.Errorf("failed to replace pending mutation (entity=%s id=%s): %w", entity, normalizedID, err)
	}
	_, err = tx.ExecContext(ctx, insertMutation,
		mutation.OpID,
		string(mutation.Entity),
		mutation.EntityID,
		string(mutation.Type),
		mutation.BaseVersion,
		payloadArg,
		mutation.CreatedAt,
		mutation.UpdatedAtClient,
	)
	if err != nil {
		return models.PendingMutation{}, fmt.Errorf("failed to insert pending mutation (entity=%s id=%s): %w", entity, normalizedID, err)
	}

	return mutation, nil
}

// FetchPendingMutations implements [MutationStore].
func (s *localStore) FetchPendingMutations(ctx context.Context, limit int) ([]models.PendingMutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query, args, err := buildFetchPendingQuery(limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending mutations: %w", err)
	}
	defer rows.Close()

	var mutations []models.PendingMutation
	for rows.Next() {
		mutation, scanErr := scanMutation(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		mutations = append(mutations, mutation)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending mutation rows: %w", err)
	}

	return mutations, nil
}

// FetchPendingMutation implements [MutationStore].
func (s *localStore) FetchPendingMutation(ctx context.Context, opID string) (models.PendingMutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx, getMutationByOpID, opID)
	mutation, err := scanMutation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PendingMutation{}, fmt.Errorf("%w: %s", ErrMutationNotFound, opID)
	}
	return mutation, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMutation(row rowScanner) (models.PendingMutation, error) {
	var (
		mutation models.PendingMutation
		entity   string
		mtype    string
		payload  sql.NullString
	)
	err := row.Scan(
		&mutation.OpID,
		&entity,
		&mutation.EntityID,
		&mtype,
		&mutation.BaseVersion,
		&payload,
		&mutation.CreatedAt,
		&mutation.UpdatedAtClient,
		&mutation.Attempts,
		&mutation.LastError,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PendingMutation{}, err
		}
		return models.PendingMutation{}, fmt.Errorf("failed to scan pending mutation row: %w", err)
	}

	mutation.Entity, err = models.ParseEntityKind(entity)
	if err != nil {
		return models.PendingMutation{}, fmt.Errorf("%w: %w", ErrUnknownEntity, err)
	}
	mutation.Type, err = models.ParseMutationType(mtype)
	if err != nil {
		return models.PendingMutation{}, fmt.Errorf("%w: %w", ErrUnknownMutationType, err)
	}
	if payload.Valid && payload.String != "" {
		mutation.Payload, err = models.DecodeDocument([]byte(payload.String))
		if err != nil {
			return models.PendingMutation{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
	}

	return mutation, nil
}

// ProcessPushResponse implements [MutationStore]. An acknowledged
// mutation's mirrored document is marked synced (its version advanced past
// the pushed base) so snapshot bootstrap stops considering it and an acked
// tombstone becomes eligible for compaction. Re-stamping created_at on a
// failed or conflicted row pushes it to the back of its priority tier on
// the next drain, a timer-free form of backoff.
func (s *localStore) ProcessPushResponse(ctx context.Context, resp models.PushResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := s.now().UTC()

		for _, opID := range resp.AcknowledgedOpIDs {
			var (
				entity      string
				entityID    string
				baseVersion int64
			)
			err := tx.QueryRowContext(ctx, getMutationKeyByOpID, opID).Scan(&entity, &entityID, &baseVersion)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				continue
			case err != nil:
				return fmt.Errorf("failed to look up acknowledged mutation %s: %w", opID, err)
			}

			if _, err = tx.ExecContext(ctx, markDocumentSynced, baseVersion+1, entity, entityID); err != nil {
				return fmt.Errorf("failed to mark %s/%s synced: %w", entity, entityID, err)
			}
			if _, err = tx.ExecContext(ctx, deleteMutationByOpID, opID); err != nil {
				return fmt.Errorf("failed to remove acknowledged mutation %s: %w", opID, err)
			}
		}

		for _, conflict := range resp.Conflicts {
			if _, err := tx.ExecContext(ctx, bumpMutationFailure, string(conflict.Reason), now, conflict.OpID); err != nil {
				return fmt.Errorf("failed to record conflict for mutation %s: %w", conflict.OpID, err)
			}
		}

		for _, failed := range resp.Failed {
			if failed.OpID == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, bumpMutationFailure, failed.Reason, now, failed.OpID); err != nil {
				return fmt.Errorf("failed to record failure for mutation %s: %w", failed.OpID, err)
			}
		}

		if resp.NewCursor != "" {
			if _, err := s.ensureSyncState(ctx, tx); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, setCursor, resp.NewCursor); err != nil {
				return fmt.Errorf("failed to persist push cursor: %w", err)
			}
		}

		return nil
	})
}

// ResolveConflictKeepMine implements [MutationStore].
func (s *localStore) ResolveConflictKeepMine(ctx context.Context, opID string, serverVersion *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := int64(0)
	if serverVersion != nil && *serverVersion > 0 {
		base = *serverVersion
	}

	_, err := s.db.ExecContext(ctx, rebaseMutation, base, s.now().UTC(), opID)
	if err != nil {
		return fmt.Errorf("failed to rebase mutation %s: %w", opID, err)
	}

	s.logger.Debug().
		Str("func", "localStore.ResolveConflictKeepMine").
		Str("op_id", opID).
		Int64("base_version", base).
		Msg("mutation rebased for retry")
	return nil
}

// ResolveConflictKeepServer implements [MutationStore].
func (s *localStore) ResolveConflictKeepServer(ctx context.Context, opID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, deleteMutationByOpID, opID); err != nil {
		return fmt.Errorf("failed to discard mutation %s: %w", opID, err)
	}
	return nil
}

// AdoptServerState implements [MutationStore].
func (s *localStore) AdoptServerState(ctx context.Context, c models.Conflict) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ServerVersion == nil {
		// The server has no row: nothing to mirror.
		return nil
	}

	entityID, err := normalizeUUID(c.EntityID)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		updatedAt := s.now().UTC()
		if at, ok := c.ServerUpdatedAt(); ok {
			updatedAt = at.UTC()
		}

		if c.ServerDeleted() {
			if _, err := tx.ExecContext(ctx, tombstoneDocument, *c.ServerVersion, updatedAt, string(c.Entity), entityID); err != nil {
				return fmt.Errorf("failed to tombstone local row (entity=%s id=%s): %w", c.Entity, entityID, err)
			}
			return nil
		}

		if c.ServerDoc == nil {
			return nil
		}
		encoded, encErr := stripEnvelope(c.ServerDoc).Encode()
		if encErr != nil {
			return fmt.Errorf("%w: %w", ErrMalformedPayload, encErr)
		}
		_, err := tx.ExecContext(ctx, upsertDocument,
			string(c.Entity), entityID, string(encoded), *c.ServerVersion, updatedAt, false)
		if err != nil {
			return fmt.Errorf("failed to adopt server row (entity=%s id=%s): %w", c.Entity, entityID, err)
		}
		return nil
	})
}

// SaveLocal implements [MutationStore].
func (s *localStore) SaveLocal(
	ctx context.Context,
	entity models.EntityKind,
	entityID string,
	doc models.Document,
	updatedAtClient time.Time,
) (models.PendingMutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !entity.Valid() {
		return models.PendingMutation{}, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
	normalizedID, err := normalizeUUID(entityID)
	if err != nil {
		return models.PendingMutation{}, err
	}

	var mutation models.PendingMutation
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		baseVersion := int64(0)
		existing, found, lookupErr := lookupDocument(ctx, tx, entity, normalizedID)
		if lookupErr != nil {
			return lookupErr
		}
		if found {
			baseVersion = existing.SyncVersion
		}

		encoded, encErr := doc.Encode()
		if encErr != nil {
			return fmt.Errorf("%w: %w", ErrMalformedPayload, encErr)
		}
		_, execErr := tx.ExecContext(ctx, upsertDocument,
			string(entity), normalizedID, string(encoded), baseVersion, updatedAtClient.UTC(), false)
		if execErr != nil {
			return fmt.Errorf("failed to save local document (entity=%s id=%s): %w", entity, normalizedID, execErr)
		}

		var txErr error
		mutation, txErr = s.enqueueLocked(ctx, tx, entity, normalizedID, models.MutationUpsert, baseVersion, doc, updatedAtClient)
		return txErr
	})
	if err != nil {
		return models.PendingMutation{}, err
	}
	return mutation, nil
}

// DeleteLocal implements [MutationStore].
func (s *localStore) DeleteLocal(
	ctx context.Context,
	entity models.EntityKind,
	entityID string,
	deletedAt time.Time,
) (models.PendingMutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !entity.Valid() {
		return models.PendingMutation{}, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
	normalizedID, err := normalizeUUID(entityID)
	if err != nil {
		return models.PendingMutation{}, err
	}

	var mutation models.PendingMutation
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		existing, found, lookupErr := lookupDocument(ctx, tx, entity, normalizedID)
		if lookupErr != nil {
			return lookupErr
		}
		if !found {
			return fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, entity, normalizedID)
		}

		if _, execErr := tx.ExecContext(ctx, tombstoneDocument,
			existing.SyncVersion, deletedAt.UTC(), string(entity), normalizedID); execErr != nil {
			return fmt.Errorf("failed to soft-delete local document (entity=%s id=%s): %w", entity, normalizedID, execErr)
		}

		var txErr error
		mutation, txErr = s.enqueueLocked(ctx, tx, entity, normalizedID, models.MutationDelete, existing.SyncVersion, nil, deletedAt)
		return txErr
	})
	if err != nil {
		return models.PendingMutation{}, err
	}
	return mutation, nil
}

// GetLocalDocument implements [MutationStore].
func (s *localStore) GetLocalDocument(ctx context.Context, entity models.EntityKind, entityID string) (models.LocalDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalizedID, err := normalizeUUID(entityID)
	if err != nil {
		return models.LocalDocument{}, err
	}

	var doc models.LocalDocument
	var found bool
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var txErr error
		doc, found, txErr = lookupDocument(ctx, tx, entity, normalizedID)
		return txErr
	})
	if err != nil {
		return models.LocalDocument{}, err
	}
	if !found {
		return models.LocalDocument{}, fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, entity, normalizedID)
	}
	return doc, nil
}

func lookupDocument(ctx context.Context, tx *sql.Tx, entity models.EntityKind, entityID string) (models.LocalDocument, bool, error) {
	var (
		doc     models.LocalDocument
		entTag  string
		rawDoc  string
		updated time.Time
	)
	err := tx.QueryRowContext(ctx, getDocument, string(entity), entityID).Scan(
		&entTag, &doc.ID, &rawDoc, &doc.SyncVersion, &updated, &doc.IsSoftDeleted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.LocalDocument{}, false, nil
	}
	if err != nil {
		return models.LocalDocument{}, false, fmt.Errorf("failed to scan local document row: %w", err)
	}

	doc.Entity = models.EntityKind(entTag)
	doc.UpdatedAtClient = updated.UTC()
	doc.Doc, err = models.DecodeDocument([]byte(rawDoc))
	if err != nil {
		return models.LocalDocument{}, false, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return doc, true, nil
}

// CountPendingMutations implements [MutationStore].
func (s *localStore) CountPendingMutations(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	if err := s.db.QueryRowContext(ctx, countMutations).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending mutations: %w", err)
	}
	return count, nil
}
