package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ortano/docsync/models"
)

// envelopeFields are transport-level keys that accompany a pulled document
// but do not belong in the stored payload. Version and deletion state live
// in dedicated columns.
var envelopeFields = []string{"version", "is_deleted", "updated_at", "updated_at_client", "last_op_id"}

func stripEnvelope(doc models.Document) models.Document {
	stripped := doc.Clone()
	for _, field := range envelopeFields {
		delete(stripped, field)
	}
	return stripped
}

// ApplyPullResponse implements [MutationStore]. One page of server changes
// is applied in a single transaction together with its cursor, so a crash
// mid-page replays the whole page instead of losing part of it. Replays are
// safe: upserts and tombstones are keyed writes.
func (s *localStore) ApplyPullResponse(ctx context.Context, resp models.PullResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, change := range resp.Changes {
			if err := s.applyChange(ctx, tx, change); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, resolveArrivedLinks); err != nil {
			return fmt.Errorf("failed to resolve pending links: %w", err)
		}

		now := s.now().UTC()
		if _, err := s.ensureSyncState(ctx, tx); err != nil {
			return err
		}
		// The success watermark advances with every fully applied page; the
		// cursor only moves when the server handed out a new one.
		if _, err := tx.ExecContext(ctx, setSyncWatermark, now); err != nil {
			return fmt.Errorf("failed to persist sync watermark: %w", err)
		}
		if resp.NextCursor != "" {
			if _, err := tx.ExecContext(ctx, setCursor, resp.NextCursor); err != nil {
				return fmt.Errorf("failed to persist pull cursor: %w", err)
			}
		}

		if s.retention > 0 {
			cutoff := now.Add(-s.retention)
			if _, err := tx.ExecContext(ctx, compactTombstones, cutoff); err != nil {
				return fmt.Errorf("failed to compact tombstones: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug().
		Str("func", "localStore.ApplyPullResponse").
		Int("changes", len(resp.Changes)).
		Str("cursor", resp.NextCursor).
		Msg("pull page applied")
	return nil
}

func (s *localStore) applyChange(ctx context.Context, tx *sql.Tx, change models.Change) error {
	if !change.Entity.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownEntity, change.Entity)
	}
	entityID, err := normalizeUUID(change.EntityID)
	if err != nil {
		return err
	}

	switch change.Type {
	case models.ChangeDelete:
		// Deletes of rows this device never held are no-ops; the retention
		// clock for pulled tombstones starts when the delete is applied.
		if _, err = tx.ExecContext(ctx, tombstoneDocument, change.Version, s.now().UTC(), string(change.Entity), entityID); err != nil {
			return fmt.Errorf("failed to apply pulled delete (entity=%s id=%s): %w", change.Entity, entityID, err)
		}
		return nil

	case models.ChangeUpsert:
		if change.Doc == nil {
			return fmt.Errorf("%w: pulled upsert for %s/%s carries no document", ErrMalformedPayload, change.Entity, entityID)
		}

		updatedAt := s.now().UTC()
		if at, ok := change.Doc.GetTime("updated_at_client"); ok {
			updatedAt = at.UTC()
		} else if at, ok = change.Doc.GetTime("updated_at"); ok {
			updatedAt = at.UTC()
		}

		// A tombstone may arrive as an upsert carrying the deletion flag;
		// read it before the envelope is stripped.
		deleted := change.Doc.GetBool("is_deleted")

		version := change.Version
		if version == 0 {
			version = change.Doc.GetInt("version")
		}

		encoded, encErr := stripEnvelope(change.Doc).Encode()
		if encErr != nil {
			return fmt.Errorf("%w: %w", ErrMalformedPayload, encErr)
		}
		if _, err = tx.ExecContext(ctx, upsertDocument,
			string(change.Entity), entityID, string(encoded), version, updatedAt, deleted); err != nil {
			return fmt.Errorf("failed to apply pulled upsert (entity=%s id=%s): %w", change.Entity, entityID, err)
		}

		return s.recordMissingParents(ctx, tx, change.Entity, entityID, change.Doc)
	}

	return fmt.Errorf("unknown pulled change type %q for %s/%s", change.Type, change.Entity, entityID)
}

// recordMissingParents defers link checks for documents that reference a
// parent not yet mirrored locally. Pages may deliver a child before its
// parent; the link resolves once the parent row arrives.
func (s *localStore) recordMissingParents(ctx context.Context, tx *sql.Tx, entity models.EntityKind, entityID string, doc models.Document) error {
	for field, parent := range entity.References() {
		parentID := doc.GetString(field)
		if parentID == "" {
			continue
		}
		normalizedParent, err := normalizeUUID(parentID)
		if err != nil {
			return fmt.Errorf("reference %s.%s: %w", entity, field, err)
		}

		var exists int
		if err = tx.QueryRowContext(ctx, getDocumentExists, string(parent), normalizedParent).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check parent %s/%s: %w", parent, normalizedParent, err)
		}
		if exists > 0 {
			continue
		}

		if _, err = tx.ExecContext(ctx, insertPendingLink,
			string(entity), entityID, field, string(parent), normalizedParent); err != nil {
			return fmt.Errorf("failed to record pending link %s.%s -> %s: %w", entity, field, parent, err)
		}
	}
	return nil
}

// CountPendingLinks reports forward references still awaiting their parent.
func (s *localStore) CountPendingLinks(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	if err := s.db.QueryRowContext(ctx, countPendingLinks).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending links: %w", err)
	}
	return count, nil
}
