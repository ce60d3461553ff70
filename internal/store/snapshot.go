package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ortano/docsync/models"
)

// EnqueueLocalSnapshotIfNeeded implements [MutationStore]. It walks every
// entity kind and enqueues an upload for rows the server has never seen
// (sync_version = 0) or, once a sync has succeeded, rows modified after the
// last success watermark. Keys with a queued mutation are skipped so a
// bootstrap never clobbers a newer pending intent.
func (s *localStore) EnqueueLocalSnapshotIfNeeded(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	enqueued := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		state, err := s.ensureSyncState(ctx, tx)
		if err != nil {
			return err
		}

		watermark := state.LastSuccessfulSyncAt

		for _, kind := range models.AllEntityKinds {
			count, err := s.snapshotEntity(ctx, tx, kind, watermark)
			if err != nil {
				return err
			}
			enqueued += count
		}

		if !state.DidBootstrapLocalSnapshot {
			if _, err = tx.ExecContext(ctx, markBootstrapped); err != nil {
				return fmt.Errorf("failed to mark snapshot bootstrap: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if enqueued > 0 {
		s.logger.Info().
			Str("func", "localStore.EnqueueLocalSnapshotIfNeeded").
			Int("enqueued", enqueued).
			Msg("local snapshot queued for upload")
	}
	return enqueued, nil
}

func (s *localStore) snapshotEntity(ctx context.Context, tx *sql.Tx, kind models.EntityKind, watermark *time.Time) (int, error) {
	var cutoff any
	if watermark != nil {
		cutoff = watermark.UTC()
	}
	query, args, err := buildSnapshotQuery(string(kind), cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to scan %s rows for snapshot: %w", kind, err)
	}

	var candidates []models.LocalDocument
	for rows.Next() {
		var (
			doc     models.LocalDocument
			entTag  string
			rawDoc  string
			updated time.Time
		)
		if err = rows.Scan(&entTag, &doc.ID, &rawDoc, &doc.SyncVersion, &updated, &doc.IsSoftDeleted); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		doc.Entity = models.EntityKind(entTag)
		doc.UpdatedAtClient = updated.UTC()
		if doc.Doc, err = models.DecodeDocument([]byte(rawDoc)); err != nil {
			rows.Close()
			return 0, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
		candidates = append(candidates, doc)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("error iterating snapshot rows: %w", err)
	}
	rows.Close()

	enqueued := 0
	for _, doc := range candidates {
		var queued int
		if err = tx.QueryRowContext(ctx, existsMutationForKey, string(doc.Entity), doc.ID).Scan(&queued); err != nil {
			return 0, fmt.Errorf("failed to check queue for %s/%s: %w", doc.Entity, doc.ID, err)
		}
		if queued > 0 {
			continue
		}

		mutationType := models.MutationUpsert
		payload := doc.Doc
		if doc.IsSoftDeleted {
			mutationType = models.MutationDelete
			payload = nil
		}
		if _, err = s.enqueueLocked(ctx, tx, doc.Entity, doc.ID, mutationType, doc.SyncVersion, payload, doc.UpdatedAtClient); err != nil {
			return 0, err
		}
		enqueued++
	}

	return enqueued, nil
}
