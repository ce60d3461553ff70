package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ortano/docsync/models"
)

// AppendConflictEvent implements [MutationStore].
func (s *localStore) AppendConflictEvent(ctx context.Context, ev models.ConflictEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		at := ev.Timestamp
		if at.IsZero() {
			at = s.now()
		}
		_, err := tx.ExecContext(ctx, insertConflictEvent,
			string(ev.Type), string(ev.Entity), ev.EntityID, ev.Reason, at.UTC())
		if err != nil {
			return fmt.Errorf("failed to append conflict event: %w", err)
		}
		if _, err = tx.ExecContext(ctx, pruneConflictEvents, auditLogCap); err != nil {
			return fmt.Errorf("failed to prune conflict events: %w", err)
		}
		return nil
	})
}

// ListConflictEvents implements [MutationStore].
func (s *localStore) ListConflictEvents(ctx context.Context, limit int) ([]models.ConflictEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > auditLogCap {
		limit = auditLogCap
	}
	query, args, err := buildListConflictEventsQuery(limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conflict events: %w", err)
	}
	defer rows.Close()

	var events []models.ConflictEvent
	for rows.Next() {
		var (
			ev     models.ConflictEvent
			evType string
			entity string
		)
		if err = rows.Scan(&ev.ID, &evType, &entity, &ev.EntityID, &ev.Reason, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan conflict event row: %w", err)
		}
		ev.Type = models.ConflictEventType(evType)
		ev.Entity = models.EntityKind(entity)
		ev.Timestamp = ev.Timestamp.UTC()
		events = append(events, ev)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conflict event rows: %w", err)
	}

	return events, nil
}
