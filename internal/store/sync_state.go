package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ortano/docsync/models"
)

func loadSyncState(ctx context.Context, tx *sql.Tx) (models.SyncState, error) {
	var (
		state  models.SyncState
		lastAt sql.NullTime
	)
	err := tx.QueryRowContext(ctx, getSyncState).Scan(
		&state.DeviceID,
		&state.UserID,
		&state.LastCursor,
		&lastAt,
		&state.IsSyncEnabled,
		&state.DidBootstrapLocalSnapshot,
	)
	if err != nil {
		return models.SyncState{}, err
	}
	if lastAt.Valid {
		at := lastAt.Time.UTC()
		state.LastSuccessfulSyncAt = &at
	}
	return state, nil
}

// ensureSyncState creates the singleton state row with a fresh device id if
// it does not exist yet, and returns it.
func (s *localStore) ensureSyncState(ctx context.Context, tx *sql.Tx) (models.SyncState, error) {
	state, err := loadSyncState(ctx, tx)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.SyncState{}, err
	}

	deviceID := s.ids.Generate()
	if _, err = tx.ExecContext(ctx, insertSyncState, deviceID); err != nil {
		return models.SyncState{}, fmt.Errorf("failed to create sync state: %w", err)
	}
	s.logger.Info().
		Str("func", "localStore.ensureSyncState").
		Str("device_id", deviceID).
		Msg("sync state initialized")

	return loadSyncState(ctx, tx)
}

// LoadOrCreateSyncState implements [MutationStore].
func (s *localStore) LoadOrCreateSyncState(ctx context.Context) (models.SyncState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var state models.SyncState
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var txErr error
		state, txErr = s.ensureSyncState(ctx, tx)
		return txErr
	})
	if err != nil {
		return models.SyncState{}, fmt.Errorf("failed to load sync state: %w", err)
	}
	return state, nil
}

// SetSyncEnabled implements [MutationStore].
func (s *localStore) SetSyncEnabled(ctx context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, setSyncEnabled, enabled); err != nil {
		return fmt.Errorf("failed to toggle sync: %w", err)
	}
	return nil
}

// SetUser implements [MutationStore]. Switching accounts discards the
// queued intents of the previous account and forces a fresh bootstrap:
// cursors and queue contents from one account must never leak into another.
func (s *localStore) SetUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		state, err := s.ensureSyncState(ctx, tx)
		if err != nil {
			return fmt.Errorf("failed to load sync state: %w", err)
		}

		if state.UserID != "" && state.UserID != userID {
			if _, err = tx.ExecContext(ctx, clearMutationQueue); err != nil {
				return fmt.Errorf("failed to clear queue on account switch: %w", err)
			}
			if _, err = tx.ExecContext(ctx, resetSyncProgress); err != nil {
				return fmt.Errorf("failed to reset sync progress on account switch: %w", err)
			}
			s.logger.Info().
				Str("func", "localStore.SetUser").
				Msg("account switched, sync progress reset")
		}

		if _, err = tx.ExecContext(ctx, setSyncUser, userID); err != nil {
			return fmt.Errorf("failed to set sync user: %w", err)
		}
		return nil
	})
}
