package store

import (
	sq "github.com/Masterminds/squirrel"
)

const (
	deleteMutationByKey = `
		DELETE FROM pending_mutations
		WHERE entity = ? AND entity_id = ?;`

	insertMutation = `
		INSERT INTO pending_mutations (
			op_id,
			entity,
			entity_id,
			mutation_type,
			base_version,
			payload,
			created_at,
			updated_at_client,
			attempts,
			last_error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, '');`

	getMutationByOpID = `
		SELECT
			op_id,
			entity,
			entity_id,
			mutation_type,
			base_version,
			payload,
			created_at,
			updated_at_client,
			attempts,
			last_error
		FROM pending_mutations
		WHERE op_id = ?;`

	getMutationKeyByOpID = `
		SELECT entity, entity_id, base_version
		FROM pending_mutations
		WHERE op_id = ?;`

	deleteMutationByOpID = `
		DELETE FROM pending_mutations
		WHERE op_id = ?;`

	bumpMutationFailure = `
		UPDATE pending_mutations SET
			attempts   = attempts + 1,
			last_error = ?,
			created_at = ?
		WHERE op_id = ?;`

	rebaseMutation = `
		UPDATE pending_mutations SET
			base_version = ?,
			attempts     = 0,
			last_error   = '',
			created_at   = ?
		WHERE op_id = ?;`

	countMutations = `
		SELECT COUNT(*) FROM pending_mutations;`

	existsMutationForKey = `
		SELECT COUNT(*) FROM pending_mutations
		WHERE entity = ? AND entity_id = ?;`

	upsertDocument = `
		INSERT INTO documents (entity, id, doc, sync_version, updated_at_client, is_soft_deleted)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (entity, id) DO UPDATE SET
			doc               = excluded.doc,
			sync_version      = excluded.sync_version,
			updated_at_client = excluded.updated_at_client,
			is_soft_deleted   = excluded.is_soft_deleted;`

	markDocumentSynced = `
		UPDATE documents SET sync_version = MAX(sync_version, ?)
		WHERE entity = ? AND id = ?;`

	getDocumentExists = `
		SELECT COUNT(*) FROM documents
		WHERE entity = ? AND id = ?;`

	getDocument = `
		SELECT entity, id, doc, sync_version, updated_at_client, is_soft_deleted
		FROM documents
		WHERE entity = ? AND id = ?;`

	tombstoneDocument = `
		UPDATE documents SET
			is_soft_deleted   = TRUE,
			sync_version      = ?,
			updated_at_client = ?
		WHERE entity = ? AND id = ?;`

	compactTombstones = `
		DELETE FROM documents
		WHERE is_soft_deleted = TRUE
		  AND sync_version > 0
		  AND updated_at_client < ?;`

	getSyncState = `
		SELECT device_id, user_id, last_cursor, last_successful_sync_at,
		       is_sync_enabled, did_bootstrap_local_snapshot
		FROM sync_state
		WHERE id = 1;`

	insertSyncState = `
		INSERT INTO sync_state (id, device_id, user_id, last_cursor, is_sync_enabled, did_bootstrap_local_snapshot)
		VALUES (1, ?, '', '', FALSE, FALSE);`

	setSyncEnabled = `
		UPDATE sync_state SET is_sync_enabled = ? WHERE id = 1;`

	setSyncUser = `
		UPDATE sync_state SET user_id = ? WHERE id = 1;`

	resetSyncProgress = `
		UPDATE sync_state SET
			last_cursor                  = '',
			last_successful_sync_at      = NULL,
			did_bootstrap_local_snapshot = FALSE
		WHERE id = 1;`

	clearMutationQueue = `
		DELETE FROM pending_mutations;`

	setCursor = `
		UPDATE sync_state SET last_cursor = ? WHERE id = 1;`

	setSyncWatermark = `
		UPDATE sync_state SET last_successful_sync_at = ? WHERE id = 1;`

	markBootstrapped = `
		UPDATE sync_state SET did_bootstrap_local_snapshot = TRUE WHERE id = 1;`

	insertPendingLink = `
		INSERT INTO pending_links (child_entity, child_id, field, parent_entity, parent_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (child_entity, child_id, field) DO UPDATE SET
			parent_entity = excluded.parent_entity,
			parent_id     = excluded.parent_id;`

	resolveArrivedLinks = `
		DELETE FROM pending_links
		WHERE EXISTS (
			SELECT 1 FROM documents d
			WHERE d.entity = pending_links.parent_entity
			  AND d.id     = pending_links.parent_id
		);`

	countPendingLinks = `
		SELECT COUNT(*) FROM pending_links;`

	insertConflictEvent = `
		INSERT INTO conflict_events (event_type, entity, entity_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?);`

	pruneConflictEvents = `
		DELETE FROM conflict_events
		WHERE id NOT IN (
			SELECT id FROM conflict_events ORDER BY id DESC LIMIT ?
		);`
)

// buildFetchPendingQuery returns the queue-drain SELECT: deletes sort ahead
// of upserts so a stale upsert cannot race past the delete of the same row
// on the server, retries drift to the back of their tier via the attempt
// counter, and created_at breaks the remaining ties oldest-first.
func buildFetchPendingQuery(limit int) (string, []any, error) {
	return sq.Select(
		"op_id",
		"entity",
		"entity_id",
		"mutation_type",
		"base_version",
		"payload",
		"created_at",
		"updated_at_client",
		"attempts",
		"last_error",
	).
		From("pending_mutations").
		OrderBy(
			"CASE mutation_type WHEN 'delete' THEN 0 ELSE 1 END",
			"attempts ASC",
			"created_at ASC",
		).
		Limit(uint64(limit)).
		ToSql()
}

// buildSnapshotQuery returns the SELECT used by snapshot bootstrap: rows of
// one entity kind the server has never acknowledged, plus, once a sync has
// succeeded, rows modified after that watermark (covers edits made by an
// external writer while the engine was not running).
func buildSnapshotQuery(entity string, watermark any) (string, []any, error) {
	pred := sq.Or{sq.Eq{"sync_version": 0}}
	if watermark != nil {
		pred = append(pred, sq.Gt{"updated_at_client": watermark})
	}

	return sq.Select("entity", "id", "doc", "sync_version", "updated_at_client", "is_soft_deleted").
		From("documents").
		Where(sq.Eq{"entity": entity}).
		Where(pred).
		OrderBy("updated_at_client ASC").
		ToSql()
}

// buildListConflictEventsQuery returns the newest-first audit log page.
func buildListConflictEventsQuery(limit int) (string, []any, error) {
	return sq.Select("id", "event_type", "entity", "entity_id", "reason", "created_at").
		From("conflict_events").
		OrderBy("id DESC").
		Limit(uint64(limit)).
		ToSql()
}
