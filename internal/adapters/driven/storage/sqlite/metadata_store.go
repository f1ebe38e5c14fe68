package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docquery/internal/core/domain"
	"github.com/custodia-labs/docquery/internal/core/ports/driven"
)

// metadataStore implements driven.MetadataStore.
type metadataStore struct {
	store *Store
}

var _ driven.MetadataStore = (*metadataStore)(nil)

// InsertChunks stores a batch of chunk records in one transaction.
// Returns the generated row ids in insertion order. A failure anywhere in
// the batch rolls back the whole insert.
func (m *metadataStore) InsertChunks(ctx context.Context, records []domain.ChunkRecord) ([]int64, error) {
	if len(records) == 0 {
		return nil, nil
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	tx, err := m.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning chunk insert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunk_metadata (vector_id, tenant_id, shard_date, document_name, page_number, chunk_index, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	rowIDs := make([]int64, 0, len(records))
	for i, rec := range records {
		createdAt := rec.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		res, err := stmt.ExecContext(ctx, rec.VectorID, rec.TenantID, rec.ShardDate,
			rec.DocumentName, rec.PageNumber, rec.ChunkIndex, rec.Content, createdAt)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return nil, fmt.Errorf("%w: vector id %d already recorded for shard %s",
					domain.ErrAlreadyExists, rec.VectorID, rec.ShardDate)
			}
			return nil, fmt.Errorf("inserting chunk %d: %w", i, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("reading chunk row id: %w", err)
		}
		rowIDs = append(rowIDs, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing chunk insert: %w", err)
	}
	return rowIDs, nil
}

// LookupChunks returns the shard's records matching both the tenant and
// the vector id set, ordered by vector id. Ids belonging to other tenants
// simply do not appear; the caller cannot distinguish "not stored" from
// "stored for someone else", which is the point.
func (m *metadataStore) LookupChunks(ctx context.Context, tenantID, shardDate string, vectorIDs []int64) ([]domain.ChunkRecord, error) {
	if len(vectorIDs) == 0 {
		return nil, nil
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(vectorIDs)), ",")
	args := make([]any, 0, len(vectorIDs)+2)
	args = append(args, tenantID, shardDate)
	for _, id := range vectorIDs {
		args = append(args, id)
	}

	//nolint:gosec // placeholders is built from "?" repetition, not input
	query := fmt.Sprintf(`
		SELECT id, vector_id, tenant_id, shard_date, document_name, page_number, chunk_index, content, created_at
		FROM chunk_metadata
		WHERE tenant_id = ? AND shard_date = ? AND vector_id IN (%s)
		ORDER BY vector_id
	`, placeholders)

	rows, err := m.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var records []domain.ChunkRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanChunkRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return records, nil
}

// RegisterShard inserts or updates the registry row for a shard. The
// first registration fixes created_at; later updates only move the path
// and the vector count.
func (m *metadataStore) RegisterShard(ctx context.Context, shard domain.Shard) error {
	if !domain.ValidShardDate(shard.Date) {
		return fmt.Errorf("%w: shard date must be YYYYMMDD, got %q", domain.ErrInvalidInput, shard.Date)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	createdAt := shard.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := m.store.db.ExecContext(ctx, `
		INSERT INTO shard_registry (shard_date, index_path, vector_count, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(shard_date) DO UPDATE SET
			index_path = excluded.index_path,
			vector_count = excluded.vector_count
	`, shard.Date, shard.IndexPath, shard.VectorCount, createdAt)

	if err != nil {
		return fmt.Errorf("registering shard: %w", err)
	}
	return nil
}

// GetShard retrieves one registry row.
func (m *metadataStore) GetShard(ctx context.Context, date string) (*domain.Shard, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	row := m.store.db.QueryRowContext(ctx, `
		SELECT shard_date, index_path, vector_count, created_at
		FROM shard_registry WHERE shard_date = ?
	`, date)

	var shard domain.Shard
	var createdAt sql.NullTime
	if err := row.Scan(&shard.Date, &shard.IndexPath, &shard.VectorCount, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: shard %s is not registered", domain.ErrNotFound, date)
		}
		return nil, fmt.Errorf("scanning shard: %w", err)
	}
	if createdAt.Valid {
		shard.CreatedAt = createdAt.Time
	}
	return &shard, nil
}

// ListActiveShards returns registered shards dated at or after the cutoff,
// newest first. Shard dates are fixed-width numeric, so string comparison
// in SQL matches calendar order.
func (m *metadataStore) ListActiveShards(ctx context.Context, cutoff string) ([]domain.Shard, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	rows, err := m.store.db.QueryContext(ctx, `
		SELECT shard_date, index_path, vector_count, created_at
		FROM shard_registry
		WHERE shard_date >= ?
		ORDER BY shard_date DESC
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying active shards: %w", err)
	}
	defer rows.Close()

	return collectShards(rows)
}

// DeleteStale removes the chunk rows and registry rows of every shard
// dated strictly before the cutoff, in one transaction. Index file
// deletion is the caller's job, after this commits; a crash in between
// leaves orphan files, which a later sweep cannot resurrect because their
// registry rows are gone.
func (m *metadataStore) DeleteStale(ctx context.Context, cutoff string) ([]domain.Shard, int64, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	tx, err := m.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("beginning stale delete: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	rows, err := tx.QueryContext(ctx, `
		SELECT shard_date, index_path, vector_count, created_at
		FROM shard_registry
		WHERE shard_date < ?
		ORDER BY shard_date
	`, cutoff)
	if err != nil {
		return nil, 0, fmt.Errorf("querying stale shards: %w", err)
	}
	stale, err := collectShards(rows)
	if err != nil {
		return nil, 0, err
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM chunk_metadata WHERE shard_date < ?", cutoff)
	if err != nil {
		return nil, 0, fmt.Errorf("deleting stale chunks: %w", err)
	}
	deletedRecords, err := res.RowsAffected()
	if err != nil {
		return nil, 0, fmt.Errorf("counting deleted chunks: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM shard_registry WHERE shard_date < ?", cutoff); err != nil {
		return nil, 0, fmt.Errorf("deleting stale shards: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("committing stale delete: %w", err)
	}
	return stale, deletedRecords, nil
}

// CountForTenant returns the tenant's total chunk records across all shards.
func (m *metadataStore) CountForTenant(ctx context.Context, tenantID string) (int64, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	var count int64
	row := m.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunk_metadata WHERE tenant_id = ?", tenantID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting tenant chunks: %w", err)
	}
	return count, nil
}

// ==================== Helper Functions ====================

// scanChunkRecord scans a chunk record from *sql.Rows.
func scanChunkRecord(rows *sql.Rows) (*domain.ChunkRecord, error) {
	var rec domain.ChunkRecord
	var createdAt sql.NullTime

	if err := rows.Scan(&rec.RowID, &rec.VectorID, &rec.TenantID, &rec.ShardDate,
		&rec.DocumentName, &rec.PageNumber, &rec.ChunkIndex, &rec.Content, &createdAt); err != nil {
		return nil, fmt.Errorf("scanning chunk record: %w", err)
	}
	if createdAt.Valid {
		rec.CreatedAt = createdAt.Time
	}
	return &rec, nil
}

// collectShards drains a shard query, closing the rows.
func collectShards(rows *sql.Rows) ([]domain.Shard, error) {
	defer rows.Close()

	var shards []domain.Shard //nolint:prealloc // size unknown from query
	for rows.Next() {
		var shard domain.Shard
		var createdAt sql.NullTime
		if err := rows.Scan(&shard.Date, &shard.IndexPath, &shard.VectorCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning shard: %w", err)
		}
		if createdAt.Valid {
			shard.CreatedAt = createdAt.Time
		}
		shards = append(shards, shard)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating shards: %w", err)
	}
	return shards, nil
}
