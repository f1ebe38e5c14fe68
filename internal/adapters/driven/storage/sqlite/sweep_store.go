package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/docquery/internal/core/domain"
	"github.com/custodia-labs/docquery/internal/core/ports/driven"
)

// sweepHistoryStore implements driven.SweepHistoryStore.
type sweepHistoryStore struct {
	store *Store
}

var _ driven.SweepHistoryStore = (*sweepHistoryStore)(nil)

// RecordSweep appends one sweep result to the audit trail.
func (s *sweepHistoryStore) RecordSweep(ctx context.Context, result *domain.SweepResult) error {
	if result == nil {
		return domain.ErrInvalidInput
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sweep_runs (cutoff, deleted_records, deleted_shards, deleted_files, started_at, ended_at, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, result.Cutoff,
		result.DeletedRecords,
		result.DeletedShards,
		result.DeletedFiles,
		result.StartedAt.Format(time.RFC3339),
		result.EndedAt.Format(time.RFC3339),
		nullString(result.Err))

	if err != nil {
		return fmt.Errorf("recording sweep: %w", err)
	}
	return nil
}

// SweepHistory returns recent sweep results, most recent first. Row ids
// break ties between sweeps recorded within the same second.
func (s *sweepHistoryStore) SweepHistory(ctx context.Context, limit int) ([]domain.SweepResult, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT cutoff, deleted_records, deleted_shards, deleted_files, started_at, ended_at, error
		FROM sweep_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sweep history: %w", err)
	}
	defer rows.Close()

	var results []domain.SweepResult //nolint:prealloc // size unknown from query
	for rows.Next() {
		result, err := scanSweepResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sweep history: %w", err)
	}
	return results, nil
}

// PruneSweepHistory keeps only the most recent 'keep' results.
func (s *sweepHistoryStore) PruneSweepHistory(ctx context.Context, keep int) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM sweep_runs
		WHERE id NOT IN (
			SELECT id FROM sweep_runs ORDER BY started_at DESC, id DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning sweep history: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// scanSweepResult scans a sweep result from *sql.Rows.
func scanSweepResult(rows *sql.Rows) (*domain.SweepResult, error) {
	var result domain.SweepResult
	var startedAt, endedAt string
	var errMsg sql.NullString

	if err := rows.Scan(&result.Cutoff, &result.DeletedRecords, &result.DeletedShards,
		&result.DeletedFiles, &startedAt, &endedAt, &errMsg); err != nil {
		return nil, fmt.Errorf("scanning sweep result: %w", err)
	}

	if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
		result.StartedAt = t
	}
	if t, err := time.Parse(time.RFC3339, endedAt); err == nil {
		result.EndedAt = t
	}
	if errMsg.Valid {
		result.Err = errMsg.String
	}
	return &result, nil
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
