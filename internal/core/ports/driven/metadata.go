package driven

import (
	"context"

	"github.com/custodia-labs/docquery/internal/core/domain"
)

// MetadataStore persists chunk records and the shard registry.
// Backed by SQLite; every operation is serialised behind one internal
// mutex (coarse-grained, simplicity over throughput).
type MetadataStore interface {
	// InsertChunks stores a batch of chunk records in one transaction and
	// returns the store's row ids in insertion order.
	InsertChunks(ctx context.Context, records []domain.ChunkRecord) ([]int64, error)

	// LookupChunks returns the records of the given shard whose vector ids
	// are in vectorIDs AND whose tenant matches tenantID. Rows belonging
	// to other tenants are silently absent; this filter is the system's
	// only tenant-isolation mechanism. An empty vectorIDs yields an empty
	// result without touching the database.
	LookupChunks(ctx context.Context, tenantID, shardDate string, vectorIDs []int64) ([]domain.ChunkRecord, error)

	// RegisterShard inserts or updates the registry row for a shard.
	RegisterShard(ctx context.Context, shard domain.Shard) error

	// GetShard retrieves one registry row.
	// Returns domain.ErrNotFound if the shard is not registered.
	GetShard(ctx context.Context, date string) (*domain.Shard, error)

	// ListActiveShards returns shards with date >= cutoff, newest first.
	ListActiveShards(ctx context.Context, cutoff string) ([]domain.Shard, error)

	// DeleteStale removes, in a single transaction, the metadata rows and
	// registry rows of every shard dated strictly before cutoff. It
	// returns the deleted shards (so the caller can remove their index
	// files) and the number of deleted chunk records. With nothing stale
	// it returns an empty slice and zero.
	DeleteStale(ctx context.Context, cutoff string) ([]domain.Shard, int64, error)

	// CountForTenant returns the tenant's total chunk records across all
	// shards.
	CountForTenant(ctx context.Context, tenantID string) (int64, error)
}

// SweepHistoryStore records retention sweep outcomes for operational
// inspection. History is advisory; losing it never affects retention
// correctness.
type SweepHistoryStore interface {
	// RecordSweep appends one sweep result.
	RecordSweep(ctx context.Context, result *domain.SweepResult) error

	// SweepHistory returns recent sweep results, most recent first.
	SweepHistory(ctx context.Context, limit int) ([]domain.SweepResult, error)

	// PruneSweepHistory keeps only the most recent 'keep' results.
	PruneSweepHistory(ctx context.Context, keep int) error
}
