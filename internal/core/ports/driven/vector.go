package driven

import (
	"context"

	"github.com/custodia-labs/docquery/internal/core/domain"
)

// VectorShardStore owns one exact (brute-force) nearest-neighbour index
// per calendar-day shard, each persisted as a single file. Shards are
// opened or created lazily on first access; the store exclusively owns
// shard handles and never exposes them.
//
// The store itself does not lock across operations - callers serialise
// mutation, query, and sweep behind one coarse lock.
type VectorShardStore interface {
	// Add appends vectors to the shard's index, creating the shard if it
	// does not exist, and returns the count before the append. Assigned
	// ids are the contiguous range [startID, startID+len(vectors)).
	// Vectors of the wrong dimension fail with domain.ErrInvalidInput.
	Add(ctx context.Context, shardDate string, vectors [][]float32) (startID int64, err error)

	// Search returns up to k nearest neighbours by squared Euclidean
	// distance, ascending, exact within the shard. A missing or unreadable
	// index file is treated as an empty shard: empty result, no error.
	Search(ctx context.Context, shardDate string, query []float32, k int) ([]domain.VectorHit, error)

	// Persist writes the shard's index to stable storage.
	Persist(ctx context.Context, shardDate string) error

	// Count returns the shard's current vector count, 0 for a missing
	// shard.
	Count(ctx context.Context, shardDate string) (int64, error)

	// Remove evicts the shard from memory and deletes its index file.
	// A missing file is not an error.
	Remove(ctx context.Context, shardDate string) error

	// IndexPath returns the file path the shard's index is persisted at,
	// whether or not the file exists yet.
	IndexPath(shardDate string) string

	// Dimensions returns the fixed vector dimension of every shard.
	Dimensions() int

	// Close releases in-memory shard handles without persisting.
	Close() error
}
