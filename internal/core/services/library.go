package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/docquery/internal/core/domain"
	"github.com/custodia-labs/docquery/internal/core/ports/driven"
	"github.com/custodia-labs/docquery/internal/logger"
)

// Library owns the day-sharded document store: the vector shards, the
// chunk metadata, and the single lock that serialises access to them.
//
// The lock belongs to this instance. Batch ingestion holds it across
// vector append, metadata insert, index persist, and registry update, so
// two concurrent ingestions can never interleave vector id assignment,
// and a sweep can never run between a batch's append and its commit.
type Library struct {
	vectors  driven.VectorShardStore
	metadata driven.MetadataStore
	log      *logger.Logger

	mu sync.Mutex

	// now is the clock used for shard-date and cutoff decisions.
	// Tests override it to pin the calendar.
	now func() time.Time
}

// NewLibrary creates a library over the given stores.
func NewLibrary(vectors driven.VectorShardStore, metadata driven.MetadataStore, log *logger.Logger) *Library {
	if log == nil {
		log = logger.Nop()
	}
	return &Library{
		vectors:  vectors,
		metadata: metadata,
		log:      log,
		now:      time.Now,
	}
}

// CurrentShardDate returns the shard date new ingestions go to.
func (l *Library) CurrentShardDate() string {
	return domain.ShardDateAt(l.now())
}

// Dimensions returns the vector dimension of the underlying store.
func (l *Library) Dimensions() int {
	return l.vectors.Dimensions()
}

// AddBatch commits one embedded batch into a shard. Records and vectors
// are positionally paired; the i-th record describes the i-th vector.
// On return, records' vector ids are filled in and the batch occupies the
// contiguous id range [startID, startID+n) in the shard.
//
// Ordering inside the lock is append, insert metadata, persist index,
// update registry. A metadata failure aborts before anything reaches
// disk: the appended vectors exist only in memory and die with the
// process, and lookups drop their ids in the meantime. A persist failure
// after the metadata commit loses the batch's vectors on restart, which
// retrieval tolerates by construction.
func (l *Library) AddBatch(ctx context.Context, shardDate string, vectors [][]float32, records []domain.ChunkRecord) (int64, error) {
	if len(vectors) == 0 {
		return 0, fmt.Errorf("%w: empty batch", domain.ErrInvalidInput)
	}
	if len(vectors) != len(records) {
		return 0, fmt.Errorf("%w: %d vectors for %d records", domain.ErrInvalidInput, len(vectors), len(records))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	startID, err := l.vectors.Add(ctx, shardDate, vectors)
	if err != nil {
		return 0, fmt.Errorf("adding vectors to shard %s: %w", shardDate, err)
	}

	for i := range records {
		records[i].ShardDate = shardDate
		records[i].VectorID = startID + int64(i)
	}

	if _, err := l.metadata.InsertChunks(ctx, records); err != nil {
		l.log.Error("chunk metadata insert failed, batch abandoned",
			"shard", shardDate, "start_id", startID, "count", len(records), "error", err)
		return 0, fmt.Errorf("inserting chunk metadata: %w", err)
	}

	if err := l.vectors.Persist(ctx, shardDate); err != nil {
		l.log.Error("shard index persist failed after metadata commit",
			"shard", shardDate, "error", err)
		return 0, fmt.Errorf("persisting shard %s: %w", shardDate, err)
	}

	count, err := l.vectors.Count(ctx, shardDate)
	if err != nil {
		return 0, fmt.Errorf("counting shard %s: %w", shardDate, err)
	}

	shard := domain.Shard{
		Date:        shardDate,
		IndexPath:   l.vectors.IndexPath(shardDate),
		VectorCount: count,
	}
	if err := l.metadata.RegisterShard(ctx, shard); err != nil {
		return 0, fmt.Errorf("registering shard %s: %w", shardDate, err)
	}

	l.log.Debug("batch committed",
		"shard", shardDate, "start_id", startID, "count", len(records), "shard_total", count)
	return startID, nil
}

// SearchShard runs a tenant-blind nearest-neighbour search over one
// shard under the lock. Hits still need a metadata lookup before anything
// is shown to a tenant.
func (l *Library) SearchShard(ctx context.Context, shardDate string, query []float32, k int) ([]domain.VectorHit, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.vectors.Search(ctx, shardDate, query, k)
}

// LookupChunks resolves vector hits to the tenant's chunk records.
func (l *Library) LookupChunks(ctx context.Context, tenantID, shardDate string, vectorIDs []int64) ([]domain.ChunkRecord, error) {
	return l.metadata.LookupChunks(ctx, tenantID, shardDate, vectorIDs)
}

// ActiveShards lists the shards inside a retention window of the given
// length, newest first.
func (l *Library) ActiveShards(ctx context.Context, retentionDays int) ([]domain.Shard, error) {
	cutoff := domain.CutoffDate(l.now(), retentionDays)
	return l.metadata.ListActiveShards(ctx, cutoff)
}

// CountForTenant returns the tenant's total stored chunks.
func (l *Library) CountForTenant(ctx context.Context, tenantID string) (int64, error) {
	return l.metadata.CountForTenant(ctx, tenantID)
}

// Sweep deletes every shard older than the retention window: metadata
// rows and registry rows go first in one transaction, index files after.
// A file that cannot be removed is reported in the result rather than
// failing the sweep; its metadata is already gone, so it can never serve
// another query.
func (l *Library) Sweep(ctx context.Context, retentionDays int) (*domain.SweepResult, error) {
	if retentionDays < 1 {
		return nil, fmt.Errorf("%w: retention days must be at least 1, got %d", domain.ErrInvalidInput, retentionDays)
	}

	started := l.now()
	cutoff := domain.CutoffDate(started, retentionDays)

	l.mu.Lock()
	defer l.mu.Unlock()

	stale, deletedRecords, err := l.metadata.DeleteStale(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("deleting stale metadata: %w", err)
	}

	result := &domain.SweepResult{
		Cutoff:         cutoff,
		DeletedRecords: deletedRecords,
		DeletedShards:  int64(len(stale)),
		StartedAt:      started,
	}

	var fileErrs []string
	for _, shard := range stale {
		if err := l.vectors.Remove(ctx, shard.Date); err != nil {
			l.log.Warn("could not remove stale index file",
				"shard", shard.Date, "path", shard.IndexPath, "error", err)
			fileErrs = append(fileErrs, fmt.Sprintf("%s: %v", shard.Date, err))
			continue
		}
		result.DeletedFiles++
	}

	result.EndedAt = l.now()
	if len(fileErrs) > 0 {
		result.Err = strings.Join(fileErrs, "; ")
	}

	if result.DeletedShards > 0 {
		l.log.Info("swept stale shards",
			"cutoff", cutoff, "shards", result.DeletedShards, "records", result.DeletedRecords)
	}
	return result, nil
}
