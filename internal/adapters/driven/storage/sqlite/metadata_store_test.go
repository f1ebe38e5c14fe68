package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docquery/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func chunkRecord(tenantID, shardDate string, vectorID int64, content string) domain.ChunkRecord {
	return domain.ChunkRecord{
		VectorID:     vectorID,
		TenantID:     tenantID,
		ShardDate:    shardDate,
		DocumentName: "report.pdf",
		PageNumber:   1,
		ChunkIndex:   int(vectorID),
		Content:      content,
	}
}

func TestInsertChunksAndLookup(t *testing.T) {
	ctx := context.Background()
	meta := newTestStore(t).Metadata()

	rowIDs, err := meta.InsertChunks(ctx, []domain.ChunkRecord{
		chunkRecord("tenant-a", "20250105", 0, "first"),
		chunkRecord("tenant-a", "20250105", 1, "second"),
		chunkRecord("tenant-a", "20250105", 2, "third"),
	})
	require.NoError(t, err)
	require.Len(t, rowIDs, 3)
	for i := 1; i < len(rowIDs); i++ {
		assert.Greater(t, rowIDs[i], rowIDs[i-1], "row ids follow insertion order")
	}

	records, err := meta.LookupChunks(ctx, "tenant-a", "20250105", []int64{2, 0})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(0), records[0].VectorID)
	assert.Equal(t, "first", records[0].Content)
	assert.Equal(t, int64(2), records[1].VectorID)
	assert.Equal(t, "third", records[1].Content)
	assert.False(t, records[0].CreatedAt.IsZero(), "insert stamps created_at")
}

func TestInsertChunksEmptyBatch(t *testing.T) {
	ctx := context.Background()
	meta := newTestStore(t).Metadata()

	rowIDs, err := meta.InsertChunks(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, rowIDs)
}

func TestInsertChunksRollsBackOnDuplicate(t *testing.T) {
	ctx := context.Background()
	meta := newTestStore(t).Metadata()

	_, err := meta.InsertChunks(ctx, []domain.ChunkRecord{
		chunkRecord("tenant-a", "20250105", 0, "original"),
	})
	require.NoError(t, err)

	// Second batch reuses vector id 0; the whole batch must vanish.
	_, err = meta.InsertChunks(ctx, []domain.ChunkRecord{
		chunkRecord("tenant-a", "20250105", 1, "fresh"),
		chunkRecord("tenant-a", "20250105", 0, "duplicate"),
	})
	require.ErrorIs(t, err, domain.ErrAlreadyExists)

	records, err := meta.LookupChunks(ctx, "tenant-a", "20250105", []int64{0, 1})
	require.NoError(t, err)
	require.Len(t, records, 1, "the failed batch left no partial rows")
	assert.Equal(t, "original", records[0].Content)
}

func TestLookupChunksFiltersByTenant(t *testing.T) {
	ctx := context.Background()
	meta := newTestStore(t).Metadata()

	_, err := meta.InsertChunks(ctx, []domain.ChunkRecord{
		chunkRecord("tenant-a", "20250105", 3, "a3"),
		chunkRecord("tenant-b", "20250105", 5, "b5"),
		chunkRecord("tenant-a", "20250105", 7, "a7"),
	})
	require.NoError(t, err)

	// tenant-a asks for all three ids; the other tenant's row is silently
	// absent from the result.
	records, err := meta.LookupChunks(ctx, "tenant-a", "20250105", []int64{3, 5, 7})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(3), records[0].VectorID)
	assert.Equal(t, int64(7), records[1].VectorID)

	records, err = meta.LookupChunks(ctx, "tenant-b", "20250105", []int64{3, 5, 7})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(5), records[0].VectorID)
}

func TestLookupChunksScopedToShard(t *testing.T) {
	ctx := context.Background()
	meta := newTestStore(t).Metadata()

	// Vector id 0 exists in two shards; only the requested shard's row
	// comes back.
	_, err := meta.InsertChunks(ctx, []domain.ChunkRecord{
		chunkRecord("tenant-a", "20250104", 0, "yesterday"),
		chunkRecord("tenant-a", "20250105", 0, "today"),
	})
	require.NoError(t, err)

	records, err := meta.LookupChunks(ctx, "tenant-a", "20250105", []int64{0})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "today", records[0].Content)
}

func TestLookupChunksEmptyIDs(t *testing.T) {
	ctx := context.Background()
	meta := newTestStore(t).Metadata()

	records, err := meta.LookupChunks(ctx, "tenant-a", "20250105", nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRegisterShardUpsert(t *testing.T) {
	ctx := context.Background()
	meta := newTestStore(t).Metadata()

	first := time.Date(2025, 1, 5, 8, 0, 0, 0, time.UTC)
	require.NoError(t, meta.RegisterShard(ctx, domain.Shard{
		Date:        "20250105",
		IndexPath:   "/data/index_20250105.bin",
		VectorCount: 10,
		CreatedAt:   first,
	}))

	// Re-registering after more ingestion moves the count but keeps the
	// original creation time.
	require.NoError(t, meta.RegisterShard(ctx, domain.Shard{
		Date:        "20250105",
		IndexPath:   "/data/index_20250105.bin",
		VectorCount: 25,
		CreatedAt:   first.Add(4 * time.Hour),
	}))

	shard, err := meta.GetShard(ctx, "20250105")
	require.NoError(t, err)
	assert.Equal(t, int64(25), shard.VectorCount)
	assert.Equal(t, first.Unix(), shard.CreatedAt.Unix())
}

func TestRegisterShardRejectsInvalidDate(t *testing.T) {
	ctx := context.Background()
	meta := newTestStore(t).Metadata()

	err := meta.RegisterShard(ctx, domain.Shard{Date: "2025-01-05"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetShardNotFound(t *testing.T) {
	ctx := context.Background()
	meta := newTestStore(t).Metadata()

	_, err := meta.GetShard(ctx, "19990101")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListActiveShardsWindow(t *testing.T) {
	ctx := context.Background()
	meta := newTestStore(t).Metadata()

	for _, date := range []string{"20250101", "20250102", "20250103", "20250104", "20250105"} {
		require.NoError(t, meta.RegisterShard(ctx, domain.Shard{
			Date:      date,
			IndexPath: "/data/index_" + date + ".bin",
		}))
	}

	// Retention of 3 days on 2025-01-05: the cutoff itself stays active.
	shards, err := meta.ListActiveShards(ctx, "20250102")
	require.NoError(t, err)
	require.Len(t, shards, 4)
	assert.Equal(t, "20250105", shards[0].Date, "newest first")
	assert.Equal(t, "20250104", shards[1].Date)
	assert.Equal(t, "20250103", shards[2].Date)
	assert.Equal(t, "20250102", shards[3].Date)
}

func TestListActiveShardsEmpty(t *testing.T) {
	ctx := context.Background()
	meta := newTestStore(t).Metadata()

	shards, err := meta.ListActiveShards(ctx, "20250101")
	require.NoError(t, err)
	assert.Empty(t, shards)
}

func TestDeleteStale(t *testing.T) {
	ctx := context.Background()
	meta := newTestStore(t).Metadata()

	for _, date := range []string{"20250101", "20250102", "20250104"} {
		require.NoError(t, meta.RegisterShard(ctx, domain.Shard{
			Date:      date,
			IndexPath: "/data/index_" + date + ".bin",
		}))
		_, err := meta.InsertChunks(ctx, []domain.ChunkRecord{
			chunkRecord("tenant-a", date, 0, "chunk of "+date),
			chunkRecord("tenant-b", date, 1, "chunk of "+date),
		})
		require.NoError(t, err)
	}

	stale, deletedRecords, err := meta.DeleteStale(ctx, "20250102")
	require.NoError(t, err)
	require.Len(t, stale, 1, "only the shard before the cutoff is stale")
	assert.Equal(t, "20250101", stale[0].Date)
	assert.Equal(t, "/data/index_20250101.bin", stale[0].IndexPath)
	assert.Equal(t, int64(2), deletedRecords)

	// Surviving shards and their chunks are untouched.
	shards, err := meta.ListActiveShards(ctx, "20250101")
	require.NoError(t, err)
	require.Len(t, shards, 2)

	records, err := meta.LookupChunks(ctx, "tenant-a", "20250102", []int64{0})
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = meta.LookupChunks(ctx, "tenant-a", "20250101", []int64{0})
	require.NoError(t, err)
	assert.Empty(t, records, "stale chunk rows are gone")

	// Sweeping again finds nothing.
	stale, deletedRecords, err = meta.DeleteStale(ctx, "20250102")
	require.NoError(t, err)
	assert.Empty(t, stale)
	assert.Zero(t, deletedRecords)
}

func TestCountForTenant(t *testing.T) {
	ctx := context.Background()
	meta := newTestStore(t).Metadata()

	_, err := meta.InsertChunks(ctx, []domain.ChunkRecord{
		chunkRecord("tenant-a", "20250104", 0, "one"),
		chunkRecord("tenant-a", "20250105", 0, "two"),
		chunkRecord("tenant-b", "20250105", 1, "other"),
	})
	require.NoError(t, err)

	count, err := meta.CountForTenant(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = meta.CountForTenant(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStoreReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	_, err = store.Metadata().InsertChunks(ctx, []domain.ChunkRecord{
		chunkRecord("tenant-a", "20250105", 0, "durable"),
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.Metadata().LookupChunks(ctx, "tenant-a", "20250105", []int64{0})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "durable", records[0].Content)
}
