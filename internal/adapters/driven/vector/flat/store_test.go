package flat

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docquery/internal/core/domain"
)

func newTestStore(t *testing.T, dim int) *ShardStore {
	t.Helper()
	store, err := NewShardStore(t.TempDir(), dim, nil)
	require.NoError(t, err)
	return store
}

func TestShardStorePersistAndReload(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewShardStore(dir, 2, nil)
	require.NoError(t, err)

	start, err := store.Add(ctx, "20250105", [][]float32{{1, 0}, {0, 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(0), start)
	require.NoError(t, store.Persist(ctx, "20250105"))
	require.NoError(t, store.Close())

	// A fresh store over the same directory sees the persisted shard.
	reopened, err := NewShardStore(dir, 2, nil)
	require.NoError(t, err)

	count, err := reopened.Count(ctx, "20250105")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	hits, err := reopened.Search(ctx, "20250105", []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, int64(0), hits[0].VectorID)
	assert.Equal(t, float32(0), hits[0].Distance)
}

func TestShardStoreIDsContinueAcrossRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewShardStore(dir, 2, nil)
	require.NoError(t, err)
	_, err = store.Add(ctx, "20250105", [][]float32{{1, 0}, {0, 1}, {1, 1}})
	require.NoError(t, err)
	require.NoError(t, store.Persist(ctx, "20250105"))

	reopened, err := NewShardStore(dir, 2, nil)
	require.NoError(t, err)
	start, err := reopened.Add(ctx, "20250105", [][]float32{{2, 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), start, "ids resume after the persisted population")
}

func TestShardStoreMissingShardIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 2)

	hits, err := store.Search(ctx, "20240101", []float32{1, 1}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)

	count, err := store.Count(ctx, "20240101")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestShardStoreCorruptFileDegradesReadsButFailsWrites(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 2)

	path := store.IndexPath("20250105")
	require.NoError(t, os.WriteFile(path, []byte("not an index"), 0o644))

	hits, err := store.Search(ctx, "20250105", []float32{1, 1}, 5)
	require.NoError(t, err, "queries treat a corrupt shard as empty")
	assert.Empty(t, hits)

	count, err := store.Count(ctx, "20250105")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	_, err = store.Add(ctx, "20250105", [][]float32{{1, 1}})
	require.ErrorIs(t, err, domain.ErrStorage, "writes must not restart ids over a corrupt shard")
}

func TestShardStoreShardsAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 2)

	start, err := store.Add(ctx, "20250104", [][]float32{{1, 0}, {0, 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(0), start)

	start, err = store.Add(ctx, "20250105", [][]float32{{5, 5}})
	require.NoError(t, err)
	assert.Equal(t, int64(0), start, "each shard numbers its vectors from zero")

	hits, err := store.Search(ctx, "20250105", []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, int64(0), hits[0].VectorID)
}

func TestShardStoreRemove(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 2)

	_, err := store.Add(ctx, "20250105", [][]float32{{1, 0}})
	require.NoError(t, err)
	require.NoError(t, store.Persist(ctx, "20250105"))
	require.FileExists(t, store.IndexPath("20250105"))

	require.NoError(t, store.Remove(ctx, "20250105"))
	assert.NoFileExists(t, store.IndexPath("20250105"))

	// Removal is idempotent and the shard reads as empty afterwards.
	require.NoError(t, store.Remove(ctx, "20250105"))
	count, err := store.Count(ctx, "20250105")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestShardStorePersistRequiresLoadedShard(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 2)

	err := store.Persist(ctx, "20250105")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShardStoreRejectsInvalidShardDate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 2)

	for _, date := range []string{"", "2025-01-05", "2025010", "../../etc", "20251301"} {
		_, err := store.Add(ctx, date, [][]float32{{1, 0}})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "date %q", date)

		_, err = store.Search(ctx, date, []float32{1, 0}, 1)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "date %q", date)
	}
}

func TestShardStoreRejectsDimensionDrift(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	wide, err := NewShardStore(dir, 4, nil)
	require.NoError(t, err)
	_, err = wide.Add(ctx, "20250105", [][]float32{{1, 2, 3, 4}})
	require.NoError(t, err)
	require.NoError(t, wide.Persist(ctx, "20250105"))

	narrow, err := NewShardStore(dir, 2, nil)
	require.NoError(t, err)

	_, err = narrow.Add(ctx, "20250105", [][]float32{{1, 2}})
	require.ErrorIs(t, err, domain.ErrStorage, "a shard written at another dimension is not appendable")

	hits, err := narrow.Search(ctx, "20250105", []float32{1, 2}, 1)
	require.NoError(t, err)
	assert.Empty(t, hits, "mismatched shards read as empty")
}

func TestWriteIndexFileIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index_20250105.bin")

	ix := NewIndex(2)
	_, err := ix.Append([][]float32{{1, 0}, {0, 1}})
	require.NoError(t, err)
	require.NoError(t, writeIndexFile(path, ix))

	// Overwrite with a larger index and confirm the replacement is complete.
	_, err = ix.Append([][]float32{{2, 2}})
	require.NoError(t, err)
	require.NoError(t, writeIndexFile(path, ix))

	loaded, err := readIndexFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), loaded.Count())
	assert.Equal(t, []float32{2, 2}, loaded.Vector(2))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestDecodeIndexRejectsTruncatedPayload(t *testing.T) {
	ix := NewIndex(2)
	_, err := ix.Append([][]float32{{1, 0}, {0, 1}})
	require.NoError(t, err)

	data := encodeIndex(ix)
	_, err = decodeIndex(data[:len(data)-3])
	require.ErrorIs(t, err, domain.ErrStorage)

	_, err = decodeIndex(data[:8])
	require.ErrorIs(t, err, domain.ErrStorage)
}
