package flat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/docquery/internal/core/domain"
	"github.com/custodia-labs/docquery/internal/core/ports/driven"
	"github.com/custodia-labs/docquery/internal/logger"
)

// ShardStore keeps one flat index per calendar-day shard, lazily loaded
// from disk and cached for the life of the process. Files live directly
// under the store directory as index_<YYYYMMDD>.bin.
//
// Read paths degrade: a missing or unreadable index file behaves as an
// empty shard so queries keep working after partial data loss. Write
// paths do not: appending to a shard whose file exists but cannot be
// decoded fails with a storage error rather than silently restarting
// the id sequence over orphaned metadata.
type ShardStore struct {
	dir string
	dim int
	log *logger.Logger

	mu   sync.Mutex
	open map[string]*Index
}

var _ driven.VectorShardStore = (*ShardStore)(nil)

// NewShardStore creates the store directory if needed and returns a store
// for vectors of the given dimension.
func NewShardStore(dir string, dim int, log *logger.Logger) (*ShardStore, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: vector dimension must be positive, got %d", domain.ErrInvalidInput, dim)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create vector directory: %v", domain.ErrStorage, err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ShardStore{
		dir:  dir,
		dim:  dim,
		log:  log,
		open: make(map[string]*Index),
	}, nil
}

// Add appends vectors to the shard's index, creating it when absent, and
// returns the id of the first appended vector.
func (s *ShardStore) Add(ctx context.Context, shardDate string, vectors [][]float32) (int64, error) {
	if err := checkShardDate(shardDate); err != nil {
		return 0, err
	}
	if len(vectors) == 0 {
		return 0, fmt.Errorf("%w: no vectors to add", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.loadLocked(shardDate)
	if err != nil {
		if os.IsNotExist(err) {
			ix = NewIndex(s.dim)
			s.open[shardDate] = ix
		} else {
			return 0, fmt.Errorf("load shard %s: %w", shardDate, err)
		}
	}
	startID, err := ix.Append(vectors)
	if err != nil {
		return 0, fmt.Errorf("append to shard %s: %w", shardDate, err)
	}
	return startID, nil
}

// Search scans the shard for the k nearest vectors to the query, returning
// hits in ascending distance order. A shard with no index, or one whose
// file cannot be read, yields no hits rather than an error.
func (s *ShardStore) Search(ctx context.Context, shardDate string, query []float32, k int) ([]domain.VectorHit, error) {
	if err := checkShardDate(shardDate); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.loadLocked(shardDate)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("treating unreadable shard index as empty", "shard", shardDate, "error", err)
		}
		return nil, nil
	}
	return ix.Search(query, k)
}

// Persist writes the shard's in-memory index to disk atomically. The shard
// must have been loaded or created in this process.
func (s *ShardStore) Persist(ctx context.Context, shardDate string) error {
	if err := checkShardDate(shardDate); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ix, ok := s.open[shardDate]
	if !ok {
		return fmt.Errorf("%w: shard %s is not loaded", domain.ErrNotFound, shardDate)
	}
	return writeIndexFile(s.indexPath(shardDate), ix)
}

// Count returns the number of vectors in the shard, zero when the shard
// has no readable index.
func (s *ShardStore) Count(ctx context.Context, shardDate string) (int64, error) {
	if err := checkShardDate(shardDate); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.loadLocked(shardDate)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("counting unreadable shard index as empty", "shard", shardDate, "error", err)
		}
		return 0, nil
	}
	return ix.Count(), nil
}

// Remove drops the shard from the cache and deletes its index file.
// Removing a shard that has no file is not an error.
func (s *ShardStore) Remove(ctx context.Context, shardDate string) error {
	if err := checkShardDate(shardDate); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.open, shardDate)
	if err := os.Remove(s.indexPath(shardDate)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: remove index file: %v", domain.ErrStorage, err)
	}
	return nil
}

// IndexPath returns the path of the shard's index file, whether or not
// the file exists.
func (s *ShardStore) IndexPath(shardDate string) string {
	return s.indexPath(shardDate)
}

// Dimensions returns the vector dimension every shard enforces.
func (s *ShardStore) Dimensions() int {
	return s.dim
}

// Close drops all cached indexes. It does not persist; callers persist
// explicitly after each mutation.
func (s *ShardStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = make(map[string]*Index)
	return nil
}

// checkShardDate guards every public operation: dates must be well formed
// before they are compared or embedded in file names.
func checkShardDate(shardDate string) error {
	if !domain.ValidShardDate(shardDate) {
		return fmt.Errorf("%w: shard date must be YYYYMMDD, got %q", domain.ErrInvalidInput, shardDate)
	}
	return nil
}

// loadLocked returns the cached index for a shard, reading it from disk on
// first access. Only successfully loaded indexes are cached; missing-file
// and decode errors are returned to the caller, which chooses between
// degrading and failing. Callers must hold s.mu.
func (s *ShardStore) loadLocked(shardDate string) (*Index, error) {
	if ix, ok := s.open[shardDate]; ok {
		return ix, nil
	}
	ix, err := readIndexFile(s.indexPath(shardDate))
	if err != nil {
		return nil, err
	}
	if ix.Dimensions() != s.dim {
		return nil, fmt.Errorf("%w: shard %s index has dimension %d, store expects %d",
			domain.ErrStorage, shardDate, ix.Dimensions(), s.dim)
	}
	s.open[shardDate] = ix
	return ix, nil
}

// indexPath builds the shard's file path. Shard dates are validated to be
// eight digits before reaching here, which also keeps them safe to embed
// in file names.
func (s *ShardStore) indexPath(shardDate string) string {
	return filepath.Join(s.dir, "index_"+shardDate+".bin")
}
