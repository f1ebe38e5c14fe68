// Package flat provides the exact per-shard vector index used by docquery.
//
// Each calendar-day shard owns one Index: a brute-force squared-Euclidean
// store with positional ids, persisted as a single file. Brute force is
// deliberate - shard populations are bounded by one day of ingestion under
// a short retention window, so exact search stays cheap and returns true
// top-k with no tuning.
package flat

import (
	"container/heap"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/docquery/internal/core/domain"
)

// Index is an append-only brute-force index over fixed-dimension vectors.
// Vector ids are positional: the i-th vector ever appended has id i, so
// ids are 0-based, contiguous, and assigned in insertion order.
//
// Index is not safe for concurrent use; ShardStore callers serialise
// access behind the process-wide store lock.
type Index struct {
	dim     int
	vectors [][]float32
}

// NewIndex creates an empty index for vectors of the given dimension.
func NewIndex(dim int) *Index {
	return &Index{dim: dim}
}

// Dimensions returns the fixed vector dimension.
func (ix *Index) Dimensions() int {
	return ix.dim
}

// Count returns the number of stored vectors.
func (ix *Index) Count() int64 {
	return int64(len(ix.vectors))
}

// Append adds vectors and returns the count before the append, so the
// new vectors occupy the contiguous id range [startID, startID+n).
// Every vector must have the index dimension and finite components.
func (ix *Index) Append(vectors [][]float32) (int64, error) {
	for i, vec := range vectors {
		if len(vec) != ix.dim {
			return 0, fmt.Errorf("%w: vector %d has dimension %d, index expects %d",
				domain.ErrInvalidInput, i, len(vec), ix.dim)
		}
		if err := validateVector(vec); err != nil {
			return 0, fmt.Errorf("vector %d: %w", i, err)
		}
	}

	startID := int64(len(ix.vectors))
	for _, vec := range vectors {
		// Copy so later caller mutations cannot reach stored state.
		stored := make([]float32, len(vec))
		copy(stored, vec)
		ix.vectors = append(ix.vectors, stored)
	}
	return startID, nil
}

// Vector returns the stored vector for an id, or nil when out of range.
func (ix *Index) Vector(id int64) []float32 {
	if id < 0 || id >= int64(len(ix.vectors)) {
		return nil
	}
	return ix.vectors[id]
}

// Search returns up to k nearest neighbours by squared Euclidean distance,
// ascending, ties broken by lower id. Every returned id refers to a vector
// actually stored in this index.
func (ix *Index) Search(query []float32, k int) ([]domain.VectorHit, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d",
			domain.ErrInvalidInput, len(query), ix.dim)
	}
	if k <= 0 || len(ix.vectors) == 0 {
		return nil, nil
	}

	// Bounded max-heap: keep the k smallest distances seen so far with
	// the current worst at the top.
	h := &distHeap{}
	heap.Init(h)
	for id, vec := range ix.vectors {
		dist := squaredL2(query, vec)
		switch {
		case h.Len() < k:
			heap.Push(h, domain.VectorHit{VectorID: int64(id), Distance: dist})
		case dist < (*h)[0].Distance:
			heap.Pop(h)
			heap.Push(h, domain.VectorHit{VectorID: int64(id), Distance: dist})
		}
	}

	hits := make([]domain.VectorHit, h.Len())
	copy(hits, *h)
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].VectorID < hits[j].VectorID
	})
	return hits, nil
}

// squaredL2 computes the squared Euclidean distance between two vectors of
// equal length. The square root is never taken: ordering is identical and
// similarity conversion happens downstream on the squared value.
func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// validateVector rejects NaN and infinite components before they poison
// distance comparisons.
func validateVector(vec []float32) error {
	for i, v := range vec {
		f := float64(v)
		if math.IsNaN(f) {
			return fmt.Errorf("%w: component %d is NaN", domain.ErrInvalidInput, i)
		}
		if math.IsInf(f, 0) {
			return fmt.Errorf("%w: component %d is infinite", domain.ErrInvalidInput, i)
		}
	}
	return nil
}

// distHeap is a max-heap of hits ordered by distance, used to track the
// k-nearest candidates during a scan.
type distHeap []domain.VectorHit

func (h distHeap) Len() int            { return len(h) }
func (h distHeap) Less(i, j int) bool  { return h[i].Distance > h[j].Distance }
func (h distHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *distHeap) Push(x any)         { *h = append(*h, x.(domain.VectorHit)) }
func (h *distHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
