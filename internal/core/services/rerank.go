package services

import (
	"sort"
	"strconv"

	"github.com/custodia-labs/docquery/internal/core/domain"
)

// Reranker blends vector similarity with shard recency. Similarity
// dominates; recency is a mild nudge that prefers fresher shards when
// similarities are close.
const (
	similarityWeight = 0.7
	recencyWeight    = 0.3

	// recencyHorizon normalises numeric shard dates into (0, 1). Any date
	// this side of 2030 maps close to 1, so operationally the recency term
	// separates days, not decades.
	recencyHorizon = 20300101
)

// Reranker scores and orders retrieved chunks.
type Reranker struct {
	simWeight float64
	recWeight float64
}

// NewReranker creates a reranker with the standard weights.
func NewReranker() *Reranker {
	return &Reranker{
		simWeight: similarityWeight,
		recWeight: recencyWeight,
	}
}

// Rank assigns each chunk its blended score and returns the slice sorted
// best first. Ties resolve toward higher similarity, then the newer
// shard, then the lower vector id, so rankings are stable across runs.
func (r *Reranker) Rank(chunks []domain.ScoredChunk) []domain.ScoredChunk {
	for i := range chunks {
		chunks[i].Score = r.simWeight*chunks[i].Similarity + r.recWeight*recencyScore(chunks[i].ShardDate)
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].Score != chunks[j].Score {
			return chunks[i].Score > chunks[j].Score
		}
		if chunks[i].Similarity != chunks[j].Similarity {
			return chunks[i].Similarity > chunks[j].Similarity
		}
		if chunks[i].ShardDate != chunks[j].ShardDate {
			return chunks[i].ShardDate > chunks[j].ShardDate
		}
		return chunks[i].VectorID < chunks[j].VectorID
	})

	return chunks
}

// recencyScore maps a YYYYMMDD shard date to (0, 1), later dates higher.
// Malformed dates score zero and sink to the bottom on the recency term.
func recencyScore(shardDate string) float64 {
	n, err := strconv.ParseFloat(shardDate, 64)
	if err != nil || n <= 0 {
		return 0
	}
	return n / recencyHorizon
}

// similarityFromDistance converts a squared L2 distance to a similarity
// in (0, 1]: identical vectors score 1 and the score decays smoothly with
// distance.
func similarityFromDistance(distance float32) float64 {
	return 1.0 / (1.0 + float64(distance))
}
