package domain

import "time"

// ChunkRecord is the metadata row for one embedded chunk. Records are
// immutable after ingestion and removed only when a retention sweep drops
// their shard.
//
// VectorID is 0-based and contiguous within a shard, assigned in insertion
// order. It is unique only within its shard: the true key of a record is
// the (ShardDate, VectorID) pair, and the same VectorID value recurs
// across shards.
type ChunkRecord struct {
	// RowID is the metadata store's own row identifier.
	RowID int64

	// VectorID is the position of the chunk's vector in the shard index.
	VectorID int64

	// TenantID scopes which queries may retrieve this chunk. The vector
	// index itself is tenant-blind; this field is the sole isolation
	// mechanism.
	TenantID string

	// ShardDate is the YYYYMMDD day the chunk was ingested.
	ShardDate string

	// DocumentName is the caller-supplied name of the source document.
	DocumentName string

	// PageNumber is the 1-based page of the source document.
	PageNumber int

	// ChunkIndex is the chunk's ordinal within its upload batch.
	ChunkIndex int

	// Content is the chunk text.
	Content string

	// CreatedAt is when the record was inserted.
	CreatedAt time.Time
}

// Page is one page of ingestion input. Callers that have no page structure
// submit a single page numbered 1.
type Page struct {
	Number int
	Text   string
}

// PendingChunk is a chunk prepared for ingestion, before a vector id has
// been assigned.
type PendingChunk struct {
	PageNumber int
	ChunkIndex int
	Content    string
}

// VectorHit is one nearest-neighbour result from a shard index.
type VectorHit struct {
	// VectorID identifies the vector within its shard.
	VectorID int64

	// Distance is the squared Euclidean distance to the query vector.
	Distance float32
}

// ScoredChunk is a retrieved chunk together with its ranking scores.
type ScoredChunk struct {
	ChunkRecord

	// Similarity is 1/(1+d) for the hit's squared L2 distance d.
	Similarity float64

	// Score is the blended similarity/recency score assigned by the
	// reranker. Zero until reranking has run.
	Score float64
}
