package domain

import "time"

// previewLength bounds the chunk preview attached to a citation.
const previewLength = 200

// SourceRef cites one chunk used to ground an answer. Number matches the
// [Source N] label in the generated context, 1-based.
type SourceRef struct {
	Number       int
	DocumentName string
	PageNumber   int
	Preview      string
	Score        float64
}

// Answer is a generated response with its supporting citations. An Answer
// with no Sources is the valid "no documents" outcome, not an error.
type Answer struct {
	Text    string
	Sources []SourceRef
	Model   string
}

// Preview truncates chunk content for citation display.
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength]) + "..."
}

// IngestReceipt reports what one ingestion call committed.
type IngestReceipt struct {
	// DocumentID is a fresh identifier for this upload; the store itself
	// keys chunks by (ShardDate, VectorID), not by document.
	DocumentID   string
	TenantID     string
	DocumentName string
	ShardDate    string
	ChunkCount   int
	VectorIDs    []int64
}

// TenantStats summarises a tenant's stored data across all shards.
type TenantStats struct {
	TenantID   string
	ChunkCount int64
}

// SweepResult reports one retention sweep. A sweep that found nothing
// stale reports all-zero counts.
type SweepResult struct {
	Cutoff         string
	DeletedRecords int64
	DeletedShards  int64
	DeletedFiles   int64
	StartedAt      time.Time
	EndedAt        time.Time

	// Err records a non-fatal sweep problem, such as an index file that
	// could not be deleted. Metadata deletion is never rolled back on
	// account of it.
	Err string
}
