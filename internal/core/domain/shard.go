package domain

import "time"

// shardDateLayout is the calendar-day shard key format.
const shardDateLayout = "20060102"

// Shard is one calendar-day partition of the vector index and its metadata.
// A shard is created lazily on the first ingestion of its day, grows with
// every add+persist that day, and is destroyed by the retention sweep once
// its date falls outside the window.
//
// Every shard has exactly one on-disk index file and exactly one registry
// row.
type Shard struct {
	// Date is the shard key in YYYYMMDD form.
	Date string

	// IndexPath is the path of the shard's on-disk index file.
	IndexPath string

	// VectorCount is the number of vectors in the persisted index.
	VectorCount int64

	// CreatedAt is when the shard was first registered.
	CreatedAt time.Time
}

// ShardDateAt returns the shard date for the given instant.
func ShardDateAt(t time.Time) string {
	return t.Format(shardDateLayout)
}

// CutoffDate returns the oldest shard date still inside the retention
// window: shards dated strictly before the returned value are stale.
// With retentionDays=3 and now=2025-01-05 the cutoff is "20250102", so
// shards 20250102..20250105 stay active.
func CutoffDate(now time.Time, retentionDays int) string {
	return now.AddDate(0, 0, -retentionDays).Format(shardDateLayout)
}

// ValidShardDate reports whether s is a well-formed YYYYMMDD shard date.
// The format is fixed-width numeric, so shard dates order correctly under
// plain string comparison; retention cutoffs rely on that.
func ValidShardDate(s string) bool {
	if len(s) != 8 {
		return false
	}
	_, err := time.Parse(shardDateLayout, s)
	return err == nil
}
