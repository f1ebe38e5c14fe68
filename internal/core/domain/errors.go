package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
//
// An empty retrieval result is a valid outcome, not an error; ErrNotFound
// is reserved for point lookups of entities that should exist.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input: empty text,
	// a dimension mismatch, a bad shard date, or a missing tenant id.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorage indicates the metadata store or a shard index file could
	// not be written. Unreadable index files are not surfaced through this
	// error; they degrade to an empty shard on the query path.
	ErrStorage = errors.New("storage failure")

	// ErrLLMUnavailable indicates the LLM service is not configured or
	// unreachable. Answer generation is disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or unreachable. Both ingestion and retrieval need it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates a provider API rate limit was exceeded
	// after the adapter exhausted its retries.
	ErrRateLimited = errors.New("rate limited")
)
