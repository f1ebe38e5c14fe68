package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Note: This is separate from VectorShardStore, which stores and searches
// vectors. EmbeddingService generates vectors; VectorShardStore stores them.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
//   - Local models via inference servers
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// The result has exactly one vector per input, in input order, all of
	// Dimensions() size. Order preservation is part of the contract:
	// ingestion assigns vector ids positionally from this slice.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 768, 1536).
	// This is fixed at store initialisation and must match the
	// VectorShardStore dimension; a dimension change across calls is
	// unsupported.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test
	// request. Used at startup to verify connectivity.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
