// Package domain defines the core business entities for Docquery.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ChunkRecord: the metadata row for one embedded chunk
//   - Shard: a calendar-day partition of the vector index
//   - ScoredChunk: a retrieved chunk with its ranking scores
//   - Answer: a generated response with source citations
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
