// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - MetadataStore: chunk records and the shard registry (SQLite)
//   - VectorShardStore: one exact-search index file per calendar day
//   - EmbeddingService: text to fixed-dimension vectors
//   - ConfigStore: application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: answer generation. Without it, retrieval still works but
//     questions cannot be answered.
//   - SweepHistoryStore: retention sweep audit trail.
//   - PromptStore: user-customisable prompt templates.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
