// Package sqlite provides the SQLite-backed implementation of the metadata
// driven ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. It implements multiple
// store interfaces through a single database connection:
//
//   - MetadataStore: chunk records and the shard registry
//   - SweepHistoryStore: retention sweep outcomes
//
// # Schema
//
// The database schema is managed through versioned migrations embedded from
// the migrations/ directory and applied at open time.
//
// # Data Location
//
// The database lives at <dataDir>/metadata.db, next to the vector index
// files it describes.
//
// # Thread Safety
//
// Every operation takes the store's single mutex before touching the
// database, so chunk inserts, lookups, registry updates, and stale-data
// deletes are fully serialised within the process. WAL mode and a busy
// timeout additionally protect against a second process on the same file.
package sqlite
