// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The Library sits under every other service here: it owns the store
// lock, so ingestion batches, shard searches, and retention sweeps
// serialise through one place.
package services
