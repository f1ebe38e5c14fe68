package mcp

import (
	"github.com/custodia-labs/docquery/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers questions against stored documents.
	Query driving.QueryService

	// Ingest accepts new documents.
	Ingest driving.IngestService

	// Admin exposes stats, shard listings, and sweeps.
	Admin driving.AdminService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	// Ingest and Admin are optional; their tools and resources degrade.
	return nil
}
