// Package tui provides the interactive chat interface for docquery.
// It implements a driving adapter following hexagonal architecture
// principles: the chat view consumes driving.QueryService and contains no
// retrieval logic of its own.
package tui

import (
	"github.com/custodia-labs/docquery/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers questions against stored documents.
	Query driving.QueryService
}

// NewPorts creates a Ports aggregate from the given services.
func NewPorts(query driving.QueryService) *Ports {
	return &Ports{Query: query}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
