// Package mcp provides an MCP (Model Context Protocol) server adapter for
// docquery. It lets AI assistants answer questions from a tenant's stored
// documents, ingest new ones, and inspect shard state.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")
