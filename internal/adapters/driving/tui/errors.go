package tui

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("tui: query service is required")

// ErrMissingTenant is returned when no tenant is set for the chat session.
var ErrMissingTenant = errors.New("tui: tenant is required")
