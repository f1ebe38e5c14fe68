package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for docquery resources.
	uriScheme = "docquery://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the active shard list.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "shards",
		Name:        "shards",
		Description: "Active vector shards inside the retention window, newest first",
		MIMEType:    "application/json",
	}, s.handleShardsResource)

	// Template for per-tenant stats.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "tenants/{tenantId}/stats",
		Name:        "tenant-stats",
		Description: "Stored chunk count for a specific tenant",
		MIMEType:    "application/json",
	}, s.handleTenantStatsResource)
}

// handleShardsResource returns the active shard list.
func (s *Server) handleShardsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Admin == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	shards, err := s.ports.Admin.ActiveShards(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing shards: %w", err)
	}

	type shardInfo struct {
		Date        string `json:"date"`
		VectorCount int64  `json:"vector_count"`
		IndexPath   string `json:"index_path"`
	}

	infos := make([]shardInfo, len(shards))
	for i := range shards {
		infos[i] = shardInfo{
			Date:        shards[i].Date,
			VectorCount: shards[i].VectorCount,
			IndexPath:   shards[i].IndexPath,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling shards: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleTenantStatsResource returns stats for one tenant.
func (s *Server) handleTenantStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Admin == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract tenantId from URI: docquery://tenants/{tenantId}/stats
	tenantID := extractTenantID(req.Params.URI)
	if tenantID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	stats, err := s.ports.Admin.TenantStats(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("getting tenant stats: %w", err)
	}

	data, err := json.MarshalIndent(StatsOutput{
		TenantID:   stats.TenantID,
		ChunkCount: stats.ChunkCount,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling stats: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractTenantID extracts the tenant ID from a URI like
// docquery://tenants/{tenantId}/stats.
func extractTenantID(uri string) string {
	const prefix = uriScheme + "tenants/"
	const suffix = "/stats"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
