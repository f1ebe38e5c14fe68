package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docquery/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	TenantID string `json:"tenant_id" jsonschema:"the tenant whose documents to answer from"`
	Question string `json:"question" jsonschema:"the question to answer"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of chunks to ground the answer on (default 5)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string         `json:"answer"`
	Model   string         `json:"model,omitempty"`
	Sources []SourceOutput `json:"sources"`
}

// SourceOutput is one citation supporting an answer.
type SourceOutput struct {
	Number       int     `json:"number"`
	DocumentName string  `json:"document_name"`
	PageNumber   int     `json:"page_number"`
	Preview      string  `json:"preview,omitempty"`
	Score        float64 `json:"score"`
}

// IngestInput is the input schema for the ingest_document tool.
type IngestInput struct {
	TenantID     string `json:"tenant_id" jsonschema:"the tenant that owns the document"`
	DocumentName string `json:"document_name" jsonschema:"display name used in citations"`
	Text         string `json:"text" jsonschema:"the document text to ingest"`
}

// IngestOutput is the output schema for the ingest_document tool.
type IngestOutput struct {
	DocumentID string `json:"document_id"`
	ShardDate  string `json:"shard_date"`
	ChunkCount int    `json:"chunk_count"`
}

// StatsInput is the input schema for the tenant_stats tool.
type StatsInput struct {
	TenantID string `json:"tenant_id" jsonschema:"the tenant to report on"`
}

// StatsOutput is the output schema for the tenant_stats tool.
type StatsOutput struct {
	TenantID   string `json:"tenant_id"`
	ChunkCount int64  `json:"chunk_count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the tenant's stored documents, with citations",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_document",
		Description: "Ingest a text document into the tenant's store",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "tenant_stats",
		Description: "Report how many chunks a tenant has stored",
	}, s.handleStats)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Query.Ask(ctx, input.TenantID, input.Question, input.TopK)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:  answer.Text,
		Model:   answer.Model,
		Sources: make([]SourceOutput, len(answer.Sources)),
	}
	for i, src := range answer.Sources {
		output.Sources[i] = SourceOutput{
			Number:       src.Number,
			DocumentName: src.DocumentName,
			PageNumber:   src.PageNumber,
			Preview:      src.Preview,
			Score:        src.Score,
		}
	}

	return nil, output, nil
}

// handleIngest handles the ingest_document tool invocation. The text is
// stored as a single page; page-structured ingestion is a CLI concern.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Ingest == nil {
		return nil, IngestOutput{}, errors.New("ingestion is not available")
	}

	pages := []domain.Page{{Number: 1, Text: input.Text}}
	receipt, err := s.ports.Ingest.IngestDocument(ctx, input.TenantID, input.DocumentName, pages)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		DocumentID: receipt.DocumentID,
		ShardDate:  receipt.ShardDate,
		ChunkCount: receipt.ChunkCount,
	}, nil
}

// handleStats handles the tenant_stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	if s.ports.Admin == nil {
		return nil, StatsOutput{}, errors.New("stats are not available")
	}

	stats, err := s.ports.Admin.TenantStats(ctx, input.TenantID)
	if err != nil {
		return nil, StatsOutput{}, err
	}

	return nil, StatsOutput{
		TenantID:   stats.TenantID,
		ChunkCount: stats.ChunkCount,
	}, nil
}
