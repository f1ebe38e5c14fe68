package mcp

import (
	"context"

	"github.com/custodia-labs/docquery/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	answer *domain.Answer
	chunks []domain.ScoredChunk
	err    error

	lastTenant string
	lastTopK   int
}

func (m *mockQueryService) Ask(_ context.Context, tenantID, _ string, topK int) (*domain.Answer, error) {
	m.lastTenant = tenantID
	m.lastTopK = topK
	return m.answer, m.err
}

func (m *mockQueryService) RelevantChunks(_ context.Context, tenantID, _ string, topK int) ([]domain.ScoredChunk, error) {
	m.lastTenant = tenantID
	m.lastTopK = topK
	return m.chunks, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	receipt *domain.IngestReceipt
	err     error

	lastTenant string
	lastName   string
	lastPages  []domain.Page
}

func (m *mockIngestService) IngestDocument(_ context.Context, tenantID, documentName string, pages []domain.Page) (*domain.IngestReceipt, error) {
	m.lastTenant = tenantID
	m.lastName = documentName
	m.lastPages = pages
	return m.receipt, m.err
}

// mockAdminService is a mock implementation of driving.AdminService.
type mockAdminService struct {
	stats   *domain.TenantStats
	shards  []domain.Shard
	sweep   *domain.SweepResult
	history []domain.SweepResult
	err     error
}

func (m *mockAdminService) TenantStats(_ context.Context, tenantID string) (*domain.TenantStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.stats != nil {
		return m.stats, nil
	}
	return &domain.TenantStats{TenantID: tenantID}, nil
}

func (m *mockAdminService) ActiveShards(_ context.Context) ([]domain.Shard, error) {
	return m.shards, m.err
}

func (m *mockAdminService) TriggerSweep(_ context.Context, _ int) (*domain.SweepResult, error) {
	return m.sweep, m.err
}

func (m *mockAdminService) SweepHistory(_ context.Context, _ int) ([]domain.SweepResult, error) {
	return m.history, m.err
}
