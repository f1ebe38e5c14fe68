package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docquery/internal/core/domain"
	"github.com/custodia-labs/docquery/internal/core/ports/driving"
)

// Ensure Admin implements the interface.
var _ driving.AdminService = (*Admin)(nil)

// Admin exposes the operational surface over the library and the
// retention manager.
type Admin struct {
	library   *Library
	retention *RetentionManager
}

// NewAdmin creates the admin service.
func NewAdmin(library *Library, retention *RetentionManager) *Admin {
	return &Admin{
		library:   library,
		retention: retention,
	}
}

// TenantStats returns the tenant's stored chunk count.
func (a *Admin) TenantStats(ctx context.Context, tenantID string) (*domain.TenantStats, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", domain.ErrInvalidInput)
	}

	count, err := a.library.CountForTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("counting tenant chunks: %w", err)
	}
	return &domain.TenantStats{
		TenantID:   tenantID,
		ChunkCount: count,
	}, nil
}

// ActiveShards lists shards inside the current retention window, newest
// first.
func (a *Admin) ActiveShards(ctx context.Context) ([]domain.Shard, error) {
	return a.library.ActiveShards(ctx, a.retention.Days())
}

// TriggerSweep runs one retention sweep immediately.
func (a *Admin) TriggerSweep(ctx context.Context, days int) (*domain.SweepResult, error) {
	return a.retention.Sweep(ctx, days)
}

// SweepHistory returns recent sweep results, most recent first.
func (a *Admin) SweepHistory(ctx context.Context, limit int) ([]domain.SweepResult, error) {
	return a.retention.SweepHistory(ctx, limit)
}
