package driving

import (
	"context"

	"github.com/custodia-labs/docquery/internal/core/domain"
)

// AdminService exposes the operational surface: stats, shard inspection,
// and on-demand retention sweeps. All read-only or operational; nothing
// here influences ranking.
type AdminService interface {
	// TenantStats returns the tenant's stored chunk count.
	TenantStats(ctx context.Context, tenantID string) (*domain.TenantStats, error)

	// ActiveShards lists shards inside the retention window, newest first.
	ActiveShards(ctx context.Context) ([]domain.Shard, error)

	// TriggerSweep runs one retention sweep immediately with the given
	// window. days <= 0 uses the configured retention days. The sweep is
	// idempotent: running it twice with no intervening writes deletes
	// nothing the second time.
	TriggerSweep(ctx context.Context, days int) (*domain.SweepResult, error)

	// SweepHistory returns recent sweep results, most recent first.
	SweepHistory(ctx context.Context, limit int) ([]domain.SweepResult, error)
}
