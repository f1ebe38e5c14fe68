package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/docquery/internal/core/domain"
	"github.com/custodia-labs/docquery/internal/core/ports/driven"
	"github.com/custodia-labs/docquery/internal/logger"
)

// sweepHistoryKeep bounds the audit trail kept in the sweep history store.
const sweepHistoryKeep = 100

/// RetentionManager owns the retention window and runs sweeps: periodic
// ones from its background loop and on-demand ones for operators. Sweeps
// are idempotent, so overlapping triggers only cost redundant work.
type RetentionManager struct {
	library *Library
	history driven.SweepHistoryStore
	log     *logger.Logger

	interval time.Duration

	mu      sync.Mutex
	days    int
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewRetentionManager creates a retention manager. history may be nil;
// sweeps then run unrecorded.
func NewRetentionManager(
	library *Library,
	history driven.SweepHistoryStore,
	settings domain.RetentionSettings,
	log *logger.Logger,
) *RetentionManager {
	days := settings.Days
	if days < 1 {
		days = domain.DefaultRetentionDays
	}
	interval := settings.SweepInterval
	if interval <= 0 {
		interval = domain.DefaultSweepInterval
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RetentionManager{
		library:  library,
		history:  history,
		log:      log,
		interval: interval,
		days:     days,
	}
}

// Days returns the current retention window in days.
func (r *RetentionManager) Days() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.days
}

// SetDays changes the retention window. The new window applies to the
// next sweep and to active-shard listings immediately; already deleted
// data does not come back when the window grows.
func (r *RetentionManager) SetDays(days int) error {
	if days < 1 {
		return fmt.Errorf("%w: retention days must be at least 1, got %d", domain.ErrInvalidInput, days)
	}
	r.mu.Lock()
	old := r.days
	r.days = days
	r.mu.Unlock()

	if old != days {
		r.log.Info("retention window changed", "from_days", old, "to_days", days)
	}
	return nil
}

// Start runs the sweep loop. It sweeps once immediately, then on every
// interval tick, and blocks until Stop is called or the context ends.
func (r *RetentionManager) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil // Already running
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.mu.Unlock()

	r.sweepAndLog(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.stopCh:
			return nil
		case <-ticker.C:
			r.sweepAndLog(ctx)
		}
	}
}

// Stop shuts down the sweep loop and waits for an in-flight sweep.
func (r *RetentionManager) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	close(r.stopCh)
	r.mu.Unlock()

	r.wg.Wait()
	return nil
}

// Sweep runs one sweep now. days <= 0 uses the configured window. The
// result is recorded in the history store when one is wired.
func (r *RetentionManager) Sweep(ctx context.Context, days int) (*domain.SweepResult, error) {
	if days <= 0 {
		days = r.Days()
	}

	result, err := r.library.Sweep(ctx, days)
	if err != nil {
		return nil, err
	}

	r.recordSweep(ctx, result)
	return result, nil
}

// SweepHistory returns recent sweep results, most recent first.
func (r *RetentionManager) SweepHistory(ctx context.Context, limit int) ([]domain.SweepResult, error) {
	if r.history == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}
	return r.history.SweepHistory(ctx, limit)
}

// sweepAndLog runs a periodic sweep, never letting a failure kill the
// loop.
func (r *RetentionManager) sweepAndLog(ctx context.Context) {
	r.wg.Add(1)
	defer r.wg.Done()

	result, err := r.Sweep(ctx, 0)
	if err != nil {
		r.log.Error("periodic retention sweep failed", "error", err)
		return
	}
	r.log.Debug("periodic retention sweep finished",
		"cutoff", result.Cutoff, "shards", result.DeletedShards, "records", result.DeletedRecords)
}

// recordSweep appends the result to the audit trail and prunes it.
func (r *RetentionManager) recordSweep(ctx context.Context, result *domain.SweepResult) {
	if r.history == nil {
		return
	}
	if err := r.history.RecordSweep(ctx, result); err != nil {
		r.log.Warn("failed to record sweep history", "error", err)
		return
	}
	if err := r.history.PruneSweepHistory(ctx, sweepHistoryKeep); err != nil {
		r.log.Warn("failed to prune sweep history", "error", err)
	}
}
