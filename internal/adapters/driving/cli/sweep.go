package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docquery/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docquery/internal/core/domain"
)

const sweepHistoryLimit = 10

var (
	sweepDays        int
	sweepWatch       bool
	sweepShowHistory bool
	sweepJSON        bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete data older than the retention window",
	Long: `Runs a retention sweep: metadata rows and shard indexes dated before
the cutoff are deleted. The sweep is idempotent - running it again with no
intervening writes deletes nothing.

With --watch the process stays up, sweeping on the configured interval and
picking up retention changes from the config file as they happen.`,
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().IntVar(&sweepDays, "days", 0, "retention window override in days (0 = configured)")
	sweepCmd.Flags().BoolVar(&sweepWatch, "watch", false, "keep sweeping on the configured interval")
	sweepCmd.Flags().BoolVar(&sweepShowHistory, "history", false, "show recent sweep results instead of sweeping")
	sweepCmd.Flags().BoolVar(&sweepJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	if adminService == nil {
		return errors.New("admin service not configured")
	}

	if sweepShowHistory {
		return runSweepHistory(cmd)
	}
	if sweepWatch {
		return runSweepWatch(cmd)
	}

	result, err := adminService.TriggerSweep(context.Background(), sweepDays)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	if sweepJSON {
		return outputSweepJSON(cmd, result)
	}
	return outputSweepResult(cmd, result)
}

func runSweepHistory(cmd *cobra.Command) error {
	results, err := adminService.SweepHistory(context.Background(), sweepHistoryLimit)
	if err != nil {
		return fmt.Errorf("reading sweep history: %w", err)
	}

	if sweepJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No sweeps recorded.")
		return nil
	}

	cmd.Println("Recent sweeps:")
	cmd.Println()
	for i := range results {
		r := &results[i]
		cmd.Printf("  %s  cutoff %s  records %d  shards %d  files %d\n",
			r.StartedAt.Format(time.RFC3339), r.Cutoff,
			r.DeletedRecords, r.DeletedShards, r.DeletedFiles)
		if r.Err != "" {
			cmd.Printf("      warning: %s\n", r.Err)
		}
	}
	return nil
}

// runSweepWatch blocks, sweeping on the configured interval until
// interrupted. Retention edits in the config file apply without restart.
func runSweepWatch(cmd *cobra.Command) error {
	if retentionManager == nil {
		return errors.New("retention manager not configured")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if configStore != nil {
		watcher, err := file.NewWatcher(configStore, func() {
			settings, err := settingsService.Get()
			if err != nil {
				return
			}
			_ = retentionManager.SetDays(settings.Retention.Days)
		}, appLogger)
		if err != nil {
			return fmt.Errorf("creating config watcher: %w", err)
		}
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("watching config: %w", err)
		}
		defer watcher.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- retentionManager.Start(ctx)
	}()

	cmd.Printf("Sweeping every %s (retention %d days); press Ctrl+C to stop.\n",
		sweepIntervalLabel(), retentionManager.Days())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
		cancel()
		_ = retentionManager.Stop()
		<-errCh
		cmd.Println("Stopped.")
		return nil
	case err := <-errCh:
		return err
	}
}

// sweepIntervalLabel reports the configured sweep cadence for the watch
// banner, falling back to the default when settings cannot be read.
func sweepIntervalLabel() time.Duration {
	if settingsService == nil {
		return domain.DefaultSweepInterval
	}
	settings, err := settingsService.Get()
	if err != nil || settings.Retention.SweepInterval <= 0 {
		return domain.DefaultSweepInterval
	}
	return settings.Retention.SweepInterval
}

func outputSweepJSON(cmd *cobra.Command, result *domain.SweepResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSweepResult(cmd *cobra.Command, result *domain.SweepResult) error {
	cmd.Printf("Sweep complete (cutoff %s)\n", result.Cutoff)
	cmd.Printf("  Deleted records: %d\n", result.DeletedRecords)
	cmd.Printf("  Deleted shards:  %d\n", result.DeletedShards)
	cmd.Printf("  Deleted files:   %d\n", result.DeletedFiles)
	if result.Err != "" {
		cmd.Printf("  Warning: %s\n", result.Err)
	}
	return nil
}
