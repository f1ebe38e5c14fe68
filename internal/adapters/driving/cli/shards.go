package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var shardsJSON bool

var shardsCmd = &cobra.Command{
	Use:   "shards",
	Short: "List active vector shards",
	Long: `Lists shards inside the retention window, newest first. Shards older
than the window are gone or about to be; they never serve queries.`,
	RunE: runShards,
}

func init() {
	shardsCmd.Flags().BoolVar(&shardsJSON, "json", false, "output shards as JSON")
	rootCmd.AddCommand(shardsCmd)
}

func runShards(cmd *cobra.Command, _ []string) error {
	if adminService == nil {
		return errors.New("admin service not configured")
	}

	shards, err := adminService.ActiveShards(context.Background())
	if err != nil {
		return fmt.Errorf("listing shards: %w", err)
	}

	if shardsJSON {
		data, err := json.MarshalIndent(shards, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal shards: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(shards) == 0 {
		cmd.Println("No active shards.")
		return nil
	}

	cmd.Println("Active shards:")
	cmd.Println()
	for i := range shards {
		cmd.Printf("  %s  %6d vectors  %s\n",
			shards[i].Date, shards[i].VectorCount, shards[i].IndexPath)
	}
	return nil
}
