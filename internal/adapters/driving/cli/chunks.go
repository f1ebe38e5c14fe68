package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docquery/internal/core/domain"
)

var (
	chunksTopK int
	chunksJSON bool
)

var chunksCmd = &cobra.Command{
	Use:   "chunks [query]",
	Short: "Show the chunks a question would retrieve",
	Long: `Runs retrieval and reranking without answer generation. This is the
debug surface for inspecting what the query command would feed the model.`,
	Args: cobra.ExactArgs(1),
	RunE: runChunks,
}

func init() {
	chunksCmd.Flags().IntVarP(&chunksTopK, "top-k", "k", 0, "number of chunks to retrieve (0 = configured default)")
	chunksCmd.Flags().BoolVar(&chunksJSON, "json", false, "output chunks as JSON")
	rootCmd.AddCommand(chunksCmd)
}

func runChunks(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query not configured: set up an embedding provider with 'docquery settings embedding'")
	}

	tenantID, err := resolveTenant()
	if err != nil {
		return err
	}

	ctx := context.Background()
	chunks, err := queryService.RelevantChunks(ctx, tenantID, args[0], chunksTopK)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if chunksJSON {
		return outputChunksJSON(cmd, chunks)
	}
	return outputChunksTable(cmd, chunks)
}

func outputChunksJSON(cmd *cobra.Command, chunks []domain.ScoredChunk) error {
	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal chunks: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputChunksTable(cmd *cobra.Command, chunks []domain.ScoredChunk) error {
	if len(chunks) == 0 {
		cmd.Println("No chunks retrieved.")
		return nil
	}

	cmd.Printf("Retrieved %d chunks:\n", len(chunks))
	cmd.Println()
	for i := range chunks {
		c := &chunks[i]
		cmd.Printf("  [%d] %s, page %d (shard %s, vector %d)\n",
			i+1, c.DocumentName, c.PageNumber, c.ShardDate, c.VectorID)
		cmd.Printf("      score %.4f (similarity %.4f)\n", c.Score, c.Similarity)
		cmd.Printf("      %s\n", domain.Preview(c.Content))
		cmd.Println()
	}
	return nil
}
