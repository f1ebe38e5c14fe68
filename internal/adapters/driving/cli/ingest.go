package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docquery/internal/core/domain"
)

var (
	ingestName string
	ingestJSON bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Ingest documents for a tenant",
	Long: `Chunks, embeds, and stores documents into today's shard.

Each file becomes one document named after its base name unless --name
overrides it. Form feed characters split a file into pages; files without
them are ingested as a single page. Pass "-" to read a document from
stdin.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestName, "name", "n", "", "document name (default: file base name)")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output receipts as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingestion not configured: set up an embedding provider with 'docquery settings embedding'")
	}

	tenantID, err := resolveTenant()
	if err != nil {
		return err
	}

	ctx := context.Background()
	receipts := make([]*domain.IngestReceipt, 0, len(args))

	for _, arg := range args {
		name, pages, err := readDocument(cmd, arg)
		if err != nil {
			return err
		}
		if ingestName != "" {
			name = ingestName
		}

		receipt, err := ingestService.IngestDocument(ctx, tenantID, name, pages)
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", name, err)
		}
		receipts = append(receipts, receipt)
	}

	if ingestJSON {
		return outputIngestJSON(cmd, receipts)
	}
	return outputIngestTable(cmd, receipts)
}

// readDocument loads one document argument: a file path, or "-" for stdin.
func readDocument(cmd *cobra.Command, arg string) (string, []domain.Page, error) {
	if arg == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", nil, fmt.Errorf("reading stdin: %w", err)
		}
		return "stdin", splitPages(string(data)), nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", arg, err)
	}
	return filepath.Base(arg), splitPages(string(data)), nil
}

// splitPages cuts text on form feeds, the page separator emitted by
// pdftotext and friends. Text without form feeds is a single page.
func splitPages(text string) []domain.Page {
	parts := strings.Split(text, "\f")
	pages := make([]domain.Page, 0, len(parts))
	for i, part := range parts {
		pages = append(pages, domain.Page{Number: i + 1, Text: part})
	}
	return pages
}

func outputIngestJSON(cmd *cobra.Command, receipts []*domain.IngestReceipt) error {
	data, err := json.MarshalIndent(receipts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal receipts: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputIngestTable(cmd *cobra.Command, receipts []*domain.IngestReceipt) error {
	for _, r := range receipts {
		cmd.Printf("Ingested %s: %d chunks into shard %s (document %s)\n",
			r.DocumentName, r.ChunkCount, r.ShardDate, r.DocumentID)
	}
	return nil
}
