package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/docquery/internal/chunker"
	"github.com/custodia-labs/docquery/internal/core/domain"
	"github.com/custodia-labs/docquery/internal/core/ports/driven"
	"github.com/custodia-labs/docquery/internal/core/ports/driving"
	"github.com/custodia-labs/docquery/internal/logger"
)

// Ensure Ingestor implements the interface.
var _ driving.IngestService = (*Ingestor)(nil)

// Ingestor turns tenant documents into embedded, searchable chunks in the
// current day's shard.
type Ingestor struct {
	library  *Library
	embedder driven.EmbeddingService
	splitter *chunker.Splitter
	log      *logger.Logger
}

// NewIngestor creates an ingestion service.
func NewIngestor(library *Library, embedder driven.EmbeddingService, splitter *chunker.Splitter, log *logger.Logger) *Ingestor {
	if splitter == nil {
		splitter = chunker.New()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Ingestor{
		library:  library,
		embedder: embedder,
		splitter: splitter,
		log:      log,
	}
}

// IngestDocument chunks, embeds, and commits one document. The embedding
// batch happens before the store lock is taken; everything from vector
// append to registry update then commits atomically with respect to other
// ingestions and sweeps.
//
// Retrying a call that already committed stores the chunks again; there
// is no content deduplication.
func (ing *Ingestor) IngestDocument(ctx context.Context, tenantID, documentName string, pages []domain.Page) (*domain.IngestReceipt, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", domain.ErrInvalidInput)
	}
	documentName = strings.TrimSpace(documentName)
	if documentName == "" {
		return nil, fmt.Errorf("%w: document name is required", domain.ErrInvalidInput)
	}
	if ing.embedder == nil {
		return nil, fmt.Errorf("%w: ingestion requires an embedding provider", domain.ErrEmbeddingUnavailable)
	}

	if textLength(pages) < domain.MinDocumentLength {
		return nil, fmt.Errorf("%w: document %q has fewer than %d characters of text",
			domain.ErrInvalidInput, documentName, domain.MinDocumentLength)
	}

	pending := ing.splitter.Split(pages)
	if len(pending) == 0 {
		return nil, fmt.Errorf("%w: document %q has no indexable text", domain.ErrInvalidInput, documentName)
	}

	texts := make([]string, len(pending))
	for i, chunk := range pending {
		texts[i] = chunk.Content
	}

	ing.log.Debug("embedding document",
		"tenant", tenantID, "document", documentName, "chunks", len(texts))

	vectors, err := ing.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding document %q: %w", documentName, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: provider returned %d embeddings for %d chunks",
			domain.ErrEmbeddingUnavailable, len(vectors), len(texts))
	}

	records := make([]domain.ChunkRecord, len(pending))
	for i, chunk := range pending {
		records[i] = domain.ChunkRecord{
			TenantID:     tenantID,
			DocumentName: documentName,
			PageNumber:   chunk.PageNumber,
			ChunkIndex:   chunk.ChunkIndex,
			Content:      chunk.Content,
		}
	}

	shardDate := ing.library.CurrentShardDate()
	startID, err := ing.library.AddBatch(ctx, shardDate, vectors, records)
	if err != nil {
		return nil, err
	}

	vectorIDs := make([]int64, len(records))
	for i := range vectorIDs {
		vectorIDs[i] = startID + int64(i)
	}

	receipt := &domain.IngestReceipt{
		DocumentID:   uuid.New().String(),
		TenantID:     tenantID,
		DocumentName: documentName,
		ShardDate:    shardDate,
		ChunkCount:   len(records),
		VectorIDs:    vectorIDs,
	}

	ing.log.Info("document ingested",
		"tenant", tenantID, "document", documentName, "shard", shardDate,
		"chunks", receipt.ChunkCount, "first_id", startID)
	return receipt, nil
}

// textLength counts the visible runes across all pages.
func textLength(pages []domain.Page) int {
	total := 0
	for _, page := range pages {
		total += utf8.RuneCountInString(strings.TrimSpace(page.Text))
	}
	return total
}
