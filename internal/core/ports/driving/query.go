package driving

import (
	"context"

	"github.com/custodia-labs/docquery/internal/core/domain"
)

// QueryService answers tenant questions from their stored documents.
type QueryService interface {
	// Ask retrieves the tenant's most relevant chunks and generates a
	// grounded answer with citations. topK <= 0 uses the configured
	// default. When nothing is retrievable the returned Answer carries the
	// no-documents response and no sources - that is a valid outcome, not
	// an error.
	Ask(ctx context.Context, tenantID, question string, topK int) (*domain.Answer, error)

	// RelevantChunks runs retrieval and reranking without generation.
	// This is the debug surface for inspecting what Ask would feed the
	// model.
	RelevantChunks(ctx context.Context, tenantID, query string, topK int) ([]domain.ScoredChunk, error)
}
