package driving

import (
	"context"

	"github.com/custodia-labs/docquery/internal/core/domain"
)

// IngestService accepts tenant documents into the store.
type IngestService interface {
	// IngestDocument chunks, embeds, and commits one document into the
	// current day's shard. The whole batch is assigned contiguous vector
	// ids under the store lock; concurrent ingestions never interleave
	// id assignment. There is no deduplication: retrying a call that
	// already committed will store the chunks again.
	IngestDocument(ctx context.Context, tenantID, documentName string, pages []domain.Page) (*domain.IngestReceipt, error)
}
