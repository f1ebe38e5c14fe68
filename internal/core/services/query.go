package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/custodia-labs/docquery/internal/core/domain"
	"github.com/custodia-labs/docquery/internal/core/ports/driven"
	"github.com/custodia-labs/docquery/internal/core/ports/driving"
	"github.com/custodia-labs/docquery/internal/logger"
)

// Ensure QueryEngine implements the interface.
var _ driving.QueryService = (*QueryEngine)(nil)

// overRetrievalFactor is how many candidates each shard contributes per
// requested result. The tenant filter discards hits belonging to other
// tenants after the search, so each shard over-fetches to keep the final
// list full.
const overRetrievalFactor = 3

// generationTemperature keeps answers close to the retrieved text.
const generationTemperature = 0.3

// generationMaxTokens bounds a single answer.
const generationMaxTokens = 1024

// Fallback prompts used when no prompt store is wired or a template is
// missing.
const (
	fallbackQASystem = "You are a document assistant. Answer strictly from the provided context. " +
		"Cite sources as: According to [Document Name], Page [X]. " +
		"If the context does not contain the answer, say you do not know."

	fallbackQAUser = "Context:\n%s\n\nQuestion: %s"

	fallbackNoDocuments = "No relevant documents were found to answer your question. " +
		"Try ingesting documents first, or rephrase the question."
)

// retentionPolicy supplies the live retention window. *RetentionManager
// satisfies it; tests substitute a fixed window.
type retentionPolicy interface {
	Days() int
}

// QueryEngine answers tenant questions over their stored chunks.
type QueryEngine struct {
	library   *Library
	embedder  driven.EmbeddingService
	llm       driven.LLMService
	prompts   driven.PromptStore
	reranker  *Reranker
	retention retentionPolicy
	log       *logger.Logger
}

// NewQueryEngine creates a query service. llm may be nil: retrieval
// still works and only Ask is refused. prompts may be nil: built-in
// templates are used.
func NewQueryEngine(
	library *Library,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	retention retentionPolicy,
	log *logger.Logger,
) *QueryEngine {
	if log == nil {
		log = logger.Nop()
	}
	return &QueryEngine{
		library:   library,
		embedder:  embedder,
		llm:       llm,
		prompts:   prompts,
		reranker:  NewReranker(),
		retention: retention,
		log:       log,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (q *QueryEngine) SetPromptStore(store driven.PromptStore) {
	q.prompts = store
}

// Ask retrieves the tenant's best-matching chunks and generates a grounded
// answer with citations. Finding nothing is a normal outcome: the answer
// then carries the no-documents text and an empty source list.
func (q *QueryEngine) Ask(ctx context.Context, tenantID, question string, topK int) (*domain.Answer, error) {
	if q.llm == nil {
		return nil, fmt.Errorf("%w: answering requires a configured LLM provider", domain.ErrLLMUnavailable)
	}

	chunks, err := q.RelevantChunks(ctx, tenantID, question, topK)
	if err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		q.log.Info("no relevant chunks for question", "tenant", tenantID)
		return &domain.Answer{
			Text:  q.loadPrompt(driven.PromptNoDocuments, fallbackNoDocuments),
			Model: q.llm.ModelName(),
		}, nil
	}

	contextText := buildContext(chunks)
	system := q.loadPrompt(driven.PromptQASystem, fallbackQASystem)
	user := fmt.Sprintf(q.loadPrompt(driven.PromptQAUser, fallbackQAUser), contextText, strings.TrimSpace(question))

	text, err := q.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, driven.ChatOptions{
		MaxTokens:   generationMaxTokens,
		Temperature: generationTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	sources := make([]domain.SourceRef, len(chunks))
	for i, chunk := range chunks {
		sources[i] = domain.SourceRef{
			Number:       i + 1,
			DocumentName: chunk.DocumentName,
			PageNumber:   chunk.PageNumber,
			Preview:      domain.Preview(chunk.Content),
			Score:        round3(chunk.Score),
		}
	}

	q.log.Info("question answered",
		"tenant", tenantID, "sources", len(sources), "model", q.llm.ModelName())
	return &domain.Answer{
		Text:    text,
		Sources: sources,
		Model:   q.llm.ModelName(),
	}, nil
}

// RelevantChunks embeds the query once, searches every active shard, maps
// hits through the tenant's metadata, and reranks the union. Hits whose
// metadata belongs to another tenant vanish here; the search itself is
// tenant-blind.
func (q *QueryEngine) RelevantChunks(ctx context.Context, tenantID, query string, topK int) ([]domain.ScoredChunk, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", domain.ErrInvalidInput)
	}
	query = strings.TrimSpace(query)
	if len([]rune(query)) < domain.MinQuestionLength {
		return nil, fmt.Errorf("%w: question must be at least %d characters", domain.ErrInvalidInput, domain.MinQuestionLength)
	}
	if q.embedder == nil {
		return nil, fmt.Errorf("%w: retrieval requires an embedding provider", domain.ErrEmbeddingUnavailable)
	}
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	queryVec, err := q.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	shards, err := q.library.ActiveShards(ctx, q.retention.Days())
	if err != nil {
		return nil, fmt.Errorf("listing active shards: %w", err)
	}
	if len(shards) == 0 {
		q.log.Debug("no active shards", "tenant", tenantID)
		return nil, nil
	}

	fetchK := topK * overRetrievalFactor
	var candidates []domain.ScoredChunk

	for _, shard := range shards {
		hits, err := q.library.SearchShard(ctx, shard.Date, queryVec, fetchK)
		if err != nil {
			return nil, fmt.Errorf("searching shard %s: %w", shard.Date, err)
		}
		if len(hits) == 0 {
			continue
		}

		ids := make([]int64, len(hits))
		for i, hit := range hits {
			ids[i] = hit.VectorID
		}

		records, err := q.library.LookupChunks(ctx, tenantID, shard.Date, ids)
		if err != nil {
			return nil, fmt.Errorf("resolving hits in shard %s: %w", shard.Date, err)
		}
		if len(records) == 0 {
			continue
		}

		byID := make(map[int64]domain.ChunkRecord, len(records))
		for _, rec := range records {
			byID[rec.VectorID] = rec
		}

		for _, hit := range hits {
			rec, ok := byID[hit.VectorID]
			if !ok {
				// Another tenant's chunk, or metadata lost for this id.
				continue
			}
			candidates = append(candidates, domain.ScoredChunk{
				ChunkRecord: rec,
				Similarity:  similarityFromDistance(hit.Distance),
			})
		}
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	ranked := q.reranker.Rank(candidates)
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	q.log.Debug("retrieval complete",
		"tenant", tenantID, "shards", len(shards), "results", len(ranked))
	return ranked, nil
}

// buildContext renders ranked chunks as numbered source blocks for the
// model. Source numbers match the citation list on the answer.
func buildContext(chunks []domain.ScoredChunk) string {
	blocks := make([]string, len(chunks))
	for i, chunk := range chunks {
		blocks[i] = fmt.Sprintf("[Source %d: %s, Page %d]\n%s",
			i+1, chunk.DocumentName, chunk.PageNumber, chunk.Content)
	}
	return strings.Join(blocks, "\n---\n")
}

// loadPrompt reads a template from the prompt store, falling back to the
// built-in default when the store is absent or the template missing.
func (q *QueryEngine) loadPrompt(name, fallback string) string {
	if q.prompts == nil {
		return fallback
	}
	prompt, err := q.prompts.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		q.log.Debug("using built-in prompt", "name", name)
		return fallback
	}
	return prompt
}

// round3 rounds to three decimals for display.
func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
