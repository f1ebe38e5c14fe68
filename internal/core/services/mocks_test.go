package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/docquery/internal/core/domain"
	"github.com/custodia-labs/docquery/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockVectorStore implements driven.VectorShardStore in memory.
type mockVectorStore struct {
	dim        int
	shards     map[string][][]float32
	persists   map[string]int
	removed    []string
	addErr     error
	searchErr  error
	persistErr error
	removeErr  error
}

func newMockVectorStore(dim int) *mockVectorStore {
	return &mockVectorStore{
		dim:      dim,
		shards:   make(map[string][][]float32),
		persists: make(map[string]int),
	}
}

func (m *mockVectorStore) Add(_ context.Context, shardDate string, vectors [][]float32) (int64, error) {
	if m.addErr != nil {
		return 0, m.addErr
	}
	start := int64(len(m.shards[shardDate]))
	m.shards[shardDate] = append(m.shards[shardDate], vectors...)
	return start, nil
}

func (m *mockVectorStore) Search(_ context.Context, shardDate string, query []float32, k int) ([]domain.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	vectors := m.shards[shardDate]
	hits := make([]domain.VectorHit, 0, len(vectors))
	for id, vec := range vectors {
		var dist float32
		for i := range vec {
			d := vec[i] - query[i]
			dist += d * d
		}
		hits = append(hits, domain.VectorHit{VectorID: int64(id), Distance: dist})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].VectorID < hits[j].VectorID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *mockVectorStore) Persist(_ context.Context, shardDate string) error {
	if m.persistErr != nil {
		return m.persistErr
	}
	m.persists[shardDate]++
	return nil
}

func (m *mockVectorStore) Count(_ context.Context, shardDate string) (int64, error) {
	return int64(len(m.shards[shardDate])), nil
}

func (m *mockVectorStore) Remove(_ context.Context, shardDate string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.shards, shardDate)
	m.removed = append(m.removed, shardDate)
	return nil
}

func (m *mockVectorStore) IndexPath(shardDate string) string {
	return filepath.Join("/data", "index_"+shardDate+".bin")
}

func (m *mockVectorStore) Dimensions() int { return m.dim }

func (m *mockVectorStore) Close() error { return nil }

// mockMetadataStore implements driven.MetadataStore in memory.
type mockMetadataStore struct {
	records []domain.ChunkRecord
	shards  map[string]domain.Shard
	nextRow int64

	insertErr   error
	lookupErr   error
	registerErr error
	listErr     error
	deleteErr   error
}

func newMockMetadataStore() *mockMetadataStore {
	return &mockMetadataStore{shards: make(map[string]domain.Shard)}
}

func (m *mockMetadataStore) InsertChunks(_ context.Context, records []domain.ChunkRecord) ([]int64, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		m.nextRow++
		rec.RowID = m.nextRow
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = time.Now().UTC()
		}
		m.records = append(m.records, rec)
		ids = append(ids, rec.RowID)
	}
	return ids, nil
}

func (m *mockMetadataStore) LookupChunks(_ context.Context, tenantID, shardDate string, vectorIDs []int64) ([]domain.ChunkRecord, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	wanted := make(map[int64]bool, len(vectorIDs))
	for _, id := range vectorIDs {
		wanted[id] = true
	}
	var out []domain.ChunkRecord
	for _, rec := range m.records {
		if rec.TenantID == tenantID && rec.ShardDate == shardDate && wanted[rec.VectorID] {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VectorID < out[j].VectorID })
	return out, nil
}

func (m *mockMetadataStore) RegisterShard(_ context.Context, shard domain.Shard) error {
	if m.registerErr != nil {
		return m.registerErr
	}
	if existing, ok := m.shards[shard.Date]; ok {
		shard.CreatedAt = existing.CreatedAt
	} else if shard.CreatedAt.IsZero() {
		shard.CreatedAt = time.Now().UTC()
	}
	m.shards[shard.Date] = shard
	return nil
}

func (m *mockMetadataStore) GetShard(_ context.Context, date string) (*domain.Shard, error) {
	shard, ok := m.shards[date]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &shard, nil
}

func (m *mockMetadataStore) ListActiveShards(_ context.Context, cutoff string) ([]domain.Shard, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.Shard
	for date, shard := range m.shards {
		if date >= cutoff {
			out = append(out, shard)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (m *mockMetadataStore) DeleteStale(_ context.Context, cutoff string) ([]domain.Shard, int64, error) {
	if m.deleteErr != nil {
		return nil, 0, m.deleteErr
	}
	var stale []domain.Shard
	for date, shard := range m.shards {
		if date < cutoff {
			stale = append(stale, shard)
			delete(m.shards, date)
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].Date < stale[j].Date })

	var kept []domain.ChunkRecord
	var deleted int64
	for _, rec := range m.records {
		if rec.ShardDate < cutoff {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	m.records = kept
	return stale, deleted, nil
}

func (m *mockMetadataStore) CountForTenant(_ context.Context, tenantID string) (int64, error) {
	var count int64
	for _, rec := range m.records {
		if rec.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

// mockEmbedder implements driven.EmbeddingService with deterministic
// vectors. vecFor overrides the per-text vector; batchHook overrides the
// whole batch response.
type mockEmbedder struct {
	dim       int
	vecFor    func(text string) []float32
	batchHook func(texts []string) ([][]float32, error)
	embedErr  error
	batchErr  error

	batchCalls int
	lastBatch  []string
}

func newMockEmbedder(dim int) *mockEmbedder {
	return &mockEmbedder{dim: dim}
}

func (m *mockEmbedder) vector(text string) []float32 {
	if m.vecFor != nil {
		return m.vecFor(text)
	}
	vec := make([]float32, m.dim)
	vec[0] = float32(len(text) % 7)
	return vec
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchCalls++
	m.lastBatch = texts
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	if m.batchHook != nil {
		return m.batchHook(texts)
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = m.vector(text)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dim }

func (m *mockEmbedder) ModelName() string { return "mock-embed" }

func (m *mockEmbedder) Ping(_ context.Context) error { return nil }

func (m *mockEmbedder) Close() error { return nil }

// mockLLM implements driven.LLMService.
type mockLLM struct {
	response string
	chatErr  error

	lastMessages []driven.ChatMessage
	lastOptions  driven.ChatOptions
	chatCalls    int
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.response, nil
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.chatCalls++
	m.lastMessages = messages
	m.lastOptions = opts
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }

func (m *mockLLM) Ping(_ context.Context) error { return nil }

func (m *mockLLM) Close() error { return nil }

// mockPromptStore implements driven.PromptStore.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	prompt, ok := m.prompts[name]
	if !ok {
		return "", fmt.Errorf("prompt %q not found", name)
	}
	return prompt, nil
}

func (m *mockPromptStore) Reload() {}

// mockSweepHistory implements driven.SweepHistoryStore. The mutex keeps
// it safe under the retention loop's background sweeps.
type mockSweepHistory struct {
	mu        sync.Mutex
	recorded  []domain.SweepResult
	pruneKeep int
	recordErr error
}

func (m *mockSweepHistory) RecordSweep(_ context.Context, result *domain.SweepResult) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	if result == nil {
		return domain.ErrInvalidInput
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded = append(m.recorded, *result)
	return nil
}

func (m *mockSweepHistory) SweepHistory(_ context.Context, limit int) ([]domain.SweepResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.SweepResult, len(m.recorded))
	copy(out, m.recorded)
	// Most recent first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockSweepHistory) PruneSweepHistory(_ context.Context, keep int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneKeep = keep
	if len(m.recorded) > keep {
		m.recorded = m.recorded[len(m.recorded)-keep:]
	}
	return nil
}

// fixedRetention implements the retention policy with a constant window.
type fixedRetention int

func (f fixedRetention) Days() int { return int(f) }

// fixedClock pins a library to a calendar instant.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var errBoom = errors.New("boom")
