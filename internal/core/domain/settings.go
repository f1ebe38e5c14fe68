package domain

import "time"

const unknownDescription = "Unknown"

// Default tuning values. All are overridable through configuration.
const (
	// DefaultRetentionDays is the inclusive retention window: today plus
	// the three preceding shard days stay active.
	DefaultRetentionDays = 3

	// DefaultSweepInterval is how often the periodic retention sweep runs.
	DefaultSweepInterval = 24 * time.Hour

	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 600

	// DefaultChunkOverlap is the character overlap between adjacent chunks.
	DefaultChunkOverlap = 60

	// DefaultTopK is the number of chunks returned to the generator.
	DefaultTopK = 5

	// MinDocumentLength is the smallest ingestible document in characters.
	MinDocumentLength = 50

	// MinQuestionLength is the shortest accepted question in characters.
	MinQuestionLength = 3
)

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RequestsPerSecond caps outbound embedding calls. Zero uses the
	// adapter default.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RetentionSettings holds the retention window configuration.
type RetentionSettings struct {
	// Days is the retention window in shard days.
	Days int

	// SweepInterval is the periodic sweep cadence.
	SweepInterval time.Duration
}

// ChunkingSettings holds the text splitter configuration.
type ChunkingSettings struct {
	// Size is the target chunk length in characters.
	Size int

	// Overlap is the character overlap between adjacent chunks.
	Overlap int
}

// QuerySettings holds retrieval defaults.
type QuerySettings struct {
	// TopK is the default number of chunks retrieved per question.
	TopK int
}

// StorageSettings holds on-disk layout configuration.
type StorageSettings struct {
	// DataDir holds the metadata database and the shard index files.
	// Empty means the per-user default directory.
	DataDir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Retention holds the retention window settings.
	Retention RetentionSettings

	// Chunking holds the text splitter settings.
	Chunking ChunkingSettings

	// Query holds retrieval defaults.
	Query QuerySettings

	// Storage holds on-disk layout settings.
	Storage StorageSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// AI providers are left unconfigured; users set them up via the settings
// wizard or environment variables.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{},
		LLM:       LLMSettings{},
		Retention: RetentionSettings{
			Days:          DefaultRetentionDays,
			SweepInterval: DefaultSweepInterval,
		},
		Chunking: ChunkingSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Query:   QuerySettings{TopK: DefaultTopK},
		Storage: StorageSettings{},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
// The shard store's dimension is fixed at initialisation and must match
// the configured model; a dimension change across calls is unsupported.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
