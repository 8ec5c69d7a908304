package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderLocal is the built-in hashing embedder. No network access.
	AIProviderLocal AIProvider = "local"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderLocal, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
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
	return p == AIProviderOllama || p == AIProviderLocal
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderLocal:
		return "Local (built-in hashing embedder)"
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

// IndexBackend selects the embedding index implementation.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendMemory keeps entries in process memory. Rebuilt every start.
	IndexBackendMemory IndexBackend = "memory"

	// IndexBackendSQLite persists entries in a local database file.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendQdrant stores entries in a Qdrant collection.
	IndexBackendQdrant IndexBackend = "qdrant"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendMemory, IndexBackendSQLite, IndexBackendQdrant:
		return true
	default:
		return false
	}
}

// IsPersistent reports whether entries survive a restart.
func (b IndexBackend) IsPersistent() bool {
	return b == IndexBackendSQLite || b == IndexBackendQdrant
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b IndexBackend) Description() string {
	switch b {
	case IndexBackendMemory:
		return "Memory (rebuilt on every start)"
	case IndexBackendSQLite:
		return "SQLite (persistent, local file)"
	case IndexBackendQdrant:
		return "Qdrant (persistent, remote)"
	default:
		return unknownDescription
	}
}

// ChartFormat selects the chart renderer output.
type ChartFormat string

// Available chart formats.
const (
	ChartFormatSVG  ChartFormat = "svg"
	ChartFormatXLSX ChartFormat = "xlsx"
)

// IsValid returns true if the format is recognised.
func (f ChartFormat) IsValid() bool {
	return f == ChartFormatSVG || f == ChartFormatXLSX
}

// CorpusSettings locates the feedback corpus.
type CorpusSettings struct {
	// Source is a CSV or XLSX file path.
	Source string

	// ForceRebuild discards a persisted index on start.
	ForceRebuild bool
}

// RetrievalSettings tunes the retrieval engine.
type RetrievalSettings struct {
	DefaultMaxResults int
	MaxResultsCeiling int
	Thresholds        Thresholds

	// QueryRewrite asks the LLM to rewrite queries before embedding.
	// Ignored when no LLM is configured.
	QueryRewrite bool

	// CacheSize bounds the query-embedding cache. Zero disables it.
	CacheSize int
}

// ChunkingSettings tunes the chunker.
type ChunkingSettings struct {
	Threshold int
	Size      int
	Overlap   int
}

// HistorySettings bounds the conversation history replayed per turn.
type HistorySettings struct {
	Window int
}

// ChartSettings configures the chart renderer.
type ChartSettings struct {
	Size      SizeHint
	Format    ChartFormat
	OutputDir string

	// MaxAge is how long a rendered chart file is kept. Zero keeps files.
	MaxAge time.Duration
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

	// Dimensions is used by the local embedder.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
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
	if !l.Provider.IsValid() || l.Provider == AIProviderLocal {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// IndexSettings selects and locates the embedding index.
type IndexSettings struct {
	Backend IndexBackend

	// DataDir holds the SQLite database.
	DataDir string

	// QdrantAddr is the gRPC host:port of the Qdrant server.
	QdrantAddr string

	// QdrantCollection is the collection name.
	QdrantCollection string
}

// RoutingSettings configures the orchestrator classifier.
type RoutingSettings struct {
	// Precedence orders intents for multi-intent turns, highest first.
	Precedence []Intent

	// VocabularyFile optionally overrides the built-in keyword tables.
	VocabularyFile string
}

// UpstreamSettings bounds every embedding, generation and rendering call.
type UpstreamSettings struct {
	Timeout           time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	MaxRetryDelay     time.Duration
	RequestsPerSecond float64
}

// AppSettings holds all application settings.
type AppSettings struct {
	Corpus    CorpusSettings
	Retrieval RetrievalSettings
	Chunking  ChunkingSettings
	History   HistorySettings
	Chart     ChartSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Index     IndexSettings
	Routing   RoutingSettings
	Upstream  UpstreamSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The local embedder is used until a cloud provider is configured.
// LLM is left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Retrieval: RetrievalSettings{
			DefaultMaxResults: DefaultMaxResults,
			MaxResultsCeiling: DefaultMaxResultsCeiling,
			Thresholds:        DefaultThresholds(),
			CacheSize:         256,
		},
		Chunking: ChunkingSettings{
			Threshold: 4000,
			Size:      3000,
			Overlap:   600,
		},
		History: HistorySettings{Window: 5},
		Chart: ChartSettings{
			Size:   SizeMedium,
			Format: ChartFormatSVG,
			MaxAge: 24 * time.Hour,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderLocal,
			Dimensions: 256,
		},
		LLM: LLMSettings{},
		Index: IndexSettings{
			Backend:          IndexBackendMemory,
			QdrantAddr:       "localhost:6334",
			QdrantCollection: "feedback",
		},
		Routing: RoutingSettings{
			Precedence: DefaultPrecedence(),
		},
		Upstream: UpstreamSettings{
			Timeout:           30 * time.Second,
			MaxRetries:        3,
			RetryDelay:        time.Second,
			MaxRetryDelay:     10 * time.Second,
			RequestsPerSecond: 5,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderLocal,
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

// AllIndexBackends returns every index backend.
func AllIndexBackends() []IndexBackend {
	return []IndexBackend{IndexBackendMemory, IndexBackendSQLite, IndexBackendQdrant}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "hashing-256",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-haiku-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
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
