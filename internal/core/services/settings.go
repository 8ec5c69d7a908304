package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
	"github.com/custodia-labs/vocal/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyCorpusSource       = "corpus.source"
	keyCorpusForce        = "corpus.force_rebuild"
	keyDefaultMaxResults  = "retrieval.default_max_results"
	keyMaxResultsCeiling  = "retrieval.max_results_ceiling"
	keyRejectThreshold    = "retrieval.reject_threshold"
	keyLowThreshold       = "retrieval.low_threshold"
	keyMediumThreshold    = "retrieval.medium_threshold"
	keyQueryRewrite       = "retrieval.query_rewrite"
	keyCacheSize          = "retrieval.cache_size"
	keyChunkThreshold     = "chunking.threshold"
	keyChunkSize          = "chunking.size"
	keyChunkOverlap       = "chunking.overlap"
	keyHistoryWindow      = "history.window"
	keyChartSize          = "chart.size"
	keyChartFormat        = "chart.format"
	keyChartOutputDir     = "chart.output_dir"
	keyChartMaxAge        = "chart.max_age"
	keyEmbedProvider      = "embedding.provider"
	keyEmbedModel         = "embedding.model"
	keyEmbedBaseURL       = "embedding.base_url"
	keyEmbedAPIKey        = "embedding.api_key"
	keyEmbedDimensions    = "embedding.dimensions"
	keyLLMProvider        = "llm.provider"
	keyLLMModel           = "llm.model"
	keyLLMBaseURL         = "llm.base_url"
	keyLLMAPIKey          = "llm.api_key"
	keyIndexBackend       = "index.backend"
	keyIndexDataDir       = "index.data_dir"
	keyQdrantAddr         = "index.qdrant_addr"
	keyQdrantCollection   = "index.qdrant_collection"
	keyPrecedence         = "routing.precedence"
	keyVocabularyFile     = "routing.vocabulary_file"
	keyUpstreamTimeout    = "upstream.timeout"
	keyUpstreamRetries    = "upstream.max_retries"
	keyUpstreamRetryDelay = "upstream.retry_delay"
	keyUpstreamMaxDelay   = "upstream.max_retry_delay"
	keyUpstreamRate       = "upstream.requests_per_second"
)

// defaultOllamaURL is used when a local provider has no base URL.
const defaultOllamaURL = "http://localhost:11434"

// setter applies one textual value to settings.
type setter func(s *domain.AppSettings, value string) error

// setters maps each recognised key to its parser.
var setters = map[string]setter{
	keyCorpusSource: func(s *domain.AppSettings, v string) error { s.Corpus.Source = v; return nil },
	keyCorpusForce:  boolSetter(func(s *domain.AppSettings) *bool { return &s.Corpus.ForceRebuild }),

	keyDefaultMaxResults: intSetter(func(s *domain.AppSettings) *int { return &s.Retrieval.DefaultMaxResults }),
	keyMaxResultsCeiling: intSetter(func(s *domain.AppSettings) *int { return &s.Retrieval.MaxResultsCeiling }),
	keyRejectThreshold:   floatSetter(func(s *domain.AppSettings) *float64 { return &s.Retrieval.Thresholds.Reject }),
	keyLowThreshold:      floatSetter(func(s *domain.AppSettings) *float64 { return &s.Retrieval.Thresholds.Low }),
	keyMediumThreshold:   floatSetter(func(s *domain.AppSettings) *float64 { return &s.Retrieval.Thresholds.Medium }),
	keyQueryRewrite:      boolSetter(func(s *domain.AppSettings) *bool { return &s.Retrieval.QueryRewrite }),
	keyCacheSize:         intSetter(func(s *domain.AppSettings) *int { return &s.Retrieval.CacheSize }),

	keyChunkThreshold: intSetter(func(s *domain.AppSettings) *int { return &s.Chunking.Threshold }),
	keyChunkSize:      intSetter(func(s *domain.AppSettings) *int { return &s.Chunking.Size }),
	keyChunkOverlap:   intSetter(func(s *domain.AppSettings) *int { return &s.Chunking.Overlap }),
	keyHistoryWindow:  intSetter(func(s *domain.AppSettings) *int { return &s.History.Window }),

	keyChartSize:      func(s *domain.AppSettings, v string) error { s.Chart.Size = domain.SizeHint(v); return nil },
	keyChartFormat:    func(s *domain.AppSettings, v string) error { s.Chart.Format = domain.ChartFormat(v); return nil },
	keyChartOutputDir: func(s *domain.AppSettings, v string) error { s.Chart.OutputDir = v; return nil },
	keyChartMaxAge:    durationSetter(func(s *domain.AppSettings) *time.Duration { return &s.Chart.MaxAge }),

	keyEmbedProvider:   func(s *domain.AppSettings, v string) error { s.Embedding.Provider = domain.AIProvider(v); return nil },
	keyEmbedModel:      func(s *domain.AppSettings, v string) error { s.Embedding.Model = v; return nil },
	keyEmbedBaseURL:    func(s *domain.AppSettings, v string) error { s.Embedding.BaseURL = v; return nil },
	keyEmbedAPIKey:     func(s *domain.AppSettings, v string) error { s.Embedding.APIKey = v; return nil },
	keyEmbedDimensions: intSetter(func(s *domain.AppSettings) *int { return &s.Embedding.Dimensions }),

	keyLLMProvider: func(s *domain.AppSettings, v string) error { s.LLM.Provider = domain.AIProvider(v); return nil },
	keyLLMModel:    func(s *domain.AppSettings, v string) error { s.LLM.Model = v; return nil },
	keyLLMBaseURL:  func(s *domain.AppSettings, v string) error { s.LLM.BaseURL = v; return nil },
	keyLLMAPIKey:   func(s *domain.AppSettings, v string) error { s.LLM.APIKey = v; return nil },

	keyIndexBackend:     func(s *domain.AppSettings, v string) error { s.Index.Backend = domain.IndexBackend(v); return nil },
	keyIndexDataDir:     func(s *domain.AppSettings, v string) error { s.Index.DataDir = v; return nil },
	keyQdrantAddr:       func(s *domain.AppSettings, v string) error { s.Index.QdrantAddr = v; return nil },
	keyQdrantCollection: func(s *domain.AppSettings, v string) error { s.Index.QdrantCollection = v; return nil },

	keyPrecedence: func(s *domain.AppSettings, v string) error {
		s.Routing.Precedence = parsePrecedence(strings.Split(v, ","))
		return nil
	},
	keyVocabularyFile: func(s *domain.AppSettings, v string) error { s.Routing.VocabularyFile = v; return nil },

	keyUpstreamTimeout:    durationSetter(func(s *domain.AppSettings) *time.Duration { return &s.Upstream.Timeout }),
	keyUpstreamRetries:    intSetter(func(s *domain.AppSettings) *int { return &s.Upstream.MaxRetries }),
	keyUpstreamRetryDelay: durationSetter(func(s *domain.AppSettings) *time.Duration { return &s.Upstream.RetryDelay }),
	keyUpstreamMaxDelay:   durationSetter(func(s *domain.AppSettings) *time.Duration { return &s.Upstream.MaxRetryDelay }),
	keyUpstreamRate:       floatSetter(func(s *domain.AppSettings) *float64 { return &s.Upstream.RequestsPerSecond }),
}

func intSetter(field func(*domain.AppSettings) *int) setter {
	return func(s *domain.AppSettings, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", domain.ErrInvalidInput, v)
		}
		*field(s) = n
		return nil
	}
}

func floatSetter(field func(*domain.AppSettings) *float64) setter {
	return func(s *domain.AppSettings, v string) error {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", domain.ErrInvalidInput, v)
		}
		*field(s) = f
		return nil
	}
}

func boolSetter(field func(*domain.AppSettings) *bool) setter {
	return func(s *domain.AppSettings, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %q is not a boolean", domain.ErrInvalidInput, v)
		}
		*field(s) = b
		return nil
	}
}

func durationSetter(field func(*domain.AppSettings) *time.Duration) setter {
	return func(s *domain.AppSettings, v string) error {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %q is not a duration", domain.ErrInvalidInput, v)
		}
		*field(s) = d
		return nil
	}
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
// Missing or unrecognised values fall back to the defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Corpus: domain.CorpusSettings{
			Source:       s.getString(keyCorpusSource, d.Corpus.Source),
			ForceRebuild: s.getBool(keyCorpusForce, d.Corpus.ForceRebuild),
		},
		Retrieval: domain.RetrievalSettings{
			DefaultMaxResults: s.getInt(keyDefaultMaxResults, d.Retrieval.DefaultMaxResults),
			MaxResultsCeiling: s.getInt(keyMaxResultsCeiling, d.Retrieval.MaxResultsCeiling),
			Thresholds: domain.Thresholds{
				Reject: s.getFloat(keyRejectThreshold, d.Retrieval.Thresholds.Reject),
				Low:    s.getFloat(keyLowThreshold, d.Retrieval.Thresholds.Low),
				Medium: s.getFloat(keyMediumThreshold, d.Retrieval.Thresholds.Medium),
			},
			QueryRewrite: s.getBool(keyQueryRewrite, d.Retrieval.QueryRewrite),
			CacheSize:    s.getInt(keyCacheSize, d.Retrieval.CacheSize),
		},
		Chunking: domain.ChunkingSettings{
			Threshold: s.getInt(keyChunkThreshold, d.Chunking.Threshold),
			Size:      s.getInt(keyChunkSize, d.Chunking.Size),
			Overlap:   s.getInt(keyChunkOverlap, d.Chunking.Overlap),
		},
		History: domain.HistorySettings{
			Window: s.getInt(keyHistoryWindow, d.History.Window),
		},
		Chart: domain.ChartSettings{
			Size:      getEnum(s, keyChartSize, d.Chart.Size, domain.SizeHint.IsValid),
			Format:    getEnum(s, keyChartFormat, d.Chart.Format, domain.ChartFormat.IsValid),
			OutputDir: s.getString(keyChartOutputDir, d.Chart.OutputDir),
			MaxAge:    s.getDuration(keyChartMaxAge, d.Chart.MaxAge),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   getEnum(s, keyEmbedProvider, d.Embedding.Provider, domain.AIProvider.IsValid),
			Model:      s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.getInt(keyEmbedDimensions, d.Embedding.Dimensions),
		},
		LLM: domain.LLMSettings{
			Provider: getEnum(s, keyLLMProvider, d.LLM.Provider, domain.AIProvider.IsValid),
			Model:    s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Index: domain.IndexSettings{
			Backend:          getEnum(s, keyIndexBackend, d.Index.Backend, domain.IndexBackend.IsValid),
			DataDir:          s.getString(keyIndexDataDir, d.Index.DataDir),
			QdrantAddr:       s.getString(keyQdrantAddr, d.Index.QdrantAddr),
			QdrantCollection: s.getString(keyQdrantCollection, d.Index.QdrantCollection),
		},
		Routing: domain.RoutingSettings{
			Precedence:     s.getPrecedence(d.Routing.Precedence),
			VocabularyFile: s.getString(keyVocabularyFile, d.Routing.VocabularyFile),
		},
		Upstream: domain.UpstreamSettings{
			Timeout:           s.getDuration(keyUpstreamTimeout, d.Upstream.Timeout),
			MaxRetries:        s.getInt(keyUpstreamRetries, d.Upstream.MaxRetries),
			RetryDelay:        s.getDuration(keyUpstreamRetryDelay, d.Upstream.RetryDelay),
			MaxRetryDelay:     s.getDuration(keyUpstreamMaxDelay, d.Upstream.MaxRetryDelay),
			RequestsPerSecond: s.getFloat(keyUpstreamRate, d.Upstream.RequestsPerSecond),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyCorpusSource, settings.Corpus.Source},
		{keyCorpusForce, settings.Corpus.ForceRebuild},
		{keyDefaultMaxResults, settings.Retrieval.DefaultMaxResults},
		{keyMaxResultsCeiling, settings.Retrieval.MaxResultsCeiling},
		{keyRejectThreshold, settings.Retrieval.Thresholds.Reject},
		{keyLowThreshold, settings.Retrieval.Thresholds.Low},
		{keyMediumThreshold, settings.Retrieval.Thresholds.Medium},
		{keyQueryRewrite, settings.Retrieval.QueryRewrite},
		{keyCacheSize, settings.Retrieval.CacheSize},
		{keyChunkThreshold, settings.Chunking.Threshold},
		{keyChunkSize, settings.Chunking.Size},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyHistoryWindow, settings.History.Window},
		{keyChartSize, string(settings.Chart.Size)},
		{keyChartFormat, string(settings.Chart.Format)},
		{keyChartOutputDir, settings.Chart.OutputDir},
		{keyChartMaxAge, settings.Chart.MaxAge.String()},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDimensions, settings.Embedding.Dimensions},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyIndexBackend, settings.Index.Backend.String()},
		{keyIndexDataDir, settings.Index.DataDir},
		{keyQdrantAddr, settings.Index.QdrantAddr},
		{keyQdrantCollection, settings.Index.QdrantCollection},
		{keyPrecedence, intentStrings(settings.Routing.Precedence)},
		{keyVocabularyFile, settings.Routing.VocabularyFile},
		{keyUpstreamTimeout, settings.Upstream.Timeout.String()},
		{keyUpstreamRetries, settings.Upstream.MaxRetries},
		{keyUpstreamRetryDelay, settings.Upstream.RetryDelay.String()},
		{keyUpstreamMaxDelay, settings.Upstream.MaxRetryDelay.String()},
		{keyUpstreamRate, settings.Upstream.RequestsPerSecond},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// API keys are written only when set so an environment-provided key is
	// never copied into the config file.
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	return nil
}

// Set updates one setting by key. The whole configuration is validated
// with the new value before anything is persisted.
func (s *SettingsService) Set(key, value string) error {
	apply, ok := setters[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := apply(settings, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if err := validateSettings(settings); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	return s.Save(settings)
}

// Keys lists every recognised setting key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	switch {
	case provider == domain.AIProviderOllama:
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaURL
		}
	default:
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.Embedding.Dimensions = d
	}

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() || provider == domain.AIProviderLocal {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaURL
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks the current settings for consistency.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return validateSettings(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

func validateSettings(s *domain.AppSettings) error {
	r := s.Retrieval
	if r.MaxResultsCeiling < 1 {
		return fmt.Errorf("%w: max results ceiling must be at least 1", domain.ErrInvalidInput)
	}
	if r.DefaultMaxResults < 1 || r.DefaultMaxResults > r.MaxResultsCeiling {
		return fmt.Errorf("%w: default max results must be within [1, %d]", domain.ErrInvalidInput, r.MaxResultsCeiling)
	}
	if err := r.Thresholds.Validate(); err != nil {
		return err
	}
	if r.CacheSize < 0 {
		return fmt.Errorf("%w: cache size must not be negative", domain.ErrInvalidInput)
	}

	c := s.Chunking
	if c.Threshold < 1 || c.Size < 1 || c.Overlap < 0 || c.Overlap >= c.Size {
		return fmt.Errorf("%w: chunking needs threshold, size >= 1 and 0 <= overlap < size", domain.ErrInvalidInput)
	}

	if s.History.Window < 0 {
		return fmt.Errorf("%w: history window must not be negative", domain.ErrInvalidInput)
	}
	if !s.Chart.Size.IsValid() {
		return fmt.Errorf("%w: chart size %q", domain.ErrInvalidInput, s.Chart.Size)
	}
	if !s.Chart.Format.IsValid() {
		return fmt.Errorf("%w: chart format %q", domain.ErrInvalidInput, s.Chart.Format)
	}
	if s.Chart.MaxAge < 0 {
		return fmt.Errorf("%w: chart max age must not be negative", domain.ErrInvalidInput)
	}
	if !s.Index.Backend.IsValid() {
		return fmt.Errorf("%w: index backend %q", domain.ErrInvalidInput, s.Index.Backend)
	}
	if !s.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured", domain.ErrInvalidInput, s.Embedding.Provider)
	}
	if s.LLM.Provider != "" && !s.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: LLM provider %q", domain.ErrInvalidInput, s.LLM.Provider)
	}
	if len(s.Routing.Precedence) != len(domain.DefaultPrecedence()) {
		return fmt.Errorf("%w: routing precedence must name %s exactly once",
			domain.ErrInvalidInput, strings.Join(intentStrings(domain.DefaultPrecedence()), ", "))
	}
	if s.Upstream.Timeout <= 0 || s.Upstream.MaxRetries < 0 || s.Upstream.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: upstream timeout must be positive and retries, rate not negative", domain.ErrInvalidInput)
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getPrecedence(defaultVal []domain.Intent) []domain.Intent {
	raw := s.configStore.GetStringSlice(keyPrecedence)
	if len(raw) == 0 {
		if str := s.configStore.GetString(keyPrecedence); str != "" {
			raw = strings.Split(str, ",")
		}
	}
	if len(raw) == 0 {
		return defaultVal
	}
	if p := parsePrecedence(raw); len(p) == len(defaultVal) {
		return p
	}
	return defaultVal
}

func getEnum[T ~string](s *SettingsService, key string, defaultVal T, valid func(T) bool) T {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	v := T(val)
	if !valid(v) {
		return defaultVal
	}
	return v
}

// parsePrecedence keeps recognised intents in order, dropping repeats.
func parsePrecedence(raw []string) []domain.Intent {
	seen := make(map[domain.Intent]bool)
	var out []domain.Intent
	for _, r := range raw {
		intent := domain.Intent(strings.ToLower(strings.TrimSpace(r)))
		if !intent.IsValid() || seen[intent] {
			continue
		}
		seen[intent] = true
		out = append(out, intent)
	}
	return out
}

func intentStrings(intents []domain.Intent) []string {
	out := make([]string, len(intents))
	for i, intent := range intents {
		out[i] = string(intent)
	}
	return out
}
