// Package ai builds the embedding, generation and index adapters from settings.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/vocal/internal/adapters/driven/embedding/cache"
	localembed "github.com/custodia-labs/vocal/internal/adapters/driven/embedding/local"
	ollamaembed "github.com/custodia-labs/vocal/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/vocal/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/vocal/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/vocal/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/vocal/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/vocal/internal/adapters/driven/resilience"
	"github.com/custodia-labs/vocal/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/vocal/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/vocal/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
	"github.com/custodia-labs/vocal/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult holds the adapters built by Init.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService // nil when no LLM is configured
	VectorIndex      driven.VectorIndex
	Warnings         []string // non-fatal issues that caused a fallback
	FellBack         bool     // true if the local embedder replaced the configured one
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.VectorIndex != nil {
		r.VectorIndex.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

func (r *InitResult) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Warn("%s", msg)
	r.Warnings = append(r.Warnings, msg)
}

// Init builds every adapter the services need. An unreachable embedding
// provider falls back to the local embedder and an unreachable LLM is
// dropped; both are reported as warnings. Index construction errors are fatal.
func Init(ctx context.Context, settings domain.AppSettings, prompts driven.PromptStore) (*InitResult, error) {
	result := &InitResult{}
	policy := resilience.PolicyFrom(settings.Upstream)
	rps := settings.Upstream.RequestsPerSecond

	embedder, err := CreateAndValidateEmbeddingService(ctx, &settings.Embedding, rps)
	if err != nil || embedder == nil {
		if err != nil {
			result.warn("embedding provider %s unavailable, using local embedder: %v", settings.Embedding.Provider, err)
		}
		result.FellBack = settings.Embedding.Provider != domain.AIProviderLocal
		embedder = localembed.NewEmbeddingService(settings.Embedding.Dimensions)
	}
	result.EmbeddingService = cache.Wrap(
		resilience.WrapEmbedder(embedder, policy),
		settings.Retrieval.CacheSize,
		cache.DefaultTTL,
	)

	llm, err := CreateAndValidateLLMService(ctx, &settings.LLM, rps)
	if err != nil {
		result.warn("LLM unavailable, queries are embedded as typed: %v", err)
	}
	if llm != nil {
		if aware, ok := llm.(driven.PromptStoreAware); ok && prompts != nil {
			aware.SetPromptStore(prompts)
		}
		result.LLMService = resilience.WrapLLM(llm, policy)
	}

	index, err := CreateVectorIndex(ctx, &settings.Index, embedder.Dimensions())
	if err != nil {
		result.Close()
		return nil, err
	}
	result.VectorIndex = index

	logger.Info("AI services: embedding=%s llm=%s index=%s",
		embedder.ModelName(), modelName(result.LLMService), settings.Index.Backend)
	return result, nil
}

func modelName(llm driven.LLMService) string {
	if llm == nil {
		return "none"
	}
	return llm.ModelName()
}

// CreateVectorIndex opens the configured index backend.
func CreateVectorIndex(ctx context.Context, settings *domain.IndexSettings, dimensions int) (driven.VectorIndex, error) {
	switch settings.Backend {
	case domain.IndexBackendMemory, "":
		return memory.NewVectorIndex(), nil
	case domain.IndexBackendSQLite:
		store, err := sqlite.NewStore(settings.DataDir)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
		}
		return store, nil
	case domain.IndexBackendQdrant:
		idx, err := qdrant.New(ctx, settings.QdrantAddr, settings.QdrantCollection, dimensions)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("%w: unsupported index backend %q", domain.ErrInvalidInput, settings.Backend)
	}
}

// CreateAndValidateEmbeddingService creates an embedding service and pings it.
// Returns nil when the provider is not configured.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings, rps float64) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings, rps)
	if err != nil || svc == nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and pings it.
// Returns nil when the provider is not configured.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings, rps float64) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings, rps)
	if err != nil || svc == nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable: %w", domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// ValidateEmbeddingConfig creates a service for settings and pings it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings != nil && settings.Provider.IsValid() && !settings.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %s is missing configuration", domain.ErrInvalidInput, settings.Provider)
	}
	svc, err := CreateAndValidateEmbeddingService(context.Background(), settings, 0)
	if svc != nil {
		svc.Close()
	}
	return err
}

// ValidateLLMConfig creates a service for settings and pings it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings != nil && settings.Provider.IsValid() && settings.Provider != domain.AIProviderLocal && !settings.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %s is missing configuration", domain.ErrInvalidInput, settings.Provider)
	}
	svc, err := CreateAndValidateLLMService(context.Background(), settings, 0)
	if svc != nil {
		svc.Close()
	}
	return err
}

// CreateEmbeddingService creates the embedding service for settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings, rps float64) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderLocal:
		return localembed.NewEmbeddingService(settings.Dimensions), nil

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			RequestsPerSecond: rps,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:            settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			RequestsPerSecond: rps,
		})

	default:
		return nil, fmt.Errorf("%w: %s does not support embeddings", domain.ErrInvalidInput, settings.Provider)
	}
}

// CreateLLMService creates the LLM service for settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings, rps float64) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			RequestsPerSecond: rps,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:            settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			RequestsPerSecond: rps,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:            settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			RequestsPerSecond: rps,
		})

	default:
		return nil, errors.New("unsupported LLM provider: " + settings.Provider.String())
	}
}
