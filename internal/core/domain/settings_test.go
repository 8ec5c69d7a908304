package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAIProvider_IsValid tests all valid and invalid providers
func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		expected bool
	}{
		{"local is valid", AIProviderLocal, true},
		{"ollama is valid", AIProviderOllama, true},
		{"openai is valid", AIProviderOpenAI, true},
		{"anthropic is valid", AIProviderAnthropic, true},
		{"empty is invalid", AIProvider(""), false},
		{"unknown is invalid", AIProvider("cohere"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

// TestAIProvider_Properties tests API key and locality flags
func TestAIProvider_Properties(t *testing.T) {
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.False(t, AIProviderLocal.RequiresAPIKey())

	assert.True(t, AIProviderLocal.IsLocal())
	assert.True(t, AIProviderOllama.IsLocal())
	assert.False(t, AIProviderOpenAI.IsLocal())

	assert.Equal(t, unknownDescription, AIProvider("x").Description())
}

// TestEmbeddingSettings_IsConfigured tests embedding configuration checks
func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{"local needs nothing", EmbeddingSettings{Provider: AIProviderLocal}, true},
		{"ollama needs no key", EmbeddingSettings{Provider: AIProviderOllama}, true},
		{"openai without key", EmbeddingSettings{Provider: AIProviderOpenAI}, false},
		{"openai with key", EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk"}, true},
		{"anthropic has no embeddings", EmbeddingSettings{Provider: AIProviderAnthropic, APIKey: "k"}, false},
		{"empty", EmbeddingSettings{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

// TestLLMSettings_IsConfigured tests LLM configuration checks
func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.False(t, LLMSettings{}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderLocal}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderAnthropic}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderAnthropic, APIKey: "k"}.IsConfigured())
}

// TestIndexBackend tests backend validity and persistence
func TestIndexBackend(t *testing.T) {
	for _, b := range AllIndexBackends() {
		assert.True(t, b.IsValid(), b.String())
		assert.NotEqual(t, unknownDescription, b.Description())
	}
	assert.False(t, IndexBackendMemory.IsPersistent())
	assert.True(t, IndexBackendSQLite.IsPersistent())
	assert.True(t, IndexBackendQdrant.IsPersistent())
	assert.False(t, IndexBackend("hnsw").IsValid())
}

// TestDefaultAppSettings tests the defaults
func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, 15, s.Retrieval.DefaultMaxResults)
	assert.Equal(t, 50, s.Retrieval.MaxResultsCeiling)
	require.NoError(t, s.Retrieval.Thresholds.Validate())
	assert.Equal(t, 4000, s.Chunking.Threshold)
	assert.Equal(t, 3000, s.Chunking.Size)
	assert.Equal(t, 600, s.Chunking.Overlap)
	assert.Equal(t, 5, s.History.Window)
	assert.Equal(t, SizeMedium, s.Chart.Size)
	assert.Equal(t, IndexBackendMemory, s.Index.Backend)
	assert.Equal(t, DefaultPrecedence(), s.Routing.Precedence)
	assert.True(t, s.Embedding.IsConfigured())
	assert.False(t, s.LLM.IsConfigured())
}

// TestVocabulary_Merge tests that non-empty override tables replace defaults
func TestVocabulary_Merge(t *testing.T) {
	base := DefaultVocabulary()
	merged := base.Merge(Vocabulary{ContentTerms: []string{"zeig mir"}})

	assert.Equal(t, []string{"zeig mir"}, merged.ContentTerms)
	assert.Equal(t, base.VisualizationTerms, merged.VisualizationTerms)
	assert.Equal(t, base.CountryNames, merged.CountryNames)
}
