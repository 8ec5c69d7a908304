package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

func writeVocab(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vocabulary.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestVocabularyStore_Load(t *testing.T) {
	path := writeVocab(t, `
visualization_terms: [Schaubild, " Chart "]
country_names:
  Österreich: AT
sentiment_terms:
  Verärgert: negative
`)

	v, err := NewVocabularyStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"schaubild", "chart"}, v.VisualizationTerms)
	assert.Equal(t, map[string]string{"österreich": "AT"}, v.CountryNames)
	assert.Equal(t, domain.SentimentLabel("negative"), v.SentimentTerms["verärgert"])
	assert.Empty(t, v.ContentTerms)

	merged := domain.DefaultVocabulary().Merge(v)
	assert.Equal(t, []string{"schaubild", "chart"}, merged.VisualizationTerms)
	assert.NotEmpty(t, merged.ContentTerms)
}

func TestVocabularyStore_MissingOrEmpty(t *testing.T) {
	v, err := NewVocabularyStore("").Load()
	require.NoError(t, err)
	assert.Empty(t, v.StatisticsTerms)

	v, err = NewVocabularyStore(filepath.Join(t.TempDir(), "none.yaml")).Load()
	require.NoError(t, err)
	assert.Empty(t, v.StatisticsTerms)

	v, err = NewVocabularyStore(writeVocab(t, "")).Load()
	require.NoError(t, err)
	assert.Empty(t, v.StatisticsTerms)
}

func TestVocabularyStore_RejectsUnknownTable(t *testing.T) {
	_, err := NewVocabularyStore(writeVocab(t, "visualisation_terms: [x]\n")).Load()
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
