package file

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
)

// Ensure VocabularyStore implements the interface.
var _ driven.VocabularyStore = (*VocabularyStore)(nil)

// VocabularyStore reads keyword table overrides from a YAML file.
type VocabularyStore struct {
	path string
}

// NewVocabularyStore creates a store for path. An empty path loads nothing.
func NewVocabularyStore(path string) *VocabularyStore {
	return &VocabularyStore{path: path}
}

// Load parses the file. A missing file yields empty tables. Unknown
// fields are rejected so typos in table names surface.
func (s *VocabularyStore) Load() (domain.Vocabulary, error) {
	var v domain.Vocabulary
	if s.path == "" {
		return v, nil
	}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return v, fmt.Errorf("open vocabulary: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&v); err != nil && !errors.Is(err, io.EOF) {
		return domain.Vocabulary{}, fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidInput, s.path, err)
	}
	return lower(v), nil
}

func lower(v domain.Vocabulary) domain.Vocabulary {
	v.VisualizationTerms = lowerAll(v.VisualizationTerms)
	v.ContentTerms = lowerAll(v.ContentTerms)
	v.StatisticsTerms = lowerAll(v.StatisticsTerms)
	v.TimeTerms = lowerAll(v.TimeTerms)
	v.SentimentTerms = lowerKeys(v.SentimentTerms)
	v.CategoryTerms = lowerKeys(v.CategoryTerms)
	v.CountryNames = lowerKeys(v.CountryNames)
	v.TopicAliases = lowerKeys(v.TopicAliases)
	v.ChartTypeTerms = lowerKeys(v.ChartTypeTerms)
	v.ChartSubjectTerms = lowerKeys(v.ChartSubjectTerms)
	return v
}

func lowerAll(terms []string) []string {
	for i, t := range terms {
		terms[i] = strings.ToLower(strings.TrimSpace(t))
	}
	return terms
}

func lowerKeys[V any](m map[string]V) map[string]V {
	if m == nil {
		return nil
	}
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}
