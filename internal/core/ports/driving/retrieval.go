package driving

import (
	"context"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

// RetrievalService provides filtered semantic search over the corpus.
type RetrievalService interface {
	// Search returns at most maxResults deduplicated hits.
	// maxResults outside [1, ceiling] returns domain.ErrInvalidMaxResults.
	// An empty result returns a *domain.NoResultsError.
	Search(ctx context.Context, query string, maxResults int, filters domain.FilterSet) (*domain.RetrievalResult, error)

	// MaxResultsCeiling returns the largest accepted maxResults.
	MaxResultsCeiling() int
}

// FilterResolver turns client-supplied filter values into a FilterSet
// validated against the published corpus.
type FilterResolver interface {
	// Resolve returns the applicable filters and the values it dropped.
	Resolve(in domain.FilterInput) (domain.FilterSet, []domain.IgnoredFilter)
}
