package services

import (
	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driving"
)

// Ensure FilterResolver implements the interface.
var _ driving.FilterResolver = (*FilterResolver)(nil)

// FilterResolver validates structured filters from API clients against
// the published snapshot.
type FilterResolver struct {
	corpus *Corpus
	vocab  domain.Vocabulary
}

// NewFilterResolver creates a resolver over the corpus snapshot.
func NewFilterResolver(corpus *Corpus, vocab domain.Vocabulary) *FilterResolver {
	return &FilterResolver{corpus: corpus, vocab: vocab}
}

// Resolve parses in and drops values the corpus does not know.
func (r *FilterResolver) Resolve(in domain.FilterInput) (domain.FilterSet, []domain.IgnoredFilter) {
	f, ignored := in.FilterSet()
	var snap *domain.Snapshot
	if r.corpus != nil {
		snap = r.corpus.Snapshot()
	}
	resolved, dropped := ResolveFilters(f, snap, r.vocab)
	return resolved, append(ignored, dropped...)
}
