package driven

import (
	"context"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

// CorpusLoader reads raw feedback rows from a source locator.
type CorpusLoader interface {
	// Load returns every row of the source in file order.
	// Rows missing a body are returned too; the enricher decides.
	Load(ctx context.Context, locator string) ([]domain.RawRecord, error)

	// Supports reports whether the loader can read locator.
	Supports(locator string) bool
}

// Enricher derives score category, sentiment, topic and token count for a
// raw record. Pre-labelled sentiment and topic values are consumed as given.
type Enricher interface {
	Enrich(raw domain.RawRecord) (domain.FeedbackRecord, error)
}
