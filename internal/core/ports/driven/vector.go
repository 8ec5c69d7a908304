package driven

import (
	"context"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

// VectorIndex stores indexed entries and answers filtered nearest-neighbour
// queries. Filters are hard constraints: an entry that fails the FilterSet
// is never returned, whatever its distance.
//
// The index is written only by the indexer. Searches may run concurrently
// with each other but not with Upsert or Reset.
type VectorIndex interface {
	// Upsert inserts or replaces entries keyed by segment ID.
	Upsert(ctx context.Context, entries []domain.IndexedEntry) error

	// Search returns up to k entries matching filters, closest first.
	Search(ctx context.Context, query []float32, k int, filters domain.FilterSet) ([]VectorHit, error)

	// Scan calls fn once for every stored entry. A non-nil error from fn stops the scan.
	Scan(ctx context.Context, fn func(domain.IndexedEntry) error) error

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Reset removes every entry.
	Reset(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Entry is the matched segment with its metadata.
	Entry domain.IndexedEntry

	// Distance is the cosine distance (0 identical, 2 opposite).
	Distance float64
}

// ManifestStore is implemented by persistent indexes that can record what
// they were built from. The indexer uses it to decide whether to reuse a
// persisted index.
type ManifestStore interface {
	// LoadManifest returns the stored manifest or domain.ErrNotFound.
	LoadManifest(ctx context.Context) (*domain.IndexManifest, error)

	// SaveManifest replaces the stored manifest.
	SaveManifest(ctx context.Context, m domain.IndexManifest) error
}
