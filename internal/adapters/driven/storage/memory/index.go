package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/vocal/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory implementation of driven.VectorIndex.
// Search is an exact scan: filters first, then cosine distance.
type VectorIndex struct {
	mu      sync.RWMutex
	entries map[string]domain.IndexedEntry
	order   []string
}

// NewVectorIndex creates a new in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		entries: make(map[string]domain.IndexedEntry),
	}
}

// Upsert inserts or replaces entries keyed by segment ID.
func (v *VectorIndex) Upsert(_ context.Context, entries []domain.IndexedEntry) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, e := range entries {
		if e.Segment.ID == "" {
			return domain.ErrInvalidInput
		}
		if _, exists := v.entries[e.Segment.ID]; !exists {
			v.order = append(v.order, e.Segment.ID)
		}
		v.entries[e.Segment.ID] = e
	}
	return nil
}

// Search returns up to k entries matching filters, closest first.
// Equal distances are ordered by segment ID.
func (v *VectorIndex) Search(ctx context.Context, query []float32, k int, filters domain.FilterSet) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, k)
	for _, id := range v.order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e := v.entries[id]
		if !filters.Matches(e.Metadata) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			Entry:    e,
			Distance: vecmath.CosineDistance(query, e.Embedding),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Entry.Segment.ID < hits[j].Entry.Segment.ID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Scan calls fn for every entry in insertion order.
func (v *VectorIndex) Scan(ctx context.Context, fn func(domain.IndexedEntry) error) error {
	v.mu.RLock()
	defer v.mu.RUnlock()

	for _, id := range v.order {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(v.entries[id]); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of stored entries.
func (v *VectorIndex) Count(_ context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.entries), nil
}

// Reset removes every entry.
func (v *VectorIndex) Reset(_ context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries = make(map[string]domain.IndexedEntry)
	v.order = nil
	return nil
}

// Close releases resources. No-op for memory store.
func (v *VectorIndex) Close() error {
	return nil
}
