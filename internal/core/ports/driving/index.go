package driving

import (
	"context"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

// IndexService builds the embedding index and the metadata snapshot.
type IndexService interface {
	// Rebuild loads, enriches, chunks and embeds the corpus, then publishes
	// a new snapshot. Returns domain.ErrRebuildInProgress if another rebuild
	// holds the writer.
	Rebuild(ctx context.Context, opts domain.RebuildOptions) (domain.IndexStatus, error)

	// Status returns the published corpus status.
	Status() domain.IndexStatus
}

// StatisticsService exposes the immutable metadata snapshot.
type StatisticsService interface {
	// Snapshot returns the published snapshot or domain.ErrIndexUnavailable.
	Snapshot() (*domain.Snapshot, error)
}

// ChartService renders catalog charts directly, without intent routing.
type ChartService interface {
	// Chart renders kind over records matching filters.
	Chart(ctx context.Context, req domain.ChartRequest) (*domain.Response, error)
}
