package driven

import (
	"context"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

// ChartRenderer renders one catalog chart over the records matching filters.
// The core only consumes the image reference; rendering internals stay in
// the adapter.
type ChartRenderer interface {
	// Render returns the rendered file, or domain.ErrNoChartData when no
	// record matches the filter combination.
	Render(ctx context.Context, req domain.ChartRequest) (domain.ChartResult, error)
}
