package driving

import (
	"context"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

// SegmentFunc receives response segments in generation order.
// Returning an error stops the stream.
type SegmentFunc func(segment string) error

// Assistant answers one conversational turn at a time.
type Assistant interface {
	// Ask routes a turn and returns the structured response.
	// Expected outcomes (no results, not ready, chart unavailable) are
	// responses, not errors. Only a cancelled context returns an error.
	Ask(ctx context.Context, req domain.TurnRequest) (*domain.Response, error)

	// AskStream behaves like Ask and also delivers the response text
	// segment by segment through emit.
	AskStream(ctx context.Context, req domain.TurnRequest, emit SegmentFunc) (*domain.Response, error)

	// Ready reports whether delegated intents can be served.
	Ready() bool
}
