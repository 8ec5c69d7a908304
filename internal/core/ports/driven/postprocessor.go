package driven

import (
	"context"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

// PostProcessor turns an enriched record into segments.
// PostProcessors are chained in a pipeline (e.g., length gate, chunking).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a record and the segments produced so far.
	// A processor that creates segments receives nil and returns new ones.
	// Returning domain.ErrRecordTooShort drops the record from the index.
	Process(ctx context.Context, rec *domain.FeedbackRecord, segments []domain.Segment) ([]domain.Segment, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the record through all processors in order.
	Process(ctx context.Context, rec *domain.FeedbackRecord) ([]domain.Segment, error)
}
