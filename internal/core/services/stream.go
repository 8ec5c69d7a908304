package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driving"
)

// AskStream answers the turn and delivers its segments through emit in
// generation order. A producer goroutine feeds an unbuffered channel so a
// slow consumer applies back-pressure.
func (o *Orchestrator) AskStream(
	ctx context.Context, req domain.TurnRequest, emit driving.SegmentFunc,
) (*domain.Response, error) {
	resp, err := o.Ask(ctx, req)
	if err != nil {
		return nil, err
	}

	segments := resp.Segments
	if len(segments) == 0 && resp.Text != "" {
		segments = []string{resp.Text}
	}

	ch := make(chan string)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(ch)
		for _, seg := range segments {
			select {
			case ch <- seg:
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	for seg := range ch {
		if err := emit(seg); err != nil {
			return resp, fmt.Errorf("emit segment: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return resp, err
	}
	return resp, nil
}
