// Package minlength drops records whose body is too short to carry meaning.
package minlength

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

// DefaultMinLength is the shortest trimmed body that gets indexed.
const DefaultMinLength = 10

// Processor rejects short records and passes segments through otherwise.
type Processor struct {
	min int
}

// New creates a length gate.
func New(min int) *Processor {
	return &Processor{min: min}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "minlength"
}

// Process returns domain.ErrRecordTooShort for bodies under the minimum.
func (p *Processor) Process(_ context.Context, rec *domain.FeedbackRecord, segments []domain.Segment) ([]domain.Segment, error) {
	if utf8.RuneCountInString(strings.TrimSpace(rec.Body)) < p.min {
		return nil, domain.ErrRecordTooShort
	}
	return segments, nil
}
