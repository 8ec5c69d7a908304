// Package chunker splits long feedback bodies into overlapping segments.
package chunker

import (
	"context"

	"github.com/google/uuid"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

// DefaultThreshold is the body length in runes below which a body is kept whole.
const DefaultThreshold = 4000

// DefaultChunkSize is the target number of runes per segment.
const DefaultChunkSize = 3000

// DefaultChunkOverlap is the number of runes shared by neighbouring segments.
const DefaultChunkOverlap = 600

// separators are tried in order: paragraph, line, sentence, clause, word.
// The empty separator is the hard cut at the target size.
var separators = []string{"\n\n", ".\n", ". ", "! ", "? ", ";\n", "; ", ",\n", " - ", " ", ""}

// Processor splits record bodies into segments.
// It implements the PostProcessor interface.
type Processor struct {
	threshold int
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithThreshold sets the length below which bodies are not split.
func WithThreshold(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.threshold = n
		}
	}
}

// WithChunkSize sets the target segment size in runes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between segments in runes.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		threshold: DefaultThreshold,
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Overlap must stay below the chunk size or splitting cannot advance.
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the record body into segments.
// Input segments are ignored; this processor creates new segments.
func (p *Processor) Process(_ context.Context, rec *domain.FeedbackRecord, _ []domain.Segment) ([]domain.Segment, error) {
	return p.Chunk(rec.ID, rec.Body), nil
}

// Chunk splits body into ordered segments for recordID.
// Bodies shorter than the threshold yield one segment equal to the body.
// An empty body yields no segments.
func (p *Processor) Chunk(recordID, body string) []domain.Segment {
	if body == "" {
		return nil
	}

	runes := []rune(body)
	var spans []span
	if len(runes) < p.threshold {
		spans = []span{{0, len(runes)}}
	} else {
		spans = p.split(runes)
	}

	segments := make([]domain.Segment, len(spans))
	for i, s := range spans {
		segments[i] = domain.Segment{
			ID:       uuid.New().String(),
			RecordID: recordID,
			Content:  string(runes[s.start:s.end]),
			Index:    i,
			Total:    len(spans),
			Start:    s.start,
		}
	}
	return segments
}

type span struct {
	start, end int
}

// split walks the body left to right. Each segment ends at the best
// separator inside the target window; the next one starts up to overlap
// runes earlier, snapped forward to a word boundary.
func (p *Processor) split(runes []rune) []span {
	n := len(runes)
	var spans []span

	start := 0
	for {
		if n-start <= p.chunkSize {
			spans = append(spans, span{start, n})
			return spans
		}

		end := p.cut(runes, start)
		spans = append(spans, span{start, end})

		next := end - p.overlap
		next = snapForward(runes, next, end)
		if next <= start {
			next = end
		}
		start = next
	}
}

// cut returns the end of the segment starting at start. The end always lies
// in (start+overlap, start+chunkSize] so the following segment advances.
func (p *Processor) cut(runes []rune, start int) int {
	limit := start + p.chunkSize
	floor := start + p.overlap

	for _, sep := range separators {
		if sep == "" {
			return limit
		}
		sr := []rune(sep)
		if i := lastIndex(runes, sr, floor, limit); i >= 0 {
			return i + len(sr)
		}
	}
	return limit
}

// lastIndex finds the last occurrence of sep whose end lies in (lo, hi].
func lastIndex(runes, sep []rune, lo, hi int) int {
	for i := hi - len(sep); i >= 0 && i+len(sep) > lo; i-- {
		if hasPrefixAt(runes, sep, i) {
			return i
		}
	}
	return -1
}

func hasPrefixAt(runes, sep []rune, at int) bool {
	if at+len(sep) > len(runes) {
		return false
	}
	for j, r := range sep {
		if runes[at+j] != r {
			return false
		}
	}
	return true
}

// snapForward moves pos to just after the next space before limit.
// Without a space in range pos is returned unchanged.
func snapForward(runes []rune, pos, limit int) int {
	if pos <= 0 {
		return pos
	}
	for i := pos; i < limit; i++ {
		if runes[i-1] == ' ' || runes[i-1] == '\n' {
			return i
		}
	}
	return pos
}

// Reconstruct joins the non-overlapping part of each segment.
// For segments produced by Chunk the result equals the original body.
func Reconstruct(segments []domain.Segment) string {
	var out []rune
	covered := 0
	for _, seg := range segments {
		content := []rune(seg.Content)
		skip := covered - seg.Start
		if skip < 0 {
			skip = 0
		}
		if skip < len(content) {
			out = append(out, content[skip:]...)
		}
		if end := seg.Start + len(content); end > covered {
			covered = end
		}
	}
	return string(out)
}
