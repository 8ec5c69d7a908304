// Package markup cleans HTML left in feedback bodies by survey exports.
package markup

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

var (
	dropped    = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>|<!--.*?-->`)
	lineBreaks = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li|tr)>`)
	tags       = regexp.MustCompile(`<[^>]+>`)
	spaces     = regexp.MustCompile(`[ \t\x{00a0}]+`)
	newlines   = regexp.MustCompile(`\s*\n\s*(\n\s*)+`)
)

// Processor rewrites the record body as plain text.
type Processor struct{}

// New creates a markup cleaner.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "markup"
}

// Process strips tags and decodes entities in place. Bodies without
// markup are left untouched.
func (p *Processor) Process(_ context.Context, rec *domain.FeedbackRecord, segments []domain.Segment) ([]domain.Segment, error) {
	if rec == nil {
		return nil, domain.ErrInvalidInput
	}
	if strings.ContainsAny(rec.Body, "<&") {
		rec.Body = Clean(rec.Body)
	}
	return segments, nil
}

// Clean returns text with HTML tags removed and entities decoded.
func Clean(text string) string {
	text = dropped.ReplaceAllString(text, "")
	text = lineBreaks.ReplaceAllString(text, "\n")
	text = tags.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = spaces.ReplaceAllString(text, " ")
	text = newlines.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
