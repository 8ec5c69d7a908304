package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
	"github.com/custodia-labs/vocal/internal/core/ports/driving"
	"github.com/custodia-labs/vocal/internal/logger"
)

// SummaryThreshold is the hit count above which answers are summarized
// instead of listed.
const SummaryThreshold = 3

// Ensure RetrievalSpecialist implements Specialist.
var _ Specialist = (*RetrievalSpecialist)(nil)

// RetrievalSpecialist answers content questions: it extracts a count and
// filters from the turn, searches, and either lists or summarizes hits.
type RetrievalSpecialist struct {
	engine     driving.RetrievalService
	extractor  *Extractor
	summarizer *Summarizer
	llm        driven.LLMService
}

// RetrievalOption configures the retrieval specialist.
type RetrievalOption func(*RetrievalSpecialist)

// WithQueryRewrite lets llm rewrite the semantic query before search.
// A nil llm leaves queries as extracted.
func WithQueryRewrite(llm driven.LLMService) RetrievalOption {
	return func(s *RetrievalSpecialist) {
		s.llm = llm
	}
}

// NewRetrievalSpecialist creates a retrieval specialist.
func NewRetrievalSpecialist(
	engine driving.RetrievalService,
	extractor *Extractor,
	summarizer *Summarizer,
	opts ...RetrievalOption,
) *RetrievalSpecialist {
	s := &RetrievalSpecialist{
		engine:     engine,
		extractor:  extractor,
		summarizer: summarizer,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.summarizer == nil {
		s.summarizer = NewSummarizer(0)
	}
	return s
}

// Capability returns domain.CapabilityRetrieval.
func (s *RetrievalSpecialist) Capability() domain.Capability {
	return domain.CapabilityRetrieval
}

// Handle answers a content turn.
func (s *RetrievalSpecialist) Handle(ctx context.Context, turn Turn) (*domain.Response, error) {
	logger.Section("Retrieval Specialist")

	ex := s.extractor.Extract(turn.Text, turn.Snapshot)
	logger.Debug("Extracted count=%d (given=%t), filters=%v, ignored=%d, query=%q",
		ex.Count, ex.CountGiven, ex.Filters.Describe(), len(ex.Ignored), ex.Query)

	query := s.rewrite(ctx, ex.Query)

	result, err := s.engine.Search(ctx, query, ex.Count, ex.Filters)
	if err != nil {
		if nr, ok := isNoResults(err); ok {
			return s.noResults(turn.Lang, nr.Filters, ex), nil
		}
		return failure(ctx, turn.Lang, domain.IntentContent, domain.CapabilityRetrieval, err)
	}
	result.Ignored = ex.Ignored

	notes := s.notes(turn.Lang, ex, result.Filters)

	var resp *domain.Response
	if result.Len() > SummaryThreshold {
		report := s.summarizer.Summarize(result, turn.Lang)
		resp = textResponse(domain.IntentContent, domain.CapabilitySummary, append(report.Segments, notes...))
	} else {
		segments := []string{msg(turn.Lang, msgFoundDirect, result.Len())}
		for i, h := range result.Hits {
			segments = append(segments, s.summarizer.bullet(i+1, h))
		}
		resp = textResponse(domain.IntentContent, domain.CapabilityRetrieval, append(segments, notes...))
	}
	resp.Result = result
	return resp, nil
}

// rewrite asks the LLM for a better semantic query. Failures keep the
// original query.
func (s *RetrievalSpecialist) rewrite(ctx context.Context, query string) string {
	if s.llm == nil {
		return query
	}
	rewritten, err := s.llm.RewriteQuery(ctx, query)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Warn("Query rewrite failed, using original query: %v", err)
		}
		return query
	}
	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return query
	}
	logger.Debug("Rewrote query %q -> %q", query, rewritten)
	return rewritten
}

// notes are appended after the answer: clamped count, ignored and applied
// filters.
func (s *RetrievalSpecialist) notes(lang Language, ex Extraction, applied domain.FilterSet) []string {
	var notes []string
	if ex.Clamped {
		notes = append(notes, msg(lang, msgCountClamped, ex.Requested, ex.Count))
	}
	if desc := applied.Describe(); len(desc) > 0 {
		notes = append(notes, msg(lang, msgAppliedFilters, strings.Join(desc, ", ")))
	}
	if note := ignoredNote(lang, ex.Ignored); note != "" {
		notes = append(notes, note)
	}
	return notes
}

// noResults explains the empty outcome and suggests relaxations.
func (s *RetrievalSpecialist) noResults(lang Language, filters domain.FilterSet, ex Extraction) *domain.Response {
	suggestions := relaxations(lang, filters)

	segments := []string{msg(lang, msgNoResults)}
	if desc := filters.Describe(); len(desc) > 0 {
		segments = append(segments, msg(lang, msgAppliedFilters, strings.Join(desc, ", ")))
	}
	segments = append(segments, bulletList(msg(lang, msgSuggestionsHeader), suggestions))
	if note := ignoredNote(lang, ex.Ignored); note != "" {
		segments = append(segments, note)
	}

	resp := textResponse(domain.IntentContent, domain.CapabilityRetrieval, segments)
	resp.Kind = domain.ResponseNoResults
	resp.Suggestions = suggestions
	return resp
}

// relaxations suggests dropping each active filter, widening the date
// range and broader wording. The list is never empty.
func relaxations(lang Language, filters domain.FilterSet) []string {
	var out []string
	dated := false
	for _, field := range filters.Fields() {
		if field == domain.FieldDateFrom || field == domain.FieldDateTo {
			dated = true
			continue
		}
		out = append(out, msg(lang, msgRelaxDrop, fmt.Sprintf("%s=%s", field, filters.Value(field))))
	}
	if dated {
		out = append(out, msg(lang, msgRelaxDates))
	}
	return append(out, msg(lang, msgRelaxWording))
}
