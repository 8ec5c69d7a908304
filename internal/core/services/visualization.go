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

// maxAlternatives bounds the chart kinds offered when a chart cannot be drawn.
const maxAlternatives = 4

// fallbackKinds are offered, in order, after same-subject alternatives.
var fallbackKinds = []domain.ChartKind{
	domain.ChartOverview,
	domain.ChartSentimentBar,
	domain.ChartCategoryBar,
	domain.ChartMarketBar,
	domain.ChartTopicBar,
}

// Ensure VisualizationSpecialist implements the interfaces.
var (
	_ Specialist           = (*VisualizationSpecialist)(nil)
	_ driving.ChartService = (*VisualizationSpecialist)(nil)
)

// VisualizationSpecialist resolves a turn to one catalog chart and asks
// the renderer for it.
type VisualizationSpecialist struct {
	renderer  driven.ChartRenderer
	extractor *Extractor
	vocab     domain.Vocabulary
	corpus    *Corpus
	size      domain.SizeHint
}

// NewVisualizationSpecialist creates a visualization specialist. A nil
// renderer answers every request with the unavailable message.
func NewVisualizationSpecialist(
	renderer driven.ChartRenderer,
	extractor *Extractor,
	vocab domain.Vocabulary,
	corpus *Corpus,
	size domain.SizeHint,
) *VisualizationSpecialist {
	if !size.IsValid() {
		size = domain.SizeMedium
	}
	return &VisualizationSpecialist{
		renderer:  renderer,
		extractor: extractor,
		vocab:     vocab,
		corpus:    corpus,
		size:      size,
	}
}

// Capability returns domain.CapabilityVisualization.
func (s *VisualizationSpecialist) Capability() domain.Capability {
	return domain.CapabilityVisualization
}

// Handle answers a visualization turn.
func (s *VisualizationSpecialist) Handle(ctx context.Context, turn Turn) (*domain.Response, error) {
	logger.Section("Visualization Specialist")

	kind := s.Resolve(turn.Text)
	ex := s.extractor.Extract(turn.Text, turn.Snapshot)
	logger.Debug("Resolved chart %s, filters=%v", kind, ex.Filters.Describe())

	req := domain.ChartRequest{Kind: kind, Filters: ex.Filters, Size: s.size}
	resp, err := s.render(ctx, turn.Lang, req, turn.Snapshot)
	if err != nil {
		return nil, err
	}
	if note := ignoredNote(turn.Lang, ex.Ignored); note != "" {
		resp.Segments = append(resp.Segments, note)
		resp.Text = strings.Join(resp.Segments, "\n\n")
	}
	return resp, nil
}

// Chart renders a catalog chart without intent routing.
func (s *VisualizationSpecialist) Chart(ctx context.Context, req domain.ChartRequest) (*domain.Response, error) {
	if !req.Kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown chart kind %q", domain.ErrInvalidInput, req.Kind)
	}
	if !req.Size.IsValid() {
		req.Size = s.size
	}

	var snap *domain.Snapshot
	if s.corpus != nil {
		if err := s.corpus.Available(); err != nil {
			return notReady(LangEnglish, domain.IntentVisualization, err), nil
		}
		snap = s.corpus.Snapshot()
	}
	return s.render(ctx, LangEnglish, req, snap)
}

// Resolve maps text to a catalog kind. An explicit chart-type word wins
// over a subject word, which wins over a time word; the default is the
// overview dashboard.
func (s *VisualizationSpecialist) Resolve(text string) domain.ChartKind {
	toks := tokenize(text)
	_, style, hasStyle := firstMatch(toks, s.vocab.ChartTypeTerms, false)

	subjects := map[domain.ChartSubject]bool{}
	var primary domain.ChartSubject
	for _, term := range matchedTerms(toks, subjectTerms(s.vocab)) {
		subjects[s.vocab.ChartSubjectTerms[term]] = true
	}
	if _, subj, ok := firstMatch(toks, s.vocab.ChartSubjectTerms, false); ok {
		primary = subj
	}

	if hasStyle && style == domain.StyleLine {
		return domain.ChartTimeSeries
	}

	// Market breakdowns combine two subjects.
	if subjects[domain.SubjectMarket] && style != domain.StylePie {
		switch {
		case subjects[domain.SubjectSentiment]:
			return domain.ChartMarketSentiment
		case subjects[domain.SubjectCategory]:
			return domain.ChartMarketCategory
		}
	}

	if primary != "" {
		if kind, ok := domain.ChartFor(primary, style); ok {
			return kind
		}
	}

	if hasStyle {
		switch style {
		case domain.StyleBar:
			return domain.ChartSentimentBar
		case domain.StylePie:
			return domain.ChartSentimentPie
		case domain.StyleBreakdown:
			return domain.ChartMarketSentiment
		}
		return domain.ChartOverview
	}

	if len(matchedTerms(toks, s.vocab.TimeTerms)) > 0 {
		return domain.ChartTimeSeries
	}
	return domain.ChartOverview
}

// render asks the renderer for req and maps every outcome to a response.
func (s *VisualizationSpecialist) render(
	ctx context.Context, lang Language, req domain.ChartRequest, snap *domain.Snapshot,
) (*domain.Response, error) {
	spec, _ := domain.LookupChart(req.Kind)
	singleDay := snap != nil && snap.Dates.SingleDay()

	if req.Kind == domain.ChartTimeSeries && singleDay {
		alts := alternatives(req.Kind, singleDay)
		return chartMiss(lang, msg(lang, msgChartSingleDay, snap.Dates.From.Format(domain.DateLayout)), alts), nil
	}

	if s.renderer == nil {
		text := msg(lang, msgChartUnavailable)
		return &domain.Response{
			Kind:     domain.ResponseError,
			Intent:   domain.IntentVisualization,
			Text:     text,
			Segments: []string{text},
			Handler:  domain.CapabilityVisualization,
		}, nil
	}

	result, err := s.renderer.Render(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrNoChartData) {
			logger.Info("No data for chart %s with filters %v", req.Kind, req.Filters.Describe())
			return chartMiss(lang, msg(lang, msgChartNoData, spec.Title), alternatives(req.Kind, singleDay)), nil
		}
		return failure(ctx, lang, domain.IntentVisualization, domain.CapabilityVisualization, err)
	}

	segments := []string{msg(lang, msgChartRendered, spec.Title)}
	if result.Caption != "" {
		segments = append(segments, result.Caption)
	}
	if desc := req.Filters.Describe(); len(desc) > 0 {
		segments = append(segments, msg(lang, msgAppliedFilters, strings.Join(desc, ", ")))
	}

	resp := textResponse(domain.IntentVisualization, domain.CapabilityVisualization, segments)
	resp.Kind = domain.ResponseTextWithImage
	resp.ImagePath = result.ImagePath
	return resp, nil
}

// chartMiss apologises and offers alternative chart kinds.
func chartMiss(lang Language, reason string, alts []domain.ChartKind) *domain.Response {
	names := make([]string, len(alts))
	for i, k := range alts {
		names[i] = string(k)
	}
	segments := []string{reason, msg(lang, msgChartAlternatives, strings.Join(names, ", "))}

	resp := textResponse(domain.IntentVisualization, domain.CapabilityVisualization, segments)
	resp.Kind = domain.ResponseNoResults
	resp.Suggestions = names
	return resp
}

// alternatives returns up to maxAlternatives other kinds: same subject
// first, then the general fallbacks. Time series is skipped on a
// single-day corpus.
func alternatives(kind domain.ChartKind, singleDay bool) []domain.ChartKind {
	spec, _ := domain.LookupChart(kind)

	var out []domain.ChartKind
	seen := map[domain.ChartKind]bool{kind: true}
	add := func(k domain.ChartKind) {
		if seen[k] || len(out) >= maxAlternatives || (singleDay && k == domain.ChartTimeSeries) {
			return
		}
		seen[k] = true
		out = append(out, k)
	}

	for _, c := range domain.ChartCatalog() {
		if c.Subject == spec.Subject {
			add(c.Kind)
		}
	}
	for _, k := range fallbackKinds {
		add(k)
	}
	return out
}

// subjectTerms lists the subject vocabulary keys.
func subjectTerms(vocab domain.Vocabulary) []string {
	terms := make([]string, 0, len(vocab.ChartSubjectTerms))
	for term := range vocab.ChartSubjectTerms {
		terms = append(terms, term)
	}
	return terms
}
