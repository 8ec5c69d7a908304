package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

// DefaultExcerptRunes bounds the verbatim excerpt per summarized hit.
const DefaultExcerptRunes = 240

// breakdownLabels names the breakdown dimensions per language.
var breakdownLabels = map[Language][4]string{
	LangEnglish: {"category", "sentiment", "market", "topic"},
	LangGerman:  {"Kategorie", "Stimmung", "Markt", "Thema"},
}

// Report is a summary split into ordered segments.
type Report struct {
	Segments []string

	// Count is the number of hits the report covers.
	Count int

	Categories domain.Distribution
	Sentiments domain.Distribution
	Markets    domain.Distribution
	Topics     domain.Distribution
}

// Text joins the segments.
func (r Report) Text() string {
	return strings.Join(r.Segments, "\n\n")
}

// Summarizer turns a retrieval result into a structured report. It only
// restates the input: every count and quote comes from the hits.
type Summarizer struct {
	excerptRunes int
}

// NewSummarizer creates a summarizer. A non-positive excerpt length uses
// DefaultExcerptRunes.
func NewSummarizer(excerptRunes int) *Summarizer {
	if excerptRunes <= 0 {
		excerptRunes = DefaultExcerptRunes
	}
	return &Summarizer{excerptRunes: excerptRunes}
}

// Summarize builds the report for result.
func (s *Summarizer) Summarize(result *domain.RetrievalResult, lang Language) Report {
	if result == nil {
		return Report{Segments: []string{msg(lang, msgSummaryHeader, 0)}}
	}

	categories := map[string]int{}
	sentiments := map[string]int{}
	markets := map[string]int{}
	topics := map[string]int{}
	for _, h := range result.Hits {
		m := h.Metadata
		count(categories, string(m.Category))
		count(sentiments, string(m.SentimentLabel))
		count(markets, m.Market)
		count(topics, m.Topic)
	}

	report := Report{
		Count:      len(result.Hits),
		Categories: domain.NewDistribution(categories),
		Sentiments: domain.NewDistribution(sentiments),
		Markets:    domain.NewDistribution(markets),
		Topics:     domain.NewDistribution(topics),
	}

	if result.Query != "" {
		report.Segments = append(report.Segments, msg(lang, msgSummaryQuery, report.Count, result.Query))
	} else {
		report.Segments = append(report.Segments, msg(lang, msgSummaryHeader, report.Count))
	}

	labels, ok := breakdownLabels[lang]
	if !ok {
		labels = breakdownLabels[LangEnglish]
	}
	var breakdown []string
	for i, d := range []domain.Distribution{report.Categories, report.Sentiments, report.Markets, report.Topics} {
		if len(d) == 0 {
			continue
		}
		breakdown = append(breakdown, msg(lang, msgBreakdown, labels[i], formatDistribution(d)))
	}
	if len(breakdown) > 0 {
		report.Segments = append(report.Segments, strings.Join(breakdown, "\n"))
	}

	for i, h := range result.Hits {
		report.Segments = append(report.Segments, s.bullet(i+1, h))
	}

	note := msg(lang, msgQualityNote, result.Quality, result.AverageConfidence())
	if low := result.LowQualityCount(); low > 0 {
		note += " " + msg(lang, msgLowQualityNote, low)
	}
	report.Segments = append(report.Segments, note)

	return report
}

// bullet renders one hit with its metadata and a verbatim excerpt.
func (s *Summarizer) bullet(n int, h domain.RetrievalHit) string {
	m := h.Metadata
	var meta []string
	if m.Market != "" {
		meta = append(meta, m.Market)
	}
	if m.Timestamp > 0 {
		meta = append(meta, m.Time().Format(domain.DateLayout))
	}
	if m.Category != "" {
		meta = append(meta, fmt.Sprintf("%s (%d)", m.Category, m.Score))
	}
	if m.SentimentLabel != "" {
		meta = append(meta, string(m.SentimentLabel))
	}
	if m.Topic != "" {
		meta = append(meta, m.Topic)
	}
	return fmt.Sprintf("%d. [%.2f] %s\n   %q", n, h.Confidence, strings.Join(meta, " | "), excerpt(h.Segment.Content, s.excerptRunes))
}

func count(m map[string]int, label string) {
	if label == "" {
		return
	}
	m[label]++
}

// formatDistribution renders "a 3, b 1".
func formatDistribution(d domain.Distribution) string {
	parts := make([]string, len(d))
	for i, c := range d {
		parts[i] = fmt.Sprintf("%s %d", c.Label, c.N)
	}
	return strings.Join(parts, ", ")
}

// excerpt shortens text to at most n runes at a word boundary.
func excerpt(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	cut := string(runes[:n])
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return cut + "..."
}
