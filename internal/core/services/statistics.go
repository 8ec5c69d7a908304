package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

// statSubject is one section of a statistics answer.
type statSubject int

const (
	statTotal statSubject = iota
	statDates
	statCategories
	statSentiments
	statTopics
	statMarkets
	statScores
	statTokens
)

// statSubjectTerms maps question words onto answer sections.
var statSubjectTerms = map[string]statSubject{
	"how many": statTotal, "wie viele": statTotal, "wieviele": statTotal, "anzahl": statTotal,
	"total": statTotal, "insgesamt": statTotal, "count": statTotal, "number of": statTotal,
	"date range": statDates, "zeitraum": statDates, "when": statDates, "wann": statDates,
	"dates": statDates, "datum": statDates, "period": statDates,
	"category": statCategories, "categories": statCategories, "kategorie": statCategories,
	"kategorien": statCategories, "nps": statCategories, "promoter": statCategories,
	"promoters": statCategories, "detractor": statCategories, "detractors": statCategories,
	"passive": statCategories, "passives": statCategories,
	"sentiment": statSentiments, "stimmung": statSentiments, "positive": statSentiments,
	"negative": statSentiments, "positiv": statSentiments, "negativ": statSentiments,
	"topic": statTopics, "topics": statTopics, "thema": statTopics, "themen": statTopics,
	"market": statMarkets, "markets": statMarkets, "markt": statMarkets, "märkte": statMarkets,
	"country": statMarkets, "countries": statMarkets, "land": statMarkets, "länder": statMarkets,
	"score": statScores, "scores": statScores, "average": statScores, "durchschnitt": statScores,
	"mean": statScores, "median": statScores, "mittelwert": statScores, "bewertung": statScores,
	"length": statTokens, "länge": statTokens, "tokens": statTokens, "words": statTokens,
	"wörter": statTokens, "textlänge": statTokens, "long": statTokens, "lang": statTokens,
}

// overviewSections answer a statistics turn without a recognised subject.
var overviewSections = []statSubject{statTotal, statDates, statCategories, statSentiments, statTopics}

// noneLabel marks an empty distribution.
var noneLabel = map[Language]string{LangEnglish: "none", LangGerman: "keine"}

// Ensure StatisticsSpecialist implements Specialist.
var _ Specialist = (*StatisticsSpecialist)(nil)

// StatisticsSpecialist answers questions from the metadata snapshot only.
// It never touches the index, so it keeps working during a rebuild.
type StatisticsSpecialist struct{}

// NewStatisticsSpecialist creates the statistics answerer.
func NewStatisticsSpecialist() *StatisticsSpecialist {
	return &StatisticsSpecialist{}
}

// Capability returns domain.CapabilityStatistics.
func (s *StatisticsSpecialist) Capability() domain.Capability {
	return domain.CapabilityStatistics
}

// Handle answers the turn from turn.Snapshot.
func (s *StatisticsSpecialist) Handle(_ context.Context, turn Turn) (*domain.Response, error) {
	if turn.Snapshot == nil {
		return &domain.Response{
			Kind:    domain.ResponseNotReady,
			Intent:  domain.IntentStatistics,
			Text:    msg(turn.Lang, msgNotReady),
			Handler: domain.CapabilityStatistics,
		}, nil
	}

	segments := s.Answer(turn.Snapshot, turn.Text, turn.Lang)
	return &domain.Response{
		Kind:     domain.ResponseText,
		Intent:   domain.IntentStatistics,
		Text:     strings.Join(segments, "\n\n"),
		Segments: segments,
		Handler:  domain.CapabilityStatistics,
	}, nil
}

// Answer renders the sections the question asks for.
func (s *StatisticsSpecialist) Answer(snap *domain.Snapshot, text string, lang Language) []string {
	sections := requestedSections(text)

	var out []string
	if snap.Empty {
		out = append(out, msg(lang, msgStatsEmpty))
	}
	for _, sec := range sections {
		if line := renderSection(snap, sec, lang); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// requestedSections returns the sections named in text in a fixed order,
// or the overview.
func requestedSections(text string) []statSubject {
	toks := tokenize(text)
	found := map[statSubject]bool{}
	for term, sec := range statSubjectTerms {
		if toks.has(term) {
			found[sec] = true
		}
	}
	if len(found) == 0 {
		return overviewSections
	}

	var sections []statSubject
	for sec := statTotal; sec <= statTokens; sec++ {
		if found[sec] {
			sections = append(sections, sec)
		}
	}
	return sections
}

func renderSection(snap *domain.Snapshot, sec statSubject, lang Language) string {
	switch sec {
	case statTotal:
		return msg(lang, msgStatsTotal, snap.TotalRecords, snap.TotalSegments)

	case statDates:
		if !snap.Dates.Known {
			return ""
		}
		return msg(lang, msgStatsDates, snap.Dates.From.Format(domain.DateLayout), snap.Dates.To.Format(domain.DateLayout))

	case statCategories:
		labels := make([]string, 0, 3)
		for _, c := range domain.AllScoreCategories() {
			labels = append(labels, string(c))
		}
		text := bulletList(msg(lang, msgStatsCategories), shareLines(snap.Categories, labels))
		if snap.Categories.Total() > 0 {
			text += "\n" + msg(lang, msgStatsNPS, netPromoterScore(snap.Categories))
		}
		return text

	case statSentiments:
		labels := make([]string, 0, 3)
		for _, l := range domain.AllSentiments() {
			labels = append(labels, string(l))
		}
		return bulletList(msg(lang, msgStatsSentiments), shareLines(snap.Sentiments, labels))

	case statTopics:
		return bulletList(msg(lang, msgStatsTopics), orNone(shareLines(snap.Topics, nil), lang))

	case statMarkets:
		return bulletList(msg(lang, msgStatsMarkets, len(snap.Markets)), orNone(shareLines(snap.MarketDist, nil), lang))

	case statScores:
		sc := snap.Scores
		return msg(lang, msgStatsScores, sc.Mean, sc.Median, sc.Min, sc.Max)

	case statTokens:
		tk := snap.Tokens
		return msg(lang, msgStatsTokens, tk.Mean, tk.Short, tk.Medium, tk.Long)
	}
	return ""
}

// shareLines renders "label: n (p%)" for labels, or for every entry of d
// when labels is nil. Fixed labels are listed even at zero.
func shareLines(d domain.Distribution, labels []string) []string {
	if labels == nil {
		for _, c := range d {
			labels = append(labels, c.Label)
		}
	}
	lines := make([]string, 0, len(labels))
	for _, label := range labels {
		lines = append(lines, fmt.Sprintf("%s: %d (%.1f%%)", label, d.Get(label), d.Percent(label)))
	}
	return lines
}

func orNone(lines []string, lang Language) []string {
	if len(lines) > 0 {
		return lines
	}
	label, ok := noneLabel[lang]
	if !ok {
		label = noneLabel[LangEnglish]
	}
	return []string{label}
}

// netPromoterScore is the promoter share minus the detractor share.
func netPromoterScore(d domain.Distribution) float64 {
	return d.Percent(string(domain.CategoryPromoter)) - d.Percent(string(domain.CategoryDetractor))
}
