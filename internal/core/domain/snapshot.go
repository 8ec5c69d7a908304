package domain

import (
	"sort"
	"strings"
	"time"
)

// Token-length buckets used by the snapshot.
const (
	ShortTextMaxTokens  = 20
	MediumTextMaxTokens = 100
)

// Count is a labelled frequency.
type Count struct {
	Label string
	N     int
}

// Distribution is an ordered list of counts, largest first.
type Distribution []Count

// NewDistribution sorts counts by frequency, then label.
func NewDistribution(counts map[string]int) Distribution {
	d := make(Distribution, 0, len(counts))
	for label, n := range counts {
		d = append(d, Count{Label: label, N: n})
	}
	sort.Slice(d, func(i, j int) bool {
		if d[i].N != d[j].N {
			return d[i].N > d[j].N
		}
		return d[i].Label < d[j].Label
	})
	return d
}

// Total sums all counts.
func (d Distribution) Total() int {
	total := 0
	for _, c := range d {
		total += c.N
	}
	return total
}

// Get returns the count for label.
func (d Distribution) Get(label string) int {
	for _, c := range d {
		if c.Label == label {
			return c.N
		}
	}
	return 0
}

// Percent returns the share of label in percent, 0 when empty.
func (d Distribution) Percent(label string) float64 {
	total := d.Total()
	if total == 0 {
		return 0
	}
	return float64(d.Get(label)) * 100 / float64(total)
}

// Top returns the most frequent label, or "" when empty.
func (d Distribution) Top() string {
	if len(d) == 0 {
		return ""
	}
	return d[0].Label
}

// NumericStats summarises an integer attribute.
type NumericStats struct {
	Count  int
	Mean   float64
	Median float64
	Min    int
	Max    int
}

// TokenStats summarises body lengths in tokens.
type TokenStats struct {
	NumericStats
	Short  int
	Medium int
	Long   int
}

// DateRange is the earliest and latest record timestamp.
type DateRange struct {
	From  time.Time
	To    time.Time
	Known bool
}

// SingleDay reports whether every record falls on the same calendar day.
func (r DateRange) SingleDay() bool {
	if !r.Known {
		return false
	}
	return r.From.Format(DateLayout) == r.To.Format(DateLayout)
}

// Snapshot is the immutable aggregate over the indexed corpus.
// It is built once and never mutated.
type Snapshot struct {
	// Empty is set when the corpus had no records.
	Empty bool

	TotalRecords  int
	TotalSegments int

	Markets   []string
	Regions   []string
	Countries []string

	Categories Distribution
	Sentiments Distribution
	Topics     Distribution
	MarketDist Distribution

	Dates  DateRange
	Scores NumericStats
	Tokens TokenStats

	BuiltAt time.Time
}

// EmptySnapshot returns a snapshot flagged as empty with zero statistics.
func EmptySnapshot(now time.Time) *Snapshot {
	return &Snapshot{
		Empty:      true,
		Categories: Distribution{},
		Sentiments: Distribution{},
		Topics:     Distribution{},
		MarketDist: Distribution{},
		BuiltAt:    now,
	}
}

// HasMarket reports whether market occurs in the corpus.
func (s *Snapshot) HasMarket(market string) bool {
	return containsFold(s.Markets, market)
}

// HasCountry reports whether country occurs in the corpus.
func (s *Snapshot) HasCountry(country string) bool {
	return containsFold(s.Countries, country)
}

// HasRegion reports whether region occurs in the corpus.
func (s *Snapshot) HasRegion(region string) bool {
	return containsFold(s.Regions, region)
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
