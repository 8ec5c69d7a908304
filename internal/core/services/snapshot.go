package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
	"github.com/custodia-labs/vocal/internal/logger"
)

// SnapshotBuilder computes the metadata snapshot from the index.
type SnapshotBuilder struct {
	now func() time.Time
}

// NewSnapshotBuilder creates a snapshot builder.
func NewSnapshotBuilder() *SnapshotBuilder {
	return &SnapshotBuilder{now: time.Now}
}

// Build scans every indexed entry once, counting each record once.
// An empty index yields a snapshot flagged as empty.
func (b *SnapshotBuilder) Build(ctx context.Context, index driven.VectorIndex) (*domain.Snapshot, error) {
	logger.Section("Snapshot")

	acc := newSnapshotAccumulator()
	err := index.Scan(ctx, func(e domain.IndexedEntry) error {
		acc.add(e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan index: %w", err)
	}

	snap := acc.snapshot(b.now())
	logger.Debug("Records: %d, segments: %d, markets: %d", snap.TotalRecords, snap.TotalSegments, len(snap.Markets))
	return snap, nil
}

// BuildFromRecords computes a snapshot directly from enriched records.
func (b *SnapshotBuilder) BuildFromRecords(records []domain.FeedbackRecord) *domain.Snapshot {
	acc := newSnapshotAccumulator()
	for i := range records {
		acc.add(domain.IndexedEntry{Metadata: records[i].Metadata()})
	}
	return acc.snapshot(b.now())
}

type snapshotAccumulator struct {
	seen     map[string]bool
	segments int

	markets    map[string]int
	regions    map[string]bool
	countries  map[string]bool
	categories map[string]int
	sentiments map[string]int
	topics     map[string]int

	scores []int
	tokens []int

	from, to int64
	dated    bool
}

func newSnapshotAccumulator() *snapshotAccumulator {
	return &snapshotAccumulator{
		seen:       make(map[string]bool),
		markets:    make(map[string]int),
		regions:    make(map[string]bool),
		countries:  make(map[string]bool),
		categories: make(map[string]int),
		sentiments: make(map[string]int),
		topics:     make(map[string]int),
	}
}

func (a *snapshotAccumulator) add(e domain.IndexedEntry) {
	a.segments++
	m := e.Metadata
	if a.seen[m.RecordID] {
		return
	}
	a.seen[m.RecordID] = true

	if m.Market != "" && m.Market != domain.Unknown {
		a.markets[m.Market]++
	}
	if m.Region != "" && m.Region != domain.Unknown {
		a.regions[m.Region] = true
	}
	if m.Country != "" && m.Country != domain.Unknown {
		a.countries[m.Country] = true
	}
	if m.Category.IsValid() {
		a.categories[string(m.Category)]++
		a.scores = append(a.scores, m.Score)
	}
	if m.SentimentLabel != "" {
		a.sentiments[string(m.SentimentLabel)]++
	}
	if m.Topic != "" {
		a.topics[m.Topic]++
	}
	a.tokens = append(a.tokens, m.TokenCount)

	if m.Timestamp > 0 {
		if !a.dated || m.Timestamp < a.from {
			a.from = m.Timestamp
		}
		if !a.dated || m.Timestamp > a.to {
			a.to = m.Timestamp
		}
		a.dated = true
	}
}

func (a *snapshotAccumulator) snapshot(now time.Time) *domain.Snapshot {
	if len(a.seen) == 0 {
		return domain.EmptySnapshot(now)
	}

	snap := &domain.Snapshot{
		TotalRecords:  len(a.seen),
		TotalSegments: a.segments,
		Markets:       sortedKeys(a.markets),
		Regions:       sortedSet(a.regions),
		Countries:     sortedSet(a.countries),
		Categories:    domain.NewDistribution(a.categories),
		Sentiments:    domain.NewDistribution(a.sentiments),
		Topics:        domain.NewDistribution(a.topics),
		MarketDist:    domain.NewDistribution(a.markets),
		Scores:        numericStats(a.scores),
		BuiltAt:       now,
	}

	snap.Tokens.NumericStats = numericStats(a.tokens)
	for _, n := range a.tokens {
		switch {
		case n <= domain.ShortTextMaxTokens:
			snap.Tokens.Short++
		case n <= domain.MediumTextMaxTokens:
			snap.Tokens.Medium++
		default:
			snap.Tokens.Long++
		}
	}

	if a.dated {
		snap.Dates = domain.DateRange{
			From:  time.Unix(a.from, 0).UTC(),
			To:    time.Unix(a.to, 0).UTC(),
			Known: true,
		}
	}
	return snap
}

func numericStats(values []int) domain.NumericStats {
	if len(values) == 0 {
		return domain.NumericStats{}
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)

	sum := 0
	for _, v := range sorted {
		sum += v
	}

	n := len(sorted)
	median := float64(sorted[n/2])
	if n%2 == 0 {
		median = float64(sorted[n/2-1]+sorted[n/2]) / 2
	}

	return domain.NumericStats{
		Count:  n,
		Mean:   float64(sum) / float64(n),
		Median: median,
		Min:    sorted[0],
		Max:    sorted[n-1],
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedSet(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
