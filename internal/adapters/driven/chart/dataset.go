package chart

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
)

// maxEntities caps the dealership chart.
const maxEntities = 10

// dealershipPattern finds "<prefix> <Name>" mentions such as "Autohaus Müller".
var dealershipPattern = regexp.MustCompile(
	`\b(Autohaus|Werkstatt|AutoCenter|Motorwelt|Service-Center|Autopark|AutoPalast|Fahrzeugwelt|` +
		`Service-Oase|Motorhof|AutoArena|Servicewelt|Motorreich|Service-Station|Autowelt)\s+(\p{Lu}[\p{L}]+(?:\s+Plus)?)`)

// record is one filtered record reassembled from its index entries.
type record struct {
	meta  domain.EntryMetadata
	texts []string
}

// dataset holds the records matching one chart request.
type dataset struct {
	records []*record
}

// loadDataset scans the index once and keeps one record per record ID.
func loadDataset(ctx context.Context, index driven.VectorIndex, filters domain.FilterSet) (*dataset, error) {
	byID := make(map[string]*record)
	var order []string

	err := index.Scan(ctx, func(e domain.IndexedEntry) error {
		if !filters.Matches(e.Metadata) {
			return nil
		}
		id := e.Metadata.RecordID
		rec, ok := byID[id]
		if !ok {
			rec = &record{meta: e.Metadata}
			byID[id] = rec
			order = append(order, id)
		}
		rec.texts = append(rec.texts, e.Segment.Content)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(order)
	ds := &dataset{records: make([]*record, 0, len(order))}
	for _, id := range order {
		ds.records = append(ds.records, byID[id])
	}
	return ds, nil
}

func (d *dataset) count(key func(domain.EntryMetadata) string) map[string]int {
	counts := make(map[string]int)
	for _, r := range d.records {
		if k := key(r.meta); k != "" && k != domain.Unknown {
			counts[k]++
		}
	}
	return counts
}

// markets returns the markets ordered by volume.
func (d *dataset) markets() []string {
	var labels []string
	for _, c := range domain.NewDistribution(d.count(marketKey)) {
		labels = append(labels, c.Label)
	}
	return labels
}

// mentions counts each dealership at most once per record.
func (d *dataset) mentions() domain.Distribution {
	counts := make(map[string]int)
	for _, r := range d.records {
		seen := make(map[string]bool)
		for _, text := range r.texts {
			for _, m := range dealershipPattern.FindAllStringSubmatch(text, -1) {
				name := m[1] + " " + strings.Join(strings.Fields(m[2]), " ")
				if !seen[name] {
					seen[name] = true
					counts[name]++
				}
			}
		}
	}
	dist := domain.NewDistribution(counts)
	if len(dist) > maxEntities {
		dist = dist[:maxEntities]
	}
	return dist
}

// months buckets dated records by calendar month, oldest first.
func (d *dataset) months() (labels []string, byMonth map[string][]domain.EntryMetadata) {
	byMonth = make(map[string][]domain.EntryMetadata)
	for _, r := range d.records {
		if r.meta.Timestamp <= 0 {
			continue
		}
		key := r.meta.Time().Format("2006-01")
		if _, ok := byMonth[key]; !ok {
			labels = append(labels, key)
		}
		byMonth[key] = append(byMonth[key], r.meta)
	}
	sort.Strings(labels)
	return labels, byMonth
}

func marketKey(m domain.EntryMetadata) string    { return m.Market }
func sentimentKey(m domain.EntryMetadata) string { return string(m.SentimentLabel) }
func topicKey(m domain.EntryMetadata) string     { return m.Topic }

func categoryKey(m domain.EntryMetadata) string {
	if !m.Category.IsValid() {
		return ""
	}
	return string(m.Category)
}
