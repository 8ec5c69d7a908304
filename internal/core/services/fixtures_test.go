package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vocal/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Without a fixed embedding it hashes words into a small vector so that
// texts sharing words are close.
type mockEmbeddingService struct {
	embedding []float32
	embedErr  error
	calls     int
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.embedding != nil {
		return m.embedding, nil
	}
	return bagOfWords(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = vec
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return 32
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

func bagOfWords(text string) []float32 {
	vec := make([]float32, 32)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(w, ".,!?")))
		vec[h.Sum32()%32]++
	}
	return vec
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	rewriteResult string
	rewriteErr    error
	rewrites      int
}

func (m *mockLLMService) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	return "", nil
}

func (m *mockLLMService) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	return "", nil
}

func (m *mockLLMService) RewriteQuery(_ context.Context, query string) (string, error) {
	m.rewrites++
	if m.rewriteErr != nil {
		return "", m.rewriteErr
	}
	if m.rewriteResult != "" {
		return m.rewriteResult, nil
	}
	return query, nil
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

// mockVectorIndex wraps the memory index and can inject failures.
type mockVectorIndex struct {
	*memory.VectorIndex
	hits      []driven.VectorHit
	searchErr error
	lastK     int
}

func (m *mockVectorIndex) Search(ctx context.Context, q []float32, k int, f domain.FilterSet) ([]driven.VectorHit, error) {
	m.lastK = k
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if m.hits != nil {
		return m.hits, nil
	}
	return m.VectorIndex.Search(ctx, q, k, f)
}

// mockChartRenderer implements driven.ChartRenderer for testing.
type mockChartRenderer struct {
	result domain.ChartResult
	err    error
	last   *domain.ChartRequest
}

func (m *mockChartRenderer) Render(_ context.Context, req domain.ChartRequest) (domain.ChartResult, error) {
	m.last = &req
	if m.err != nil {
		return domain.ChartResult{}, m.err
	}
	res := m.result
	if res.ImagePath == "" {
		res.ImagePath = "/tmp/charts/" + string(req.Kind) + ".svg"
	}
	return res, nil
}

// --- Test helpers ---

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func record(id, body string, score int, market, date string, sentiment domain.SentimentLabel, topic string) domain.FeedbackRecord {
	region, country := domain.ParseMarket(market)
	return domain.FeedbackRecord{
		ID:              id,
		Body:            body,
		Score:           score,
		Category:        domain.CategoryForScore(score),
		Market:          market,
		Region:          region,
		Country:         country,
		Timestamp:       day(date),
		SentimentLabel:  sentiment,
		SentimentScore:  0,
		Topic:           topic,
		TopicConfidence: 0.8,
		TokenCount:      len(strings.Fields(body)),
	}
}

// fixtureRecords is a small corpus over three markets.
func fixtureRecords() []domain.FeedbackRecord {
	neg, neu, pos := domain.SentimentNegative, domain.SentimentNeutral, domain.SentimentPositive
	return []domain.FeedbackRecord{
		record("r01", "Lieferung kam drei Wochen zu spät und niemand hat informiert", 2, "C1-DE", "2024-01-10", neg, "Lieferproblem"),
		record("r02", "Lieferung verspätet, Händler war nicht erreichbar", 3, "C1-DE", "2024-01-12", neg, "Lieferproblem"),
		record("r03", "Werkstatt Termin wurde zweimal verschoben", 4, "C1-DE", "2024-02-01", neg, "Werkstatt"),
		record("r04", "Werkstatt hat den Fehler nicht gefunden", 1, "C1-DE", "2024-02-15", neg, "Werkstatt"),
		record("r05", "Preis war zu hoch für die Leistung", 5, "C1-DE", "2024-03-01", neg, "Preis"),
		record("r06", "Probefahrt war angenehm, Beratung freundlich", 9, "C1-DE", "2024-03-05", pos, "Probefahrt"),
		record("r07", "Alles bestens, gerne wieder", 10, "C1-AT", "2024-03-07", pos, "Service"),
		record("r08", "Übergabe okay, aber Unterlagen fehlten", 7, "C1-AT", "2024-03-09", neu, "Fahrzeugübergabe"),
		record("r09", "Lieferung kam zu spät, Kommunikation schlecht", 6, "C1-AT", "2024-03-11", neg, "Lieferproblem"),
		record("r10", "Finanzierung schnell und unkompliziert", 8, "C2-US", "2024-03-20", pos, "Finanzierung"),
	}
}

func fixtureSnapshot() *domain.Snapshot {
	return NewSnapshotBuilder().BuildFromRecords(fixtureRecords())
}

// fixtureIndex indexes every fixture record as one segment embedded with
// the bag-of-words mock.
func fixtureIndex(t *testing.T) *memory.VectorIndex {
	t.Helper()
	idx := memory.NewVectorIndex()
	entries := make([]domain.IndexedEntry, 0, len(fixtureRecords()))
	for _, rec := range fixtureRecords() {
		rec := rec
		seg := domain.Segment{ID: "seg-" + rec.ID, RecordID: rec.ID, Content: rec.Body, Total: 1}
		entries = append(entries, domain.NewIndexedEntry(&rec, seg, bagOfWords(rec.Body)))
	}
	require.NoError(t, idx.Upsert(context.Background(), entries))
	return idx
}

// publishedCorpus returns a corpus with the fixture snapshot published.
func publishedCorpus() *Corpus {
	c := NewCorpus()
	c.publish(fixtureSnapshot(), domain.IndexStatus{Source: "fixture.csv", Records: 10, Segments: 10})
	return c
}

// vectorHit builds a hit for record id at the given distance.
func vectorHit(id string, distance float64, ts time.Time) driven.VectorHit {
	return driven.VectorHit{
		Entry: domain.IndexedEntry{
			Segment:  domain.Segment{ID: fmt.Sprintf("seg-%s-%.2f", id, distance), RecordID: id, Content: "Inhalt " + id, Total: 1},
			Metadata: domain.EntryMetadata{RecordID: id, Timestamp: ts.Unix(), Category: domain.CategoryDetractor, Market: "C1-DE", Country: "DE"},
		},
		Distance: distance,
	}
}
