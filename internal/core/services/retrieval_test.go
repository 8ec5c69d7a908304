package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vocal/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
	"github.com/custodia-labs/vocal/internal/postprocessors"
)

func newTestEngine(index driven.VectorIndex, embedder driven.EmbeddingService, corpus *Corpus) *RetrievalEngine {
	return NewRetrievalEngine(index, embedder, corpus, domain.DefaultAppSettings().Retrieval)
}

func stubIndex(hits ...driven.VectorHit) *mockVectorIndex {
	return &mockVectorIndex{VectorIndex: memory.NewVectorIndex(), hits: hits}
}

func TestRetrievalEngine_RejectsInvalidInputBeforeEmbedding(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		maxResults int
		expected   error
	}{
		{"empty query", "   ", 5, domain.ErrInvalidInput},
		{"zero results", "delivery", 0, domain.ErrInvalidMaxResults},
		{"negative results", "delivery", -1, domain.ErrInvalidMaxResults},
		{"above ceiling", "delivery", 51, domain.ErrInvalidMaxResults},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder := &mockEmbeddingService{}
			engine := newTestEngine(stubIndex(), embedder, publishedCorpus())

			_, err := engine.Search(context.Background(), tt.query, tt.maxResults, domain.FilterSet{})
			assert.ErrorIs(t, err, tt.expected)
			assert.Zero(t, embedder.calls)
		})
	}
}

func TestRetrievalEngine_CeilingIsAccepted(t *testing.T) {
	idx := stubIndex(vectorHit("r1", 0.1, day("2024-01-01")))
	engine := newTestEngine(idx, &mockEmbeddingService{}, publishedCorpus())

	result, err := engine.Search(context.Background(), "delivery", engine.MaxResultsCeiling(), domain.FilterSet{})
	require.NoError(t, err)
	assert.Equal(t, 50, result.MaxResults)
	assert.Equal(t, 150, idx.lastK)
}

func TestRetrievalEngine_CorpusState(t *testing.T) {
	t.Run("nothing published", func(t *testing.T) {
		engine := newTestEngine(stubIndex(), &mockEmbeddingService{}, NewCorpus())
		_, err := engine.Search(context.Background(), "delivery", 5, domain.FilterSet{})
		assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	})

	t.Run("rebuilding", func(t *testing.T) {
		corpus := publishedCorpus()
		require.True(t, corpus.acquire())
		defer corpus.release()

		engine := newTestEngine(stubIndex(), &mockEmbeddingService{}, corpus)
		_, err := engine.Search(context.Background(), "delivery", 5, domain.FilterSet{})
		assert.ErrorIs(t, err, domain.ErrRebuildInProgress)
	})

	t.Run("failed rebuild", func(t *testing.T) {
		corpus := publishedCorpus()
		corpus.invalidate()

		engine := newTestEngine(stubIndex(), &mockEmbeddingService{}, corpus)
		_, err := engine.Search(context.Background(), "delivery", 5, domain.FilterSet{})
		assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	})
}

// gatedQueryEmbedder holds the first Embed call until release is closed.
type gatedQueryEmbedder struct {
	mockEmbeddingService
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedQueryEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return bagOfWords(text), nil
}

func TestRetrievalEngine_RebuildDuringSearch(t *testing.T) {
	idx := memory.NewVectorIndex()
	corpus := NewCorpus()
	pipeline, err := postprocessors.NewDefaultPipeline(domain.DefaultAppSettings().Chunking)
	require.NoError(t, err)

	loader := &fakeLoader{suffix: ".csv", rows: rawRows()}
	initial := NewIndexService([]driven.CorpusLoader{loader}, fakeEnricher{}, pipeline, &mockEmbeddingService{}, idx, corpus, WithSource("feedback.csv"))
	_, err = initial.Rebuild(context.Background(), domain.RebuildOptions{})
	require.NoError(t, err)

	rebuildEmbedder := &blockingEmbedder{entered: make(chan struct{}), release: make(chan struct{})}
	forced := NewIndexService([]driven.CorpusLoader{loader}, fakeEnricher{}, pipeline, rebuildEmbedder, idx, corpus, WithSource("feedback.csv"))

	queryEmbedder := &gatedQueryEmbedder{entered: make(chan struct{}), release: make(chan struct{})}
	engine := newTestEngine(idx, queryEmbedder, corpus)

	query := "Lieferung kam zu spät, Kommunikation schlecht"
	searched := make(chan error, 1)
	go func() {
		_, err := engine.Search(context.Background(), query, 5, domain.FilterSet{})
		searched <- err
	}()
	<-queryEmbedder.entered

	rebuilt := make(chan error, 1)
	go func() {
		_, err := forced.Rebuild(context.Background(), domain.RebuildOptions{Force: true})
		rebuilt <- err
	}()
	<-rebuildEmbedder.entered

	// The index is reset and empty while the query proceeds.
	close(queryEmbedder.release)
	err = <-searched
	require.ErrorIs(t, err, domain.ErrRebuildInProgress)
	var noResults *domain.NoResultsError
	assert.False(t, errors.As(err, &noResults))

	close(rebuildEmbedder.release)
	require.NoError(t, <-rebuilt)

	result, err := engine.Search(context.Background(), query, 5, domain.FilterSet{})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Hits)
}

func TestCorpus_UnchangedDetectsRebuild(t *testing.T) {
	corpus := publishedCorpus()
	gen := corpus.Generation()
	require.NoError(t, corpus.Unchanged(gen))

	require.True(t, corpus.acquire())
	corpus.release()

	assert.NoError(t, corpus.Available())
	assert.ErrorIs(t, corpus.Unchanged(gen), domain.ErrRebuildInProgress)
	assert.NoError(t, corpus.Unchanged(corpus.Generation()))
}

func TestRetrievalEngine_MissingServices(t *testing.T) {
	_, err := newTestEngine(stubIndex(), nil, nil).Search(context.Background(), "q", 5, domain.FilterSet{})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	_, err = newTestEngine(nil, &mockEmbeddingService{}, nil).Search(context.Background(), "q", 5, domain.FilterSet{})
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
}

func TestRetrievalEngine_ThreeTierPolicy(t *testing.T) {
	ts := day("2024-01-01")
	idx := stubIndex(
		vectorHit("normal", 0.10, ts),   // 0.90
		vectorHit("edge-low", 0.25, ts), // 0.75, lower bound of normal
		vectorHit("low", 0.30, ts),      // 0.70
		vectorHit("edge-rej", 0.40, ts), // 0.60, lower bound of low
		vectorHit("rejected", 0.45, ts), // 0.55
	)
	engine := newTestEngine(idx, &mockEmbeddingService{}, nil)

	result, err := engine.Search(context.Background(), "delivery", 10, domain.FilterSet{})
	require.NoError(t, err)

	quality := map[string]domain.Quality{}
	for _, h := range result.Hits {
		quality[h.Metadata.RecordID] = h.Quality
		assert.GreaterOrEqual(t, h.Confidence, domain.DefaultRejectThreshold)
	}
	assert.Equal(t, map[string]domain.Quality{
		"normal":   domain.QualityNormal,
		"edge-low": domain.QualityNormal,
		"low":      domain.QualityLow,
		"edge-rej": domain.QualityLow,
	}, quality)
	assert.Equal(t, 2, result.LowQualityCount())
}

func TestRetrievalEngine_DeduplicatesByRecord(t *testing.T) {
	ts := day("2024-01-01")
	idx := stubIndex(
		vectorHit("r1", 0.20, ts),
		vectorHit("r1", 0.05, ts),
		vectorHit("r1", 0.30, ts),
		vectorHit("r2", 0.15, ts),
	)
	engine := newTestEngine(idx, &mockEmbeddingService{}, nil)

	result, err := engine.Search(context.Background(), "delivery", 10, domain.FilterSet{})
	require.NoError(t, err)
	require.Len(t, result.Hits, 2)

	assert.Equal(t, "r1", result.Hits[0].Metadata.RecordID)
	assert.InDelta(t, 0.95, result.Hits[0].Confidence, 1e-9)
	assert.Equal(t, "r2", result.Hits[1].Metadata.RecordID)
}

func TestRetrievalEngine_Ordering(t *testing.T) {
	idx := stubIndex(
		vectorHit("b", 0.2, day("2024-01-01")),
		vectorHit("a", 0.2, day("2024-01-01")),
		vectorHit("new", 0.2, day("2024-06-01")),
		vectorHit("best", 0.1, day("2023-01-01")),
	)
	engine := newTestEngine(idx, &mockEmbeddingService{}, nil)

	result, err := engine.Search(context.Background(), "delivery", 10, domain.FilterSet{})
	require.NoError(t, err)

	var ids []string
	for _, h := range result.Hits {
		ids = append(ids, h.Metadata.RecordID)
	}
	assert.Equal(t, []string{"best", "new", "a", "b"}, ids)

	for i := 1; i < len(result.Hits); i++ {
		assert.GreaterOrEqual(t, result.Hits[i-1].Confidence, result.Hits[i].Confidence)
	}
}

func TestRetrievalEngine_CountBound(t *testing.T) {
	var hits []driven.VectorHit
	for i := 0; i < 20; i++ {
		hits = append(hits, vectorHit(fmt.Sprintf("r%02d", i), 0.05+float64(i)*0.01, day("2024-01-01")))
	}
	idx := stubIndex(hits...)
	engine := newTestEngine(idx, &mockEmbeddingService{}, nil)

	for _, n := range []int{1, 3, 15, 50} {
		result, err := engine.Search(context.Background(), "delivery", n, domain.FilterSet{})
		require.NoError(t, err)
		assert.LessOrEqual(t, result.Len(), n)
		assert.Equal(t, n*overfetch, idx.lastK)
	}
}

func TestRetrievalEngine_NoResults(t *testing.T) {
	filters := domain.FilterSet{Country: "DE", Category: domain.CategoryDetractor}
	idx := stubIndex(vectorHit("r1", 0.9, day("2024-01-01")))
	engine := newTestEngine(idx, &mockEmbeddingService{}, nil)

	result, err := engine.Search(context.Background(), "weather", 5, filters)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrNoQualifyingResults)

	nr, ok := isNoResults(err)
	require.True(t, ok)
	assert.Equal(t, filters, nr.Filters)
	assert.Equal(t, "weather", nr.Query)
}

func TestRetrievalEngine_QualityGrade(t *testing.T) {
	ts := day("2024-01-01")
	tests := []struct {
		name     string
		distance float64
		expected domain.ResultQuality
	}{
		{"high", 0.05, domain.ResultQualityHigh},
		{"moderate", 0.20, domain.ResultQualityModerate},
		{"low", 0.35, domain.ResultQualityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(stubIndex(vectorHit("r1", tt.distance, ts)), &mockEmbeddingService{}, nil)
			result, err := engine.Search(context.Background(), "delivery", 5, domain.FilterSet{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.Quality)
		})
	}
}

func TestRetrievalEngine_UpstreamErrors(t *testing.T) {
	embedder := &mockEmbeddingService{embedErr: fmt.Errorf("ollama: %w", domain.ErrUpstreamUnavailable)}
	engine := newTestEngine(stubIndex(), embedder, nil)

	_, err := engine.Search(context.Background(), "delivery", 5, domain.FilterSet{})
	assert.True(t, domain.IsRetryable(err))

	idx := stubIndex()
	idx.searchErr = errors.New("disk on fire")
	engine = newTestEngine(idx, &mockEmbeddingService{}, nil)

	_, err = engine.Search(context.Background(), "delivery", 5, domain.FilterSet{})
	require.Error(t, err)
	assert.False(t, domain.IsRetryable(err))
}

func TestRetrievalEngine_FiltersAreHard(t *testing.T) {
	idx := &mockVectorIndex{VectorIndex: fixtureIndex(t)}
	engine := newTestEngine(idx, &mockEmbeddingService{}, publishedCorpus())

	query := "Lieferung kam zu spät, Kommunikation schlecht"
	result, err := engine.Search(context.Background(), query, 10, domain.FilterSet{Country: "AT"})
	require.NoError(t, err)

	assert.Equal(t, "r09", result.Hits[0].Metadata.RecordID)
	for _, h := range result.Hits {
		assert.Equal(t, "AT", h.Metadata.Country)
	}

	from := day("2024-03-10")
	result, err = engine.Search(context.Background(), query, 10, domain.FilterSet{DateFrom: &from})
	require.NoError(t, err)
	for _, h := range result.Hits {
		assert.False(t, h.Metadata.Time().Before(from), "hit %s before date filter", h.Metadata.RecordID)
	}
}

func TestRetrievalEngine_InvalidThresholdsFallBack(t *testing.T) {
	settings := domain.DefaultAppSettings().Retrieval
	settings.Thresholds = domain.Thresholds{Reject: 0.9, Low: 0.5, Medium: 0.2}

	engine := NewRetrievalEngine(stubIndex(), &mockEmbeddingService{}, nil, settings)
	assert.Equal(t, domain.DefaultThresholds(), engine.Thresholds())
}

func TestRetrievalEngine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	engine := newTestEngine(&mockVectorIndex{VectorIndex: fixtureIndex(t)}, &mockEmbeddingService{}, nil)
	_, err := engine.Search(ctx, "Lieferung", 5, domain.FilterSet{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
