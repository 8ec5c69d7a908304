package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

// mockRetrievalService implements driving.RetrievalService for testing.
type mockRetrievalService struct {
	result *domain.RetrievalResult
	err    error

	query      string
	maxResults int
	filters    domain.FilterSet
	calls      int
}

func (m *mockRetrievalService) Search(
	_ context.Context, query string, maxResults int, filters domain.FilterSet,
) (*domain.RetrievalResult, error) {
	m.calls++
	m.query, m.maxResults, m.filters = query, maxResults, filters
	if m.err != nil {
		return nil, m.err
	}
	res := *m.result
	res.Query, res.MaxResults, res.Filters = query, maxResults, filters
	return &res, nil
}

func (m *mockRetrievalService) MaxResultsCeiling() int {
	return domain.DefaultMaxResultsCeiling
}

func newTestRetrievalSpecialist(engine *mockRetrievalService, opts ...RetrievalOption) *RetrievalSpecialist {
	return NewRetrievalSpecialist(engine, newTestExtractor(), NewSummarizer(0), opts...)
}

func contentTurn(text string) Turn {
	return Turn{Text: text, Snapshot: fixtureSnapshot(), Lang: detectLanguage(text)}
}

func numberedBullets(segments []string) int {
	n := 0
	for _, seg := range segments {
		if strings.HasPrefix(seg, fmt.Sprintf("%d. [", n+1)) {
			n++
		}
	}
	return n
}

func TestRetrievalSpecialist_ScenarioB(t *testing.T) {
	engine := &mockRetrievalService{result: summaryResult(5)}
	s := newTestRetrievalSpecialist(engine)

	resp, err := s.Handle(context.Background(), contentTurn("top 5 complaints from detractors in Germany"))
	require.NoError(t, err)

	assert.Equal(t, 5, engine.maxResults)
	assert.Equal(t, domain.FilterSet{Category: domain.CategoryDetractor, Country: "DE"}, engine.filters)

	assert.Equal(t, domain.ResponseText, resp.Kind)
	assert.Equal(t, domain.IntentContent, resp.Intent)
	assert.Equal(t, domain.CapabilitySummary, resp.Handler)
	require.NotNil(t, resp.Result)
	assert.Equal(t, 5, resp.Result.Len())

	assert.Equal(t, 5, numberedBullets(resp.Segments))
	for _, rec := range fixtureRecords()[:5] {
		assert.Equal(t, 1, strings.Count(resp.Text, rec.Body))
	}
	assert.Contains(t, resp.Text, "Summary of 5 feedback comment(s)")
	assert.Contains(t, resp.Text, "Applied filters: country=DE, category=Detractor")
}

func TestRetrievalSpecialist_FewHitsAreListed(t *testing.T) {
	engine := &mockRetrievalService{result: summaryResult(SummaryThreshold)}
	s := newTestRetrievalSpecialist(engine)

	resp, err := s.Handle(context.Background(), contentTurn("show me comments about the workshop"))
	require.NoError(t, err)

	assert.Equal(t, domain.CapabilityRetrieval, resp.Handler)
	assert.Equal(t, "Found 3 matching comment(s):", resp.Segments[0])
	assert.Equal(t, 3, numberedBullets(resp.Segments))
	assert.NotContains(t, resp.Text, "Summary of")
}

func TestRetrievalSpecialist_ScenarioC(t *testing.T) {
	idx := &mockVectorIndex{VectorIndex: fixtureIndex(t)}
	engine := newTestEngine(idx, &mockEmbeddingService{}, publishedCorpus())
	s := NewRetrievalSpecialist(engine, newTestExtractor(), NewSummarizer(0))

	resp, err := s.Handle(context.Background(), contentTurn("complaints from promoters in the united states about the workshop"))
	require.NoError(t, err)

	assert.Equal(t, domain.ResponseNoResults, resp.Kind)
	assert.Nil(t, resp.Result)
	require.NotEmpty(t, resp.Suggestions)
	assert.Contains(t, resp.Suggestions, "remove the filter country=US")
	assert.Contains(t, resp.Suggestions, "remove the filter category=Promoter")
	assert.Contains(t, resp.Suggestions, "remove the filter topic=Werkstatt")
	assert.Equal(t, "use broader wording", resp.Suggestions[len(resp.Suggestions)-1])
	assert.Contains(t, resp.Text, "I found no feedback")
}

func TestRetrievalSpecialist_NoResultsWithDates(t *testing.T) {
	engine := &mockRetrievalService{err: &domain.NoResultsError{Query: "x"}}
	s := newTestRetrievalSpecialist(engine)

	resp, err := s.Handle(context.Background(), contentTurn("Beschwerden seit 2025-01-01"))
	require.NoError(t, err)

	assert.Equal(t, domain.ResponseNoResults, resp.Kind)
	assert.Equal(t, []string{"allgemeinere Begriffe verwenden"}, resp.Suggestions)

	engine.err = &domain.NoResultsError{Query: "x", Filters: engine.filters}
	resp, err = s.Handle(context.Background(), contentTurn("Beschwerden seit 2025-01-01"))
	require.NoError(t, err)
	assert.Equal(t, []string{"den Zeitraum erweitern", "allgemeinere Begriffe verwenden"}, resp.Suggestions)
}

func TestRetrievalSpecialist_Notes(t *testing.T) {
	engine := &mockRetrievalService{result: summaryResult(2)}
	s := newTestRetrievalSpecialist(engine)

	resp, err := s.Handle(context.Background(), contentTurn("top 80 complaints from France"))
	require.NoError(t, err)

	assert.Equal(t, 50, engine.maxResults)
	assert.Contains(t, resp.Text, "Note: 80 results were requested but at most 50 can be shown.")
	assert.Contains(t, resp.Text, `Ignored filters: country="france" (no feedback from this country)`)
	assert.True(t, engine.filters.IsEmpty())
	require.Len(t, resp.Result.Ignored, 1)
}

func TestRetrievalSpecialist_Failures(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      domain.ResponseKind
		retryable bool
		text      string
	}{
		{"rebuilding", domain.ErrRebuildInProgress, domain.ResponseNotReady, false, "being rebuilt"},
		{"no corpus", domain.ErrIndexUnavailable, domain.ResponseNotReady, false, "not ready yet"},
		{"upstream", fmt.Errorf("embed query: %w", domain.ErrUpstreamUnavailable), domain.ResponseError, true, "temporarily unavailable"},
		{"rate limited", fmt.Errorf("embed query: %w", domain.ErrRateLimited), domain.ResponseError, true, "temporarily unavailable"},
		{"internal", errors.New("boom"), domain.ResponseError, false, "something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestRetrievalSpecialist(&mockRetrievalService{err: tt.err})

			resp, err := s.Handle(context.Background(), contentTurn("complaints about delivery"))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, resp.Kind)
			assert.Equal(t, tt.retryable, resp.Retryable)
			assert.Contains(t, resp.Text, tt.text)
			assert.NotContains(t, resp.Text, "boom")
		})
	}
}

func TestRetrievalSpecialist_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestRetrievalSpecialist(&mockRetrievalService{err: fmt.Errorf("embed: %w", context.Canceled)})
	resp, err := s.Handle(ctx, contentTurn("complaints about delivery"))
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetrievalSpecialist_QueryRewrite(t *testing.T) {
	t.Run("rewritten", func(t *testing.T) {
		engine := &mockRetrievalService{result: summaryResult(1)}
		llm := &mockLLMService{rewriteResult: "late delivery communication"}
		s := newTestRetrievalSpecialist(engine, WithQueryRewrite(llm))

		_, err := s.Handle(context.Background(), contentTurn("complaints about delivery"))
		require.NoError(t, err)
		assert.Equal(t, 1, llm.rewrites)
		assert.Equal(t, "late delivery communication", engine.query)
	})

	t.Run("rewrite failure keeps query", func(t *testing.T) {
		engine := &mockRetrievalService{result: summaryResult(1)}
		llm := &mockLLMService{rewriteErr: domain.ErrUpstreamUnavailable}
		s := newTestRetrievalSpecialist(engine, WithQueryRewrite(llm))

		_, err := s.Handle(context.Background(), contentTurn("complaints about delivery"))
		require.NoError(t, err)
		assert.Equal(t, "complaints delivery", engine.query)
	})

	t.Run("without llm", func(t *testing.T) {
		engine := &mockRetrievalService{result: summaryResult(1)}
		s := newTestRetrievalSpecialist(engine, WithQueryRewrite(nil))

		_, err := s.Handle(context.Background(), contentTurn("complaints about delivery"))
		require.NoError(t, err)
		assert.Equal(t, "complaints delivery", engine.query)
	})
}
