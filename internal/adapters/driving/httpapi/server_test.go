package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driving"
)

type mockAssistant struct {
	response *domain.Response
	err      error
	lastReq  domain.TurnRequest
}

func (m *mockAssistant) Ask(_ context.Context, req domain.TurnRequest) (*domain.Response, error) {
	m.lastReq = req
	return m.response, m.err
}

func (m *mockAssistant) AskStream(ctx context.Context, req domain.TurnRequest, _ driving.SegmentFunc) (*domain.Response, error) {
	return m.Ask(ctx, req)
}

func (m *mockAssistant) Ready() bool { return true }

type mockRetrieval struct {
	result      *domain.RetrievalResult
	err         error
	lastLimit   int
	lastFilters domain.FilterSet
}

func (m *mockRetrieval) Search(_ context.Context, _ string, n int, f domain.FilterSet) (*domain.RetrievalResult, error) {
	m.lastLimit = n
	m.lastFilters = f
	return m.result, m.err
}

func (m *mockRetrieval) MaxResultsCeiling() int { return domain.DefaultMaxResultsCeiling }

type mockIndex struct {
	status domain.IndexStatus
	err    error
}

func (m *mockIndex) Rebuild(_ context.Context, opts domain.RebuildOptions) (domain.IndexStatus, error) {
	m.status.Source = opts.Source
	return m.status, m.err
}

func (m *mockIndex) Status() domain.IndexStatus { return m.status }

func (m *mockIndex) Snapshot() (*domain.Snapshot, error) {
	if !m.status.Ready {
		return nil, domain.ErrIndexUnavailable
	}
	snap := domain.EmptySnapshot(m.status.BuiltAt)
	snap.Empty = false
	snap.TotalRecords = m.status.Records
	return snap, nil
}

type mockCharts struct {
	response *domain.Response
	lastReq  domain.ChartRequest
}

func (m *mockCharts) Chart(_ context.Context, req domain.ChartRequest) (*domain.Response, error) {
	m.lastReq = req
	return m.response, nil
}

func newTestServer(t *testing.T, ports *Ports, opts ...Option) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if ports.Assistant == nil {
		ports.Assistant = &mockAssistant{response: &domain.Response{Kind: domain.ResponseText}}
	}
	s, err := NewServer(ports, opts...)
	require.NoError(t, err)
	return s.Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewServer_RequiresAssistant(t *testing.T) {
	_, err := NewServer(&Ports{})
	assert.ErrorIs(t, err, ErrMissingAssistant)
}

func TestAsk(t *testing.T) {
	dir := t.TempDir()
	assistant := &mockAssistant{response: &domain.Response{
		Kind:      domain.ResponseTextWithImage,
		Intent:    domain.IntentVisualization,
		Text:      "Sentiment distribution (3 records)",
		ImagePath: filepath.Join(dir, "sentiment_bar_20240101_120000_000.svg"),
	}}
	h := newTestServer(t, &Ports{Assistant: assistant}, WithChartDir(dir))

	rec := do(t, h, http.MethodPost, "/api/ask", `{"question":"Zeig mir die Stimmung"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	var out askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "text_with_image", out.Kind)
	assert.Equal(t, "/charts/sentiment_bar_20240101_120000_000.svg", out.ImageURL)
	assert.NotEmpty(t, out.SessionID)
	assert.Equal(t, out.SessionID, assistant.lastReq.SessionID)
}

func TestAsk_MissingQuestion(t *testing.T) {
	h := newTestServer(t, &Ports{})
	rec := do(t, h, http.MethodPost, "/api/ask", `{"question":" "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch(t *testing.T) {
	retrieval := &mockRetrieval{result: &domain.RetrievalResult{
		Quality: domain.ResultQualityModerate,
		Hits: []domain.RetrievalHit{{
			Segment:    domain.Segment{Content: "Werkstatt war freundlich"},
			Confidence: 0.6,
			Quality:    domain.QualityNormal,
			Metadata:   domain.EntryMetadata{RecordID: "r2", Market: "C1-AT", Score: 9},
		}},
	}}
	h := newTestServer(t, &Ports{Retrieval: retrieval})

	rec := do(t, h, http.MethodGet, "/api/search?q=Werkstatt&max_results=5&region=c1&date_to=bad", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, retrieval.lastLimit)
	assert.Equal(t, "C1", retrieval.lastFilters.Region)

	var out searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, "moderate", out.Quality)
	assert.Equal(t, "r2", out.Results[0].RecordID)
	assert.Len(t, out.Ignored, 1)
}

func TestSearch_Validation(t *testing.T) {
	h := newTestServer(t, &Ports{Retrieval: &mockRetrieval{}})

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/search", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/search?q=x&max_results=abc", "").Code)
}

func TestSearch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"no results", &domain.NoResultsError{Query: "x"}, http.StatusOK},
		{"out of range", domain.ErrInvalidMaxResults, http.StatusBadRequest},
		{"not ready", domain.ErrIndexUnavailable, http.StatusServiceUnavailable},
		{"rate limited", domain.ErrRateLimited, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, &Ports{Retrieval: &mockRetrieval{err: tt.err}})
			rec := do(t, h, http.MethodGet, "/api/search?q=x", "")
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestSearch_Unavailable(t *testing.T) {
	h := newTestServer(t, &Ports{})
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/api/search?q=x", "").Code)
}

func TestStats(t *testing.T) {
	index := &mockIndex{status: domain.IndexStatus{Ready: true, Records: 7}}
	h := newTestServer(t, &Ports{Statistics: index})

	rec := do(t, h, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 7, snap.TotalRecords)
}

func TestStats_NotReady(t *testing.T) {
	h := newTestServer(t, &Ports{Statistics: &mockIndex{}})
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/api/stats", "").Code)
}

func TestCharts(t *testing.T) {
	charts := &mockCharts{response: &domain.Response{Kind: domain.ResponseTextWithImage, ImagePath: "/elsewhere/x.svg"}}
	h := newTestServer(t, &Ports{Charts: charts})

	rec := do(t, h, http.MethodGet, "/api/charts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var catalog []chartSpec
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &catalog))
	assert.Len(t, catalog, len(domain.ChartCatalog()))

	rec = do(t, h, http.MethodPost, "/api/charts", `{"kind":"topic_pie","size":"small","market":"C1-DE"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ChartTopicPie, charts.lastReq.Kind)
	assert.Equal(t, domain.SizeSmall, charts.lastReq.Size)
	assert.Equal(t, "C1-DE", charts.lastReq.Filters.Market)
	assert.Contains(t, rec.Body.String(), "/elsewhere/x.svg")

	rec = do(t, h, http.MethodPost, "/api/charts", `{"kind":"radar"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChartFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.svg"), []byte("<svg/>"), 0o600))
	h := newTestServer(t, &Ports{}, WithChartDir(dir))

	rec := do(t, h, http.MethodGet, "/charts/a.svg", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<svg/>", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/charts/missing.svg", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/charts/.hidden", "").Code)
}

func TestRebuild(t *testing.T) {
	index := &mockIndex{status: domain.IndexStatus{Ready: true, Records: 3, Segments: 4}}
	h := newTestServer(t, &Ports{Index: index})

	rec := do(t, h, http.MethodPost, "/api/index", `{"source":"feedback.csv","force":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"records":3`)
	assert.Contains(t, rec.Body.String(), `"source":"feedback.csv"`)

	index.err = domain.ErrRebuildInProgress
	rec = do(t, h, http.MethodPost, "/api/index", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &Ports{Index: &mockIndex{status: domain.IndexStatus{Records: 2}}})
	rec := do(t, h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"records":2`)
}
