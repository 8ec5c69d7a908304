package httpapi

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/logger"
)

type askRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

type askResponse struct {
	SessionID   string   `json:"session_id"`
	Kind        string   `json:"kind"`
	Intent      string   `json:"intent,omitempty"`
	Text        string   `json:"text"`
	ImageURL    string   `json:"image_url,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Retryable   bool     `json:"retryable,omitempty"`
}

type filterRequest struct {
	Market    string `json:"market" form:"market"`
	Region    string `json:"region" form:"region"`
	Country   string `json:"country" form:"country"`
	Sentiment string `json:"sentiment" form:"sentiment"`
	Category  string `json:"category" form:"category"`
	Topic     string `json:"topic" form:"topic"`
	DateFrom  string `json:"date_from" form:"date_from"`
	DateTo    string `json:"date_to" form:"date_to"`
}

func (f filterRequest) input() domain.FilterInput {
	return domain.FilterInput(f)
}

type searchHit struct {
	RecordID   string  `json:"record_id"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Quality    string  `json:"quality"`
	Score      int     `json:"score"`
	Category   string  `json:"category"`
	Market     string  `json:"market"`
	Sentiment  string  `json:"sentiment"`
	Topic      string  `json:"topic"`
	Date       string  `json:"date,omitempty"`
}

type searchResponse struct {
	Query   string      `json:"query"`
	Quality string      `json:"quality,omitempty"`
	Count   int         `json:"count"`
	Applied []string    `json:"applied_filters,omitempty"`
	Ignored []string    `json:"ignored_filters,omitempty"`
	Results []searchHit `json:"results"`
}

type chartRequest struct {
	filterRequest
	Kind string `json:"kind"`
	Size string `json:"size"`
}

type chartSpec struct {
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type rebuildRequest struct {
	Source string `json:"source"`
	Force  bool   `json:"force"`
}

func (s *Server) health(c *gin.Context) {
	body := gin.H{"status": "ok", "ready": s.ports.Assistant.Ready()}
	if s.ports.Index != nil {
		status := s.ports.Index.Status()
		body["records"] = status.Records
		body["rebuilding"] = status.Rebuilding
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		errorJSON(c, http.StatusBadRequest, "question is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	resp, err := s.ports.Assistant.Ask(c.Request.Context(), domain.TurnRequest{
		SessionID: req.SessionID,
		Text:      req.Question,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, askResponse{
		SessionID:   req.SessionID,
		Kind:        string(resp.Kind),
		Intent:      string(resp.Intent),
		Text:        resp.Text,
		ImageURL:    s.imageURL(resp.ImagePath),
		Suggestions: resp.Suggestions,
		Retryable:   resp.Retryable,
	})
}

func (s *Server) search(c *gin.Context) {
	if s.ports.Retrieval == nil {
		errorJSON(c, http.StatusServiceUnavailable, "search not available")
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		errorJSON(c, http.StatusBadRequest, "query parameter q is required")
		return
	}
	limit := domain.DefaultMaxResults
	if raw := c.Query("max_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, "max_results must be an integer")
			return
		}
		limit = n
	}

	var f filterRequest
	if err := c.ShouldBindQuery(&f); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid filters")
		return
	}
	filters, ignored := s.resolve(f)

	out := searchResponse{
		Query:   query,
		Applied: filters.Describe(),
		Results: []searchHit{},
	}
	for _, ig := range ignored {
		out.Ignored = append(out.Ignored, ig.String())
	}

	result, err := s.ports.Retrieval.Search(c.Request.Context(), query, limit, filters)
	if errors.Is(err, domain.ErrNoQualifyingResults) {
		c.JSON(http.StatusOK, out)
		return
	}
	if err != nil {
		handleError(c, err)
		return
	}

	out.Quality = string(result.Quality)
	out.Count = result.Len()
	for _, h := range result.Hits {
		hit := searchHit{
			RecordID:   h.Metadata.RecordID,
			Text:       h.Segment.Content,
			Confidence: h.Confidence,
			Quality:    string(h.Quality),
			Score:      h.Metadata.Score,
			Category:   string(h.Metadata.Category),
			Market:     h.Metadata.Market,
			Sentiment:  string(h.Metadata.SentimentLabel),
			Topic:      h.Metadata.Topic,
		}
		if h.Metadata.Timestamp > 0 {
			hit.Date = h.Metadata.Time().Format(domain.DateLayout)
		}
		out.Results = append(out.Results, hit)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) stats(c *gin.Context) {
	if s.ports.Statistics == nil {
		errorJSON(c, http.StatusServiceUnavailable, "statistics not available")
		return
	}
	snap, err := s.ports.Statistics.Snapshot()
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) chartCatalog(c *gin.Context) {
	catalog := domain.ChartCatalog()
	out := make([]chartSpec, len(catalog))
	for i, spec := range catalog {
		out[i] = chartSpec{Kind: string(spec.Kind), Title: spec.Title, Description: spec.Description}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createChart(c *gin.Context) {
	if s.ports.Charts == nil {
		errorJSON(c, http.StatusServiceUnavailable, "charts not available")
		return
	}

	var req chartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request")
		return
	}
	kind := domain.ChartKind(strings.ToLower(req.Kind))
	if !kind.IsValid() {
		errorJSON(c, http.StatusBadRequest, "unknown chart kind")
		return
	}
	filters, _ := s.resolve(req.filterRequest)

	resp, err := s.ports.Charts.Chart(c.Request.Context(), domain.ChartRequest{
		Kind:    kind,
		Filters: filters,
		Size:    domain.SizeHint(strings.ToLower(req.Size)),
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, askResponse{
		Kind:        string(resp.Kind),
		Intent:      string(resp.Intent),
		Text:        resp.Text,
		ImageURL:    s.imageURL(resp.ImagePath),
		Suggestions: resp.Suggestions,
		Retryable:   resp.Retryable,
	})
}

func (s *Server) rebuild(c *gin.Context) {
	if s.ports.Index == nil {
		errorJSON(c, http.StatusServiceUnavailable, "indexing not available")
		return
	}

	var req rebuildRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errorJSON(c, http.StatusBadRequest, "invalid request")
			return
		}
	}

	status, err := s.ports.Index.Rebuild(c.Request.Context(), domain.RebuildOptions{Source: req.Source, Force: req.Force})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"source":   status.Source,
		"records":  status.Records,
		"segments": status.Segments,
		"skipped":  status.Skipped,
		"reused":   status.Reused,
	})
}

func (s *Server) chartFile(c *gin.Context) {
	name := filepath.Base(c.Param("name"))
	if name == "." || name == string(filepath.Separator) || strings.HasPrefix(name, ".") {
		errorJSON(c, http.StatusNotFound, "not found")
		return
	}
	path := filepath.Join(s.chartDir, name)
	if _, err := os.Stat(path); err != nil {
		errorJSON(c, http.StatusNotFound, "not found")
		return
	}
	c.File(path)
}

// imageURL maps a rendered file in the chart directory to its route.
func (s *Server) imageURL(path string) string {
	if path == "" {
		return ""
	}
	if s.chartDir != "" && filepath.Dir(path) == filepath.Clean(s.chartDir) {
		return "/charts/" + filepath.Base(path)
	}
	return path
}

func (s *Server) resolve(f filterRequest) (domain.FilterSet, []domain.IgnoredFilter) {
	if s.ports.Filters != nil {
		return s.ports.Filters.Resolve(f.input())
	}
	return f.input().FilterSet()
}

func errorJSON(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func handleError(c *gin.Context, err error) {
	logger.Warn("http request_id=%s %s %s: %v", c.GetString(requestIDKey), c.Request.Method, c.Request.URL.Path, err)
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidMaxResults):
		errorJSON(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		errorJSON(c, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrRebuildInProgress):
		errorJSON(c, http.StatusConflict, "index rebuild in progress")
	case errors.Is(err, domain.ErrIndexUnavailable):
		errorJSON(c, http.StatusServiceUnavailable, "index not ready")
	case domain.IsRetryable(err):
		errorJSON(c, http.StatusServiceUnavailable, "upstream service unavailable, try again")
	default:
		errorJSON(c, http.StatusInternalServerError, "internal error")
	}
}
