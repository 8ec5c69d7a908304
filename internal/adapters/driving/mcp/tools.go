package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

// sessionPrefix keeps MCP sessions apart from CLI and HTTP sessions.
const sessionPrefix = "mcp:"

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question  string `json:"question" jsonschema:"the question about the customer feedback, in German or English"`
	SessionID string `json:"session_id,omitempty" jsonschema:"conversation id; turns with the same id share history"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Kind        string   `json:"kind"`
	Intent      string   `json:"intent,omitempty"`
	Answer      string   `json:"answer"`
	ImagePath   string   `json:"image_path,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Retryable   bool     `json:"retryable,omitempty"`
}

// FilterInput holds the optional structured filters shared by tools.
type FilterInput struct {
	Market    string `json:"market,omitempty" jsonschema:"market id like C1-DE, a country code or a country name"`
	Country   string `json:"country,omitempty" jsonschema:"country code or name"`
	Region    string `json:"region,omitempty" jsonschema:"region code like C1"`
	Sentiment string `json:"sentiment,omitempty" jsonschema:"positive, neutral or negative"`
	Category  string `json:"category,omitempty" jsonschema:"Promoter, Passive or Detractor"`
	Topic     string `json:"topic,omitempty" jsonschema:"one of the fixed feedback topics"`
	DateFrom  string `json:"date_from,omitempty" jsonschema:"inclusive start date YYYY-MM-DD"`
	DateTo    string `json:"date_to,omitempty" jsonschema:"inclusive end date YYYY-MM-DD"`
}

func (f FilterInput) domain() domain.FilterInput {
	return domain.FilterInput{
		Market:    f.Market,
		Region:    f.Region,
		Country:   f.Country,
		Sentiment: f.Sentiment,
		Category:  f.Category,
		Topic:     f.Topic,
		DateFrom:  f.DateFrom,
		DateTo:    f.DateTo,
	}
}

// SearchInput is the input schema for the search_feedback tool.
type SearchInput struct {
	FilterInput
	Query      string `json:"query" jsonschema:"what the feedback should be about"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"maximum number of records to return (default 15)"`
}

// SearchOutput is the output schema for the search_feedback tool.
type SearchOutput struct {
	Results        []SearchResultOutput `json:"results"`
	Count          int                  `json:"count"`
	Quality        string               `json:"quality,omitempty"`
	AppliedFilters []string             `json:"applied_filters,omitempty"`
	IgnoredFilters []string             `json:"ignored_filters,omitempty"`
	Message        string               `json:"message,omitempty"`
}

// SearchResultOutput represents a single matched record.
type SearchResultOutput struct {
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

// StatisticsInput is the (empty) input schema for dataset_statistics.
type StatisticsInput struct{}

// ChartInput is the input schema for the create_chart tool.
type ChartInput struct {
	FilterInput
	Kind string `json:"kind" jsonschema:"chart kind from the vocal://charts catalog, e.g. sentiment_bar or overview"`
	Size string `json:"size,omitempty" jsonschema:"small, medium or large"`
}

// ChartOutput is the output schema for the create_chart tool.
type ChartOutput struct {
	ImagePath   string   `json:"image_path,omitempty"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// registerTools registers a tool for every configured port.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a question about the customer feedback. Routes to statistics, feedback search or charts.",
	}, s.handleAsk)

	if s.ports.Retrieval != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "search_feedback",
			Description: "Semantic search over customer feedback with optional metadata filters",
		}, s.handleSearch)
	}
	if s.ports.Statistics != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "dataset_statistics",
			Description: "Record counts and distributions of the indexed feedback corpus",
		}, s.handleStatistics)
	}
	if s.ports.Charts != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "create_chart",
			Description: "Render a chart from the fixed catalog and return the image file path",
		}, s.handleChart)
	}
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, errors.New("question is required")
	}

	req := domain.TurnRequest{Text: input.Question}
	if input.SessionID != "" {
		req.SessionID = sessionPrefix + input.SessionID
	}

	resp, err := s.ports.Assistant.Ask(ctx, req)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Kind:        string(resp.Kind),
		Intent:      string(resp.Intent),
		Answer:      resp.Text,
		ImagePath:   resp.ImagePath,
		Suggestions: resp.Suggestions,
		Retryable:   resp.Retryable,
	}, nil
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.MaxResults
	if limit <= 0 {
		limit = domain.DefaultMaxResults
	}

	filters, ignored := s.resolve(input.FilterInput)
	output := SearchOutput{
		Results:        []SearchResultOutput{},
		AppliedFilters: filters.Describe(),
		IgnoredFilters: describeIgnored(ignored),
	}

	result, err := s.ports.Retrieval.Search(ctx, input.Query, limit, filters)
	if errors.Is(err, domain.ErrNoQualifyingResults) {
		output.Message = "No feedback matched closely enough. Try fewer filters or broader wording."
		return nil, output, nil
	}
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output.Count = result.Len()
	output.Quality = string(result.Quality)
	for _, h := range result.Hits {
		out := SearchResultOutput{
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
			out.Date = h.Metadata.Time().Format(domain.DateLayout)
		}
		output.Results = append(output.Results, out)
	}
	return nil, output, nil
}

func (s *Server) handleStatistics(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ StatisticsInput,
) (*mcp.CallToolResult, SnapshotOutput, error) {
	snap, err := s.ports.Statistics.Snapshot()
	if err != nil {
		return nil, SnapshotOutput{}, err
	}
	return nil, snapshotOutput(snap), nil
}

func (s *Server) handleChart(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChartInput,
) (*mcp.CallToolResult, ChartOutput, error) {
	kind := domain.ChartKind(strings.ToLower(strings.TrimSpace(input.Kind)))
	if kind == "" {
		kind = domain.ChartOverview
	}
	if !kind.IsValid() {
		return nil, ChartOutput{}, fmt.Errorf("unknown chart kind %q", input.Kind)
	}

	filters, _ := s.resolve(input.FilterInput)
	resp, err := s.ports.Charts.Chart(ctx, domain.ChartRequest{
		Kind:    kind,
		Filters: filters,
		Size:    domain.SizeHint(strings.ToLower(input.Size)),
	})
	if err != nil {
		return nil, ChartOutput{}, err
	}

	return nil, ChartOutput{
		ImagePath:   resp.ImagePath,
		Message:     resp.Text,
		Suggestions: resp.Suggestions,
	}, nil
}

// resolve validates filters when a resolver is configured.
func (s *Server) resolve(in FilterInput) (domain.FilterSet, []domain.IgnoredFilter) {
	if s.ports.Filters != nil {
		return s.ports.Filters.Resolve(in.domain())
	}
	return in.domain().FilterSet()
}

func describeIgnored(ignored []domain.IgnoredFilter) []string {
	if len(ignored) == 0 {
		return nil
	}
	out := make([]string, len(ignored))
	for i, ig := range ignored {
		out[i] = ig.String()
	}
	return out
}
