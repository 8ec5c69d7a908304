package mcp

import (
	"context"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driving"
)

// mockAssistant is a mock implementation of driving.Assistant.
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

func (m *mockAssistant) Ready() bool {
	return true
}

// mockRetrieval is a mock implementation of driving.RetrievalService.
type mockRetrieval struct {
	result      *domain.RetrievalResult
	err         error
	lastLimit   int
	lastFilters domain.FilterSet
}

func (m *mockRetrieval) Search(_ context.Context, _ string, maxResults int, filters domain.FilterSet) (*domain.RetrievalResult, error) {
	m.lastLimit = maxResults
	m.lastFilters = filters
	return m.result, m.err
}

func (m *mockRetrieval) MaxResultsCeiling() int {
	return domain.DefaultMaxResultsCeiling
}

// mockFilters is a mock implementation of driving.FilterResolver.
type mockFilters struct {
	filters domain.FilterSet
	ignored []domain.IgnoredFilter
}

func (m *mockFilters) Resolve(_ domain.FilterInput) (domain.FilterSet, []domain.IgnoredFilter) {
	return m.filters, m.ignored
}

// mockStatistics is a mock implementation of driving.StatisticsService.
type mockStatistics struct {
	snapshot *domain.Snapshot
	err      error
}

func (m *mockStatistics) Snapshot() (*domain.Snapshot, error) {
	return m.snapshot, m.err
}

// mockCharts is a mock implementation of driving.ChartService.
type mockCharts struct {
	response *domain.Response
	err      error
	lastReq  domain.ChartRequest
}

func (m *mockCharts) Chart(_ context.Context, req domain.ChartRequest) (*domain.Response, error) {
	m.lastReq = req
	return m.response, m.err
}
