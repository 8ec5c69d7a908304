package mcp

import (
	"github.com/custodia-labs/vocal/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Assistant answers free-text questions.
	Assistant driving.Assistant

	// Retrieval runs filtered semantic search.
	Retrieval driving.RetrievalService

	// Filters validates structured filter values.
	Filters driving.FilterResolver

	// Statistics exposes the published snapshot.
	Statistics driving.StatisticsService

	// Charts renders catalog charts.
	Charts driving.ChartService
}

// Validate ensures all required ports are set.
// Only the assistant is required; tools for missing ports are not registered.
func (p *Ports) Validate() error {
	if p.Assistant == nil {
		return ErrMissingAssistant
	}
	return nil
}
