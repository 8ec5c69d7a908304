package httpapi

import (
	"errors"

	"github.com/custodia-labs/vocal/internal/core/ports/driving"
)

// ErrMissingAssistant is returned when the assistant is not provided.
var ErrMissingAssistant = errors.New("httpapi: assistant is required")

// Ports aggregates the driving ports served over HTTP.
// Routes for missing optional ports respond 503.
type Ports struct {
	Assistant  driving.Assistant
	Index      driving.IndexService
	Retrieval  driving.RetrievalService
	Filters    driving.FilterResolver
	Statistics driving.StatisticsService
	Charts     driving.ChartService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Assistant == nil {
		return ErrMissingAssistant
	}
	return nil
}
