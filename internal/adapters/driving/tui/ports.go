// Package tui provides an interactive terminal chat for vocal.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/vocal/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the chat.
type Ports struct {
	// Assistant answers turns. Required.
	Assistant driving.Assistant

	// Index reports corpus status for the status bar. Optional.
	Index driving.IndexService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Assistant == nil {
		return ErrMissingAssistant
	}
	return nil
}
