package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

// stubSpecialist answers every turn with a fixed response.
type stubSpecialist struct {
	capability domain.Capability
	response   *domain.Response
	err        error
	turns      []Turn
}

func (s *stubSpecialist) Capability() domain.Capability {
	return s.capability
}

func (s *stubSpecialist) Handle(_ context.Context, turn Turn) (*domain.Response, error) {
	s.turns = append(s.turns, turn)
	if s.err != nil {
		return nil, s.err
	}
	if s.response != nil {
		resp := *s.response
		return &resp, nil
	}
	return &domain.Response{Kind: domain.ResponseText, Text: string(s.capability), Handler: s.capability}, nil
}

func TestRegistry(t *testing.T) {
	retrieval := &stubSpecialist{capability: domain.CapabilityRetrieval}
	charts := &stubSpecialist{capability: domain.CapabilityVisualization}

	r, err := NewRegistry(retrieval, charts)
	require.NoError(t, err)

	got, ok := r.Lookup(domain.CapabilityRetrieval)
	require.True(t, ok)
	assert.Same(t, retrieval, got)

	_, ok = r.Lookup(domain.CapabilityStatistics)
	assert.False(t, ok)

	assert.Equal(t, []domain.Capability{domain.CapabilityRetrieval, domain.CapabilityVisualization}, r.Capabilities())
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(
		&stubSpecialist{capability: domain.CapabilityRetrieval},
		&stubSpecialist{capability: domain.CapabilityRetrieval},
	)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	r, err := NewRegistry()
	require.NoError(t, err)
	assert.ErrorIs(t, r.Register(nil), domain.ErrInvalidInput)
}

func TestCapabilityFor(t *testing.T) {
	assert.Equal(t, domain.CapabilityRetrieval, capabilityFor(domain.IntentContent))
	assert.Equal(t, domain.CapabilityVisualization, capabilityFor(domain.IntentVisualization))
	assert.Equal(t, domain.CapabilityStatistics, capabilityFor(domain.IntentStatistics))
}
