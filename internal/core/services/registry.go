package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

// Turn is the context handed to a specialist for one user turn.
type Turn struct {
	Request domain.TurnRequest

	// Text is the trimmed question.
	Text string

	// Snapshot is the published snapshot, nil before the first build.
	Snapshot *domain.Snapshot

	Lang           Language
	Classification Classification

	// History is bounded to the configured window with images stripped.
	History []domain.Message
}

// Specialist answers turns for one capability.
// Expected outcomes are responses; only cancellation and programming
// errors are returned as errors.
type Specialist interface {
	Capability() domain.Capability
	Handle(ctx context.Context, turn Turn) (*domain.Response, error)
}

// Registry maps capability tags to specialists. It is populated at
// startup and read for every turn.
type Registry struct {
	mu          sync.RWMutex
	specialists map[domain.Capability]Specialist
}

// NewRegistry creates a registry holding the given specialists.
func NewRegistry(specialists ...Specialist) (*Registry, error) {
	r := &Registry{specialists: make(map[domain.Capability]Specialist)}
	for _, s := range specialists {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a specialist. A capability can be registered once.
func (r *Registry) Register(s Specialist) error {
	if s == nil {
		return fmt.Errorf("%w: nil specialist", domain.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	capability := s.Capability()
	if _, exists := r.specialists[capability]; exists {
		return fmt.Errorf("%w: capability %q already registered", domain.ErrInvalidInput, capability)
	}
	r.specialists[capability] = s
	return nil
}

// Lookup returns the specialist for capability.
func (r *Registry) Lookup(capability domain.Capability) (Specialist, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.specialists[capability]
	return s, ok
}

// Capabilities lists the registered capabilities in sorted order.
func (r *Registry) Capabilities() []domain.Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()
	caps := make([]domain.Capability, 0, len(r.specialists))
	for c := range r.specialists {
		caps = append(caps, c)
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps
}

// capabilityFor maps a routed intent to the capability that serves it.
func capabilityFor(intent domain.Intent) domain.Capability {
	switch intent {
	case domain.IntentContent:
		return domain.CapabilityRetrieval
	case domain.IntentVisualization:
		return domain.CapabilityVisualization
	default:
		return domain.CapabilityStatistics
	}
}
