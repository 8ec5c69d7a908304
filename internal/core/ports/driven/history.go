package driven

import (
	"context"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

// HistoryStore keeps conversation turns per session.
// The core never persists history itself; driving adapters own a store.
type HistoryStore interface {
	// Append records messages for the session. All of msgs are stored
	// together or not at all.
	Append(ctx context.Context, sessionID string, msgs ...domain.Message) error

	// Recent returns at most n messages, oldest first.
	Recent(ctx context.Context, sessionID string, n int) ([]domain.Message, error)

	// Clear forgets the session.
	Clear(ctx context.Context, sessionID string) error
}

// VocabularyStore loads routing and filter vocabulary overrides.
type VocabularyStore interface {
	// Load returns the override tables. Empty tables keep the built-ins.
	Load() (domain.Vocabulary, error)
}
