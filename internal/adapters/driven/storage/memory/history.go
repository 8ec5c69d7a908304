package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

const (
	// DefaultHistoryLimit bounds the messages kept per session.
	DefaultHistoryLimit = 100

	// DefaultMaxSessions bounds the number of sessions kept at once.
	DefaultMaxSessions = 1000

	// DefaultSessionTTL is how long a session survives without a new turn.
	DefaultSessionTTL = 2 * time.Hour
)

// HistoryStore is an in-memory implementation of driven.HistoryStore.
// Each session keeps at most limit messages; older ones are discarded.
// Sessions idle for longer than the TTL, and the least recently written
// sessions beyond the session cap, are evicted.
type HistoryStore struct {
	mu          sync.Mutex
	limit       int
	maxSessions int
	ttl         time.Duration
	sessions    *expirable.LRU[string, []domain.Message]
}

// HistoryOption configures a HistoryStore.
type HistoryOption func(*HistoryStore)

// WithMaxSessions caps the number of sessions kept.
func WithMaxSessions(n int) HistoryOption {
	return func(s *HistoryStore) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithSessionTTL sets the idle time after which a session is forgotten.
func WithSessionTTL(ttl time.Duration) HistoryOption {
	return func(s *HistoryStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore(limit int, opts ...HistoryOption) *HistoryStore {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	s := &HistoryStore{
		limit:       limit,
		maxSessions: DefaultMaxSessions,
		ttl:         DefaultSessionTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sessions = expirable.NewLRU[string, []domain.Message](s.maxSessions, nil, s.ttl)
	return s
}

// Append records messages for the session in one step.
func (s *HistoryStore) Append(_ context.Context, sessionID string, msgs ...domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, _ := s.sessions.Get(sessionID)
	next := make([]domain.Message, 0, len(prev)+len(msgs))
	next = append(append(next, prev...), msgs...)
	if len(next) > s.limit {
		next = next[len(next)-s.limit:]
	}
	s.sessions.Add(sessionID, next)
	return nil
}

// Recent returns at most n messages, oldest first.
func (s *HistoryStore) Recent(_ context.Context, sessionID string, n int) ([]domain.Message, error) {
	s.mu.Lock()
	msgs, _ := s.sessions.Peek(sessionID)
	s.mu.Unlock()

	if n <= 0 || len(msgs) == 0 {
		return nil, nil
	}
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Clear forgets the session.
func (s *HistoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions.Remove(sessionID)
	return nil
}

// Sessions returns the number of live sessions.
func (s *HistoryStore) Sessions() int {
	return s.sessions.Len()
}
