package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
	"github.com/custodia-labs/vocal/internal/core/ports/driving"
	"github.com/custodia-labs/vocal/internal/logger"
)

// DefaultHistoryWindow is the number of prior turns replayed per turn.
const DefaultHistoryWindow = 5

// Ensure Orchestrator implements the interface.
var _ driving.Assistant = (*Orchestrator)(nil)

// Orchestrator routes each turn to exactly one specialist.
// Statistics turns are answered from the published snapshot; content and
// visualization turns are delegated only while the index is available.
type Orchestrator struct {
	classifier *Classifier
	registry   *Registry
	corpus     *Corpus
	history    driven.HistoryStore
	window     int
	now        func() time.Time
	sessions   sessionLocks
}

// OrchestratorOption configures the orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithHistory replays and records turns through store. The window is
// counted in turns; each turn is a question and an answer.
func WithHistory(store driven.HistoryStore, window int) OrchestratorOption {
	return func(o *Orchestrator) {
		o.history = store
		if window > 0 {
			o.window = window
		}
	}
}

// NewOrchestrator creates an orchestrator over an already populated
// registry. A nil corpus is treated as never published.
func NewOrchestrator(classifier *Classifier, registry *Registry, corpus *Corpus, opts ...OrchestratorOption) *Orchestrator {
	if corpus == nil {
		corpus = NewCorpus()
	}
	o := &Orchestrator{
		classifier: classifier,
		registry:   registry,
		corpus:     corpus,
		window:     DefaultHistoryWindow,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Ready reports whether delegated intents can be served.
func (o *Orchestrator) Ready() bool {
	return o.corpus.Available() == nil
}

// Ask answers one turn.
// Turns of one session run one at a time so each sees the previous turn's
// history.
func (o *Orchestrator) Ask(ctx context.Context, req domain.TurnRequest) (*domain.Response, error) {
	if req.SessionID != "" {
		unlock, err := o.sessions.lock(ctx, req.SessionID)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	start := o.now()
	states := []domain.TurnState{domain.StateReceived}

	text := strings.TrimSpace(req.Text)
	lang := detectLanguage(text)
	if text == "" {
		resp := textResponse(domain.IntentStatistics, "", []string{msg(lang, msgEmptyQuestion)})
		resp.States = append(states, domain.StateDirectResponse, domain.StateTerminal)
		return resp, nil
	}

	cls := o.classifier.Classify(text)
	states = append(states, domain.StateClassified)

	turn := Turn{
		Request:        req,
		Text:           text,
		Snapshot:       o.corpus.Snapshot(),
		Lang:           lang,
		Classification: cls,
		History:        o.loadHistory(ctx, req),
	}

	var (
		resp *domain.Response
		err  error
	)
	if cls.Intent == domain.IntentStatistics {
		resp, states, err = o.answerFromSnapshot(ctx, turn, states)
	} else {
		resp, states, err = o.delegate(ctx, turn, states)
	}
	if err != nil {
		return nil, err
	}

	resp.Intent = cls.Intent
	resp.States = append(states, domain.StateTerminal)

	o.record(ctx, req.SessionID, text, resp)
	logger.L().Info("turn routed",
		zap.String("session", req.SessionID),
		zap.String("intent", string(cls.Intent)),
		zap.Bool("fallback", cls.Fallback),
		zap.String("handler", string(resp.Handler)),
		zap.String("kind", string(resp.Kind)),
		zap.Int("history", len(turn.History)),
		zap.Duration("took", o.now().Sub(start)),
	)
	return resp, nil
}

// answerFromSnapshot serves a statistics turn. It works during a rebuild
// from the last published snapshot.
func (o *Orchestrator) answerFromSnapshot(
	ctx context.Context, turn Turn, states []domain.TurnState,
) (*domain.Response, []domain.TurnState, error) {
	if turn.Snapshot == nil {
		return notReady(turn.Lang, domain.IntentStatistics, o.corpus.Available()),
			append(states, domain.StateDirectResponse), nil
	}
	states = append(states, domain.StateAnsweredFromSnapshot)

	specialist, ok := o.registry.Lookup(domain.CapabilityStatistics)
	if !ok {
		return o.noDelegate(turn), append(states, domain.StateDirectResponse), nil
	}
	resp, err := specialist.Handle(ctx, turn)
	if err != nil {
		resp, err = failure(ctx, turn.Lang, domain.IntentStatistics, domain.CapabilityStatistics, err)
		if err != nil {
			return nil, nil, err
		}
	}
	return resp, append(states, domain.StateDirectResponse), nil
}

// delegate hands a content or visualization turn to its specialist.
func (o *Orchestrator) delegate(
	ctx context.Context, turn Turn, states []domain.TurnState,
) (*domain.Response, []domain.TurnState, error) {
	intent := turn.Classification.Intent
	if err := o.corpus.Available(); err != nil {
		logger.Info("Index unavailable for %s turn: %v", intent, err)
		return notReady(turn.Lang, intent, err), append(states, domain.StateDirectResponse), nil
	}

	capability := capabilityFor(intent)
	specialist, ok := o.registry.Lookup(capability)
	if !ok {
		logger.Warn("No specialist registered for %s", capability)
		return o.noDelegate(turn), append(states, domain.StateDirectResponse), nil
	}
	states = append(states, domain.StateDelegated, domain.StateAwaitingSpecialist)

	resp, err := specialist.Handle(ctx, turn)
	if err != nil {
		resp, err = failure(ctx, turn.Lang, intent, capability, err)
		if err != nil {
			return nil, nil, err
		}
	}
	return resp, states, nil
}

func (o *Orchestrator) noDelegate(turn Turn) *domain.Response {
	resp := textResponse(turn.Classification.Intent, "", []string{msg(turn.Lang, msgNoDelegate)})
	resp.Kind = domain.ResponseError
	return resp
}

// loadHistory returns the bounded history for the turn: the request's own
// history when given, else the session's stored turns. Image references
// are never replayed.
func (o *Orchestrator) loadHistory(ctx context.Context, req domain.TurnRequest) []domain.Message {
	limit := 2 * o.window
	msgs := req.History
	if len(msgs) == 0 && o.history != nil && req.SessionID != "" {
		stored, err := o.history.Recent(ctx, req.SessionID, limit)
		if err != nil {
			logger.Warn("Failed to load history for session %s: %v", req.SessionID, err)
		}
		msgs = stored
	}
	return boundHistory(msgs, limit)
}

// record appends the question and the answer to the session history.
func (o *Orchestrator) record(ctx context.Context, sessionID, text string, resp *domain.Response) {
	if o.history == nil || sessionID == "" {
		return
	}
	now := o.now()
	err := o.history.Append(ctx, sessionID,
		domain.Message{Role: domain.RoleUser, Text: text, At: now},
		domain.Message{Role: domain.RoleAssistant, Text: resp.Text, ImagePath: resp.ImagePath, At: now},
	)
	if err != nil {
		logger.Warn("Failed to record history for session %s: %v", sessionID, err)
	}
}

// sessionLocks serializes turns per session. Entries are dropped once no
// turn holds or waits for them.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	ch   chan struct{}
	refs int
}

// lock waits for the session's turn slot or for ctx to end.
func (l *sessionLocks) lock(ctx context.Context, id string) (func(), error) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sessionLock)
	}
	sl, ok := l.locks[id]
	if !ok {
		sl = &sessionLock{ch: make(chan struct{}, 1)}
		l.locks[id] = sl
	}
	sl.refs++
	l.mu.Unlock()

	select {
	case sl.ch <- struct{}{}:
		return func() {
			<-sl.ch
			l.put(id, sl)
		}, nil
	case <-ctx.Done():
		l.put(id, sl)
		return nil, ctx.Err()
	}
}

func (l *sessionLocks) put(id string, sl *sessionLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sl.refs--
	if sl.refs == 0 {
		delete(l.locks, id)
	}
}

// active returns the number of sessions with a running or waiting turn.
func (l *sessionLocks) active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// boundHistory keeps the last limit messages with image references removed.
func boundHistory(msgs []domain.Message, limit int) []domain.Message {
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]domain.Message, len(msgs))
	for i, m := range msgs {
		m.ImagePath = ""
		out[i] = m
	}
	return out
}
