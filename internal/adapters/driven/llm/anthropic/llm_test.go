package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
)

type stubPrompts map[string]string

func (p stubPrompts) Load(name string) (string, error) {
	if v, ok := p[name]; ok {
		return v, nil
	}
	return "", errors.New("missing")
}

func (p stubPrompts) Reload() {}

func newTestLLM(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewLLMService(Config{APIKey: "key", BaseURL: srv.URL})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(Config{})
	require.ErrorIs(t, err, domain.ErrLLMUnavailable)

	svc, err := NewLLMService(Config{APIKey: "k", Model: "claude-x"})
	require.NoError(t, err)
	assert.Equal(t, "claude-x", svc.ModelName())
}

func TestLLMService_Generate(t *testing.T) {
	svc := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, defaultMaxTokens, req.MaxTokens)
		fmt.Fprint(w, `{"content":[{"type":"text","text":"Hallo "},{"type":"tool_use"},{"type":"text","text":"Welt"}]}`)
	})

	got, err := svc.Generate(context.Background(), "x", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Hallo Welt", got)
}

func TestLLMService_Chat_System(t *testing.T) {
	var last messagesRequest
	svc := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&last))
		fmt.Fprint(w, `{"content":[{"type":"text","text":"ok"}]}`)
	})
	svc.SetPromptStore(stubPrompts{driven.PromptChatSystem: "default system"})

	_, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "hi"}}, driven.ChatOptions{MaxTokens: 50})
	require.NoError(t, err)
	assert.Equal(t, "default system", last.System)
	assert.Equal(t, 50, last.MaxTokens)

	_, err = svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: "system", Content: "mine"},
		{Role: "user", Content: "hi"},
	}, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "mine", last.System)
	require.Len(t, last.Messages, 1)
	assert.Equal(t, "user", last.Messages[0].Role)
}

func TestLLMService_RewriteQuery(t *testing.T) {
	svc := newTestLLM(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"content":[{"type":"text","text":" service termin wartezeit "}]}`)
	})

	got, err := svc.RewriteQuery(context.Background(), "termin")
	require.NoError(t, err)
	assert.Equal(t, "service termin wartezeit", got)
}

func TestLLMService_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"overloaded", 529, `{"error":{"type":"overloaded_error"}}`, domain.ErrUpstreamUnavailable},
		{"rate limited", http.StatusTooManyRequests, `{}`, domain.ErrRateLimited},
		{"empty content", http.StatusOK, `{"content":[]}`, domain.ErrUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestLLM(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := svc.RewriteQuery(context.Background(), "x")
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLLMService_Ping(t *testing.T) {
	svc := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}
