package ollama

import (
	"context"
	"encoding/json"
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
	return "", fmt.Errorf("prompt %q not found", name)
}

func (p stubPrompts) Reload() {}

func TestNewLLMService_Defaults(t *testing.T) {
	svc := NewLLMService(LLMConfig{})
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
}

func TestLLMService_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		require.NotNil(t, req.Options)
		assert.Equal(t, 100, req.Options.NumPredict)
		fmt.Fprint(w, `{"message":{"role":"assistant","content":"garantie gewährleistung"}}`)
	}))
	defer srv.Close()

	svc := NewLLMService(LLMConfig{BaseURL: srv.URL + "/"})
	svc.SetPromptStore(stubPrompts{driven.PromptQueryRewrite: "q=%s"})

	got, err := svc.RewriteQuery(context.Background(), "garantie")
	require.NoError(t, err)
	assert.Equal(t, "garantie gewährleistung", got)
}

func TestLLMService_Chat_SystemPrompt(t *testing.T) {
	var msgs []chatMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		msgs = req.Messages
		fmt.Fprint(w, `{"message":{"content":"ok"}}`)
	}))
	defer srv.Close()

	svc := NewLLMService(LLMConfig{BaseURL: srv.URL})
	svc.SetPromptStore(stubPrompts{driven.PromptChatSystem: "sys"})

	got, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "hi"}}, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].Role)
}

func TestLLMService_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error":"loading model"}`)
	}))
	defer srv.Close()

	_, err := NewLLMService(LLMConfig{BaseURL: srv.URL}).Generate(context.Background(), "x", driven.GenerateOptions{})
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)

	_, err = NewLLMService(LLMConfig{BaseURL: "http://127.0.0.1:1"}).Generate(context.Background(), "x", driven.GenerateOptions{})
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestLLMService_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := NewLLMService(LLMConfig{BaseURL: srv.URL})
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}
