package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vocal/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/vocal/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driving"
)

type mockAssistant struct {
	segments []string
	resp     *domain.Response
	err      error
	lastReq  domain.TurnRequest
}

func (m *mockAssistant) Ask(ctx context.Context, req domain.TurnRequest) (*domain.Response, error) {
	return m.AskStream(ctx, req, func(string) error { return nil })
}

func (m *mockAssistant) AskStream(_ context.Context, req domain.TurnRequest, emit driving.SegmentFunc) (*domain.Response, error) {
	m.lastReq = req
	for _, s := range m.segments {
		if err := emit(s); err != nil {
			return nil, err
		}
	}
	return m.resp, m.err
}

func (m *mockAssistant) Ready() bool { return true }

type mockIndex struct {
	status domain.IndexStatus
}

func (m *mockIndex) Rebuild(context.Context, domain.RebuildOptions) (domain.IndexStatus, error) {
	return m.status, nil
}

func (m *mockIndex) Status() domain.IndexStatus { return m.status }

// drain runs cmd and feeds stream messages back into the app until the turn completes.
func drain(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	ch := app.stream
	require.NotNil(t, ch)
	for {
		msg, ok := <-ch
		if !ok {
			return
		}
		app.Update(msg)
		if _, done := msg.(messages.TurnCompleted); done {
			return
		}
	}
}

func newTestApp(t *testing.T, a *mockAssistant) *App {
	t.Helper()
	app, err := NewApp(&Ports{Assistant: a, Index: &mockIndex{status: domain.IndexStatus{Ready: true, Records: 42}}})
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

func TestNewApp(t *testing.T) {
	_, err := NewApp(&Ports{})
	assert.ErrorIs(t, err, ErrMissingAssistant)

	app, err := NewApp(&Ports{Assistant: &mockAssistant{}})
	require.NoError(t, err)
	assert.NotEmpty(t, app.SessionID())
	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())
	assert.NotNil(t, app.Init())
}

func TestApp_WindowSize(t *testing.T) {
	app, err := NewApp(&Ports{Assistant: &mockAssistant{}})
	require.NoError(t, err)

	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.True(t, app.Ready())
	assert.Contains(t, app.View(), "vocal")
}

func TestApp_StreamedTurn(t *testing.T) {
	a := &mockAssistant{
		segments: []string{"Liefertermine werden oft verpasst.", "Der Service wird gelobt."},
		resp:     &domain.Response{Kind: domain.ResponseText, Text: "full"},
	}
	app := newTestApp(t, a)

	_, cmd := app.Update(messages.TurnSubmitted{Text: "Was sagen Kunden?"})
	require.NotNil(t, cmd)
	assert.True(t, app.Pending())
	assert.Equal(t, status.StateThinking, app.StatusState())

	drain(t, app, cmd)

	assert.False(t, app.Pending())
	assert.Equal(t, status.StateReady, app.StatusState())
	assert.Equal(t, app.SessionID(), a.lastReq.SessionID)
	assert.Equal(t, "Was sagen Kunden?", a.lastReq.Text)

	entries := app.Transcript()
	require.Len(t, entries, 2)
	assert.Equal(t, "Liefertermine werden oft verpasst.\n\nDer Service wird gelobt.", entries[1].Text)
}

func TestApp_TurnError(t *testing.T) {
	a := &mockAssistant{err: errors.New("context canceled")}
	app := newTestApp(t, a)

	_, cmd := app.Update(messages.TurnSubmitted{Text: "x"})
	drain(t, app, cmd)

	assert.Error(t, app.Err())
	assert.Equal(t, status.StateError, app.StatusState())
	assert.Equal(t, domain.ResponseError, app.Transcript()[1].Kind)
}

func TestApp_NotReadyResponse(t *testing.T) {
	a := &mockAssistant{resp: &domain.Response{Kind: domain.ResponseNotReady, Text: "The feedback index is not ready yet."}}
	app := newTestApp(t, a)

	_, cmd := app.Update(messages.TurnSubmitted{Text: "Was sagen Kunden?"})
	drain(t, app, cmd)

	assert.Equal(t, status.StateNotReady, app.StatusState())
	assert.Equal(t, "The feedback index is not ready yet.", app.Transcript()[1].Text)
}

func TestApp_SubmitKey(t *testing.T) {
	a := &mockAssistant{resp: &domain.Response{Kind: domain.ResponseText, Text: "ok"}}
	app := newTestApp(t, a)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, app.Pending())

	app.Input().SetValue("  Wie ist die Stimmung?  ")
	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Empty(t, app.Input().Value())
	drain(t, app, cmd)
	assert.Equal(t, "Wie ist die Stimmung?", a.lastReq.Text)
}

func TestApp_NewSession(t *testing.T) {
	a := &mockAssistant{resp: &domain.Response{Kind: domain.ResponseText, Text: "ok"}}
	app := newTestApp(t, a)

	_, cmd := app.Update(messages.TurnSubmitted{Text: "x"})
	drain(t, app, cmd)
	before := app.SessionID()

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.NotEqual(t, before, app.SessionID())
	assert.Empty(t, app.Transcript())
}

func TestApp_ToggleHelp(t *testing.T) {
	app := newTestApp(t, &mockAssistant{})

	app.Update(tea.KeyMsg{Type: tea.KeyF1})
	assert.True(t, app.ShowHelp())
	assert.Contains(t, app.View(), "quit")

	app.Update(tea.KeyMsg{Type: tea.KeyF1})
	assert.False(t, app.ShowHelp())
}

func TestApp_Quit(t *testing.T) {
	app := newTestApp(t, &mockAssistant{})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_IndexStatusLoaded(t *testing.T) {
	app := newTestApp(t, &mockAssistant{})

	app.Update(messages.IndexStatusLoaded{Status: domain.IndexStatus{Ready: false}})
	assert.Equal(t, status.StateNotReady, app.StatusState())
}
