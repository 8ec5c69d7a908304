package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/custodia-labs/vocal/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/vocal/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/vocal/internal/adapters/driving/tui/components/transcript"
	"github.com/custodia-labs/vocal/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/vocal/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vocal/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vocal/internal/core/domain"
)

// App is the chat application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	input      *input.QuestionInput
	transcript *transcript.Transcript
	status     *status.Bar
	spinner    spinner.Model

	sessionID string

	// pending is set while a turn streams in.
	pending bool
	stream  chan tea.Msg
	cancel  context.CancelFunc

	err      error
	width    int
	height   int
	ready    bool
	showHelp bool
}

// NewApp creates a chat application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Muted

	return &App{
		ports:      ports,
		ctx:        context.Background(),
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		transcript: transcript.New(s),
		status:     status.NewBar(s, km),
		spinner:    sp,
		sessionID:  uuid.NewString(),
	}, nil
}

// WithContext sets the context used for turns.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("vocal"),
		a.input.Focus(),
		a.loadStatus(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.IndexStatusLoaded:
		a.status.SetRecords(msg.Status.Records)
		if !msg.Status.Ready {
			a.status.SetState(status.StateNotReady)
		}
		return a, nil

	case messages.TurnSubmitted:
		return a, a.submit(msg.Text)

	case messages.SegmentReceived:
		a.transcript.AppendSegment(msg.Text)
		return a, waitFor(a.stream)

	case messages.TurnCompleted:
		a.complete(msg)
		return a, a.loadStatus()

	case messages.SessionReset:
		a.resetSession()
		return a, nil

	case messages.Quit:
		a.stop()
		return a, tea.Quit

	case spinner.TickMsg:
		if !a.pending {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		a.status.SetSpinner(a.spinner.View())
		return a, cmd
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, a.keymap.Quit):
		a.stop()
		return a, tea.Quit
	case keymap.Matches(k, a.keymap.Help):
		a.showHelp = !a.showHelp
		if a.ready {
			a.SetDimensions(a.width, a.height)
		}
		return a, nil
	case keymap.Matches(k, a.keymap.NewSession):
		if a.pending {
			return a, nil
		}
		a.resetSession()
		return a, nil
	case keymap.Matches(k, a.keymap.ScrollUp), keymap.Matches(k, a.keymap.ScrollDown):
		var cmd tea.Cmd
		a.transcript, cmd = a.transcript.Update(msg)
		return a, cmd
	case keymap.Matches(k, a.keymap.Submit):
		text := strings.TrimSpace(a.input.Value())
		if text == "" || a.pending {
			return a, nil
		}
		a.input.Reset()
		return a, a.submit(text)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// submit starts a streamed turn and returns the command draining it.
func (a *App) submit(text string) tea.Cmd {
	if a.pending {
		return nil
	}
	a.pending = true
	a.err = nil
	a.transcript.AddUser(text)
	a.transcript.StartAssistant()
	a.status.SetState(status.StateThinking)
	a.status.SetMessage("")

	ctx, cancel := context.WithCancel(a.ctx)
	a.cancel = cancel
	ch := make(chan tea.Msg, 16)
	a.stream = ch

	req := domain.TurnRequest{SessionID: a.sessionID, Text: text}
	go func() {
		defer close(ch)
		resp, err := a.ports.Assistant.AskStream(ctx, req, func(seg string) error {
			select {
			case ch <- messages.SegmentReceived{Text: seg}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		ch <- messages.TurnCompleted{Response: resp, Err: err}
	}()

	return tea.Batch(waitFor(ch), a.spinner.Tick)
}

func (a *App) complete(msg messages.TurnCompleted) {
	a.pending = false
	a.stream = nil
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.status.SetSpinner("")

	switch {
	case msg.Err != nil:
		a.err = msg.Err
		a.transcript.Fail(msg.Err.Error())
		a.status.SetState(status.StateError)
		a.status.SetMessage(msg.Err.Error())
	case msg.Response == nil:
		a.transcript.Fail("no answer")
		a.status.SetState(status.StateError)
	default:
		a.transcript.Finish(msg.Response)
		switch msg.Response.Kind {
		case domain.ResponseNotReady:
			a.status.SetState(status.StateNotReady)
		case domain.ResponseError:
			a.status.SetState(status.StateError)
		default:
			a.status.SetState(status.StateReady)
		}
	}
}

func (a *App) resetSession() {
	a.sessionID = uuid.NewString()
	a.transcript.Clear()
	a.err = nil
	a.status.SetMessage("new session")
}

func (a *App) stop() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

func (a *App) loadStatus() tea.Cmd {
	if a.ports.Index == nil {
		return nil
	}
	idx := a.ports.Index
	return func() tea.Msg {
		return messages.IndexStatusLoaded{Status: idx.Status()}
	}
}

// waitFor reads the next message of a streamed turn.
func waitFor(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	title := a.styles.Title.Render("vocal")
	parts := []string{title, a.transcript.View()}
	if a.showHelp {
		parts = append(parts, a.viewHelp())
	}
	parts = append(parts, a.input.View(), a.status.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a *App) viewHelp() string {
	var b strings.Builder
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "  %-8s %s\n", h.Key, h.Desc)
		}
	}
	b.WriteString("\n  Try: \"Zeig die Stimmung nach Markt\" or \"What do customers say about delivery?\"")
	return a.styles.Help.Render(b.String())
}

// helpHeight is the number of rows the help panel occupies.
func (a *App) helpHeight() int {
	if !a.showHelp {
		return 0
	}
	return lipgloss.Height(a.viewHelp())
}

// Run starts the program in the alternate screen.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	a.stop()
	return err
}

// SessionID returns the current conversation id.
func (a *App) SessionID() string {
	return a.sessionID
}

// Pending reports whether a turn is streaming.
func (a *App) Pending() bool {
	return a.pending
}

// Transcript returns the conversation entries.
func (a *App) Transcript() []transcript.Entry {
	return a.transcript.Entries()
}

// Input returns the question input.
func (a *App) Input() *input.QuestionInput {
	return a.input
}

// StatusState returns the status bar state.
func (a *App) StatusState() status.State {
	return a.status.State()
}

// Err returns the last turn error.
func (a *App) Err() error {
	return a.err
}

// Ready reports whether the window size is known.
func (a *App) Ready() bool {
	return a.ready
}

// ShowHelp reports whether the help panel is visible.
func (a *App) ShowHelp() bool {
	return a.showHelp
}

// SetDimensions sizes the layout.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.input.SetWidth(width)
	a.status.SetWidth(width)
	// title, input and status bar take a row each plus input border
	a.transcript.SetSize(width, height-5-a.helpHeight())
}
