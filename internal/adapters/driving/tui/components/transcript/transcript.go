// Package transcript renders the scrolling conversation for the chat TUI.
package transcript

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/vocal/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vocal/internal/core/domain"
)

// Entry is one message in the transcript.
type Entry struct {
	Role        domain.Role
	Text        string
	Kind        domain.ResponseKind
	ImagePath   string
	Suggestions []string
	Pending     bool
}

// Transcript keeps the conversation and a viewport over it.
type Transcript struct {
	entries  []Entry
	styles   *styles.Styles
	viewport viewport.Model
	width    int
}

// New creates an empty transcript.
func New(s *styles.Styles) *Transcript {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Transcript{
		styles:   s,
		viewport: viewport.New(80, 20),
		width:    80,
	}
}

// SetSize resizes the viewport.
func (t *Transcript) SetSize(width, height int) {
	t.width = width
	t.viewport.Width = width
	t.viewport.Height = max(height, 1)
	t.refresh()
}

// Update handles scrolling.
func (t *Transcript) Update(msg tea.Msg) (*Transcript, tea.Cmd) {
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return t, cmd
}

// View renders the visible part of the transcript.
func (t *Transcript) View() string {
	return t.viewport.View()
}

// AddUser appends a user turn.
func (t *Transcript) AddUser(text string) {
	t.entries = append(t.entries, Entry{Role: domain.RoleUser, Text: text})
	t.refresh()
}

// StartAssistant appends an empty assistant turn that streams in.
func (t *Transcript) StartAssistant() {
	t.entries = append(t.entries, Entry{Role: domain.RoleAssistant, Pending: true})
	t.refresh()
}

// AppendSegment adds a streamed segment to the pending assistant turn.
func (t *Transcript) AppendSegment(seg string) {
	e := t.pending()
	if e == nil {
		return
	}
	if e.Text != "" {
		e.Text += "\n\n"
	}
	e.Text += seg
	t.refresh()
}

// Finish completes the pending turn with the final response.
func (t *Transcript) Finish(resp *domain.Response) {
	e := t.pending()
	if e == nil {
		t.StartAssistant()
		e = t.pending()
	}
	e.Pending = false
	e.Kind = resp.Kind
	e.ImagePath = resp.ImagePath
	e.Suggestions = resp.Suggestions
	if e.Text == "" {
		e.Text = resp.Text
	}
	t.refresh()
}

// Fail completes the pending turn with an error message.
func (t *Transcript) Fail(message string) {
	e := t.pending()
	if e == nil {
		t.StartAssistant()
		e = t.pending()
	}
	e.Pending = false
	e.Kind = domain.ResponseError
	e.Text = message
	t.refresh()
}

// Clear removes all entries.
func (t *Transcript) Clear() {
	t.entries = nil
	t.refresh()
}

// Entries returns the conversation.
func (t *Transcript) Entries() []Entry {
	return t.entries
}

func (t *Transcript) pending() *Entry {
	if len(t.entries) == 0 {
		return nil
	}
	e := &t.entries[len(t.entries)-1]
	if e.Role != domain.RoleAssistant || !e.Pending {
		return nil
	}
	return e
}

func (t *Transcript) refresh() {
	t.viewport.SetContent(t.render())
	t.viewport.GotoBottom()
}

func (t *Transcript) render() string {
	if len(t.entries) == 0 {
		return t.styles.Muted.Render("Ask about scores, sentiment, markets or what customers wrote.\n" +
			"Frag nach Bewertungen, Stimmung, Märkten oder Kundenaussagen.")
	}

	body := t.styles.Normal.Width(max(t.width-2, 10))
	var b strings.Builder
	for i, e := range t.entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if e.Role == domain.RoleUser {
			b.WriteString(t.styles.User.Render("You") + "\n")
			b.WriteString(body.Render(e.Text))
			continue
		}

		b.WriteString(t.styles.Assistant.Render("vocal") + "\n")
		switch {
		case e.Pending && e.Text == "":
			b.WriteString(t.styles.Muted.Render("..."))
		case e.Kind == domain.ResponseError:
			b.WriteString(t.styles.Error.Render(e.Text))
		case e.Kind == domain.ResponseNotReady || e.Kind == domain.ResponseNoResults:
			b.WriteString(t.styles.Warning.Render(e.Text))
		default:
			b.WriteString(body.Render(e.Text))
		}
		if e.ImagePath != "" {
			b.WriteString("\n" + t.styles.Chart.Render(e.ImagePath))
		}
		for _, s := range e.Suggestions {
			b.WriteString("\n" + t.styles.Muted.Render("  > "+s))
		}
	}
	return b.String()
}
