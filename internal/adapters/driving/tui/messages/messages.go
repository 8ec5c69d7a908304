// Package messages defines Bubbletea message types for the chat TUI.
// Messages represent events that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/vocal/internal/core/domain"
)

// TurnSubmitted is sent when the user submits a question.
type TurnSubmitted struct {
	Text string
}

// SegmentReceived carries one streamed answer segment.
type SegmentReceived struct {
	Text string
}

// TurnCompleted carries the final response of a turn.
type TurnCompleted struct {
	Response *domain.Response
	Err      error
}

// IndexStatusLoaded carries the corpus status for the status bar.
type IndexStatusLoaded struct {
	Status domain.IndexStatus
}

// SessionReset starts a new conversation.
type SessionReset struct{}

// Quit is a command to exit the application.
type Quit struct{}
