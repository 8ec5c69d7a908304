package tui

import "errors"

// ErrMissingAssistant is returned when the assistant is not provided.
var ErrMissingAssistant = errors.New("tui: assistant is required")
