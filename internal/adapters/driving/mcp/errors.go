// Package mcp provides an MCP (Model Context Protocol) server adapter for vocal.
// It lets AI assistants ask questions about the feedback corpus, search it,
// read its statistics and render charts.
package mcp

import "errors"

// ErrMissingAssistant is returned when the assistant is not provided.
var ErrMissingAssistant = errors.New("mcp: assistant is required")
