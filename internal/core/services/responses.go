package services

import (
	"context"
	"errors"
	"strings"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/logger"
)

// textResponse builds a plain answer from ordered segments.
func textResponse(intent domain.Intent, handler domain.Capability, segments []string) *domain.Response {
	return &domain.Response{
		Kind:     domain.ResponseText,
		Intent:   intent,
		Text:     strings.Join(segments, "\n\n"),
		Segments: segments,
		Handler:  handler,
	}
}

// notReady answers a delegated turn while the index cannot be searched.
func notReady(lang Language, intent domain.Intent, err error) *domain.Response {
	key := msgNotReady
	if errors.Is(err, domain.ErrRebuildInProgress) {
		key = msgRebuilding
	}
	text := msg(lang, key)
	return &domain.Response{
		Kind:     domain.ResponseNotReady,
		Intent:   intent,
		Text:     text,
		Segments: []string{text},
	}
}

// failure maps a specialist error to a templated response. Cancellation
// is returned as an error; everything else becomes a response.
func failure(ctx context.Context, lang Language, intent domain.Intent, handler domain.Capability, err error) (*domain.Response, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if errors.Is(err, context.Canceled) {
		return nil, err
	}

	switch {
	case errors.Is(err, domain.ErrIndexUnavailable), errors.Is(err, domain.ErrRebuildInProgress):
		resp := notReady(lang, intent, err)
		resp.Handler = handler
		return resp, nil

	case domain.IsRetryable(err):
		logger.Warn("%s failed with a transient error: %v", handler, err)
		text := msg(lang, msgTransient)
		return &domain.Response{
			Kind:      domain.ResponseError,
			Intent:    intent,
			Text:      text,
			Segments:  []string{text},
			Retryable: true,
			Handler:   handler,
		}, nil

	default:
		logger.Error("%s failed: %v", handler, err)
		text := msg(lang, msgInternal)
		return &domain.Response{
			Kind:     domain.ResponseError,
			Intent:   intent,
			Text:     text,
			Segments: []string{text},
			Handler:  handler,
		}, nil
	}
}

// ignoredNote lists filters that could not be applied, or "".
func ignoredNote(lang Language, ignored []domain.IgnoredFilter) string {
	if len(ignored) == 0 {
		return ""
	}
	parts := make([]string, len(ignored))
	for i, ig := range ignored {
		parts[i] = ig.String()
	}
	return msg(lang, msgIgnoredFilters, strings.Join(parts, ", "))
}
