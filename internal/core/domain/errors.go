package domain

import (
	"errors"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidMaxResults indicates a result-count bound outside [1, ceiling].
	ErrInvalidMaxResults = errors.New("max results out of range")

	// ErrRecordTooShort indicates a record body too short to be indexed.
	ErrRecordTooShort = errors.New("record body too short")

	// Retrieval Errors.

	// ErrNoQualifyingResults indicates the search ran but nothing passed the
	// confidence threshold. It is an expected outcome, not a failure.
	ErrNoQualifyingResults = errors.New("no qualifying results")

	// ErrIndexUnavailable indicates no corpus has been loaded.
	// Delegated intents are refused until a rebuild completes.
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrRebuildInProgress indicates an index rebuild holds the writer lock.
	ErrRebuildInProgress = errors.New("rebuild in progress")

	// ErrNoChartData indicates the renderer found no data for the requested
	// chart kind and filter combination.
	ErrNoChartData = errors.New("no data for chart")

	// Upstream Errors.

	// ErrUpstreamUnavailable indicates an embedding, generation or rendering
	// backend could not be reached or failed. Retryable.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates an upstream call exceeded its deadline.
	ErrTimeout = errors.New("upstream timeout")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Query rewriting is disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index backend is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
)

// IsRetryable reports whether err is a transient upstream failure that a
// caller may retry later.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrTimeout)
}

// NoResultsError carries the filters that were active when a search returned
// nothing above the reject threshold. It unwraps to ErrNoQualifyingResults.
type NoResultsError struct {
	Query   string
	Filters FilterSet
}

// Error implements error.
func (e *NoResultsError) Error() string {
	desc := e.Filters.Describe()
	if len(desc) == 0 {
		return ErrNoQualifyingResults.Error()
	}
	return ErrNoQualifyingResults.Error() + " (filters: " + strings.Join(desc, ", ") + ")"
}

// Unwrap returns ErrNoQualifyingResults.
func (e *NoResultsError) Unwrap() error {
	return ErrNoQualifyingResults
}
