package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
	"github.com/custodia-labs/vocal/internal/core/ports/driving"
	"github.com/custodia-labs/vocal/internal/logger"
)

// Ensure RetrievalEngine implements the interface.
var _ driving.RetrievalService = (*RetrievalEngine)(nil)

// overfetch widens the nearest-neighbour query so that deduplication and
// the reject threshold still leave maxResults hits when they exist.
const overfetch = 3

// RetrievalEngine runs filtered semantic search under the three-tier
// confidence policy.
type RetrievalEngine struct {
	index      driven.VectorIndex
	embedder   driven.EmbeddingService
	corpus     *Corpus
	thresholds domain.Thresholds
	ceiling    int
}

// NewRetrievalEngine creates a retrieval engine.
// The corpus is optional; without it the index is assumed ready.
func NewRetrievalEngine(
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	corpus *Corpus,
	settings domain.RetrievalSettings,
) *RetrievalEngine {
	thresholds := settings.Thresholds
	if err := thresholds.Validate(); err != nil {
		logger.Warn("Invalid thresholds, using defaults: %v", err)
		thresholds = domain.DefaultThresholds()
	}
	ceiling := settings.MaxResultsCeiling
	if ceiling <= 0 {
		ceiling = domain.DefaultMaxResultsCeiling
	}
	return &RetrievalEngine{
		index:      index,
		embedder:   embedder,
		corpus:     corpus,
		thresholds: thresholds,
		ceiling:    ceiling,
	}
}

// MaxResultsCeiling returns the largest accepted maxResults.
func (e *RetrievalEngine) MaxResultsCeiling() int {
	return e.ceiling
}

// Thresholds returns the active confidence cut points.
func (e *RetrievalEngine) Thresholds() domain.Thresholds {
	return e.thresholds
}

// Search returns at most maxResults hits, one per record, ordered by
// confidence, then recency, then record ID. Hits below the reject
// threshold are dropped. An empty outcome is a *domain.NoResultsError.
func (e *RetrievalEngine) Search(
	ctx context.Context, query string, maxResults int, filters domain.FilterSet,
) (*domain.RetrievalResult, error) {
	logger.Section("Retrieval")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if maxResults < 1 || maxResults > e.ceiling {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", domain.ErrInvalidMaxResults, maxResults, e.ceiling)
	}
	var gen uint64
	if e.corpus != nil {
		gen = e.corpus.Generation()
		if err := e.corpus.Available(); err != nil {
			return nil, err
		}
	}
	if e.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if e.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	logger.Debug("Query: %q, max results: %d, filters: %v", query, maxResults, filters.Describe())

	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	vhits, err := e.index.Search(ctx, vec, maxResults*overfetch, filters)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	// A rebuild that overlapped the search may have served a half-filled index.
	if e.corpus != nil {
		if err := e.corpus.Unchanged(gen); err != nil {
			return nil, err
		}
	}
	logger.Debug("Raw hits: %d", len(vhits))

	hits := e.rank(vhits, filters)
	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}

	if len(hits) == 0 {
		logger.Info("No hits above reject threshold %.2f", e.thresholds.Reject)
		return nil, &domain.NoResultsError{Query: query, Filters: filters}
	}

	result := &domain.RetrievalResult{
		Query:      query,
		Hits:       hits,
		MaxResults: maxResults,
		Filters:    filters,
	}
	result.Quality = e.thresholds.Grade(result.AverageConfidence())
	logger.Info("Hits: %d (low quality: %d), grade: %s", result.Len(), result.LowQualityCount(), result.Quality)

	return result, nil
}

// rank classifies, deduplicates by record and orders raw hits.
func (e *RetrievalEngine) rank(vhits []driven.VectorHit, filters domain.FilterSet) []domain.RetrievalHit {
	best := make(map[string]domain.RetrievalHit, len(vhits))
	for _, vh := range vhits {
		// The index contract already filters; a stray entry is dropped.
		if !filters.Matches(vh.Entry.Metadata) {
			continue
		}
		conf := domain.ConfidenceFromDistance(vh.Distance)
		quality := e.thresholds.Classify(conf)
		if quality == domain.QualityRejected {
			continue
		}

		id := vh.Entry.Metadata.RecordID
		if id == "" {
			id = vh.Entry.Segment.RecordID
		}
		if prev, ok := best[id]; ok && prev.Confidence >= conf {
			continue
		}
		best[id] = domain.RetrievalHit{
			Segment:    vh.Entry.Segment,
			Metadata:   vh.Entry.Metadata,
			Confidence: conf,
			Quality:    quality,
		}
	}

	hits := make([]domain.RetrievalHit, 0, len(best))
	for _, h := range best {
		hits = append(hits, h)
	}
	sort.Slice(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Metadata.Timestamp != b.Metadata.Timestamp {
			return a.Metadata.Timestamp > b.Metadata.Timestamp
		}
		return a.Metadata.RecordID < b.Metadata.RecordID
	})
	return hits
}

// isNoResults reports whether err is the expected empty outcome.
func isNoResults(err error) (*domain.NoResultsError, bool) {
	var nr *domain.NoResultsError
	if errors.As(err, &nr) {
		return nr, true
	}
	return nil, false
}
