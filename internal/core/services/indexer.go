package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
	"github.com/custodia-labs/vocal/internal/core/ports/driving"
	"github.com/custodia-labs/vocal/internal/logger"
)

// Ensure IndexService implements the interfaces.
var (
	_ driving.IndexService      = (*IndexService)(nil)
	_ driving.StatisticsService = (*IndexService)(nil)
)

// DefaultEmbedBatchSize is the number of segments embedded per upstream call.
const DefaultEmbedBatchSize = 64

// IndexService loads the corpus, fills the embedding index and publishes
// the metadata snapshot. Only one rebuild runs at a time.
type IndexService struct {
	loaders   []driven.CorpusLoader
	enricher  driven.Enricher
	pipeline  driven.PostProcessorPipeline
	embedder  driven.EmbeddingService
	index     driven.VectorIndex
	corpus    *Corpus
	snapshots *SnapshotBuilder

	source    string
	backend   domain.IndexBackend
	batchSize int
	now       func() time.Time
}

// IndexOption configures an IndexService.
type IndexOption func(*IndexService)

// WithSource sets the corpus locator used when a rebuild names none.
func WithSource(source string) IndexOption {
	return func(s *IndexService) {
		s.source = source
	}
}

// WithBackend records the index backend in published status.
func WithBackend(backend domain.IndexBackend) IndexOption {
	return func(s *IndexService) {
		s.backend = backend
	}
}

// WithEmbedBatchSize sets how many segments are embedded per call.
func WithEmbedBatchSize(n int) IndexOption {
	return func(s *IndexService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// NewIndexService creates an index service. Loaders are tried in order.
func NewIndexService(
	loaders []driven.CorpusLoader,
	enricher driven.Enricher,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	corpus *Corpus,
	opts ...IndexOption,
) *IndexService {
	if corpus == nil {
		corpus = NewCorpus()
	}
	s := &IndexService{
		loaders:   loaders,
		enricher:  enricher,
		pipeline:  pipeline,
		embedder:  embedder,
		index:     index,
		corpus:    corpus,
		snapshots: NewSnapshotBuilder(),
		backend:   domain.IndexBackendMemory,
		batchSize: DefaultEmbedBatchSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Corpus returns the corpus this service publishes to.
func (s *IndexService) Corpus() *Corpus {
	return s.corpus
}

// Status returns the published corpus status.
func (s *IndexService) Status() domain.IndexStatus {
	return s.corpus.Status()
}

// Snapshot returns the published snapshot.
func (s *IndexService) Snapshot() (*domain.Snapshot, error) {
	if snap := s.corpus.Snapshot(); snap != nil {
		return snap, nil
	}
	return nil, domain.ErrIndexUnavailable
}

// Rebuild replaces the index contents and publishes a new snapshot.
// Readers keep the previous snapshot until the new one is complete.
func (s *IndexService) Rebuild(ctx context.Context, opts domain.RebuildOptions) (domain.IndexStatus, error) {
	if s.index == nil {
		return domain.IndexStatus{}, domain.ErrVectorIndexUnavailable
	}
	if s.embedder == nil {
		return domain.IndexStatus{}, domain.ErrEmbeddingUnavailable
	}

	source := strings.TrimSpace(opts.Source)
	if source == "" {
		source = s.source
	}
	if source == "" {
		return domain.IndexStatus{}, fmt.Errorf("%w: no corpus source configured", domain.ErrInvalidInput)
	}

	if !s.corpus.acquire() {
		return domain.IndexStatus{}, domain.ErrRebuildInProgress
	}
	defer s.corpus.release()

	logger.Section("Index")
	logger.Info("Source: %s (backend %s, model %s)", source, s.backend, s.embedder.ModelName())
	started := s.now()

	if !opts.Force {
		status, ok, err := s.reuse(ctx, source, started)
		if err != nil {
			return domain.IndexStatus{}, err
		}
		if ok {
			return status, nil
		}
	}

	raws, err := s.load(ctx, source)
	if err != nil {
		return domain.IndexStatus{}, err
	}

	if err := s.index.Reset(ctx); err != nil {
		s.corpus.invalidate()
		return domain.IndexStatus{}, fmt.Errorf("reset index: %w", err)
	}

	status, err := s.fill(ctx, raws)
	if err != nil {
		s.corpus.invalidate()
		return domain.IndexStatus{}, err
	}

	snap, err := s.snapshots.Build(ctx, s.index)
	if err != nil {
		s.corpus.invalidate()
		return domain.IndexStatus{}, err
	}

	status.Source = source
	status.Backend = s.backend
	status.Model = s.embedder.ModelName()
	status.BuiltAt = s.now()
	status.Duration = status.BuiltAt.Sub(started)

	if store, ok := s.index.(driven.ManifestStore); ok {
		manifest := domain.IndexManifest{
			Source:     source,
			Model:      status.Model,
			Dimensions: s.embedder.Dimensions(),
			Records:    status.Records,
			BuiltAt:    status.BuiltAt,
		}
		if err := store.SaveManifest(ctx, manifest); err != nil {
			logger.Warn("Failed to save index manifest: %v", err)
		}
	}

	s.corpus.publish(snap, status)
	logger.L().Info("corpus published",
		zap.String("source", source),
		zap.Int("records", status.Records),
		zap.Int("segments", status.Segments),
		zap.Int("skipped", status.Skipped),
		zap.Duration("duration", status.Duration),
	)
	return s.corpus.Status(), nil
}

// reuse publishes a snapshot of the persisted index when its manifest
// matches source and the current embedding model.
func (s *IndexService) reuse(ctx context.Context, source string, started time.Time) (domain.IndexStatus, bool, error) {
	store, ok := s.index.(driven.ManifestStore)
	if !ok {
		return domain.IndexStatus{}, false, nil
	}

	manifest, err := store.LoadManifest(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.IndexStatus{}, false, nil
	}
	if err != nil {
		logger.Warn("Failed to read index manifest, rebuilding: %v", err)
		return domain.IndexStatus{}, false, nil
	}
	if !manifest.Matches(source, s.embedder.ModelName()) {
		logger.Debug("Manifest built from %s with %s, rebuilding", manifest.Source, manifest.Model)
		return domain.IndexStatus{}, false, nil
	}

	count, err := s.index.Count(ctx)
	if err != nil || count == 0 {
		return domain.IndexStatus{}, false, nil
	}

	snap, err := s.snapshots.Build(ctx, s.index)
	if err != nil {
		return domain.IndexStatus{}, false, err
	}

	status := domain.IndexStatus{
		Source:   source,
		Backend:  s.backend,
		Model:    manifest.Model,
		Records:  snap.TotalRecords,
		Segments: snap.TotalSegments,
		Reused:   true,
		BuiltAt:  manifest.BuiltAt,
		Duration: s.now().Sub(started),
	}
	s.corpus.publish(snap, status)
	logger.Info("Reusing persisted index: %d records, %d segments", status.Records, status.Segments)
	return s.corpus.Status(), true, nil
}

func (s *IndexService) load(ctx context.Context, source string) ([]domain.RawRecord, error) {
	for _, loader := range s.loaders {
		if !loader.Supports(source) {
			continue
		}
		raws, err := loader.Load(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("load corpus: %w", err)
		}
		logger.Debug("Loaded %d rows", len(raws))
		return raws, nil
	}
	return nil, fmt.Errorf("%w: unsupported corpus source %q", domain.ErrInvalidInput, source)
}

// fill enriches, segments and embeds every row. Rows that fail enrichment
// or are too short are skipped and counted.
func (s *IndexService) fill(ctx context.Context, raws []domain.RawRecord) (domain.IndexStatus, error) {
	var status domain.IndexStatus
	var pending []pendingSegment

	for _, raw := range raws {
		if err := ctx.Err(); err != nil {
			return status, err
		}

		rec, err := s.enricher.Enrich(raw)
		if err != nil {
			logger.Debug("Row %d skipped: %v", raw.Row, err)
			status.Skipped++
			continue
		}
		if rec.ID == "" {
			rec.ID = recordID(raw.Row)
		}

		segments, err := s.pipeline.Process(ctx, &rec)
		if errors.Is(err, domain.ErrRecordTooShort) {
			status.Skipped++
			continue
		}
		if err != nil {
			return status, fmt.Errorf("segment row %d: %w", raw.Row, err)
		}
		if len(segments) == 0 {
			status.Skipped++
			continue
		}

		status.Records++
		record := rec
		for _, seg := range segments {
			pending = append(pending, pendingSegment{record: &record, segment: seg})
		}
	}

	for start := 0; start < len(pending); start += s.batchSize {
		end := min(start+s.batchSize, len(pending))
		if err := s.embedBatch(ctx, pending[start:end]); err != nil {
			return status, err
		}
		status.Segments += end - start
		logger.Debug("Embedded %d/%d segments", end, len(pending))
	}

	if status.Skipped > 0 {
		logger.Info("Skipped %d rows", status.Skipped)
	}
	return status, nil
}

type pendingSegment struct {
	record  *domain.FeedbackRecord
	segment domain.Segment
}

func (s *IndexService) embedBatch(ctx context.Context, batch []pendingSegment) error {
	texts := make([]string, len(batch))
	for i, p := range batch {
		texts[i] = p.segment.Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed segments: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embed segments: got %d vectors for %d texts: %w", len(vectors), len(batch), domain.ErrUpstreamUnavailable)
	}

	entries := make([]domain.IndexedEntry, len(batch))
	for i, p := range batch {
		entries[i] = domain.NewIndexedEntry(p.record, p.segment, vectors[i])
	}
	if err := s.index.Upsert(ctx, entries); err != nil {
		return fmt.Errorf("upsert entries: %w", err)
	}
	return nil
}

// recordID derives a stable identifier from the source row.
func recordID(row int) string {
	return fmt.Sprintf("row-%05d", row)
}
