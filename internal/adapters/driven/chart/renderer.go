// Package chart renders catalog charts over the indexed feedback records.
//
// Two encoders are available: SVG images drawn directly and XLSX workbooks
// carrying native Excel charts. Both read the records from the vector
// index, so a chart always reflects the published corpus.
package chart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
	"github.com/custodia-labs/vocal/internal/logger"
)

// Ensure Renderer implements the interface.
var _ driven.ChartRenderer = (*Renderer)(nil)

// encoder writes a figure to a file.
type encoder interface {
	ext() string
	mimeType() string
	encode(path string, fig figure, width, height int) error
}

// Renderer renders charts into an output directory.
type Renderer struct {
	index       driven.VectorIndex
	enc         encoder
	dir         string
	defaultSize domain.SizeHint
	maxAge      time.Duration
	now         func() time.Time
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock overrides the clock used for file names and file ages.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// New creates a renderer for the configured format. An empty output
// directory renders into the system temp directory.
func New(index driven.VectorIndex, settings domain.ChartSettings, opts ...Option) (*Renderer, error) {
	if index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	var enc encoder
	switch settings.Format {
	case domain.ChartFormatSVG, "":
		enc = svgEncoder{}
	case domain.ChartFormatXLSX:
		enc = xlsxEncoder{}
	default:
		return nil, fmt.Errorf("%w: chart format %q", domain.ErrInvalidInput, settings.Format)
	}

	dir := settings.OutputDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "vocal-charts")
	}

	r := &Renderer{
		index:       index,
		enc:         enc,
		dir:         dir,
		defaultSize: settings.Size,
		maxAge:      settings.MaxAge,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Dir returns the output directory.
func (r *Renderer) Dir() string {
	return r.dir
}

// Render draws req.Kind over the records matching req.Filters.
func (r *Renderer) Render(ctx context.Context, req domain.ChartRequest) (domain.ChartResult, error) {
	ds, err := loadDataset(ctx, r.index, req.Filters)
	if err != nil {
		return domain.ChartResult{}, fmt.Errorf("load chart data: %w", err)
	}
	if len(ds.records) == 0 {
		return domain.ChartResult{}, domain.ErrNoChartData
	}

	fig, err := buildFigure(req.Kind, ds)
	if err != nil {
		return domain.ChartResult{}, err
	}

	size := req.Size
	if !size.IsValid() {
		size = r.defaultSize
	}
	width, height := size.Dimensions()

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return domain.ChartResult{}, fmt.Errorf("create chart directory: %w", err)
	}
	path := filepath.Join(r.dir, r.fileName(req.Kind))
	if err := r.enc.encode(path, fig, width, height); err != nil {
		return domain.ChartResult{}, fmt.Errorf("write %s: %w", path, err)
	}
	r.Prune()

	logger.Debug("chart: rendered %s over %d records to %s", req.Kind, len(ds.records), path)
	return domain.ChartResult{
		ImagePath: path,
		Caption:   caption(fig, len(ds.records)),
		MIMEType:  r.enc.mimeType(),
	}, nil
}

// chartFile matches names produced by fileName.
var chartFile = regexp.MustCompile(`^[a-z_]+_\d{8}_\d{6}_\d{3}\.(svg|xlsx)$`)

// Prune deletes chart files in the output directory last written more
// than the max age ago and returns how many were removed. Other files are
// left alone. A zero max age keeps everything.
func (r *Renderer) Prune() int {
	if r.maxAge <= 0 {
		return 0
	}
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		logger.Warn("chart: cannot list %s: %v", r.dir, err)
		return 0
	}

	cutoff := r.now().Add(-r.maxAge)
	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() || !chartFile.MatchString(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(r.dir, e.Name())); err != nil {
			logger.Warn("chart: cannot remove %s: %v", e.Name(), err)
			continue
		}
		removed++
	}
	if removed > 0 {
		logger.Debug("chart: pruned %d files older than %s", removed, r.maxAge)
	}
	return removed
}

// fileName is "<kind>_<YYYYMMDD_HHMMSS_mmm>.<ext>".
func (r *Renderer) fileName(kind domain.ChartKind) string {
	now := r.now()
	return fmt.Sprintf("%s_%s_%03d.%s", kind, now.Format("20060102_150405"), now.Nanosecond()/int(time.Millisecond), r.enc.ext())
}
