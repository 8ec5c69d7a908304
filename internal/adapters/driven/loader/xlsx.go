package loader

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
	"github.com/custodia-labs/vocal/internal/logger"
)

// Ensure XLSXLoader implements the interface.
var _ driven.CorpusLoader = (*XLSXLoader)(nil)

// XLSXLoader reads feedback rows from an Excel workbook.
type XLSXLoader struct {
	sheet string
}

// XLSXOption configures an XLSXLoader.
type XLSXOption func(*XLSXLoader)

// WithSheet reads the named sheet instead of the first one.
func WithSheet(name string) XLSXOption {
	return func(l *XLSXLoader) {
		l.sheet = name
	}
}

// NewXLSXLoader creates an XLSX loader.
func NewXLSXLoader(opts ...XLSXOption) *XLSXLoader {
	l := &XLSXLoader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Supports reports whether locator names an .xlsx workbook.
func (l *XLSXLoader) Supports(locator string) bool {
	return hasExt(locator, ".xlsx", ".xlsm")
}

// Load reads every data row of the selected sheet.
func (l *XLSXLoader) Load(ctx context.Context, locator string) ([]domain.RawRecord, error) {
	if _, err := os.Stat(locator); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("open %s: %w", locator, domain.ErrNotFound)
	}

	f, err := excelize.OpenFile(locator)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrInvalidInput, locator, err)
	}
	defer f.Close()

	sheet := l.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: %s has no sheets", domain.ErrInvalidInput, locator)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", domain.ErrInvalidInput, sheet)
	}

	cols, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]domain.RawRecord, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if blank(cells) {
			continue
		}
		records = append(records, cols.record(i+2, cells))
	}

	logger.Debug("xlsx: read %d rows from sheet %q", len(records), sheet)
	return records, nil
}
