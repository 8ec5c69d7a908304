package loader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
	"github.com/custodia-labs/vocal/internal/logger"
)

// Ensure CSVLoader implements the interface.
var _ driven.CorpusLoader = (*CSVLoader)(nil)

// CSVLoader reads comma or semicolon separated files.
type CSVLoader struct{}

// NewCSVLoader creates a CSV loader.
func NewCSVLoader() *CSVLoader {
	return &CSVLoader{}
}

// Supports reports whether locator names a .csv file.
func (l *CSVLoader) Supports(locator string) bool {
	return hasExt(locator, ".csv", ".tsv")
}

// Load reads every data row of the file at locator.
func (l *CSVLoader) Load(ctx context.Context, locator string) ([]domain.RawRecord, error) {
	f, err := os.Open(locator)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", locator, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", locator, err)
	}
	defer f.Close()

	return l.read(ctx, f)
}

func (l *CSVLoader) read(ctx context.Context, r io.Reader) ([]domain.RawRecord, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}

	first, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("read header: %w", err)
	}

	reader := csv.NewReader(br)
	reader.Comma = detectDelimiter(first)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	var records []domain.RawRecord
	for row := 2; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Warn("csv: skipping row %d: %v", row, err)
			continue
		}
		if blank(cells) {
			continue
		}
		records = append(records, cols.record(row, cells))
	}

	logger.Debug("csv: read %d rows", len(records))
	return records, nil
}

// detectDelimiter picks the most frequent separator in the first line.
func detectDelimiter(sample []byte) rune {
	line, _, _ := bytes.Cut(sample, []byte{'\n'})
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
