package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/okian/tradeboard/internal/domain/model"
	"github.com/okian/tradeboard/pkg/logger"
)

// CSVReader reads a comma separated file. CSV carries no cell types, so a
// field that parses as a number becomes a Number and anything else Text.
type CSVReader struct {
	path string
	opts options
}

// NewCSV creates a reader for the file at path.
func NewCSV(path string, opts ...Option) *CSVReader {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &CSVReader{path: path, opts: o}
}

// Name returns the file path.
func (r *CSVReader) Name() string { return r.path }

// Read implements Reader.
func (r *CSVReader) Read(ctx context.Context) ([]model.Row, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIngestion, r.path, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := readCSV(ctx, f, r.opts.skipRows)
	if err != nil {
		return nil, err
	}
	r.opts.logger.Debug(ctx, "read csv",
		logger.String("path", r.path),
		logger.Int("rows", len(rows)),
	)
	return rows, nil
}

func readCSV(ctx context.Context, in io.Reader, skip int) ([]model.Row, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows []model.Row
	for n := 1; ; n++ {
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrIngestion, n, err)
		}
		if n <= skip {
			continue
		}
		line, _ := cr.FieldPos(0)
		cells := make([]model.Cell, len(rec))
		for i, field := range rec {
			cells[i] = csvCell(field)
		}
		rows = append(rows, model.Row{Line: line, Cells: cells})
	}
}

func csvCell(field string) model.Cell {
	s := strings.TrimSpace(field)
	if s == "" {
		return model.MissingCell()
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return model.NumberCell(n)
	}
	return model.TextCell(field)
}
