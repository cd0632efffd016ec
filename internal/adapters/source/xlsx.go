package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/tradeboard/internal/domain/model"
	"github.com/okian/tradeboard/pkg/logger"
)

// XLSXReader reads one worksheet of a workbook.
type XLSXReader struct {
	path string
	opts options
}

// NewXLSX creates a reader for the workbook at path.
func NewXLSX(path string, opts ...Option) *XLSXReader {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &XLSXReader{path: path, opts: o}
}

// Name returns the workbook path.
func (r *XLSXReader) Name() string { return r.path }

// Read implements Reader.
func (r *XLSXReader) Read(ctx context.Context) ([]model.Row, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIngestion, r.path, err)
	}
	defer func() { _ = f.Close() }()

	sheet := r.opts.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: %s has no worksheets", ErrIngestion, r.path)
		}
		sheet = sheets[0]
	}

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrIngestion, sheet, err)
	}

	rows := make([]model.Row, 0, max(len(raw)-r.opts.skipRows, 0))
	for i := r.opts.skipRows; i < len(raw); i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := i + 1
		cells := make([]model.Cell, len(raw[i]))
		for col, value := range raw[i] {
			cells[col] = r.cell(f, sheet, col, line, value)
		}
		rows = append(rows, model.Row{Line: line, Cells: cells})
	}

	r.opts.logger.Debug(ctx, "read workbook",
		logger.String("path", r.path),
		logger.String("sheet", sheet),
		logger.Int("rows", len(rows)),
	)
	return rows, nil
}

// cell types a raw value using the cell's stored type, so a numeric country
// code stays a Number and text that merely looks numeric stays Text.
func (r *XLSXReader) cell(f *excelize.File, sheet string, col, line int, value string) model.Cell {
	if value == "" {
		return model.MissingCell()
	}
	name, err := excelize.CoordinatesToCellName(col+1, line)
	if err != nil {
		return model.InvalidCell(value)
	}
	typ, err := f.GetCellType(sheet, name)
	if err != nil {
		return model.InvalidCell(value)
	}

	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return model.TextCell(value)
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		// Unset covers plain numeric cells and numeric formula results.
		if n, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return model.NumberCell(n)
		}
		return model.TextCell(value)
	default:
		// Booleans, dates and error values such as #DIV/0!.
		return model.InvalidCell(value)
	}
}
