package sampledata

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/okian/tradeboard/internal/domain/normalize"
)

// DefaultSheet is the worksheet name used by WriteXLSX.
const DefaultSheet = "Trade"

// cells lays r out as a sparse physical row.
func (r Record) cells(l normalize.Layout) []any {
	width := max(l.Country, l.Continent, l.ImportTon, l.ExportTon, l.ImportUSD, l.ExportUSD) + 1
	row := make([]any, width)
	row[l.Country] = r.Country
	row[l.Continent] = r.Continent
	row[l.ImportTon] = r.ImportTon
	row[l.ExportTon] = r.ExportTon
	row[l.ImportUSD] = r.ImportUSD
	row[l.ExportUSD] = r.ExportUSD
	return row
}

func header(l normalize.Layout) []any {
	return Record{
		Country:   "Country",
		Continent: "Continent",
		ImportTon: "Import (ton)",
		ExportTon: "Export (ton)",
		ImportUSD: "Import (USD)",
		ExportUSD: "Export (USD)",
	}.cells(l)
}

// WriteXLSX saves records to a workbook at path. The first skip rows hold a
// header line followed by blank rows. Nil values leave the cell empty.
func WriteXLSX(path string, l normalize.Layout, skip int, records []Record) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), DefaultSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	line := 1
	if skip > 0 {
		if err := setRow(f, line, header(l)); err != nil {
			return err
		}
		line = skip + 1
	}
	for _, r := range records {
		if err := setRow(f, line, r.cells(l)); err != nil {
			return err
		}
		line++
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, line int, row []any) error {
	for col, v := range row {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, line)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(DefaultSheet, cell, v); err != nil {
			return fmt.Errorf("set %s: %w", cell, err)
		}
	}
	return nil
}

// WriteCSV saves records as comma separated text with the same layout rules
// as WriteXLSX.
func WriteCSV(path string, l normalize.Layout, skip int, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	w := csv.NewWriter(f)

	head := stringify(header(l))
	for i := range skip {
		if i == 0 {
			_ = w.Write(head)
			continue
		}
		// a line of empty fields; csv readers drop truly blank lines
		_ = w.Write(make([]string, len(head)))
	}
	for _, r := range records {
		_ = w.Write(stringify(r.cells(l)))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}

func stringify(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch t := v.(type) {
		case nil:
		case string:
			out[i] = t
		case float64:
			out[i] = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			out[i] = fmt.Sprint(t)
		}
	}
	return out
}
