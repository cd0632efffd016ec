// Package model contains domain models passed between layers.
package model

import (
	"strconv"
	"strings"
)

// Kind tags the shape of a source cell.
type Kind uint8

// Cell kinds.
const (
	Missing Kind = iota // empty or absent cell
	Text                // string cell
	Number              // numeric cell
	Invalid             // unexpected shape, e.g. a spreadsheet error value
)

func (k Kind) String() string {
	switch k {
	case Missing:
		return "missing"
	case Text:
		return "text"
	case Number:
		return "number"
	case Invalid:
		return "invalid"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Cell is one value of a source row. Only the field matching Kind is meaningful:
// Str for Text and Invalid, Num for Number.
type Cell struct {
	Kind Kind
	Str  string
	Num  float64
}

// MissingCell returns an empty cell.
func MissingCell() Cell { return Cell{Kind: Missing} }

// TextCell wraps a string.
func TextCell(s string) Cell { return Cell{Kind: Text, Str: s} }

// NumberCell wraps a number.
func NumberCell(f float64) Cell { return Cell{Kind: Number, Num: f} }

// InvalidCell wraps the raw representation of an unexpected cell.
func InvalidCell(raw string) Cell { return Cell{Kind: Invalid, Str: raw} }

// Raw returns a printable form of the cell for diagnostics.
func (c Cell) Raw() string {
	switch c.Kind {
	case Number:
		return strconv.FormatFloat(c.Num, 'g', -1, 64)
	case Text, Invalid:
		return c.Str
	default:
		return ""
	}
}

// IsBlank reports whether the cell is missing or whitespace-only text.
func (c Cell) IsBlank() bool {
	return c.Kind == Missing || (c.Kind == Text && strings.TrimSpace(c.Str) == "")
}

// Row is an ordered sequence of cells with its 1-based line in the source.
type Row struct {
	Line  int
	Cells []Cell
}

// At returns the cell at col, or a missing cell when the row is shorter.
func (r Row) At(col int) Cell {
	if col < 0 || col >= len(r.Cells) {
		return MissingCell()
	}
	return r.Cells[col]
}
