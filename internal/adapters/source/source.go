// Package source reads tabular trade data into typed rows.
package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/okian/tradeboard/internal/domain/model"
)

// ctxCheckEvery is how many rows are read between context checks.
const ctxCheckEvery = 256

// Reader produces the raw rows of a source. Rows keep their physical 1-based
// line numbers so diagnostics point at the source.
type Reader interface {
	Read(ctx context.Context) ([]model.Row, error)
}

// Named is implemented by readers that know where their rows come from.
type Named interface {
	Name() string
}

// Open picks a reader from the file extension.
func Open(path string, opts ...Option) (Reader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return NewXLSX(path, opts...), nil
	case ".csv":
		return NewCSV(path, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}
