// Package report renders ranking results for the console or other tools.
package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/okian/tradeboard/internal/domain/ranking"
	"github.com/okian/tradeboard/internal/domain/types"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ErrUnknownFormat is returned by Write for an unsupported format.
var ErrUnknownFormat = errors.New("unknown report format")

// Write renders res in format.
func Write(w io.Writer, format string, res types.Result) error {
	switch format {
	case "", FormatText:
		return Text(w, res)
	case FormatJSON:
		return JSON(w, res)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Text writes one block per continent and metric:
//
//	Top 2 Countries in Asia by Priority Score:
//	Acme: Priority Score = 1120
//	Beta: Priority Score = 372
//
// followed by the matching Bottom block when the result has one.
func Text(w io.Writer, res types.Result) error {
	bw := bufio.NewWriter(w)
	for _, continent := range res.ContinentNames() {
		groups := res.Continents[continent]
		for _, name := range res.Metrics {
			g, ok := groups[name]
			if !ok {
				continue
			}
			label := ranking.Metric(name).Label()
			block(bw, "Top", continent, label, g.Top)
			if g.Bottom != nil {
				block(bw, "Bottom", continent, label, g.Bottom)
			}
		}
	}
	return bw.Flush()
}

func block(w *bufio.Writer, side, continent, label string, entries []types.Entry) {
	fmt.Fprintf(w, "%s %d Countries in %s by %s:\n", side, len(entries), continent, label)
	for _, e := range entries {
		fmt.Fprintf(w, "%s: %s = %s\n", e.Country, label, strconv.FormatFloat(e.Value, 'f', -1, 64))
	}
	w.WriteString("\n")
}

// JSON writes res as indented JSON.
func JSON(w io.Writer, res types.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
