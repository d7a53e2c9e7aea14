// file: internal/startlist/writer.go
// version: 1.0.0
// guid: c7d2e9a4-1b6f-4803-9e5c-3a8f0b1d6e29

package startlist

import (
	"errors"
	"fmt"
	"strings"

	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/dataset"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/fileops"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/logging"
)

// ErrEmptyStartlist is returned when there is nothing to write. The
// destination is left untouched.
var ErrEmptyStartlist = errors.New("startlist is empty")

// Writer resolves a startlist and writes the game's startlist XML.
// Unresolved teams get placeholder identifiers; unresolved riders are left
// out of the file.
type Writer struct {
	// Dataset may be nil; every team then gets a placeholder.
	Dataset         *dataset.Dataset
	PlaceholderBase int
	Suggestions     int
	Log             logging.LineFunc
	Progress        ProgressFunc
}

// Write resolves sl, writes the XML to dest and logs the unmatched
// summary. The returned resolution describes every outcome.
func (w *Writer) Write(sl *Startlist, dest string) (*Resolution, error) {
	if sl.Empty() {
		return nil, ErrEmptyStartlist
	}

	r := &Resolver{
		Dataset:         w.Dataset,
		Placeholders:    true,
		PlaceholderBase: w.PlaceholderBase,
		Suggestions:     w.Suggestions,
		Log:             w.Log,
		Progress:        w.Progress,
	}
	res := r.Resolve(sl)

	if err := fileops.WriteFileAtomic(dest, RenderXML(res), 0644); err != nil {
		return res, fmt.Errorf("failed to write startlist: %w", err)
	}

	res.LogUnmatched(w.Log)
	return res, nil
}

// RenderXML renders a resolution in the layout the game importer expects:
// four-space indentation, self-closing cyclist elements and a trailing
// newline. Only matched riders are emitted.
func RenderXML(res *Resolution) []byte {
	lines := []string{"<startlist>"}
	for _, t := range res.Teams {
		lines = append(lines, fmt.Sprintf(`    <team id="%d">`, t.ID))
		for _, r := range t.Riders {
			if r.Matched {
				lines = append(lines, fmt.Sprintf(`        <cyclist id="%d" />`, r.ID))
			}
		}
		lines = append(lines, "    </team>")
	}
	lines = append(lines, "</startlist>", "")
	return []byte(strings.Join(lines, "\n"))
}
