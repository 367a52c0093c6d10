// Package review exports the problems of a translation run as CSV so that
// unplaced slots and failed phrases can be fixed by hand.
package review

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/spf13/afero"

	"codeberg.org/snonux/slotrans/internal"
)

// Kind of a review row.
const (
	KindUnassigned = "unassigned"
	KindFailed     = "failed"
)

// Row is one item to review.
type Row struct {
	Dataset    string
	Kind       string
	Intent     string
	Utterance  int // -1 when not tied to an utterance
	SlotName   string
	Entity     string
	ID         string
	Text       string
	Translated string
	Error      string
}

// Options configures the export
type Options struct {
	OutputPath     string // Output CSV file path
	IncludeHeaders bool   // Include CSV headers
}

// DefaultOptions returns sensible defaults
func DefaultOptions() *Options {
	return &Options{
		OutputPath:     "review.csv",
		IncludeHeaders: true,
	}
}

// Generator collects rows and writes them as CSV.
type Generator struct {
	options *Options
	rows    []Row
}

// NewGenerator creates a new review generator
func NewGenerator(options *Options) *Generator {
	if options == nil {
		options = DefaultOptions()
	}
	return &Generator{options: options}
}

// AddRow adds a row to the collection
func (g *Generator) AddRow(row Row) {
	g.rows = append(g.rows, row)
}

// Rows returns all collected rows
func (g *Generator) Rows() []Row {
	return g.rows
}

// Len returns the number of collected rows.
func (g *Generator) Len() int {
	return len(g.rows)
}

var headers = []string{"dataset", "kind", "intent", "utterance", "slot_name", "entity", "id", "text", "translated", "error"}

// GenerateCSV writes all rows to the output path, replacing it atomically.
func (g *Generator) GenerateCSV(fs afero.Fs) error {
	records := make([][]string, 0, len(g.rows)+1)
	if g.options.IncludeHeaders {
		records = append(records, headers)
	}
	for _, r := range g.rows {
		utterance := ""
		if r.Utterance >= 0 {
			utterance = strconv.Itoa(r.Utterance)
		}
		records = append(records, []string{
			r.Dataset, r.Kind, r.Intent, utterance, r.SlotName,
			r.Entity, r.ID, r.Text, r.Translated, r.Error,
		})
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write review rows: %w", err)
	}
	return internal.WriteFileAtomic(fs, g.options.OutputPath, buf.Bytes())
}
