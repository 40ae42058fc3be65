// Package dataset loads the bike sharing CSV into an immutable in-memory table
// and hands out season-filtered views of it.
package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/chrissnell/bikedash/internal/log"
)

var (
	// ErrNotFound is returned when the dataset file does not exist
	ErrNotFound = errors.New("dataset file not found")
	// ErrMalformed is returned when the dataset cannot be parsed or lacks a required column
	ErrMalformed = errors.New("malformed dataset")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is the full dataset. It is built once by Load and never modified afterwards.
type Table struct {
	path  string
	cols  Columns
	frame dataframe.DataFrame
}

// Load reads the dataset at path and applies the season relabeling
func Load(path string, cols Columns) (*Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("error reading dataset %s: %w", path, err)
	}

	t, err := Parse(bytes.NewReader(content), cols)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.path = path
	return t, nil
}

// Parse builds a Table from CSV content
func Parse(r io.Reader, cols Columns) (*Table, error) {
	cols = cols.WithDefaults()

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	types := map[string]series.Type{
		cols.Season: series.String,
	}
	for _, f := range cols.floatFields() {
		types[cols.Name(f)] = series.Float
	}
	for _, f := range cols.countFields() {
		types[cols.Name(f)] = series.Int
	}

	frame := dataframe.ReadCSV(bytes.NewReader(content), dataframe.WithTypes(types))
	if frame.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, frame.Err)
	}

	if err := checkColumns(frame, cols); err != nil {
		return nil, err
	}

	frame, unknown, err := relabelSeasons(frame, cols.Season)
	if err != nil {
		return nil, err
	}
	if unknown > 0 {
		log.Warnw("dataset contains season codes outside 1-4; labelled Unknown",
			"column", cols.Season, "rows", unknown)
	}

	return &Table{cols: cols, frame: frame}, nil
}

func checkColumns(frame dataframe.DataFrame, cols Columns) error {
	present := make(map[string]bool, frame.Ncol())
	for _, name := range frame.Names() {
		present[name] = true
	}

	fields := append([]Field{FieldSeason}, cols.floatFields()...)
	fields = append(fields, cols.countFields()...)
	for _, f := range fields {
		name := cols.Name(f)
		if !present[name] {
			return fmt.Errorf("%w: required column %q (%s) not found", ErrMalformed, name, f)
		}
	}

	for _, f := range cols.floatFields() {
		name := cols.Name(f)
		for i, v := range frame.Col(name).Float() {
			if math.IsNaN(v) {
				return fmt.Errorf("%w: column %q row %d is not numeric", ErrMalformed, name, i+1)
			}
		}
	}
	for _, f := range cols.countFields() {
		name := cols.Name(f)
		if _, err := frame.Col(name).Int(); err != nil {
			return fmt.Errorf("%w: column %q: %v", ErrMalformed, name, err)
		}
	}
	return nil
}

func relabelSeasons(frame dataframe.DataFrame, column string) (dataframe.DataFrame, int, error) {
	raw := frame.Col(column).Records()
	labels := make([]string, len(raw))
	unknown := 0
	for i, cell := range raw {
		season, ok := relabel(cell)
		if !ok {
			return frame, 0, fmt.Errorf("%w: column %q row %d: invalid season %q", ErrMalformed, column, i+1, cell)
		}
		if season == Unknown {
			unknown++
		}
		labels[i] = string(season)
	}

	relabeled := frame.Mutate(series.New(labels, series.String, column))
	if relabeled.Err != nil {
		return frame, 0, fmt.Errorf("%w: %v", ErrMalformed, relabeled.Err)
	}
	return relabeled, unknown, nil
}

// Path returns the file the table was loaded from
func (t *Table) Path() string {
	return t.path
}

// Columns returns the column mapping in effect
func (t *Table) Columns() Columns {
	return t.cols
}

// Len returns the number of rows
func (t *Table) Len() int {
	return t.frame.Nrow()
}

// Names returns every column name in file order
func (t *Table) Names() []string {
	return t.frame.Names()
}

// SeasonCounts returns the number of rows per season label, Unknown included
func (t *Table) SeasonCounts() map[Season]int {
	counts := make(map[Season]int)
	if t.frame.Nrow() == 0 {
		return counts
	}
	for _, label := range t.frame.Col(t.cols.Season).Records() {
		counts[Season(label)]++
	}
	return counts
}

// All returns a view over every row
func (t *Table) All() View {
	return t.view(t.frame)
}

// Where returns the rows whose season is one of seasons. An empty season set yields an empty view.
func (t *Table) Where(seasons []Season) (View, error) {
	if len(seasons) == 0 || t.frame.Nrow() == 0 {
		return View{names: t.frame.Names(), cols: t.cols}, nil
	}

	labels := make([]string, len(seasons))
	for i, s := range seasons {
		labels[i] = string(s)
	}

	filtered := t.frame.Filter(dataframe.F{
		Colname:    t.cols.Season,
		Comparator: series.In,
		Comparando: labels,
	})
	if filtered.Err != nil {
		return View{}, fmt.Errorf("error filtering by season: %w", filtered.Err)
	}
	return t.view(filtered), nil
}

func (t *Table) view(frame dataframe.DataFrame) View {
	if frame.Nrow() == 0 {
		return View{names: t.frame.Names(), cols: t.cols}
	}
	return View{frame: frame, names: frame.Names(), cols: t.cols, rows: frame.Nrow()}
}
