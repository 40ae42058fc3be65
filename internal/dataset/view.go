package dataset

import (
	"github.com/go-gota/gota/dataframe"
)

// View is a read-only subset of a Table. The zero-row view never touches its frame.
type View struct {
	frame dataframe.DataFrame
	names []string
	cols  Columns
	rows  int
}

// Len returns the number of rows in the view
func (v View) Len() int {
	return v.rows
}

// Names returns the column names of the view
func (v View) Names() []string {
	return v.names
}

// Columns returns the column mapping of the underlying table
func (v View) Columns() Columns {
	return v.cols
}

// Floats returns the values of a numeric field, one per row
func (v View) Floats(f Field) []float64 {
	if v.rows == 0 {
		return []float64{}
	}
	return v.frame.Col(v.cols.Name(f)).Float()
}

// Seasons returns the season label of every row
func (v View) Seasons() []Season {
	if v.rows == 0 {
		return []Season{}
	}
	raw := v.frame.Col(v.cols.Season).Records()
	out := make([]Season, len(raw))
	for i, s := range raw {
		out[i] = Season(s)
	}
	return out
}

// Head returns up to n rows of the view as strings, without the header
func (v View) Head(n int) [][]string {
	if v.rows == 0 || n <= 0 {
		return [][]string{}
	}
	if n > v.rows {
		n = v.rows
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	records := v.frame.Subset(idx).Records()
	return records[1:]
}

// Records returns the header followed by every row of the view
func (v View) Records() [][]string {
	if v.rows == 0 {
		header := make([]string, len(v.names))
		copy(header, v.names)
		return [][]string{header}
	}
	return v.frame.Records()
}
