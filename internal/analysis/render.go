// Package analysis turns a sidebar selection and the loaded dataset into the
// aggregates shown on the dashboard. Everything here is a pure function of its
// inputs: a render pass filters, aggregates and returns, with no state kept
// between passes.
package analysis

import (
	"fmt"

	"github.com/chrissnell/bikedash/internal/dataset"
)

// DefaultPreviewRows is the size of the filtered-data sample under the charts
const DefaultPreviewRows = 10

// FactorAnalysis is the output of the factor-analysis branch
type FactorAnalysis struct {
	Factor       dataset.Field     `json:"factor" msgpack:"factor"`
	Correlation  CorrelationMatrix `json:"correlation" msgpack:"correlation"`
	Scatter      []ScatterSeries   `json:"scatter" msgpack:"scatter"`
	MeanBySeason []SeasonValue     `json:"mean_by_season" msgpack:"mean_by_season"`
}

// UserTypeAnalysis is the output of the user-type fluctuation branch
type UserTypeAnalysis struct {
	MeanByUserType []UserTypeValue `json:"mean_by_user_type" msgpack:"mean_by_user_type"`
	TotalsBySeason []SeasonTotals  `json:"totals_by_season" msgpack:"totals_by_season"`
}

// Preview is the head of the filtered view
type Preview struct {
	Columns []string   `json:"columns" msgpack:"columns"`
	Rows    [][]string `json:"rows" msgpack:"rows"`
}

// Result is everything one render pass produces
type Result struct {
	Selection    Selection         `json:"selection" msgpack:"selection"`
	TotalRows    int               `json:"total_rows" msgpack:"total_rows"`
	FilteredRows int               `json:"filtered_rows" msgpack:"filtered_rows"`
	Factors      *FactorAnalysis   `json:"factors,omitempty" msgpack:"factors,omitempty"`
	Users        *UserTypeAnalysis `json:"users,omitempty" msgpack:"users,omitempty"`
	Preview      Preview           `json:"preview" msgpack:"preview"`
}

// Empty reports whether the filtered view had no rows
func (r *Result) Empty() bool {
	return r.FilteredRows == 0
}

// Pipeline binds the loaded table to the render settings
type Pipeline struct {
	Table       *dataset.Table
	PreviewRows int
}

// NewPipeline returns a pipeline over table. A non-positive previewRows falls back to DefaultPreviewRows.
func NewPipeline(table *dataset.Table, previewRows int) *Pipeline {
	if previewRows <= 0 {
		previewRows = DefaultPreviewRows
	}
	return &Pipeline{Table: table, PreviewRows: previewRows}
}

// Render runs one pass of the dashboard pipeline with the default preview size
func Render(table *dataset.Table, sel Selection) (*Result, error) {
	return NewPipeline(table, DefaultPreviewRows).Render(sel)
}

// Filter returns the view of rows whose season is selected
func Filter(table *dataset.Table, seasons []dataset.Season) (dataset.View, error) {
	return table.Where(seasons)
}

// AnalyzeFactors computes the correlation matrix, scatter series and per-season factor means
func AnalyzeFactors(v dataset.View, factor dataset.Field) *FactorAnalysis {
	return &FactorAnalysis{
		Factor:       factor,
		Correlation:  Correlate(v, CorrelationFields),
		Scatter:      ScatterBySeason(v, factor),
		MeanBySeason: MeanBySeason(v, factor),
	}
}

// AnalyzeUserTypes computes the per-season rider averages (long form) and totals
func AnalyzeUserTypes(v dataset.View) *UserTypeAnalysis {
	return &UserTypeAnalysis{
		MeanByUserType: MeanByUserType(v),
		TotalsBySeason: TotalsBySeason(v),
	}
}

// Render validates sel, filters the table and computes the aggregates of the selected mode
func (p *Pipeline) Render(sel Selection) (*Result, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	view, err := Filter(p.Table, sel.Seasons)
	if err != nil {
		return nil, fmt.Errorf("error building filtered view: %w", err)
	}

	result := &Result{
		Selection:    sel,
		TotalRows:    p.Table.Len(),
		FilteredRows: view.Len(),
		Preview: Preview{
			Columns: view.Names(),
			Rows:    view.Head(p.PreviewRows),
		},
	}

	switch sel.Mode {
	case ModeFactors:
		result.Factors = AnalyzeFactors(view, sel.Factor)
	case ModeUsers:
		result.Users = AnalyzeUserTypes(view)
	}

	return result, nil
}
