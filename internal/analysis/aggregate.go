package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/chrissnell/bikedash/internal/dataset"
)

// CorrelationFields are the columns of the correlation matrix, in display order
var CorrelationFields = []dataset.Field{
	dataset.FieldTemperature,
	dataset.FieldHumidity,
	dataset.FieldWindspeed,
	dataset.FieldTotal,
}

// CorrelationMatrix holds pairwise Pearson coefficients. Values[i][j] correlates Fields[i] with Fields[j].
type CorrelationMatrix struct {
	Fields []dataset.Field `json:"fields" msgpack:"fields"`
	Values [][]Value       `json:"values" msgpack:"values"`
}

// At returns the coefficient for fields i and j
func (m CorrelationMatrix) At(i, j int) Value {
	return m.Values[i][j]
}

// ScatterPoint is one (factor, total rentals) observation
type ScatterPoint struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// ScatterSeries groups the scatter points of one season
type ScatterSeries struct {
	Season dataset.Season `json:"season" msgpack:"season"`
	Points []ScatterPoint `json:"points" msgpack:"points"`
}

// SeasonValue is a per-season aggregate of a single field
type SeasonValue struct {
	Season dataset.Season `json:"season" msgpack:"season"`
	Value  float64        `json:"value" msgpack:"value"`
}

// UserType distinguishes the two rider categories
type UserType string

const (
	Casual     UserType = "casual"
	Registered UserType = "registered"
)

// UserTypes lists the rider categories in chart order
var UserTypes = []UserType{Casual, Registered}

// Label returns the display label of a user type
func (u UserType) Label() string {
	switch u {
	case Casual:
		return "Casual Users"
	case Registered:
		return "Registered Users"
	}
	return string(u)
}

func (u UserType) field() dataset.Field {
	if u == Casual {
		return dataset.FieldCasual
	}
	return dataset.FieldRegistered
}

// UserTypeValue is one row of the long-form per-season user-type averages
type UserTypeValue struct {
	Season   dataset.Season `json:"season" msgpack:"season"`
	UserType UserType       `json:"user_type" msgpack:"user_type"`
	Average  float64        `json:"average" msgpack:"average"`
}

// SeasonTotals holds the per-season sums of both rider categories
type SeasonTotals struct {
	Season     dataset.Season `json:"season" msgpack:"season"`
	Casual     int64          `json:"casual" msgpack:"casual"`
	Registered int64          `json:"registered" msgpack:"registered"`
}

// Correlate computes the Pearson correlation matrix of fields over the view.
// With fewer than two rows, or for a constant column, the coefficient is undefined and reported as NaN.
func Correlate(v dataset.View, fields []dataset.Field) CorrelationMatrix {
	columns := make([][]float64, len(fields))
	constant := make([]bool, len(fields))
	for i, f := range fields {
		columns[i] = v.Floats(f)
		constant[i] = v.Len() < 2 || stat.Variance(columns[i], nil) == 0
	}

	values := make([][]Value, len(fields))
	for i := range values {
		values[i] = make([]Value, len(fields))
	}

	for i := range fields {
		for j := i; j < len(fields); j++ {
			var c float64
			switch {
			case constant[i] || constant[j]:
				c = math.NaN()
			case i == j:
				c = 1
			default:
				c = math.Max(-1, math.Min(1, stat.Correlation(columns[i], columns[j], nil)))
			}
			values[i][j] = Value(c)
			values[j][i] = Value(c)
		}
	}

	return CorrelationMatrix{Fields: fields, Values: values}
}

// groupBySeason returns the row indexes of each selectable season present in the view, in season order
func groupBySeason(v dataset.View) []seasonGroup {
	rows := make(map[dataset.Season][]int)
	for i, s := range v.Seasons() {
		rows[s] = append(rows[s], i)
	}

	groups := make([]seasonGroup, 0, len(dataset.Seasons))
	for _, s := range dataset.Seasons {
		if idx, ok := rows[s]; ok {
			groups = append(groups, seasonGroup{season: s, rows: idx})
		}
	}
	return groups
}

type seasonGroup struct {
	season dataset.Season
	rows   []int
}

func (g seasonGroup) pick(values []float64) []float64 {
	out := make([]float64, len(g.rows))
	for i, r := range g.rows {
		out[i] = values[r]
	}
	return out
}

// ScatterBySeason pairs the factor with total rentals, one series per season
func ScatterBySeason(v dataset.View, factor dataset.Field) []ScatterSeries {
	xs := v.Floats(factor)
	ys := v.Floats(dataset.FieldTotal)

	groups := groupBySeason(v)
	series := make([]ScatterSeries, 0, len(groups))
	for _, g := range groups {
		points := make([]ScatterPoint, len(g.rows))
		for i, r := range g.rows {
			points[i] = ScatterPoint{X: xs[r], Y: ys[r]}
		}
		series = append(series, ScatterSeries{Season: g.season, Points: points})
	}
	return series
}

// MeanBySeason averages a field per season present in the view
func MeanBySeason(v dataset.View, field dataset.Field) []SeasonValue {
	values := v.Floats(field)

	groups := groupBySeason(v)
	means := make([]SeasonValue, 0, len(groups))
	for _, g := range groups {
		means = append(means, SeasonValue{Season: g.season, Value: stat.Mean(g.pick(values), nil)})
	}
	return means
}

// MeanByUserType averages both rider counts per season and reshapes the
// result into long form: one row per (season, user type).
func MeanByUserType(v dataset.View) []UserTypeValue {
	byType := make(map[UserType][]SeasonValue, len(UserTypes))
	for _, u := range UserTypes {
		byType[u] = MeanBySeason(v, u.field())
	}

	var rows []UserTypeValue
	for _, u := range UserTypes {
		for _, sv := range byType[u] {
			rows = append(rows, UserTypeValue{Season: sv.Season, UserType: u, Average: sv.Value})
		}
	}
	if rows == nil {
		rows = []UserTypeValue{}
	}
	return rows
}

// TotalsBySeason sums both rider counts per season present in the view
func TotalsBySeason(v dataset.View) []SeasonTotals {
	casual := v.Floats(dataset.FieldCasual)
	registered := v.Floats(dataset.FieldRegistered)

	groups := groupBySeason(v)
	totals := make([]SeasonTotals, 0, len(groups))
	for _, g := range groups {
		totals = append(totals, SeasonTotals{
			Season:     g.season,
			Casual:     int64(math.Round(floats.Sum(g.pick(casual)))),
			Registered: int64(math.Round(floats.Sum(g.pick(registered)))),
		})
	}
	return totals
}
