package charts

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/chrissnell/bikedash/internal/analysis"
	"github.com/chrissnell/bikedash/internal/dataset"
)

const noDataText = "No data for the current selection"

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

func placeholder(title string) (*plot.Plot, error) {
	p := newPlot(title, "", "")

	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: 0.5, Y: 0.5}},
		Labels: []string{noDataText},
	})
	if err != nil {
		return nil, err
	}
	centerLabels(labels)
	p.Add(labels)

	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	p.HideAxes()
	return p, nil
}

func centerLabels(l *plotter.Labels) {
	for i := range l.TextStyle {
		l.TextStyle[i].XAlign = draw.XCenter
		l.TextStyle[i].YAlign = draw.YCenter
	}
}

// correlationGrid lays the matrix out with the first field in the top row
type correlationGrid struct {
	m analysis.CorrelationMatrix
}

func (g correlationGrid) Dims() (c, r int) {
	n := len(g.m.Fields)
	return n, n
}

func (g correlationGrid) Z(c, r int) float64 {
	return float64(g.m.At(len(g.m.Fields)-1-r, c))
}

func (g correlationGrid) X(c int) float64 { return float64(c) }

func (g correlationGrid) Y(r int) float64 { return float64(r) }

func correlationHeatmap(m analysis.CorrelationMatrix) (*plot.Plot, error) {
	p := newPlot("Correlation Heatmap", "", "")

	heat := plotter.NewHeatMap(correlationGrid{m: m}, moreland.SmoothBlueRed().Palette(255))
	heat.Min, heat.Max = -1, 1
	heat.NaN = noDataGray
	p.Add(heat)

	n := len(m.Fields)
	xys := make([]plotter.XY, 0, n*n)
	text := make([]string, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			xys = append(xys, plotter.XY{X: float64(j), Y: float64(n - 1 - i)})
			text = append(text, m.At(i, j).String())
		}
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: text})
	if err != nil {
		return nil, err
	}
	centerLabels(labels)
	p.Add(labels)

	names := make([]string, n)
	for i, f := range m.Fields {
		names[i] = analysis.FactorLabel(f)
	}
	reversed := make([]string, n)
	for i, name := range names {
		reversed[n-1-i] = name
	}
	p.NominalX(names...)
	p.NominalY(reversed...)
	return p, nil
}

func scatterBySeason(fa *analysis.FactorAnalysis) (*plot.Plot, error) {
	label := analysis.FactorLabel(fa.Factor)
	p := newPlot(fmt.Sprintf("%s vs Total Rentals", label), label, "Total Rentals")
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	for _, s := range fa.Scatter {
		xys := make(plotter.XYs, len(s.Points))
		for i, pt := range s.Points {
			xys[i].X = pt.X
			xys[i].Y = pt.Y
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = plotutil.Color(s.Season.Index())
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		p.Legend.Add(string(s.Season), sc)
	}
	return p, nil
}

func factorMeans(fa *analysis.FactorAnalysis) (*plot.Plot, error) {
	label := analysis.FactorLabel(fa.Factor)
	p := newPlot(fmt.Sprintf("Average %s by Season", label), "Season", "Average "+label)

	values := make(plotter.Values, len(fa.MeanBySeason))
	names := make([]string, len(fa.MeanBySeason))
	for i, sv := range fa.MeanBySeason {
		values[i] = sv.Value
		names[i] = string(sv.Season)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(40))
	if err != nil {
		return nil, err
	}
	bars.Color = steelBlue
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)
	return p, nil
}

// barSeries is one colored group member of a grouped bar chart
type barSeries struct {
	name   string
	color  color.Color
	values plotter.Values
}

func groupedBars(p *plot.Plot, seasons []dataset.Season, series []barSeries) error {
	width := vg.Points(20)
	offset := -width * vg.Length(len(series)-1) / 2

	for _, s := range series {
		bars, err := plotter.NewBarChart(s.values, width)
		if err != nil {
			return err
		}
		bars.Color = s.color
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = offset
		offset += width
		p.Add(bars)
		p.Legend.Add(s.name, bars)
	}

	names := make([]string, len(seasons))
	for i, s := range seasons {
		names[i] = string(s)
	}
	p.NominalX(names...)
	p.Legend.Top = true
	return nil
}

func userMeans(rows []analysis.UserTypeValue) (*plot.Plot, error) {
	p := newPlot("Average Casual and Registered Users by Season", "Season", "Average Users")

	var seasons []dataset.Season
	index := make(map[dataset.Season]int)
	for _, row := range rows {
		if _, ok := index[row.Season]; !ok {
			index[row.Season] = len(seasons)
			seasons = append(seasons, row.Season)
		}
	}

	series := make([]barSeries, len(analysis.UserTypes))
	for i, u := range analysis.UserTypes {
		series[i] = barSeries{name: u.Label(), color: plotutil.Color(i), values: make(plotter.Values, len(seasons))}
	}
	for _, row := range rows {
		for i, u := range analysis.UserTypes {
			if row.UserType == u {
				series[i].values[index[row.Season]] = row.Average
			}
		}
	}

	if err := groupedBars(p, seasons, series); err != nil {
		return nil, err
	}
	return p, nil
}

func userTotals(totals []analysis.SeasonTotals) (*plot.Plot, error) {
	p := newPlot("Total Users by Season", "Season", "Total Users")

	seasons := make([]dataset.Season, len(totals))
	casual := make(plotter.Values, len(totals))
	registered := make(plotter.Values, len(totals))
	for i, t := range totals {
		seasons[i] = t.Season
		casual[i] = float64(t.Casual)
		registered[i] = float64(t.Registered)
	}

	err := groupedBars(p, seasons, []barSeries{
		{name: analysis.Casual.Label(), color: skyBlue, values: casual},
		{name: analysis.Registered.Label(), color: lightCoral, values: registered},
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
