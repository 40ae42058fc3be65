// Package charts draws the dashboard figures from a render result using gonum/plot.
package charts

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/chrissnell/bikedash/internal/analysis"
	"github.com/chrissnell/bikedash/internal/dataset"
)

var (
	// ErrUnknownChart is returned for a chart or image format the dashboard does not draw
	ErrUnknownChart = errors.New("unknown chart")
	// ErrNotInMode is returned when the chart belongs to the other analysis mode
	ErrNotInMode = errors.New("chart not available in the selected mode")
)

// Chart names one dashboard figure
type Chart string

const (
	Correlation Chart = "correlation"
	Scatter     Chart = "scatter"
	FactorMeans Chart = "factor-means"
	UserMeans   Chart = "user-means"
	UserTotals  Chart = "user-totals"
)

// ForMode returns the charts shown for a mode, in page order
func ForMode(m analysis.Mode) []Chart {
	switch m {
	case analysis.ModeFactors:
		return []Chart{Correlation, Scatter, FactorMeans}
	case analysis.ModeUsers:
		return []Chart{UserMeans, UserTotals}
	}
	return nil
}

// Mode returns the analysis mode a chart belongs to
func (c Chart) Mode() (analysis.Mode, bool) {
	switch c {
	case Correlation, Scatter, FactorMeans:
		return analysis.ModeFactors, true
	case UserMeans, UserTotals:
		return analysis.ModeUsers, true
	}
	return "", false
}

// Formats maps the supported image formats to their content types
var Formats = map[string]string{
	"svg": "image/svg+xml",
	"png": "image/png",
}

// Options controls the size and encoding of a rendered chart
type Options struct {
	Width  vg.Length
	Height vg.Length
	Format string
}

// DefaultOptions is an 8x5 inch SVG
func DefaultOptions() Options {
	return Options{Width: 8 * vg.Inch, Height: 5 * vg.Inch, Format: "svg"}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Format == "" {
		o.Format = d.Format
	}
	o.Format = strings.ToLower(o.Format)
	return o
}

var (
	steelBlue  = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	skyBlue    = color.RGBA{R: 135, G: 206, B: 235, A: 255}
	lightCoral = color.RGBA{R: 240, G: 128, B: 128, A: 255}
	noDataGray = color.RGBA{R: 220, G: 220, B: 220, A: 255}
)

// Render draws chart c for result and writes the encoded image to w
func Render(w io.Writer, c Chart, result *analysis.Result, opts Options) error {
	opts = opts.withDefaults()
	if _, ok := Formats[opts.Format]; !ok {
		return fmt.Errorf("%w: format %q", ErrUnknownChart, opts.Format)
	}

	mode, ok := c.Mode()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownChart, c)
	}
	if mode != result.Selection.Mode {
		return fmt.Errorf("%w: %s needs mode %s", ErrNotInMode, c, mode)
	}

	p, err := build(c, result)
	if err != nil {
		return fmt.Errorf("error building %s chart: %w", c, err)
	}

	wt, err := p.WriterTo(opts.Width, opts.Height, opts.Format)
	if err != nil {
		return fmt.Errorf("error encoding %s chart: %w", c, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("error writing %s chart: %w", c, err)
	}
	return nil
}

func build(c Chart, result *analysis.Result) (*plot.Plot, error) {
	if result.Empty() {
		return placeholder(Title(c, result.Selection.Factor))
	}

	switch c {
	case Correlation:
		return correlationHeatmap(result.Factors.Correlation)
	case Scatter:
		return scatterBySeason(result.Factors)
	case FactorMeans:
		return factorMeans(result.Factors)
	case UserMeans:
		return userMeans(result.Users.MeanByUserType)
	case UserTotals:
		return userTotals(result.Users.TotalsBySeason)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownChart, c)
}

// Title returns the heading of chart c; factor only matters for the factor-analysis charts
func Title(c Chart, factor dataset.Field) string {
	switch c {
	case Correlation:
		return "Correlation Heatmap"
	case Scatter:
		return fmt.Sprintf("%s vs Total Rentals", analysis.FactorLabel(factor))
	case FactorMeans:
		return fmt.Sprintf("Average %s by Season", analysis.FactorLabel(factor))
	case UserMeans:
		return "Average Casual and Registered Users by Season"
	case UserTotals:
		return "Total Users by Season"
	}
	return string(c)
}
