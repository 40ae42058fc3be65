package charts

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/chrissnell/bikedash/internal/analysis"
	"github.com/chrissnell/bikedash/internal/dataset"
)

const testCSV = "season_x,temp_y,hum_y,windspeed_y,casual_y,registered_y,cnt_y\n" +
	"1,0.30,0.80,0.10,20,80,100\n" +
	"1,0.50,0.60,0.20,50,150,200\n" +
	"2,0.60,0.55,0.15,40,110,150\n" +
	"3,0.70,0.50,0.25,90,210,300\n" +
	"4,0.20,0.70,0.30,10,70,80\n"

func render(t *testing.T, mode analysis.Mode, seasons []dataset.Season) *analysis.Result {
	t.Helper()
	table, err := dataset.Parse(strings.NewReader(testCSV), dataset.DefaultColumns())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	result, err := analysis.Render(table, analysis.Selection{Mode: mode, Seasons: seasons, Factor: dataset.FieldTemperature})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return result
}

func TestRenderCharts(t *testing.T) {
	for _, mode := range analysis.Modes {
		result := render(t, mode, dataset.Seasons)
		for _, c := range ForMode(mode) {
			for format := range Formats {
				t.Run(string(c)+"."+format, func(t *testing.T) {
					var buf bytes.Buffer
					if err := Render(&buf, c, result, Options{Format: format}); err != nil {
						t.Fatalf("Render() error = %v", err)
					}
					switch format {
					case "svg":
						if !strings.Contains(buf.String(), "<svg") {
							t.Errorf("output is not an SVG document")
						}
					case "png":
						if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
							t.Errorf("output is not a PNG image")
						}
					}
				})
			}
		}
	}
}

func TestRenderEmptySelection(t *testing.T) {
	for _, mode := range analysis.Modes {
		result := render(t, mode, []dataset.Season{})
		for _, c := range ForMode(mode) {
			t.Run(string(c), func(t *testing.T) {
				var buf bytes.Buffer
				if err := Render(&buf, c, result, DefaultOptions()); err != nil {
					t.Fatalf("Render() error = %v", err)
				}
				if !strings.Contains(buf.String(), noDataText) {
					t.Errorf("placeholder text missing from %s", c)
				}
			})
		}
	}
}

func TestRenderErrors(t *testing.T) {
	factors := render(t, analysis.ModeFactors, dataset.Seasons)

	tests := []struct {
		name  string
		chart Chart
		opts  Options
		want  error
	}{
		{name: "other mode", chart: UserTotals, want: ErrNotInMode},
		{name: "unknown chart", chart: Chart("pie"), want: ErrUnknownChart},
		{name: "unknown format", chart: Correlation, opts: Options{Format: "gif"}, want: ErrUnknownChart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Render(&buf, tt.chart, factors, tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("Render() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestChartModes(t *testing.T) {
	for _, mode := range analysis.Modes {
		for _, c := range ForMode(mode) {
			if got, ok := c.Mode(); !ok || got != mode {
				t.Errorf("%s.Mode() = %q, %v; want %q", c, got, ok, mode)
			}
		}
	}
	if ForMode(analysis.Mode("other")) != nil {
		t.Errorf("ForMode(other) should be nil")
	}
}
