package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/chrissnell/bikedash/internal/analysis"
	"github.com/chrissnell/bikedash/internal/dataset"
)

const testCSV = "season_x,temp_y,hum_y,windspeed_y,casual_y,registered_y,cnt_y\n" +
	"1,0.30,0.80,0.10,20,80,100\n" +
	"1,0.50,0.60,0.20,50,150,200\n" +
	"2,0.60,0.55,0.15,40,110,150\n" +
	"3,0.70,0.50,0.25,90,210,300\n"

func TestWriteXLSX(t *testing.T) {
	table, err := dataset.Parse(strings.NewReader(testCSV), dataset.DefaultColumns())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tests := []struct {
		name     string
		sel      analysis.Selection
		wantRows int
		summary  string
	}{
		{
			name:     "factors spring",
			sel:      analysis.Selection{Mode: analysis.ModeFactors, Seasons: []dataset.Season{dataset.Spring}, Factor: dataset.FieldTemperature},
			wantRows: 2,
			summary:  "Average Temperature",
		},
		{
			name:     "users all seasons",
			sel:      analysis.Selection{Mode: analysis.ModeUsers, Seasons: dataset.Seasons, Factor: dataset.FieldTemperature},
			wantRows: 4,
			summary:  "User Type",
		},
		{
			name:     "empty selection",
			sel:      analysis.Selection{Mode: analysis.ModeUsers, Seasons: []dataset.Season{}, Factor: dataset.FieldTemperature},
			wantRows: 0,
			summary:  "User Type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := table.Where(tt.sel.Seasons)
			if err != nil {
				t.Fatal(err)
			}
			result, err := analysis.Render(table, tt.sel)
			if err != nil {
				t.Fatal(err)
			}

			var buf bytes.Buffer
			if err := WriteXLSX(&buf, view, result); err != nil {
				t.Fatalf("WriteXLSX() error = %v", err)
			}

			f, err := excelize.OpenReader(&buf)
			if err != nil {
				t.Fatalf("OpenReader() error = %v", err)
			}
			defer f.Close()

			rows, err := f.GetRows(DataSheet)
			if err != nil {
				t.Fatalf("GetRows() error = %v", err)
			}
			if len(rows) != tt.wantRows+1 {
				t.Errorf("data sheet has %d rows, want %d plus header", len(rows), tt.wantRows)
			}
			if rows[0][0] != "season_x" {
				t.Errorf("header starts with %q, want season_x", rows[0][0])
			}

			summary, err := f.GetRows(SummarySheet)
			if err != nil {
				t.Fatalf("GetRows(summary) error = %v", err)
			}
			found := false
			for _, row := range summary {
				for _, cell := range row {
					if cell == tt.summary {
						found = true
					}
				}
			}
			if !found {
				t.Errorf("summary sheet missing %q", tt.summary)
			}
		})
	}
}
