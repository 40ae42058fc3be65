package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `instant,season_x,temp_y,hum_y,windspeed_y,casual_y,registered_y,cnt_y
1,1,0.3,0.80,0.10,20,80,100
2,1,0.5,0.60,0.20,50,150,200
3,2,0.6,0.55,0.15,40,110,150
4,3,0.7,0.50,0.25,90,210,300
5,4,0.2,0.70,0.30,10,70,80
`

func mustParse(t *testing.T, content string) *Table {
	t.Helper()
	table, err := Parse(strings.NewReader(content), DefaultColumns())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return table
}

func TestParseRelabelsSeasons(t *testing.T) {
	table := mustParse(t, sampleCSV)

	if table.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", table.Len())
	}

	got := table.All().Seasons()
	want := []Season{Spring, Spring, Summer, Fall, Winter}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("season[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing column",
			content: "season_x,temp_y,hum_y,windspeed_y,casual_y,registered_y\n1,0.3,0.8,0.1,20,80\n",
		},
		{
			name:    "non-numeric factor",
			content: "season_x,temp_y,hum_y,windspeed_y,casual_y,registered_y,cnt_y\n1,warm,0.8,0.1,20,80,100\n",
		},
		{
			name:    "non-numeric count",
			content: "season_x,temp_y,hum_y,windspeed_y,casual_y,registered_y,cnt_y\n1,0.3,0.8,0.1,many,80,100\n",
		},
		{
			name:    "invalid season",
			content: "season_x,temp_y,hum_y,windspeed_y,casual_y,registered_y,cnt_y\nmonsoon,0.3,0.8,0.1,20,80,100\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.content), DefaultColumns())
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Parse() error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestParseUnknownSeasonCode(t *testing.T) {
	content := "season_x,temp_y,hum_y,windspeed_y,casual_y,registered_y,cnt_y\n" +
		"1,0.3,0.8,0.1,20,80,100\n" +
		"7,0.4,0.7,0.2,30,90,120\n"
	table := mustParse(t, content)

	counts := table.SeasonCounts()
	if counts[Unknown] != 1 {
		t.Errorf("SeasonCounts()[Unknown] = %d, want 1", counts[Unknown])
	}

	view, err := table.Where(Seasons)
	if err != nil {
		t.Fatalf("Where() error = %v", err)
	}
	if view.Len() != 1 {
		t.Errorf("Where(all seasons).Len() = %d, want 1", view.Len())
	}
}

func TestParseStripsBOMAndAcceptsLabels(t *testing.T) {
	content := "\xEF\xBB\xBFseason_x,temp_y,hum_y,windspeed_y,casual_y,registered_y,cnt_y\n" +
		"Summer,0.3,0.8,0.1,20,80,100\n" +
		"2,0.4,0.7,0.2,30,90,120\n"
	table := mustParse(t, content)

	for i, s := range table.All().Seasons() {
		if s != Summer {
			t.Errorf("season[%d] = %q, want Summer", i, s)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.csv"), DefaultColumns())
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Load() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "main_data.csv")
		if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
			t.Fatal(err)
		}
		table, err := Load(path, Columns{})
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if table.Path() != path {
			t.Errorf("Path() = %q, want %q", table.Path(), path)
		}
		if table.Len() != 5 {
			t.Errorf("Len() = %d, want 5", table.Len())
		}
	})
}

func TestWhere(t *testing.T) {
	table := mustParse(t, sampleCSV)

	tests := []struct {
		name    string
		seasons []Season
		want    int
	}{
		{name: "empty selection", seasons: nil, want: 0},
		{name: "spring", seasons: []Season{Spring}, want: 2},
		{name: "spring and summer", seasons: []Season{Spring, Summer}, want: 3},
		{name: "all", seasons: Seasons, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := table.Where(tt.seasons)
			if err != nil {
				t.Fatalf("Where() error = %v", err)
			}
			if view.Len() != tt.want {
				t.Errorf("Len() = %d, want %d", view.Len(), tt.want)
			}
			if view.Len() > table.Len() {
				t.Errorf("view larger than table: %d > %d", view.Len(), table.Len())
			}

			allowed := make(map[Season]bool)
			for _, s := range tt.seasons {
				allowed[s] = true
			}
			for i, s := range view.Seasons() {
				if !allowed[s] {
					t.Errorf("row %d has season %q outside selection", i, s)
				}
			}
			if len(view.Floats(FieldTemperature)) != tt.want {
				t.Errorf("len(Floats) = %d, want %d", len(view.Floats(FieldTemperature)), tt.want)
			}
		})
	}
}

func TestViewHeadAndRecords(t *testing.T) {
	table := mustParse(t, sampleCSV)

	head := table.All().Head(3)
	if len(head) != 3 {
		t.Fatalf("len(Head(3)) = %d, want 3", len(head))
	}
	if len(head[0]) != len(table.Names()) {
		t.Errorf("row width = %d, want %d", len(head[0]), len(table.Names()))
	}
	if got := len(table.All().Head(50)); got != 5 {
		t.Errorf("len(Head(50)) = %d, want 5", got)
	}

	empty, _ := table.Where(nil)
	if got := len(empty.Head(10)); got != 0 {
		t.Errorf("empty Head() = %d rows, want 0", got)
	}
	records := empty.Records()
	if len(records) != 1 || len(records[0]) != len(table.Names()) {
		t.Errorf("empty Records() = %v, want header only", records)
	}
}

func TestSeasonHelpers(t *testing.T) {
	if got := SeasonFromCode(3); got != Fall {
		t.Errorf("SeasonFromCode(3) = %q, want Fall", got)
	}
	if got := SeasonFromCode(0); got != Unknown {
		t.Errorf("SeasonFromCode(0) = %q, want Unknown", got)
	}
	if s, ok := ParseSeason("winter"); !ok || s != Winter {
		t.Errorf("ParseSeason(winter) = %q, %v", s, ok)
	}
	if _, ok := ParseSeason("Unknown"); ok {
		t.Errorf("ParseSeason(Unknown) should not be selectable")
	}
	if Winter.Index() != 3 || Unknown.Index() != -1 {
		t.Errorf("Index() = %d/%d, want 3/-1", Winter.Index(), Unknown.Index())
	}
}
