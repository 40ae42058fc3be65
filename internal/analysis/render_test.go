package analysis

import (
	"encoding/json"
	"errors"
	"math"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/chrissnell/bikedash/internal/dataset"
)

const header = "season_x,temp_y,hum_y,windspeed_y,casual_y,registered_y,cnt_y\n"

const scenarioCSV = header +
	"1,0.3,0.80,0.10,20,80,100\n" +
	"1,0.5,0.60,0.20,50,150,200\n" +
	"2,0.6,0.55,0.15,40,110,150\n"

const fullCSV = header +
	"1,0.30,0.80,0.10,20,80,100\n" +
	"1,0.50,0.60,0.20,50,150,200\n" +
	"2,0.60,0.55,0.15,40,110,150\n" +
	"2,0.65,0.45,0.30,70,170,240\n" +
	"3,0.70,0.50,0.25,90,210,300\n" +
	"3,0.75,0.65,0.05,80,260,340\n" +
	"4,0.20,0.70,0.30,10,70,80\n" +
	"4,0.25,0.90,0.35,5,65,70\n"

func mustTable(t *testing.T, content string) *dataset.Table {
	t.Helper()
	table, err := dataset.Parse(strings.NewReader(content), dataset.DefaultColumns())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return table
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMeanBySeasonScenario(t *testing.T) {
	table := mustTable(t, scenarioCSV)

	tests := []struct {
		name    string
		seasons []dataset.Season
		want    []SeasonValue
	}{
		{
			name:    "spring only",
			seasons: []dataset.Season{dataset.Spring},
			want:    []SeasonValue{{Season: dataset.Spring, Value: 0.4}},
		},
		{
			name:    "spring and summer",
			seasons: []dataset.Season{dataset.Spring, dataset.Summer},
			want: []SeasonValue{
				{Season: dataset.Spring, Value: 0.4},
				{Season: dataset.Summer, Value: 0.6},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := Selection{Mode: ModeFactors, Seasons: tt.seasons, Factor: dataset.FieldTemperature}
			result, err := Render(table, sel)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			got := result.Factors.MeanBySeason
			if len(got) != len(tt.want) {
				t.Fatalf("MeanBySeason = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i].Season != tt.want[i].Season || !approx(got[i].Value, tt.want[i].Value) {
					t.Errorf("MeanBySeason[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCorrelationMatrixProperties(t *testing.T) {
	table := mustTable(t, fullCSV)
	m := Correlate(table.All(), CorrelationFields)

	n := len(CorrelationFields)
	if len(m.Values) != n {
		t.Fatalf("matrix has %d rows, want %d", len(m.Values), n)
	}
	for i := 0; i < n; i++ {
		if !approx(float64(m.At(i, i)), 1) {
			t.Errorf("diagonal[%d] = %v, want 1", i, m.At(i, i))
		}
		for j := 0; j < n; j++ {
			if m.At(i, j) != m.At(j, i) {
				t.Errorf("matrix not symmetric at (%d,%d): %v != %v", i, j, m.At(i, j), m.At(j, i))
			}
			if v := float64(m.At(i, j)); v < -1 || v > 1 {
				t.Errorf("coefficient (%d,%d) = %v out of range", i, j, v)
			}
		}
	}
}

func TestCorrelationUndefined(t *testing.T) {
	t.Run("single row", func(t *testing.T) {
		table := mustTable(t, header+"1,0.3,0.8,0.1,20,80,100\n")
		m := Correlate(table.All(), CorrelationFields)
		for i := range m.Values {
			for j := range m.Values[i] {
				if m.At(i, j).Valid() {
					t.Errorf("coefficient (%d,%d) = %v, want NaN", i, j, m.At(i, j))
				}
			}
		}
	})

	t.Run("constant column", func(t *testing.T) {
		table := mustTable(t, header+
			"1,0.3,0.5,0.1,20,80,100\n"+
			"1,0.4,0.5,0.2,30,90,120\n"+
			"1,0.6,0.5,0.4,35,95,130\n")
		m := Correlate(table.All(), CorrelationFields)
		humidity := 1
		for j := range m.Values {
			if m.At(humidity, j).Valid() {
				t.Errorf("humidity coefficient with %d = %v, want NaN", j, m.At(humidity, j))
			}
		}
		if !approx(float64(m.At(0, 0)), 1) {
			t.Errorf("temperature diagonal = %v, want 1", m.At(0, 0))
		}
	})
}

func TestTotalsMatchDirectAggregation(t *testing.T) {
	table := mustTable(t, fullCSV)
	result, err := Render(table, Selection{Mode: ModeUsers, Seasons: dataset.Seasons, Factor: dataset.FieldTemperature})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	all := table.All()
	want := map[dataset.Season][2]int64{}
	seasons := all.Seasons()
	casual := all.Floats(dataset.FieldCasual)
	registered := all.Floats(dataset.FieldRegistered)
	for i, s := range seasons {
		w := want[s]
		w[0] += int64(casual[i])
		w[1] += int64(registered[i])
		want[s] = w
	}

	totals := result.Users.TotalsBySeason
	if len(totals) != 4 {
		t.Fatalf("TotalsBySeason has %d rows, want 4", len(totals))
	}
	var sumCasual int64
	for _, row := range totals {
		if w := want[row.Season]; row.Casual != w[0] || row.Registered != w[1] {
			t.Errorf("%s totals = (%d, %d), want (%d, %d)", row.Season, row.Casual, row.Registered, w[0], w[1])
		}
		sumCasual += row.Casual
	}
	if sumCasual != 365 {
		t.Errorf("sum of casual = %d, want 365", sumCasual)
	}

	long := result.Users.MeanByUserType
	if len(long) != 8 {
		t.Fatalf("MeanByUserType has %d rows, want 8", len(long))
	}
	if long[0].UserType != Casual || long[0].Season != dataset.Spring || !approx(long[0].Average, 35) {
		t.Errorf("first long-form row = %+v, want spring casual average 35", long[0])
	}
	if long[7].UserType != Registered || long[7].Season != dataset.Winter || !approx(long[7].Average, 67.5) {
		t.Errorf("last long-form row = %+v, want winter registered average 67.5", long[7])
	}
}

func TestEmptySelection(t *testing.T) {
	table := mustTable(t, fullCSV)

	for _, mode := range Modes {
		t.Run(string(mode), func(t *testing.T) {
			result, err := Render(table, Selection{Mode: mode, Seasons: nil, Factor: dataset.FieldHumidity})
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if !result.Empty() || result.FilteredRows != 0 {
				t.Errorf("FilteredRows = %d, want 0", result.FilteredRows)
			}
			if len(result.Preview.Rows) != 0 {
				t.Errorf("preview has %d rows, want 0", len(result.Preview.Rows))
			}
			if len(result.Preview.Columns) == 0 {
				t.Errorf("preview should keep the column names")
			}
			switch mode {
			case ModeFactors:
				if len(result.Factors.MeanBySeason) != 0 || len(result.Factors.Scatter) != 0 {
					t.Errorf("factor aggregates not empty: %+v", result.Factors)
				}
			case ModeUsers:
				if len(result.Users.MeanByUserType) != 0 || len(result.Users.TotalsBySeason) != 0 {
					t.Errorf("user aggregates not empty: %+v", result.Users)
				}
			}
			if _, err := json.Marshal(result); err != nil {
				t.Errorf("json.Marshal() error = %v", err)
			}
		})
	}
}

func TestRenderDeterministic(t *testing.T) {
	table := mustTable(t, fullCSV)
	sel := Selection{Mode: ModeFactors, Seasons: []dataset.Season{dataset.Summer, dataset.Fall}, Factor: dataset.FieldWindspeed}

	first, err := Render(table, sel)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	second, err := Render(table, sel)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Render() not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestPreviewSize(t *testing.T) {
	table := mustTable(t, fullCSV)

	result, err := NewPipeline(table, 3).Render(DefaultSelection())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(result.Preview.Rows) != 3 {
		t.Errorf("preview rows = %d, want 3", len(result.Preview.Rows))
	}
	if result.TotalRows != 8 || result.FilteredRows != 8 {
		t.Errorf("rows = %d/%d, want 8/8", result.TotalRows, result.FilteredRows)
	}
}

func TestScatterBySeason(t *testing.T) {
	table := mustTable(t, fullCSV)
	view, err := Filter(table, []dataset.Season{dataset.Winter, dataset.Spring})
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}

	series := ScatterBySeason(view, dataset.FieldTemperature)
	if len(series) != 2 || series[0].Season != dataset.Spring || series[1].Season != dataset.Winter {
		t.Fatalf("series = %+v, want spring then winter", series)
	}
	if p := series[1].Points[0]; !approx(p.X, 0.2) || !approx(p.Y, 80) {
		t.Errorf("first winter point = %+v, want (0.2, 80)", p)
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    Selection
		wantErr bool
	}{
		{
			name:  "first visit",
			query: "",
			want:  DefaultSelection(),
		},
		{
			name:  "submitted with no season",
			query: "mode=users&submitted=1",
			want:  Selection{Mode: ModeUsers, Seasons: []dataset.Season{}, Factor: dataset.FieldTemperature},
		},
		{
			name:  "repeated and comma separated seasons",
			query: "mode=factors&factor=humidity&season=winter&season=Spring,Summer&season=Spring",
			want: Selection{
				Mode:    ModeFactors,
				Seasons: []dataset.Season{dataset.Spring, dataset.Summer, dataset.Winter},
				Factor:  dataset.FieldHumidity,
			},
		},
		{name: "unknown mode", query: "mode=weather", wantErr: true},
		{name: "unknown factor", query: "factor=rain", wantErr: true},
		{name: "unknown season", query: "season=Monsoon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatal(err)
			}
			got, err := ParseSelection(values)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSelection) {
					t.Errorf("ParseSelection() error = %v, want ErrInvalidSelection", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSelection() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSelection() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSelectionQueryRoundTrip(t *testing.T) {
	sel := Selection{Mode: ModeUsers, Seasons: []dataset.Season{}, Factor: dataset.FieldWindspeed}
	got, err := ParseSelection(sel.Query())
	if err != nil {
		t.Fatalf("ParseSelection() error = %v", err)
	}
	if !reflect.DeepEqual(got, sel) {
		t.Errorf("round trip = %+v, want %+v", got, sel)
	}
}

func TestValueJSON(t *testing.T) {
	b, err := json.Marshal([]Value{Value(0.5), Value(math.NaN())})
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if string(b) != "[0.5,null]" {
		t.Errorf("json = %s, want [0.5,null]", b)
	}
	if Value(math.NaN()).String() != "n/a" || Value(0.456).String() != "0.46" {
		t.Errorf("String() formatting mismatch")
	}
}
