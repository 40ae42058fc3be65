package dataset

// Field identifies one of the semantic columns the dashboard analyses
type Field string

const (
	FieldSeason      Field = "season"
	FieldTemperature Field = "temperature"
	FieldHumidity    Field = "humidity"
	FieldWindspeed   Field = "windspeed"
	FieldCasual      Field = "casual"
	FieldRegistered  Field = "registered"
	FieldTotal       Field = "total"
)

// Factors are the continuous predictor fields that can be analysed against total rentals
var Factors = []Field{FieldTemperature, FieldHumidity, FieldWindspeed}

// Columns maps semantic fields to the column names used in the CSV file.
// The defaults are the names of the merged day/hour tables the dataset was built from.
type Columns struct {
	Season      string `yaml:"season" json:"season"`
	Temperature string `yaml:"temperature" json:"temperature"`
	Humidity    string `yaml:"humidity" json:"humidity"`
	Windspeed   string `yaml:"windspeed" json:"windspeed"`
	Casual      string `yaml:"casual" json:"casual"`
	Registered  string `yaml:"registered" json:"registered"`
	Total       string `yaml:"total" json:"total"`
}

// DefaultColumns returns the column names of the published main_data.csv
func DefaultColumns() Columns {
	return Columns{
		Season:      "season_x",
		Temperature: "temp_y",
		Humidity:    "hum_y",
		Windspeed:   "windspeed_y",
		Casual:      "casual_y",
		Registered:  "registered_y",
		Total:       "cnt_y",
	}
}

// WithDefaults fills any empty column name from DefaultColumns
func (c Columns) WithDefaults() Columns {
	d := DefaultColumns()
	if c.Season == "" {
		c.Season = d.Season
	}
	if c.Temperature == "" {
		c.Temperature = d.Temperature
	}
	if c.Humidity == "" {
		c.Humidity = d.Humidity
	}
	if c.Windspeed == "" {
		c.Windspeed = d.Windspeed
	}
	if c.Casual == "" {
		c.Casual = d.Casual
	}
	if c.Registered == "" {
		c.Registered = d.Registered
	}
	if c.Total == "" {
		c.Total = d.Total
	}
	return c
}

// Name returns the CSV column name for a field
func (c Columns) Name(f Field) string {
	switch f {
	case FieldSeason:
		return c.Season
	case FieldTemperature:
		return c.Temperature
	case FieldHumidity:
		return c.Humidity
	case FieldWindspeed:
		return c.Windspeed
	case FieldCasual:
		return c.Casual
	case FieldRegistered:
		return c.Registered
	case FieldTotal:
		return c.Total
	}
	return ""
}

func (c Columns) floatFields() []Field {
	return []Field{FieldTemperature, FieldHumidity, FieldWindspeed}
}

func (c Columns) countFields() []Field {
	return []Field{FieldCasual, FieldRegistered, FieldTotal}
}
