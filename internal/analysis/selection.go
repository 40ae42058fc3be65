package analysis

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/chrissnell/bikedash/internal/dataset"
)

// ErrInvalidSelection is returned when a selection names an unknown mode, season or factor
var ErrInvalidSelection = errors.New("invalid selection")

var validate = validator.New()

// Mode is the business question being analysed
type Mode string

const (
	ModeFactors Mode = "factors"
	ModeUsers   Mode = "users"
)

// Modes lists the analysis modes in sidebar order
var Modes = []Mode{ModeFactors, ModeUsers}

// Title returns the business question a mode answers
func (m Mode) Title() string {
	switch m {
	case ModeFactors:
		return "Factors Influencing Bike Rental Demand"
	case ModeUsers:
		return "Fluctuation of Casual and Registered Users Across Seasons"
	}
	return string(m)
}

// FactorLabel returns the display label of a factor field
func FactorLabel(f dataset.Field) string {
	switch f {
	case dataset.FieldTemperature:
		return "Temperature"
	case dataset.FieldHumidity:
		return "Humidity"
	case dataset.FieldWindspeed:
		return "Windspeed"
	case dataset.FieldTotal:
		return "Total Rentals"
	case dataset.FieldCasual:
		return "Casual Users"
	case dataset.FieldRegistered:
		return "Registered Users"
	}
	return string(f)
}

// Selection is the complete state of the sidebar controls for one render pass
type Selection struct {
	Mode    Mode             `json:"mode" msgpack:"mode" validate:"required,oneof=factors users"`
	Seasons []dataset.Season `json:"seasons" msgpack:"seasons" validate:"dive,oneof=Spring Summer Fall Winter"`
	Factor  dataset.Field    `json:"factor" msgpack:"factor" validate:"required,oneof=temperature humidity windspeed"`
}

// DefaultSelection is what a first visit shows: factor analysis of temperature over every season
func DefaultSelection() Selection {
	seasons := make([]dataset.Season, len(dataset.Seasons))
	copy(seasons, dataset.Seasons)
	return Selection{
		Mode:    ModeFactors,
		Seasons: seasons,
		Factor:  dataset.FieldTemperature,
	}
}

// Validate checks the selection against the fixed option sets
func (s Selection) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}
	return nil
}

// HasSeason reports whether season is selected
func (s Selection) HasSeason(season dataset.Season) bool {
	for _, sel := range s.Seasons {
		if sel == season {
			return true
		}
	}
	return false
}

// Query encodes the selection as URL query parameters understood by ParseSelection
func (s Selection) Query() url.Values {
	q := url.Values{}
	q.Set("mode", string(s.Mode))
	q.Set("factor", string(s.Factor))
	q.Set("submitted", "1")
	for _, season := range s.Seasons {
		q.Add("season", string(season))
	}
	return q
}

// ParseSelection builds a selection from form values. Repeated "season" values
// (or comma-separated ones) pick the seasons. When no season is sent, the
// "submitted" marker distinguishes an empty selection from a first visit, which
// defaults to every season.
func ParseSelection(values url.Values) (Selection, error) {
	sel := DefaultSelection()

	if mode := strings.TrimSpace(values.Get("mode")); mode != "" {
		sel.Mode = Mode(strings.ToLower(mode))
	}
	if factor := strings.TrimSpace(values.Get("factor")); factor != "" {
		sel.Factor = dataset.Field(strings.ToLower(factor))
	}

	var raw []string
	for _, v := range values["season"] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				raw = append(raw, part)
			}
		}
	}

	if len(raw) > 0 || values.Get("submitted") != "" {
		seasons, err := ParseSeasons(raw)
		if err != nil {
			return sel, err
		}
		sel.Seasons = seasons
	}

	if err := sel.Validate(); err != nil {
		return sel, err
	}
	return sel, nil
}

// ParseSeasons resolves season labels, dropping duplicates and returning them in season order
func ParseSeasons(raw []string) ([]dataset.Season, error) {
	picked := make(map[dataset.Season]bool)
	for _, r := range raw {
		season, ok := dataset.ParseSeason(r)
		if !ok {
			return nil, fmt.Errorf("%w: unknown season %q", ErrInvalidSelection, r)
		}
		picked[season] = true
	}

	seasons := make([]dataset.Season, 0, len(picked))
	for _, season := range dataset.Seasons {
		if picked[season] {
			seasons = append(seasons, season)
		}
	}
	return seasons, nil
}
