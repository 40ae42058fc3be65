package dataset

import (
	"strconv"
	"strings"
)

// Season is the categorical season label attached to every rental record
type Season string

const (
	Spring  Season = "Spring"
	Summer  Season = "Summer"
	Fall    Season = "Fall"
	Winter  Season = "Winter"
	Unknown Season = "Unknown"
)

// Seasons lists the selectable seasons in code order. Aggregates are reported in this order.
var Seasons = []Season{Spring, Summer, Fall, Winter}

var seasonByCode = map[int]Season{
	1: Spring,
	2: Summer,
	3: Fall,
	4: Winter,
}

// SeasonFromCode maps a 1-4 season code to its label. Any other code maps to Unknown.
func SeasonFromCode(code int) Season {
	if s, ok := seasonByCode[code]; ok {
		return s
	}
	return Unknown
}

// ParseSeason resolves a selectable season label, case-insensitively
func ParseSeason(s string) (Season, bool) {
	for _, season := range Seasons {
		if strings.EqualFold(strings.TrimSpace(s), string(season)) {
			return season, true
		}
	}
	return "", false
}

// Index returns the position of s in Seasons, or -1 for Unknown
func (s Season) Index() int {
	for i, season := range Seasons {
		if season == s {
			return i
		}
	}
	return -1
}

// relabel converts a raw season cell into a label. Integer codes go through
// SeasonFromCode and cells that already carry a label are kept, so relabeling
// an already relabeled table is a no-op.
func relabel(raw string) (Season, bool) {
	raw = strings.TrimSpace(raw)
	if code, err := strconv.Atoi(raw); err == nil {
		return SeasonFromCode(code), true
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f == float64(int(f)) {
		return SeasonFromCode(int(f)), true
	}
	if s, ok := ParseSeason(raw); ok {
		return s, true
	}
	if strings.EqualFold(raw, string(Unknown)) {
		return Unknown, true
	}
	return "", false
}
