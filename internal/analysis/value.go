package analysis

import (
	"math"
	"strconv"
)

// Value is a float that encodes NaN and infinities as JSON null
type Value float64

// Valid reports whether the value is a finite number
func (v Value) Valid() bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// MarshalJSON implements json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid() {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(v), 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler, reading null back as NaN
func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Value(math.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*v = Value(f)
	return nil
}

// String formats the value with two decimals, or "n/a"
func (v Value) String() string {
	if !v.Valid() {
		return "n/a"
	}
	return strconv.FormatFloat(float64(v), 'f', 2, 64)
}
