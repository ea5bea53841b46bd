package domain

import (
	"strconv"
	"strings"
)

// Required input columns shared by every station export
const (
	ColumnDate     = "Date"
	ColumnState    = "State"
	ColumnDistrict = "District"
)

// Default column names for the configurable fields
const (
	DefaultStationColumn = "Station_name"
	DefaultLevelColumn   = "level"
)

// StationKey identifies one station column within a state's wide table
type StationKey struct {
	State    string `json:"state"`
	District string `json:"district"`
	Station  string `json:"station"`
}

// Label returns the display label used once the key leaves the per-state phase
func (k StationKey) Label() string {
	return k.Station
}

// String implements fmt.Stringer
func (k StationKey) String() string {
	return k.State + "/" + k.District + "/" + k.Station
}

// Level is a single groundwater reading. Valid is false for a missing cell.
type Level struct {
	Value float64
	Valid bool
}

// Missing is the explicit "no value" marker
var Missing = Level{}

// NewLevel returns a present reading
func NewLevel(v float64) Level {
	return Level{Value: v, Valid: true}
}

// ParseLevel converts a raw cell into a Level. Empty, NaN and non-numeric
// cells are missing.
func ParseLevel(raw string) Level {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Missing
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != v {
		return Missing
	}
	return NewLevel(v)
}

// String formats the reading with the shortest round-trip representation,
// or "" when missing.
func (l Level) String() string {
	if !l.Valid {
		return ""
	}
	return strconv.FormatFloat(l.Value, 'f', -1, 64)
}

// RawRecord is one row of a station export
type RawRecord struct {
	Date     string
	State    string
	District string
	Station  string
	Level    Level
}

// Key returns the station identity of the record
func (r RawRecord) Key() StationKey {
	return StationKey{State: r.State, District: r.District, Station: r.Station}
}
