package dataprocessing

import (
	"strings"

	"gwmerge/pkg/contracts/domain"
)

// levelSubstring is the fallback marker for level headers
const levelSubstring = "level"

// Columns names the configurable input columns
type Columns struct {
	Station string
	Level   string
}

// DefaultColumns returns the standard export column names
func DefaultColumns() Columns {
	return Columns{
		Station: domain.DefaultStationColumn,
		Level:   domain.DefaultLevelColumn,
	}
}

// LevelCandidates lists the headers that could hold the level reading, in
// the order they are tried: the configured name first, then every header
// whose lowercase form contains "level", in header order.
func LevelCandidates(headers []string, preferred string) []string {
	var candidates []string
	for _, h := range headers {
		if h == preferred {
			candidates = append(candidates, h)
			break
		}
	}
	for _, h := range headers {
		if h != preferred && strings.Contains(strings.ToLower(h), levelSubstring) {
			candidates = append(candidates, h)
		}
	}
	return candidates
}

// ResolveLevelColumn picks the effective level column. When several headers
// match the substring fallback the first in header order wins.
func ResolveLevelColumn(headers []string, preferred string) (string, bool) {
	candidates := LevelCandidates(headers, preferred)
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[0], true
}

// RequiredColumns returns the headers a usable file must contain
func RequiredColumns(stationCol, levelCol string) []string {
	return []string{domain.ColumnDate, domain.ColumnState, domain.ColumnDistrict, stationCol, levelCol}
}

// MissingColumns returns the required columns absent from the table
func (t *RawTable) MissingColumns(required []string) []string {
	var missing []string
	for _, col := range required {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}
