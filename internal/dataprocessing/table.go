package dataprocessing

import (
	"sort"

	"gwmerge/pkg/contracts/domain"
)

// StateRow is one row of a state wide table. Stations absent from Values
// are missing for that date.
type StateRow struct {
	Date   string
	Values map[domain.StationKey]domain.Level
}

// Get returns the reading for a station, or domain.Missing
func (r StateRow) Get(key domain.StationKey) domain.Level {
	if v, ok := r.Values[key]; ok {
		return v
	}
	return domain.Missing
}

// StateTable is the wide form of one state's station exports: one column per
// station identity, rows keyed by date. Dates may repeat when two files of the
// same state report the same date.
type StateTable struct {
	State   string
	Columns []domain.StationKey
	Rows    []StateRow
}

// StationCount returns the number of non-Date columns
func (t *StateTable) StationCount() int {
	return len(t.Columns)
}

// DateRange returns the smallest and largest date strings
func (t *StateTable) DateRange() (first, last string) {
	for i, row := range t.Rows {
		if i == 0 || row.Date < first {
			first = row.Date
		}
		if i == 0 || row.Date > last {
			last = row.Date
		}
	}
	return first, last
}

// SortByDate orders rows by the raw date string. The sort is stable so rows
// sharing a date keep their concatenation order.
func (t *StateTable) SortByDate() {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		return t.Rows[i].Date < t.Rows[j].Date
	})
}

// Concat stacks the rows of several tables into one. Columns keep the order
// in which they were first seen; rows are not deduplicated.
func Concat(state string, parts []*StateTable) *StateTable {
	out := &StateTable{State: state}
	seen := make(map[domain.StationKey]bool)

	for _, part := range parts {
		for _, key := range part.Columns {
			if !seen[key] {
				seen[key] = true
				out.Columns = append(out.Columns, key)
			}
		}
		out.Rows = append(out.Rows, part.Rows...)
	}
	return out
}
