package dataprocessing

import (
	"fmt"
	"sort"

	"gwmerge/pkg/contracts/domain"
)

// Records extracts raw records from a table using the given station and
// level columns. Headers must already be trimmed.
func (t *RawTable) Records(stationCol, levelCol string) ([]domain.RawRecord, error) {
	idx := make([]int, 0, 5)
	for _, col := range RequiredColumns(stationCol, levelCol) {
		i := t.ColumnIndex(col)
		if i < 0 {
			return nil, fmt.Errorf("column %q not found", col)
		}
		idx = append(idx, i)
	}

	records := make([]domain.RawRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		records = append(records, domain.RawRecord{
			Date:     row[idx[0]],
			State:    row[idx[1]],
			District: row[idx[2]],
			Station:  row[idx[3]],
			Level:    domain.ParseLevel(row[idx[4]]),
		})
	}
	return records, nil
}

// Pivot reshapes long records into wide form: one row per date, one column
// per station identity, keeping the first non-missing level for each
// (date, station) cell. Records with an empty date or identity are dropped,
// as are dates and stations with no reading at all. Rows come out sorted by
// date and columns sorted by identity.
func Pivot(records []domain.RawRecord) *StateTable {
	cells := make(map[string]map[domain.StationKey]domain.Level)
	columns := make(map[domain.StationKey]bool)

	for _, rec := range records {
		if rec.Date == "" || rec.State == "" || rec.District == "" || rec.Station == "" {
			continue
		}
		if !rec.Level.Valid {
			continue
		}

		key := rec.Key()
		row, ok := cells[rec.Date]
		if !ok {
			row = make(map[domain.StationKey]domain.Level)
			cells[rec.Date] = row
		}
		if _, taken := row[key]; taken {
			continue
		}
		row[key] = rec.Level
		columns[key] = true
	}

	table := &StateTable{}
	for key := range columns {
		table.Columns = append(table.Columns, key)
	}
	sort.Slice(table.Columns, func(i, j int) bool {
		return keyLess(table.Columns[i], table.Columns[j])
	})

	for date, values := range cells {
		table.Rows = append(table.Rows, StateRow{Date: date, Values: values})
	}
	table.SortByDate()

	return table
}

// PivotTable resolves the effective level column of a parsed table and pivots it
func PivotTable(raw *RawTable, columns Columns) (*StateTable, error) {
	raw.TrimHeaders()

	levelCol, ok := ResolveLevelColumn(raw.Headers, columns.Level)
	if !ok {
		return nil, fmt.Errorf("no level column found")
	}

	records, err := raw.Records(columns.Station, levelCol)
	if err != nil {
		return nil, err
	}
	return Pivot(records), nil
}

func keyLess(a, b domain.StationKey) bool {
	if a.State != b.State {
		return a.State < b.State
	}
	if a.District != b.District {
		return a.District < b.District
	}
	return a.Station < b.Station
}
