package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"gwmerge/pkg/contracts/domain"
)

// ErrNothingToMerge is returned when no state tables are supplied
var ErrNothingToMerge = errors.New("no state tables to merge")

// ColumnSource records where a combined column came from
type ColumnSource struct {
	Label string            `json:"label"`
	State string            `json:"state"`
	Key   domain.StationKey `json:"key"`
}

// CombinedRow is one date of the combined table. Values line up with
// CombinedTable.Columns.
type CombinedRow struct {
	Index  int
	Date   string
	Values []domain.Level
}

// CombinedTable is the outer join of every state table on Date
type CombinedTable struct {
	Columns []ColumnSource
	Rows    []CombinedRow
}

// Header returns the output header: Date followed by every column label
func (c *CombinedTable) Header() []string {
	header := make([]string, 0, len(c.Columns)+1)
	header = append(header, domain.ColumnDate)
	for _, col := range c.Columns {
		header = append(header, col.Label)
	}
	return header
}

// Shape returns (rows, columns) counting the Date column
func (c *CombinedTable) Shape() (int, int) {
	return len(c.Rows), len(c.Columns) + 1
}

// DateRange returns the first and last date after sorting
func (c *CombinedTable) DateRange() (first, last string) {
	if len(c.Rows) == 0 {
		return "", ""
	}
	return c.Rows[0].Date, c.Rows[len(c.Rows)-1].Date
}

// Records renders the table as string rows, header excluded. Missing cells
// are empty strings.
func (c *CombinedTable) Records() [][]string {
	out := make([][]string, 0, len(c.Rows))
	for _, row := range c.Rows {
		rec := make([]string, 0, len(row.Values)+1)
		rec = append(rec, row.Date)
		for _, v := range row.Values {
			rec = append(rec, v.String())
		}
		out = append(out, rec)
	}
	return out
}

// Flatten converts a state table into a single-state combined table. Each
// station identity becomes a label; identities of the same state sharing a
// station name are told apart by appending the district. Rows sharing a date
// are coalesced, keeping the first non-missing value per column.
func Flatten(t *StateTable) *CombinedTable {
	out := &CombinedTable{}
	taken := newLabelSet(len(t.Columns))

	for _, key := range t.Columns {
		label := key.Label()
		if taken[label] {
			label = uniqueLabel(label+"_"+key.District, taken)
		}
		taken[label] = true
		out.Columns = append(out.Columns, ColumnSource{Label: label, State: t.State, Key: key})
	}

	byDate := make(map[string]int)
	for _, row := range t.Rows {
		pos, ok := byDate[row.Date]
		if !ok {
			pos = len(out.Rows)
			byDate[row.Date] = pos
			out.Rows = append(out.Rows, CombinedRow{Date: row.Date, Values: make([]domain.Level, len(t.Columns))})
		}
		values := out.Rows[pos].Values
		for i, key := range t.Columns {
			if !values[i].Valid {
				values[i] = row.Get(key)
			}
		}
	}
	return out
}

// OuterJoin joins right onto left on Date, keeping every date of either
// side. Right-hand labels already used on the left get "_<state>" appended;
// left labels never change. The inputs are not modified.
func OuterJoin(left, right *CombinedTable, state string) *CombinedTable {
	taken := newLabelSet(len(left.Columns) + len(right.Columns))
	out := &CombinedTable{Columns: make([]ColumnSource, 0, len(left.Columns)+len(right.Columns))}

	for _, col := range left.Columns {
		taken[col.Label] = true
		out.Columns = append(out.Columns, col)
	}
	for _, col := range right.Columns {
		if taken[col.Label] {
			col.Label = uniqueLabel(col.Label+"_"+state, taken)
		}
		taken[col.Label] = true
		out.Columns = append(out.Columns, col)
	}

	width := len(out.Columns)
	nLeft := len(left.Columns)
	byDate := make(map[string]int, len(left.Rows)+len(right.Rows))

	for _, row := range left.Rows {
		values := make([]domain.Level, width)
		copy(values, row.Values)
		byDate[row.Date] = len(out.Rows)
		out.Rows = append(out.Rows, CombinedRow{Date: row.Date, Values: values})
	}
	for _, row := range right.Rows {
		pos, ok := byDate[row.Date]
		if !ok {
			pos = len(out.Rows)
			byDate[row.Date] = pos
			out.Rows = append(out.Rows, CombinedRow{Date: row.Date, Values: make([]domain.Level, width)})
		}
		copy(out.Rows[pos].Values[nLeft:], row.Values)
	}
	return out
}

// SortByDate orders rows by the raw date string and renumbers them from 0
func (c *CombinedTable) SortByDate() {
	sort.SliceStable(c.Rows, func(i, j int) bool {
		return c.Rows[i].Date < c.Rows[j].Date
	})
	for i := range c.Rows {
		c.Rows[i].Index = i
	}
}

// Merge combines state tables, in the given order, into one table keyed by
// date. The first state to claim a label keeps it.
func Merge(ctx context.Context, tables []*StateTable) (*CombinedTable, error) {
	_, span := otel.Tracer(TracerName).Start(ctx, "dataprocessing.merge")
	defer span.End()

	var combined *CombinedTable
	for _, t := range tables {
		if t == nil {
			continue
		}
		flat := Flatten(t)
		if combined == nil {
			combined = flat
			continue
		}
		combined = OuterJoin(combined, flat, t.State)
	}
	if combined == nil {
		return nil, ErrNothingToMerge
	}

	combined.SortByDate()

	rows, cols := combined.Shape()
	span.SetAttributes(attribute.Int("rows", rows), attribute.Int("columns", cols))
	return combined, nil
}

// newLabelSet returns a set of taken labels with the Date header reserved,
// so no station column can shadow it
func newLabelSet(size int) map[string]bool {
	taken := make(map[string]bool, size+1)
	taken[domain.ColumnDate] = true
	return taken
}

// uniqueLabel returns label, or label with the smallest numeric suffix from
// 2 upward that is not yet taken
func uniqueLabel(label string, taken map[string]bool) string {
	if !taken[label] {
		return label
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", label, n)
		if !taken[candidate] {
			return candidate
		}
	}
}
