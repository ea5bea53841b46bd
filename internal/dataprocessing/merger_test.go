package dataprocessing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gwmerge/pkg/contracts/domain"
)

// stateTable builds a state table from ready-made rows
func stateTable(state string, columns []domain.StationKey, rows ...StateRow) *StateTable {
	return &StateTable{State: state, Columns: columns, Rows: rows}
}

func row(date string, cells map[domain.StationKey]float64) StateRow {
	values := make(map[domain.StationKey]domain.Level, len(cells))
	for k, v := range cells {
		values[k] = domain.NewLevel(v)
	}
	return StateRow{Date: date, Values: values}
}

func TestMerge_DisjointDates(t *testing.T) {
	s1 := key("A", "D1", "S1")
	s2 := key("B", "D2", "S2")
	a := stateTable("A", []domain.StationKey{s1},
		row("2020-01-01", map[domain.StationKey]float64{s1: 5}),
		row("2020-01-03", map[domain.StationKey]float64{s1: 6}))
	b := stateTable("B", []domain.StationKey{s2},
		row("2020-01-02", map[domain.StationKey]float64{s2: 7}))

	combined, err := Merge(context.Background(), []*StateTable{a, b})
	require.NoError(t, err)

	rows, cols := combined.Shape()
	assert.Equal(t, 3, rows, "row count is the sum of both inputs")
	assert.Equal(t, 3, cols)
	assert.Equal(t, []string{"Date", "S1", "S2"}, combined.Header())
	assert.Equal(t, [][]string{
		{"2020-01-01", "5", ""},
		{"2020-01-02", "", "7"},
		{"2020-01-03", "6", ""},
	}, combined.Records())

	for i, r := range combined.Rows {
		assert.Equal(t, i, r.Index)
	}
	first, last := combined.DateRange()
	assert.Equal(t, "2020-01-01", first)
	assert.Equal(t, "2020-01-03", last)
}

func TestMerge_CollidingLabels(t *testing.T) {
	xa := key("Assam", "D1", "StationX")
	xb := key("Bihar", "D9", "StationX")
	xc := key("Chandigarh", "D3", "StationX")
	a := stateTable("Assam", []domain.StationKey{xa}, row("2020-01-01", map[domain.StationKey]float64{xa: 1}))
	b := stateTable("Bihar", []domain.StationKey{xb}, row("2020-01-01", map[domain.StationKey]float64{xb: 2}))
	c := stateTable("Chandigarh", []domain.StationKey{xc}, row("2020-01-02", map[domain.StationKey]float64{xc: 3}))

	combined, err := Merge(context.Background(), []*StateTable{a, b, c})
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "StationX", "StationX_Bihar", "StationX_Chandigarh"}, combined.Header())
	assert.Equal(t, "Bihar", combined.Columns[1].State)
	assert.Equal(t, xb, combined.Columns[1].Key)
	assert.Equal(t, [][]string{
		{"2020-01-01", "1", "2", ""},
		{"2020-01-02", "", "", "3"},
	}, combined.Records())
}

func TestOuterJoin_SuffixAlreadyTaken(t *testing.T) {
	left := &CombinedTable{Columns: []ColumnSource{{Label: "S"}, {Label: "S_B"}}}
	right := &CombinedTable{Columns: []ColumnSource{{Label: "S"}}}

	out := OuterJoin(left, right, "B")

	assert.Equal(t, []string{"Date", "S", "S_B", "S_B_2"}, out.Header())
	assert.Len(t, left.Columns, 2, "inputs are not modified")
}

func TestMerge_StationNamedDate(t *testing.T) {
	da := key("A", "D1", "Date")
	db := key("B", "D1", "Date")
	a := stateTable("A", []domain.StationKey{da}, row("2020-01-01", map[domain.StationKey]float64{da: 1}))
	b := stateTable("B", []domain.StationKey{db}, row("2020-01-02", map[domain.StationKey]float64{db: 2}))

	single, err := Merge(context.Background(), []*StateTable{a})
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Date_D1"}, single.Header())

	combined, err := Merge(context.Background(), []*StateTable{a, b})
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Date_D1", "Date_D1_B"}, combined.Header())
}

func TestOuterJoin_ReservesDate(t *testing.T) {
	left := &CombinedTable{Columns: []ColumnSource{{Label: "S"}}}
	right := &CombinedTable{Columns: []ColumnSource{{Label: "Date"}}}

	out := OuterJoin(left, right, "B")
	assert.Equal(t, []string{"Date", "S", "Date_B"}, out.Header())
}

func TestFlatten_SameStationNameInTwoDistricts(t *testing.T) {
	north := key("Goa", "North", "Ponda")
	south := key("Goa", "South", "Ponda")
	table := stateTable("Goa", []domain.StationKey{north, south},
		row("2020-01-01", map[domain.StationKey]float64{north: 1, south: 2}))

	flat := Flatten(table)
	assert.Equal(t, []string{"Date", "Ponda", "Ponda_South"}, flat.Header())
}

func TestFlatten_CoalescesDuplicateDates(t *testing.T) {
	s1 := key("A", "D1", "S1")
	s2 := key("A", "D1", "S2")
	table := stateTable("A", []domain.StationKey{s1, s2},
		row("2020-01-01", map[domain.StationKey]float64{s1: 1}),
		row("2020-01-01", map[domain.StationKey]float64{s1: 9, s2: 2}))

	flat := Flatten(table)
	require.Len(t, flat.Rows, 1)
	assert.Equal(t, []domain.Level{domain.NewLevel(1), domain.NewLevel(2)}, flat.Rows[0].Values)
}

func TestMerge_DateAppearsOnce(t *testing.T) {
	s1 := key("A", "D1", "S1")
	s2 := key("B", "D1", "S2")
	a := stateTable("A", []domain.StationKey{s1},
		row("2020-01-01", map[domain.StationKey]float64{s1: 1}),
		row("2020-01-01", map[domain.StationKey]float64{s1: 4}))
	b := stateTable("B", []domain.StationKey{s2},
		row("2020-01-01", map[domain.StationKey]float64{s2: 2}))

	combined, err := Merge(context.Background(), []*StateTable{a, b})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"2020-01-01", "1", "2"}}, combined.Records())
}

func TestMerge_Empty(t *testing.T) {
	_, err := Merge(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrNothingToMerge))

	_, err = Merge(context.Background(), []*StateTable{nil})
	assert.ErrorIs(t, err, ErrNothingToMerge)
}

func TestMerge_SingleState(t *testing.T) {
	s1 := key("A", "D1", "S1")
	a := stateTable("A", []domain.StationKey{s1},
		row("2020-01-02", map[domain.StationKey]float64{s1: 2.25}),
		row("2020-01-01", map[domain.StationKey]float64{s1: 1}))

	combined, err := Merge(context.Background(), []*StateTable{a})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"2020-01-01", "1"}, {"2020-01-02", "2.25"}}, combined.Records())
}
