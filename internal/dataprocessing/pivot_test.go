package dataprocessing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gwmerge/pkg/contracts/domain"
)

func key(state, district, station string) domain.StationKey {
	return domain.StationKey{State: state, District: district, Station: station}
}

func parse(t *testing.T, content string) *RawTable {
	t.Helper()
	table, err := ParseCSV(strings.NewReader(content))
	require.NoError(t, err)
	return table
}

func TestPivot_FirstValueWins(t *testing.T) {
	raw := parse(t, "Date,State,District,Station_name,level\n"+
		"2020-01-02,A,D1,S1,9\n"+
		"2020-01-01,A,D1,S1,5\n"+
		"2020-01-01,A,D1,S1,6\n"+
		"2020-01-01,A,D2,S2,7\n")

	table, err := PivotTable(raw, DefaultColumns())
	require.NoError(t, err)

	assert.Equal(t, []domain.StationKey{key("A", "D1", "S1"), key("A", "D2", "S2")}, table.Columns)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, "2020-01-01", table.Rows[0].Date)
	assert.Equal(t, domain.NewLevel(5), table.Rows[0].Get(key("A", "D1", "S1")), "later duplicate is dropped")
	assert.Equal(t, domain.NewLevel(7), table.Rows[0].Get(key("A", "D2", "S2")))

	assert.Equal(t, "2020-01-02", table.Rows[1].Date)
	assert.Equal(t, domain.NewLevel(9), table.Rows[1].Get(key("A", "D1", "S1")))
	assert.Equal(t, domain.Missing, table.Rows[1].Get(key("A", "D2", "S2")))
}

func TestPivot_SkipsMissingValuesAndKeys(t *testing.T) {
	records := []domain.RawRecord{
		{Date: "2020-01-01", State: "A", District: "D1", Station: "S1", Level: domain.Missing},
		{Date: "2020-01-01", State: "A", District: "D1", Station: "S1", Level: domain.NewLevel(3)},
		{Date: "", State: "A", District: "D1", Station: "S1", Level: domain.NewLevel(1)},
		{Date: "2020-01-02", State: "A", District: "", Station: "S1", Level: domain.NewLevel(1)},
		{Date: "2020-01-03", State: "A", District: "D1", Station: "Dry", Level: domain.Missing},
	}

	table := Pivot(records)

	assert.Equal(t, []domain.StationKey{key("A", "D1", "S1")}, table.Columns,
		"station with no reading produces no column")
	require.Len(t, table.Rows, 1, "dates with no reading produce no row")
	assert.Equal(t, domain.NewLevel(3), table.Rows[0].Get(key("A", "D1", "S1")),
		"first non-missing reading wins")
}

func TestPivotTable_LevelFallback(t *testing.T) {
	raw := parse(t, " Date ,State,District,Station_name,Water_Level_m\n2020-01-01,A,D1,S1,2.5\n")

	table, err := PivotTable(raw, DefaultColumns())
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "2.5", table.Rows[0].Get(key("A", "D1", "S1")).String())
}

func TestPivotTable_Errors(t *testing.T) {
	_, err := PivotTable(parse(t, "Date,State,District,Station_name,depth\n1,A,D,S,2\n"), DefaultColumns())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no level column")

	_, err = PivotTable(parse(t, "Date,State,Station_name,level\n1,A,S,2\n"), DefaultColumns())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"District"`)
}

func TestResolveLevelColumn(t *testing.T) {
	tests := []struct {
		name      string
		headers   []string
		preferred string
		want      string
		ok        bool
	}{
		{name: "exact", headers: []string{"Date", "level", "Level_2"}, preferred: "level", want: "level", ok: true},
		{name: "exact wins over earlier substring", headers: []string{"Level_2", "level"}, preferred: "level", want: "level", ok: true},
		{name: "substring, first in header order", headers: []string{"Date", "GW LEVEL", "level_qc"}, preferred: "level", want: "GW LEVEL", ok: true},
		{name: "custom name", headers: []string{"depth_m"}, preferred: "depth_m", want: "depth_m", ok: true},
		{name: "none", headers: []string{"Date", "depth"}, preferred: "level", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveLevelColumn(tt.headers, tt.preferred)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelCandidates(t *testing.T) {
	got := LevelCandidates([]string{"level_a", "Date", "level", "LEVEL_B"}, "level")
	assert.Equal(t, []string{"level", "level_a", "LEVEL_B"}, got)
}

func TestConcat_StacksRows(t *testing.T) {
	a := &StateTable{
		Columns: []domain.StationKey{key("A", "D1", "S1")},
		Rows: []StateRow{
			{Date: "2020-01-02", Values: map[domain.StationKey]domain.Level{key("A", "D1", "S1"): domain.NewLevel(1)}},
		},
	}
	b := &StateTable{
		Columns: []domain.StationKey{key("A", "D1", "S1"), key("A", "D2", "S2")},
		Rows: []StateRow{
			{Date: "2020-01-02", Values: map[domain.StationKey]domain.Level{key("A", "D1", "S1"): domain.NewLevel(2)}},
			{Date: "2020-01-01", Values: map[domain.StationKey]domain.Level{key("A", "D2", "S2"): domain.NewLevel(3)}},
		},
	}

	out := Concat("A", []*StateTable{a, b})
	out.SortByDate()

	assert.Equal(t, "A", out.State)
	assert.Equal(t, []domain.StationKey{key("A", "D1", "S1"), key("A", "D2", "S2")}, out.Columns)
	require.Len(t, out.Rows, 3, "cross-file duplicates survive")
	assert.Equal(t, "2020-01-01", out.Rows[0].Date)
	assert.Equal(t, domain.NewLevel(1), out.Rows[1].Get(key("A", "D1", "S1")), "stable sort keeps file order")
	assert.Equal(t, domain.NewLevel(2), out.Rows[2].Get(key("A", "D1", "S1")))

	first, last := out.DateRange()
	assert.Equal(t, "2020-01-01", first)
	assert.Equal(t, "2020-01-02", last)
}
