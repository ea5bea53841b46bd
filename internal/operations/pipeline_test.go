package operations

import (
	"context"
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gwmerge/internal/config"
	"gwmerge/internal/dataprocessing"
	"gwmerge/internal/infrastructure"
	"gwmerge/internal/shared/testutil"
)

const header = "Date,State,District,Station_name,level\n"

// writeState creates <parent>/<folder>/<file> for every entry of files
func writeState(t *testing.T, parent, folder string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(parent, folder)
	require.NoError(t, os.MkdirAll(dir, 0755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
}

func testConfig(t *testing.T, parent string) config.PipelineConfig {
	t.Helper()
	cfg := config.Default().Pipeline
	cfg.ParentDir = parent
	cfg.OutputPath = filepath.Join(t.TempDir(), "out", "combined.csv")
	return cfg
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestDriver_TwoStates(t *testing.T) {
	parent := t.TempDir()
	writeState(t, parent, "A_groundWater", map[string]string{
		"s1.csv": header + "2020-01-01,A,D1,S1,5\n",
	})
	writeState(t, parent, "B_groundWater", map[string]string{
		"s2.csv": header + "2020-01-02,B,D2,S2,7\n",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(parent, "readme"), 0755))

	cfg := testConfig(t, parent)
	cfg.ManifestPath = filepath.Join(t.TempDir(), "manifest.json")
	logger, logs := testutil.NewTestLogger(t)

	report, err := NewDriver(cfg, logger).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"Date", "S1", "S2"},
		{"2020-01-01", "5", ""},
		{"2020-01-02", "", "7"},
	}, readCSV(t, cfg.OutputPath))

	assert.Equal(t, StatusCompleted, report.Status)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Rows)
	assert.Equal(t, 3, report.Columns)
	assert.Equal(t, "2020-01-01", report.FirstDate)
	assert.Equal(t, "2020-01-02", report.LastDate)
	assert.Equal(t, cfg.OutputPath, report.OutputPath)
	require.Len(t, report.ProcessedStates(), 2)
	assert.Equal(t, "A", report.ProcessedStates()[0].State)
	assert.Empty(t, report.SkippedStates())

	manifest, err := LoadManifestFromFile(cfg.ManifestPath)
	require.NoError(t, err)
	assert.Equal(t, report.RunID, manifest.RunID)
	assert.Equal(t, StatusCompleted, manifest.Status)
	require.Len(t, manifest.States, 2)
	assert.Equal(t, 1, manifest.States[1].Stations)

	testutil.AssertNoErrors(t, logs)
	assert.True(t, logs.ContainsMessage("Merge complete"))
	found := logs.FindRecords("State included")
	require.Len(t, found, 2)
	assert.Equal(t, "B", found[1].Attrs["state"])
}

func TestDriver_SkipsStateWithoutUsableFiles(t *testing.T) {
	parent := t.TempDir()
	writeState(t, parent, "Assam_groundWater", map[string]string{
		"a.csv": header + "2020-01-01,Assam,Jorhat,StationX,1\n",
	})
	writeState(t, parent, "Bihar_groundWater", map[string]string{
		"empty.csv":  header,
		"nodata.csv": header + "No Data Available,,,,\n",
	})
	writeState(t, parent, "Chandigarh_groundWater_2021", map[string]string{
		"c.csv": header + "2020-01-01,Chandigarh,UT,StationX,3\n",
	})

	cfg := testConfig(t, parent)
	logger, logs := testutil.NewTestLogger(t)

	report, err := NewDriver(cfg, logger).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.States, 3)
	skipped := report.SkippedStates()
	require.Len(t, skipped, 1)
	assert.Equal(t, "Bihar", skipped[0].State)
	assert.Equal(t, dataprocessing.SkipNoUsableFiles, skipped[0].SkipReason)
	assert.Equal(t, 2, skipped[0].FilesUnusable)

	assert.Equal(t, [][]string{
		{"Date", "StationX", "StationX_Chandigarh"},
		{"2020-01-01", "1", "3"},
	}, readCSV(t, cfg.OutputPath))

	testutil.AssertLogContains(t, logs, slog.LevelWarn, "States skipped")
}

func TestDriver_Failures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, parent string) string // returns parent to use
		ctx      func() context.Context
		wantType ErrorType
	}{
		{
			name: "no marker folders",
			setup: func(t *testing.T, parent string) string {
				writeState(t, parent, "rainfall", map[string]string{"a.csv": header + "2020-01-01,A,D,S,1\n"})
				return parent
			},
			wantType: ErrorTypeNoStateFolders,
		},
		{
			name: "marker is case-sensitive",
			setup: func(t *testing.T, parent string) string {
				writeState(t, parent, "A_groundwater", map[string]string{"a.csv": header + "2020-01-01,A,D,S,1\n"})
				return parent
			},
			wantType: ErrorTypeNoStateFolders,
		},
		{
			name: "no usable states",
			setup: func(t *testing.T, parent string) string {
				writeState(t, parent, "A_groundWater", map[string]string{"a.csv": "Date,State\n2020-01-01,A\n"})
				writeState(t, parent, "B_groundWater", map[string]string{"notes.txt": "x"})
				return parent
			},
			wantType: ErrorTypeNoUsableStates,
		},
		{
			name: "missing parent",
			setup: func(t *testing.T, parent string) string {
				return filepath.Join(parent, "does-not-exist")
			},
			wantType: ErrorTypeValidation,
		},
		{
			name: "cancelled",
			setup: func(t *testing.T, parent string) string {
				writeState(t, parent, "A_groundWater", map[string]string{"a.csv": header + "2020-01-01,A,D,S,1\n"})
				return parent
			},
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			wantType: ErrorTypeCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent := tt.setup(t, t.TempDir())
			cfg := testConfig(t, parent)
			cfg.ManifestPath = filepath.Join(t.TempDir(), "manifest.json")

			ctx := context.Background()
			if tt.ctx != nil {
				ctx = tt.ctx()
			}

			report, err := NewDriver(cfg, nil).Run(ctx)
			require.Error(t, err)
			assert.Equal(t, tt.wantType, GetErrorType(err))
			assert.True(t, IsErrorType(err, tt.wantType))

			require.NotNil(t, report)
			assert.Equal(t, StatusFailed, report.Status)
			assert.Equal(t, err.Error(), report.Error)

			_, statErr := os.Stat(cfg.OutputPath)
			assert.True(t, os.IsNotExist(statErr), "no output file is written")

			manifest, loadErr := LoadManifestFromFile(cfg.ManifestPath)
			require.NoError(t, loadErr, "manifest is written for failed runs too")
			assert.Equal(t, StatusFailed, manifest.Status)
		})
	}
}

func TestDriver_OutputIsDirectory(t *testing.T) {
	parent := t.TempDir()
	writeState(t, parent, "A_groundWater", map[string]string{"a.csv": header + "2020-01-01,A,D,S,1\n"})

	cfg := testConfig(t, parent)
	cfg.OutputPath = t.TempDir()

	report, err := NewDriver(cfg, nil).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, ErrorTypeOutput, GetErrorType(err))
	assert.Empty(t, report.OutputPath)
	assert.Equal(t, 2, report.Columns, "merge ran before the write failed")
}

func TestDriver_XLSXOutput(t *testing.T) {
	parent := t.TempDir()
	writeState(t, parent, "Goa_groundWater", map[string]string{
		"a.csv": header + "2020-01-02,Goa,North,Ponda,2.5\n2020-01-01,Goa,South,Ponda,1\n",
	})

	cfg := testConfig(t, parent)
	cfg.OutputPath = filepath.Join(t.TempDir(), "combined.xlsx")

	_, err := NewDriver(cfg, nil).Run(context.Background())
	require.NoError(t, err)

	raw, err := dataprocessing.ReadTable(cfg.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Ponda", "Ponda_South"}, raw.Headers)
	assert.Equal(t, [][]string{
		{"2020-01-01", "", "1"},
		{"2020-01-02", "2.5", ""},
	}, raw.Rows)
}

func TestDriver_CustomColumns(t *testing.T) {
	parent := t.TempDir()
	writeState(t, parent, "Kerala_gw", map[string]string{
		"a.csv": "Date,State,District,Site,depth_level_m\n2020-01-01,Kerala,Idukki,Munnar,4\n",
	})

	cfg := testConfig(t, parent)
	cfg.Marker = "_gw"
	cfg.StationColumn = "Site"
	cfg.LevelColumn = "water_level"

	report, err := NewDriver(cfg, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Date", "Munnar"}, {"2020-01-01", "4"}}, readCSV(t, cfg.OutputPath))
	assert.Equal(t, "depth_level_m", report.States[0].Verdicts[0].LevelColumn)
}

func TestDriver_Metrics(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{
		ServiceName:   "test",
		EnableMetrics: true,
	}, nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := NewPipelineMetrics(providers.Meter)
	require.NoError(t, err)

	parent := t.TempDir()
	writeState(t, parent, "A_groundWater", map[string]string{
		"a.csv": header + "2020-01-01,A,D,S,1\n",
		"b.csv": header,
	})
	writeState(t, parent, "B_groundWater", map[string]string{"b.csv": header})

	_, err = NewDriver(testConfig(t, parent), nil, WithMetrics(metrics)).Run(context.Background())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "gwmerge.prom")
	require.NoError(t, providers.WriteMetrics(path))
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(content)
	assert.Contains(t, text, `gwmerge_states_total{outcome="processed"} 1`)
	assert.Contains(t, text, `gwmerge_states_total{outcome="skipped"} 1`)
	assert.Contains(t, text, `gwmerge_files_checked_total{reason="empty",state="A",usable="false"} 1`)
	assert.Contains(t, text, "gwmerge_merged_rows 1")
	assert.Contains(t, text, `gwmerge_runs_total{status="completed"} 1`)
}
