package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gwmerge/internal/config"
	"gwmerge/internal/infrastructure"
	"gwmerge/internal/operations"
	"gwmerge/pkg/contracts"
)

// options holds the command-line flags. Only flags the user set override
// the loaded configuration.
type options struct {
	configFile  string
	envFile     string
	parent      string
	marker      string
	stationCol  string
	levelCol    string
	output      string
	manifest    string
	metricsFile string
	trace       string
	logLevel    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "gwmerge",
		Short: "Merge per-state groundwater station files into one table",
		Long: `gwmerge scans a parent directory for state folders whose name contains
the marker, keeps the station files that carry usable water level data,
pivots each state into a Date x station table and merges every state into
a single CSV or XLSX file.`,
		Version:       contracts.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := run(cmd, opts)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			}
			return err
		},
	}
	cmd.SetVersionTemplate(contracts.GetFullVersionString() + "\n")

	f := cmd.Flags()
	f.StringVar(&opts.configFile, "config", "", "YAML config file (default $GW_CONFIG_FILE or ./gwmerge.yaml)")
	f.StringVar(&opts.envFile, "env-file", "", "env file to load (default ./.env when present)")
	f.StringVarP(&opts.parent, "parent", "p", "", "parent directory holding the state folders")
	f.StringVar(&opts.marker, "marker", "", "substring that marks a state folder")
	f.StringVar(&opts.stationCol, "station-col", "", "station name column")
	f.StringVar(&opts.levelCol, "level-col", "", "water level column")
	f.StringVarP(&opts.output, "output", "o", "", "combined output file (.csv or .xlsx)")
	f.StringVar(&opts.manifest, "manifest", "", "write a JSON run manifest to this path")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	f.StringVar(&opts.trace, "trace", "", "trace exporter: none or stdout")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	return cmd
}

// run loads the configuration, runs the pipeline and prints a short summary
func run(cmd *cobra.Command, opts *options) error {
	cfg, err := config.LoadWithOptions(config.LoadOptions{
		EnvFile:    opts.envFile,
		ConfigFile: opts.configFile,
	})
	if err != nil {
		return err
	}
	applyFlags(cmd, opts, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: contracts.Version,
		TraceExporter:  cfg.Telemetry.Trace,
		TraceWriter:    cmd.ErrOrStderr(),
		EnableMetrics:  cfg.Telemetry.MetricsFile != "",
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := operations.NewPipelineMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver := operations.NewDriver(cfg.Pipeline, logger, operations.WithMetrics(metrics))
	report, runErr := driver.Run(ctx)

	if cfg.Telemetry.MetricsFile != "" {
		if err := providers.WriteMetrics(cfg.Telemetry.MetricsFile); err != nil {
			logger.Warn("Failed to write metrics",
				slog.String("path", cfg.Telemetry.MetricsFile),
				slog.String("error", err.Error()))
		}
	}

	if runErr != nil {
		return runErr
	}
	printSummary(cmd.OutOrStdout(), report)
	return nil
}

// applyFlags overrides cfg with every flag set on the command line
func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	changed := cmd.Flags().Changed
	set := func(name string, dst *string, v string) {
		if changed(name) {
			*dst = v
		}
	}

	set("parent", &cfg.Pipeline.ParentDir, opts.parent)
	set("marker", &cfg.Pipeline.Marker, opts.marker)
	set("station-col", &cfg.Pipeline.StationColumn, opts.stationCol)
	set("level-col", &cfg.Pipeline.LevelColumn, opts.levelCol)
	set("output", &cfg.Pipeline.OutputPath, opts.output)
	set("manifest", &cfg.Pipeline.ManifestPath, opts.manifest)
	set("metrics-file", &cfg.Telemetry.MetricsFile, opts.metricsFile)
	set("trace", &cfg.Telemetry.Trace, opts.trace)
	set("log-level", &cfg.Logging.Level, opts.logLevel)
}

func printSummary(w io.Writer, report *operations.Report) {
	processed := report.ProcessedStates()
	skipped := report.SkippedStates()

	fmt.Fprintf(w, "Merged %d state(s) into %s\n", len(processed), report.OutputPath)
	for _, s := range processed {
		fmt.Fprintf(w, "  %-24s %4d stations  %4d/%d files\n",
			s.State, s.Stations, s.FilesUsable, s.FilesTotal)
	}
	for _, s := range skipped {
		fmt.Fprintf(w, "  %-24s skipped (%s)\n", s.State, s.SkipReason)
	}
	fmt.Fprintf(w, "Dates %s to %s, %d rows x %d columns\n",
		report.FirstDate, report.LastDate, report.Rows, report.Columns)
}
