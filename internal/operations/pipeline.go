package operations

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gwmerge/internal/config"
	"gwmerge/internal/dataprocessing"
	"gwmerge/internal/exporter"
	"gwmerge/internal/files"
	"gwmerge/internal/infrastructure"
	"gwmerge/internal/validation"
)

// Driver runs the whole pipeline: discover state folders, reshape each one,
// merge the results and write the combined file
type Driver struct {
	cfg       config.PipelineConfig
	discovery *files.Discovery
	validator *validation.FileValidator
	reshaper  *dataprocessing.Reshaper
	exporter  *exporter.CombinedExporter
	metrics   *PipelineMetrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

// Option customises a Driver
type Option func(*Driver)

// WithMetrics records run statistics on m
func WithMetrics(m *PipelineMetrics) Option {
	return func(d *Driver) { d.metrics = m }
}

// NewDriver wires the pipeline components for cfg. A nil logger falls back
// to slog.Default().
func NewDriver(cfg config.PipelineConfig, logger *slog.Logger, opts ...Option) *Driver {
	if logger == nil {
		logger = slog.Default()
	}

	columns := dataprocessing.Columns{Station: cfg.StationColumn, Level: cfg.LevelColumn}
	discovery := files.NewDiscovery("")
	checker := validation.NewChecker(columns, logger)

	d := &Driver{
		cfg:       cfg,
		discovery: discovery,
		validator: validation.NewFileValidator(logger),
		reshaper: dataprocessing.NewReshaper(checker, discovery, columns, logger).
			WithProgressInterval(cfg.ProgressInterval),
		exporter: exporter.NewCombinedExporter(files.NewManager(logger), cfg.BOMPrefix, logger),
		logger:   infrastructure.WithComponent(logger, "driver"),
		tracer:   otel.Tracer(TracerName),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run executes the pipeline. The returned report is never nil; on failure it
// holds whatever was gathered before the error. No output file is written
// unless the run succeeds.
func (d *Driver) Run(ctx context.Context) (report *Report, err error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	report = &Report{
		RunID:     infrastructure.GetTraceID(ctx),
		StartTime: time.Now(),
		ParentDir: d.cfg.ParentDir,
		Marker:    d.cfg.Marker,
	}

	ctx, span := d.tracer.Start(ctx, "operations.run",
		trace.WithAttributes(
			attribute.String("run.id", report.RunID),
			attribute.String("parent_dir", d.cfg.ParentDir),
			attribute.String("marker", d.cfg.Marker)))
	defer span.End()

	defer func() {
		report.finish(err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			d.logger.ErrorContext(ctx, "Pipeline failed",
				slog.String("error_type", string(GetErrorType(err))),
				slog.String("error", err.Error()))
		}
		d.metrics.RecordRun(ctx, report.EndTime.Sub(report.StartTime), err)
		d.saveManifest(ctx, report)
	}()

	d.logger.InfoContext(ctx, "Starting groundwater merge",
		slog.String("parent_dir", d.cfg.ParentDir),
		slog.String("marker", d.cfg.Marker),
		slog.String("station_column", d.cfg.StationColumn),
		slog.String("level_column", d.cfg.LevelColumn))

	if err := d.validator.ValidateInputDirectory(d.cfg.ParentDir); err != nil {
		return report, NewValidationError(StepDiscover, "parent directory is not usable", err)
	}

	folders, err := d.discovery.FindStateFolders(d.cfg.ParentDir, d.cfg.Marker)
	if err != nil {
		return report, NewExecutionError(StepDiscover, err)
	}
	if len(folders) == 0 {
		return report, NewNoStateFoldersError(d.cfg.ParentDir, d.cfg.Marker)
	}

	d.logger.InfoContext(ctx, "Found state folders",
		slog.Int("count", len(folders)))

	var tables []*dataprocessing.StateTable
	for _, folder := range folders {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return report, NewCancellationError(StepReshape, ctxErr)
		}

		table, stateReport := d.reshaper.Reshape(ctx, folder.Path)
		report.States = append(report.States, stateReport)
		d.metrics.RecordState(ctx, stateReport)

		if table != nil {
			tables = append(tables, table)
		}
	}

	if len(tables) == 0 {
		return report, NewNoUsableStatesError(len(report.States))
	}

	combined, err := dataprocessing.Merge(ctx, tables)
	if err != nil {
		return report, NewExecutionError(StepMerge, err)
	}

	report.Rows, report.Columns = combined.Shape()
	report.FirstDate, report.LastDate = combined.DateRange()
	d.metrics.RecordMerge(ctx, report.Rows, report.Columns)

	if err := d.validator.ValidateOutputPath(d.cfg.OutputPath); err != nil {
		return report, NewOutputError(d.cfg.OutputPath, err)
	}
	if err := d.exporter.Export(ctx, combined, d.cfg.OutputPath); err != nil {
		return report, NewOutputError(d.cfg.OutputPath, err)
	}
	report.OutputPath = d.cfg.OutputPath

	d.logSummary(ctx, report)
	return report, nil
}

// logSummary emits the end-of-run summary lines
func (d *Driver) logSummary(ctx context.Context, report *Report) {
	processed := report.ProcessedStates()
	skipped := report.SkippedStates()

	d.logger.InfoContext(ctx, "States processed",
		slog.Int("count", len(processed)))
	for _, s := range processed {
		d.logger.InfoContext(ctx, "State included",
			slog.String("state", s.State),
			slog.Int("stations", s.Stations),
			slog.Int("rows", s.Rows),
			slog.Int("files_usable", s.FilesUsable),
			slog.Int("files_total", s.FilesTotal))
	}

	if len(skipped) > 0 {
		names := make([]string, 0, len(skipped))
		for _, s := range skipped {
			names = append(names, s.State)
		}
		d.logger.WarnContext(ctx, "States skipped",
			slog.Int("count", len(skipped)),
			slog.Any("states", names))
	}

	d.logger.InfoContext(ctx, "Merge complete",
		slog.String("first_date", report.FirstDate),
		slog.String("last_date", report.LastDate),
		slog.Int("rows", report.Rows),
		slog.Int("columns", report.Columns),
		slog.String("output", report.OutputPath))
}

// saveManifest writes the run report when a manifest path is configured.
// A failed write is logged and does not change the run's outcome.
func (d *Driver) saveManifest(ctx context.Context, report *Report) {
	if d.cfg.ManifestPath == "" {
		return
	}
	if err := report.SaveToFile(d.cfg.ManifestPath); err != nil {
		d.logger.WarnContext(ctx, "Failed to write run manifest",
			slog.String("path", d.cfg.ManifestPath),
			slog.String("error", err.Error()))
		return
	}
	d.logger.DebugContext(ctx, "Run manifest written",
		slog.String("path", d.cfg.ManifestPath))
}
