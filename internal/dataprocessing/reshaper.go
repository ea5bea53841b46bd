package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gwmerge/internal/files"
	"gwmerge/pkg/contracts/domain"
)

// TracerName is the instrumentation scope for reshape and merge spans
const TracerName = "gwmerge/dataprocessing"

// FileChecker classifies a single station export
type FileChecker interface {
	Check(path string) domain.FileVerdict
}

// SkipReason explains why a state produced no table
type SkipReason string

const (
	SkipNone           SkipReason = ""
	SkipNoFiles        SkipReason = "no tabular files found"
	SkipListFailed     SkipReason = "folder could not be read"
	SkipNoUsableFiles  SkipReason = "no usable files found"
	SkipNoFilesPivoted SkipReason = "no files successfully processed"
)

// StateReport summarises what happened to one state folder
type StateReport struct {
	State         string               `json:"state"`
	Folder        string               `json:"folder"`
	FilesTotal    int                  `json:"files_total"`
	FilesUsable   int                  `json:"files_usable"`
	FilesUnusable int                  `json:"files_unusable"`
	FilesPivoted  int                  `json:"files_pivoted"`
	FilesFailed   int                  `json:"files_failed"`
	UsableRatio   float64              `json:"usable_ratio"`
	Rows          int                  `json:"rows"`
	Stations      int                  `json:"stations"`
	FirstDate     string               `json:"first_date,omitempty"`
	LastDate      string               `json:"last_date,omitempty"`
	SkipReason    SkipReason           `json:"skip_reason,omitempty"`
	Verdicts      []domain.FileVerdict `json:"verdicts,omitempty"`
}

// Skipped reports whether the state yielded no table
func (r StateReport) Skipped() bool {
	return r.SkipReason != SkipNone
}

// Reshaper turns one state folder into a StateTable
type Reshaper struct {
	checker   FileChecker
	discovery *files.Discovery
	columns   Columns
	interval  int
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewReshaper creates a reshaper. A nil logger falls back to slog.Default().
func NewReshaper(checker FileChecker, discovery *files.Discovery, columns Columns, logger *slog.Logger) *Reshaper {
	if logger == nil {
		logger = slog.Default()
	}
	if discovery == nil {
		discovery = files.NewDiscovery("")
	}
	return &Reshaper{
		checker:   checker,
		discovery: discovery,
		columns:   columns,
		interval:  DefaultProgressInterval,
		logger:    logger.With("component", "reshaper"),
		tracer:    otel.Tracer(TracerName),
	}
}

// WithProgressInterval sets how often per-file progress is logged
func (r *Reshaper) WithProgressInterval(n int) *Reshaper {
	if n > 0 {
		r.interval = n
	}
	return r
}

// Reshape processes every usable file of a state folder and returns the
// state's wide table. A nil table means the state has no usable data; the
// report says why.
func (r *Reshaper) Reshape(ctx context.Context, folder string) (*StateTable, StateReport) {
	state := files.StateName(folder)
	report := StateReport{State: state, Folder: folder}

	ctx, span := r.tracer.Start(ctx, "dataprocessing.reshape_state",
		trace.WithAttributes(attribute.String("state", state)))
	defer span.End()

	found, err := r.discovery.FindFiles(folder, TabularExtensions)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list state folder",
			slog.String("state", state),
			slog.String("folder", folder),
			slog.String("error", err.Error()))
		span.SetStatus(codes.Error, err.Error())
		report.SkipReason = SkipListFailed
		return nil, report
	}
	if len(found) == 0 {
		r.logger.WarnContext(ctx, "No tabular files found",
			slog.String("state", state),
			slog.String("folder", folder))
		report.SkipReason = SkipNoFiles
		return nil, report
	}

	report.FilesTotal = len(found)
	r.logger.InfoContext(ctx, "Processing state",
		slog.String("state", state),
		slog.Int("files", len(found)))

	// Quality pass over every file before any pivoting
	var usable []domain.FileVerdict
	for _, f := range found {
		verdict := r.checker.Check(f.Path)
		report.Verdicts = append(report.Verdicts, verdict)
		if verdict.Usable {
			usable = append(usable, verdict)
		}
	}
	report.FilesUsable = len(usable)
	report.FilesUnusable = report.FilesTotal - report.FilesUsable
	report.UsableRatio = float64(report.FilesUsable) / float64(report.FilesTotal)

	r.logger.InfoContext(ctx, "File quality checked",
		slog.String("state", state),
		slog.Int("usable", report.FilesUsable),
		slog.Int("unusable", report.FilesUnusable),
		slog.Int("total", report.FilesTotal),
		slog.Float64("usable_pct", report.UsableRatio*100))

	if report.FilesUsable == 0 {
		r.logger.WarnContext(ctx, "Skipping state, no usable files",
			slog.String("state", state))
		report.SkipReason = SkipNoUsableFiles
		return nil, report
	}

	progress := NewProgressTracker(state, report.FilesUsable, r.interval)
	var parts []*StateTable
	for _, v := range usable {
		name := filepath.Base(v.Path)
		if progress.ShouldReport() {
			r.logger.InfoContext(ctx, "Processing file",
				slog.String("state", state),
				slog.String("position", progress.Position()),
				slog.Float64("percent", progress.Percentage()),
				slog.String("file", name))
		}

		part, err := r.pivotFile(v.Path)
		if err != nil {
			report.FilesFailed++
			r.logger.ErrorContext(ctx, "Failed to pivot file",
				slog.String("state", state),
				slog.String("file", name),
				slog.String("error", err.Error()))
			continue
		}
		parts = append(parts, part)
		progress.Increment()
	}
	report.FilesPivoted = len(parts)

	if len(parts) == 0 {
		r.logger.WarnContext(ctx, "No files successfully processed",
			slog.String("state", state))
		report.SkipReason = SkipNoFilesPivoted
		return nil, report
	}

	table := Concat(state, parts)
	table.SortByDate()

	report.Rows = len(table.Rows)
	report.Stations = table.StationCount()
	report.FirstDate, report.LastDate = table.DateRange()
	span.SetAttributes(
		attribute.Int("rows", report.Rows),
		attribute.Int("stations", report.Stations))

	r.logger.InfoContext(ctx, "State processed",
		slog.String("state", state),
		slog.Int("files_processed", report.FilesPivoted),
		slog.Int("rows", report.Rows),
		slog.Int("stations", report.Stations),
		slog.String("first_date", report.FirstDate),
		slog.String("last_date", report.LastDate),
		slog.Duration("elapsed", progress.Elapsed()))

	return table, report
}

// pivotFile re-reads a usable file and pivots it, turning panics into errors.
func (r *Reshaper) pivotFile(path string) (table *StateTable, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			table, err = nil, fmt.Errorf("pivot panicked: %v", rec)
		}
	}()

	raw, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	return PivotTable(raw, r.columns)
}
