package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"gwmerge/internal/dataprocessing"
)

const (
	TracerName = "gwmerge/operations"
)

// PipelineMetrics records run statistics on an OpenTelemetry meter
type PipelineMetrics struct {
	filesChecked  metric.Int64Counter
	filesFailed   metric.Int64Counter
	statesTotal   metric.Int64Counter
	mergedRows    metric.Int64Gauge
	mergedColumns metric.Int64Gauge
	runDuration   metric.Float64Histogram
	runsTotal     metric.Int64Counter
}

// NewPipelineMetrics creates the pipeline instruments. A nil meter records
// nothing.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(TracerName)
	}

	var (
		m   PipelineMetrics
		err error
	)

	if m.filesChecked, err = meter.Int64Counter(
		"gwmerge_files_checked",
		metric.WithDescription("Station files checked, by usability and reason"),
	); err != nil {
		return nil, fmt.Errorf("files_checked: %w", err)
	}

	if m.filesFailed, err = meter.Int64Counter(
		"gwmerge_files_pivot_failed",
		metric.WithDescription("Usable files that failed to pivot"),
	); err != nil {
		return nil, fmt.Errorf("files_pivot_failed: %w", err)
	}

	if m.statesTotal, err = meter.Int64Counter(
		"gwmerge_states",
		metric.WithDescription("State folders by outcome"),
	); err != nil {
		return nil, fmt.Errorf("states: %w", err)
	}

	if m.mergedRows, err = meter.Int64Gauge(
		"gwmerge_merged_rows",
		metric.WithDescription("Rows in the combined table"),
	); err != nil {
		return nil, fmt.Errorf("merged_rows: %w", err)
	}

	if m.mergedColumns, err = meter.Int64Gauge(
		"gwmerge_merged_columns",
		metric.WithDescription("Columns in the combined table, Date included"),
	); err != nil {
		return nil, fmt.Errorf("merged_columns: %w", err)
	}

	if m.runDuration, err = meter.Float64Histogram(
		"gwmerge_run_duration",
		metric.WithDescription("Pipeline run duration"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("run_duration: %w", err)
	}

	if m.runsTotal, err = meter.Int64Counter(
		"gwmerge_runs",
		metric.WithDescription("Pipeline runs by status"),
	); err != nil {
		return nil, fmt.Errorf("runs: %w", err)
	}

	return &m, nil
}

// RecordState records the verdicts and outcome of one state folder
func (m *PipelineMetrics) RecordState(ctx context.Context, r dataprocessing.StateReport) {
	if m == nil {
		return
	}

	state := attribute.String("state", r.State)
	for _, v := range r.Verdicts {
		reason := string(v.Reason)
		if reason == "" {
			reason = "none"
		}
		m.filesChecked.Add(ctx, 1, metric.WithAttributes(
			state,
			attribute.Bool("usable", v.Usable),
			attribute.String("reason", reason)))
	}
	if r.FilesFailed > 0 {
		m.filesFailed.Add(ctx, int64(r.FilesFailed), metric.WithAttributes(state))
	}

	outcome := "processed"
	if r.Skipped() {
		outcome = "skipped"
	}
	m.statesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordMerge records the shape of the combined table
func (m *PipelineMetrics) RecordMerge(ctx context.Context, rows, columns int) {
	if m == nil {
		return
	}
	m.mergedRows.Record(ctx, int64(rows))
	m.mergedColumns.Record(ctx, int64(columns))
}

// RecordRun records the duration and status of a finished run
func (m *PipelineMetrics) RecordRun(ctx context.Context, duration time.Duration, err error) {
	if m == nil {
		return
	}

	attrs := []attribute.KeyValue{attribute.String("status", StatusCompleted)}
	if err != nil {
		attrs = []attribute.KeyValue{
			attribute.String("status", StatusFailed),
			attribute.String("error_type", string(GetErrorType(err))),
		}
	}
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs[0]))
	m.runsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}
