// Package operations drives a complete groundwater merge run.
//
// A Driver discovers the state folders under the configured parent
// directory, reshapes each one with dataprocessing.Reshaper, merges the
// resulting state tables and exports the combined table. States without
// usable data are recorded in the Report and skipped; a run with no state
// folders, or with no usable state, fails with a typed *OperationError and
// writes no output.
//
// The Report doubles as the optional JSON run manifest. PipelineMetrics
// records file verdicts, state outcomes and the merged shape on an
// OpenTelemetry meter.
package operations
