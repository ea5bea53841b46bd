package exporter

import (
	"context"
	"fmt"
	"log/slog"

	"gwmerge/internal/dataprocessing"
	"gwmerge/internal/files"
)

// CombinedExporter writes the merged groundwater table to its output file
type CombinedExporter struct {
	csv       *CSVWriter
	xlsx      *XLSXWriter
	files     *files.Manager
	bomPrefix bool
	logger    *slog.Logger
}

// NewCombinedExporter creates an exporter. bomPrefix only affects CSV output.
func NewCombinedExporter(manager *files.Manager, bomPrefix bool, logger *slog.Logger) *CombinedExporter {
	if logger == nil {
		logger = slog.Default()
	}
	if manager == nil {
		manager = files.NewManager(logger)
	}
	return &CombinedExporter{
		csv:       NewCSVWriter(logger),
		xlsx:      NewXLSXWriter(DefaultSheetName, logger),
		files:     manager,
		bomPrefix: bomPrefix,
		logger:    logger.With("component", "exporter"),
	}
}

// Export writes table to outputPath in the format its extension selects. The
// file is replaced atomically; a failed export leaves any previous file alone.
func (e *CombinedExporter) Export(ctx context.Context, table *dataprocessing.CombinedTable, outputPath string) error {
	format := FormatFor(outputPath)
	rows, cols := table.Shape()

	e.logger.InfoContext(ctx, "Exporting combined data",
		slog.String("output", outputPath),
		slog.String("format", string(format)),
		slog.Int("rows", rows),
		slog.Int("columns", cols))

	replacing := e.files.FileExists(outputPath)

	var written int
	err := e.files.WriteAtomic(outputPath, func(tmp string) error {
		if format == FormatXLSX {
			data := xlsxRows(table)
			if err := e.xlsx.WriteRows(tmp, table.Header(), data); err != nil {
				return err
			}
			written = len(data)
			return nil
		}
		n, err := e.writeCSV(tmp, table)
		written = n
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to export %s: %w", outputPath, err)
	}

	attrs := []any{
		slog.String("output", outputPath),
		slog.Int("rows_written", written),
		slog.Bool("replaced", replacing),
	}
	if size, err := e.files.GetFileSize(outputPath); err == nil {
		attrs = append(attrs, slog.Int64("bytes", size))
	}
	e.logger.InfoContext(ctx, "Combined data exported", attrs...)
	return nil
}

// writeCSV streams table to path and returns the number of data rows written
func (e *CombinedExporter) writeCSV(path string, table *dataprocessing.CombinedTable) (int, error) {
	stream, err := e.csv.CreateStreamWriter(path, table.Header(), e.bomPrefix)
	if err != nil {
		return 0, err
	}
	for i, record := range table.Records() {
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return stream.Rows(), fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return stream.Rows(), stream.Close()
}

// xlsxRows keeps levels numeric so spreadsheets treat them as numbers
func xlsxRows(table *dataprocessing.CombinedTable) [][]interface{} {
	out := make([][]interface{}, 0, len(table.Rows))
	for _, row := range table.Rows {
		cells := make([]interface{}, 0, len(row.Values)+1)
		cells = append(cells, row.Date)
		for _, v := range row.Values {
			if v.Valid {
				cells = append(cells, v.Value)
			} else {
				cells = append(cells, nil)
			}
		}
		out = append(out, cells)
	}
	return out
}
