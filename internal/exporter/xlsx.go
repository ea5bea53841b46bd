package exporter

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// DefaultSheetName is the worksheet the combined table is written to
const DefaultSheetName = "Sheet1"

// XLSXWriter writes tabular data to a single worksheet
type XLSXWriter struct {
	sheet  string
	logger *slog.Logger
}

// NewXLSXWriter creates a writer for the named sheet ("" means DefaultSheetName)
func NewXLSXWriter(sheet string, logger *slog.Logger) *XLSXWriter {
	if sheet == "" {
		sheet = DefaultSheetName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{sheet: sheet, logger: logger}
}

// WriteRows writes headers followed by rows. Cells may be any value excelize
// accepts; nil leaves the cell empty.
func (w *XLSXWriter) WriteRows(filePath string, headers []string, rows [][]interface{}) error {
	w.logger.Debug("Writing XLSX file",
		slog.String("file_path", filePath),
		slog.String("sheet", w.sheet),
		slog.Int("record_count", len(rows)))

	f := excelize.NewFile()
	defer f.Close()

	if w.sheet != DefaultSheetName {
		if err := f.SetSheetName(DefaultSheetName, w.sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	sw, err := f.NewStreamWriter(w.sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	line := 1
	if len(headers) > 0 {
		cells := make([]interface{}, len(headers))
		for i, h := range headers {
			cells[i] = h
		}
		if err := w.setRow(sw, line, cells); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
		line++
	}

	for i, row := range rows {
		if err := w.setRow(sw, line, row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
		line++
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (w *XLSXWriter) setRow(sw *excelize.StreamWriter, line int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return err
	}
	return sw.SetRow(cell, cells)
}
