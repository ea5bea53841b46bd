package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Supported tabular file extensions
const (
	ExtCSV  = ".csv"
	ExtXLSX = ".xlsx"
)

// TabularExtensions lists the extensions recognized as station exports
var TabularExtensions = []string{ExtCSV, ExtXLSX}

// ErrEmptyFile is returned when a file has no header row at all
var ErrEmptyFile = errors.New("file has no header row")

// RawTable is a parsed station export before any interpretation:
// one header row followed by data rows padded to the header width.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// IsTabularFile reports whether the file name has a supported extension
func IsTabularFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range TabularExtensions {
		if ext == want {
			return true
		}
	}
	return false
}

// ReadTable parses a CSV or XLSX file into a RawTable. The format is chosen by
// extension; unknown extensions are read as CSV.
func ReadTable(filePath string) (*RawTable, error) {
	if strings.ToLower(filepath.Ext(filePath)) == ExtXLSX {
		return readXLSX(filePath)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return ParseCSV(f)
}

// ParseCSV reads CSV content into a RawTable
func ParseCSV(r io.Reader) (*RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return newRawTable(records)
}

func readXLSX(filePath string) (*RawTable, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return newRawTable(rows)
}

func newRawTable(records [][]string) (*RawTable, error) {
	if len(records) == 0 || isBlankRow(records[0]) {
		return nil, ErrEmptyFile
	}

	headers := records[0]
	headers[0] = strings.TrimPrefix(headers[0], "\ufeff")

	table := &RawTable{Headers: headers}
	for i, rec := range records[1:] {
		if isBlankRow(rec) {
			continue
		}
		if len(rec) > len(headers) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+2, len(rec), len(headers))
		}
		row := make([]string, len(headers))
		copy(row, rec)
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func isBlankRow(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// TrimHeaders strips surrounding whitespace from every header in place
func (t *RawTable) TrimHeaders() {
	for i, h := range t.Headers {
		t.Headers[i] = strings.TrimSpace(h)
	}
}

// ColumnIndex returns the position of the first header equal to name, or -1
func (t *RawTable) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether a header equal to name exists
func (t *RawTable) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// RowText joins the cells of a data row the way they would print
func (t *RawTable) RowText(i int) string {
	return strings.Join(t.Rows[i], " ")
}
