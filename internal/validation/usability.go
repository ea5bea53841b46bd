package validation

import (
	"fmt"
	"log/slog"
	"strings"

	"gwmerge/internal/dataprocessing"
	"gwmerge/pkg/contracts/domain"
)

// NoDataMarker is the placeholder text found in empty station exports
const NoDataMarker = "No Data Available"

// Checker classifies station exports as usable or unusable
type Checker struct {
	columns dataprocessing.Columns
	logger  *slog.Logger
}

// NewChecker creates a checker for the given column names
func NewChecker(columns dataprocessing.Columns, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		columns: columns,
		logger:  logger,
	}
}

// IsUsable reports whether the file can be pivoted
func (c *Checker) IsUsable(path string) bool {
	return c.Check(path).Usable
}

// Check reads the file and returns a typed verdict. It never returns an
// error; every failure becomes an unusable verdict.
func (c *Checker) Check(path string) (verdict domain.FileVerdict) {
	defer func() {
		if r := recover(); r != nil {
			verdict = domain.Unusable(path, domain.ReasonUnreadable, fmt.Sprint(r))
		}
		c.logger.Debug("File checked",
			slog.String("file", path),
			slog.Bool("usable", verdict.Usable),
			slog.String("reason", string(verdict.Reason)))
	}()

	table, err := dataprocessing.ReadTable(path)
	if err != nil {
		return domain.Unusable(path, domain.ReasonUnreadable, err.Error())
	}
	return c.CheckTable(path, table)
}

// CheckTable applies the schema and content rules to an already parsed table
func (c *Checker) CheckTable(path string, table *dataprocessing.RawTable) domain.FileVerdict {
	if len(table.Rows) == 0 {
		return domain.Unusable(path, domain.ReasonEmpty, "no data rows")
	}

	if len(table.Rows) == 1 && strings.Contains(table.RowText(0), NoDataMarker) {
		return domain.Unusable(path, domain.ReasonNoDataSentinel, NoDataMarker)
	}

	table.TrimHeaders()

	levelCol, ok := dataprocessing.ResolveLevelColumn(table.Headers, c.columns.Level)
	if !ok {
		return domain.Unusable(path, domain.ReasonNoLevelColumn,
			fmt.Sprintf("no %q header and no header containing \"level\"", c.columns.Level))
	}

	missing := table.MissingColumns(dataprocessing.RequiredColumns(c.columns.Station, levelCol))
	if len(missing) > 0 {
		verdict := domain.Unusable(path, domain.ReasonMissingColumns, "missing "+strings.Join(missing, ", "))
		verdict.Missing = missing
		return verdict
	}

	return domain.Usable(path, levelCol)
}
