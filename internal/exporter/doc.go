// Package exporter writes the combined groundwater table to disk.
//
// CSVWriter handles CSV output with optional UTF-8 BOM for Excel, either in
// one call or through a StreamWriter. XLSXWriter writes a single worksheet
// with excelize. CombinedExporter picks one of them from the output file's
// extension and replaces the destination atomically.
//
// Example usage:
//
//	exp := exporter.NewCombinedExporter(files.NewManager(logger), false, logger)
//	err := exp.Export(ctx, combined, "out/combined.csv")
package exporter
