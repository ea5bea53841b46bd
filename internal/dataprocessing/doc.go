// Package dataprocessing turns groundwater station files into date-indexed
// tables and merges them across states.
//
// # Components
//
//  1. Parser: reads a CSV or XLSX file into a RawTable
//  2. Pivot: turns station readings into a StateTable of Date x StationKey
//  3. Reshaper: checks and pivots every file of one state folder
//  4. Merger: outer-joins the per-state tables on Date
//
// # Usage
//
//	reshaper := dataprocessing.NewReshaper(checker, discovery, dataprocessing.DefaultColumns(), logger)
//	table, report := reshaper.Reshape(ctx, "data/Kerala_groundWater")
//	if table == nil {
//	    log.Printf("skipped: %s", report.SkipReason)
//	}
//
//	combined, err := dataprocessing.Merge(ctx, tables)
//
// # Data Flow
//
//	station files → RawTable → StateTable (per state) → CombinedTable
//
// # Missing Values
//
// A level is missing when its cell is empty, NaN or not a number. Missing
// readings never win over a real one and are written as empty cells.
package dataprocessing
