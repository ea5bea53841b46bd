// Package files provides file system discovery and management for the
// groundwater pipeline.
//
// Discovery finds state folders under a parent directory (by a marker
// substring in the folder name) and the tabular station exports inside each
// one, always in lexicographic name order.
//
// Manager covers the write side: directory creation, moves, and atomic
// writes through a temporary file that is renamed into place.
//
// Example usage:
//
//	discovery := files.NewDiscovery("")
//	folders, err := discovery.FindStateFolders("/data/india", "groundWater")
//
//	manager := files.NewManager(logger)
//	err = manager.WriteAtomic("/out/combined.csv", func(tmp string) error {
//	    return writeTo(tmp)
//	})
package files
