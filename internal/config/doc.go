// Package config loads gwmerge configuration.
//
// # Configuration Sources
//
// Values are resolved in order of increasing precedence:
//
//  1. Default() values
//  2. YAML file (GW_CONFIG_FILE, or gwmerge.yaml in the working directory)
//  3. Environment variables, including any loaded from a .env file
//
// Command-line flags are applied on top by cmd/gwmerge.
//
// # Environment Variables
//
// All variables use the GW_ prefix followed by the section name:
//
//	GW_PIPELINE_PARENT_DIR=/data/india
//	GW_PIPELINE_MARKER=groundWater
//	GW_PIPELINE_OUTPUT_PATH=combined.xlsx
//	GW_LOGGING_LEVEL=debug
//	GW_TELEMETRY_TRACE=stdout
//
// The loaded Config is checked with go-playground/validator struct tags.
package config
