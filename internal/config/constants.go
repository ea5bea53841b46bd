package config

// Application constants
const (
	AppName = "gwmerge"

	// EnvPrefix namespaces every environment variable (GW_PIPELINE_PARENT_DIR, ...)
	EnvPrefix = "GW"

	// ConfigFileEnv names the variable that points at a YAML config file
	ConfigFileEnv     = "GW_CONFIG_FILE"
	DefaultConfigFile = "gwmerge.yaml"
	DefaultEnvFile    = ".env"

	// Pipeline defaults
	DefaultParentDir        = "."
	DefaultMarker           = "groundWater"
	DefaultStationColumn    = "Station_name"
	DefaultLevelColumn      = "level"
	DefaultOutputPath       = "combined_groundwater.csv"
	DefaultProgressInterval = 50

	// Log settings
	DefaultLogLevel  = "info"
	DefaultLogOutput = "console"
	DefaultLogFile   = "logs/gwmerge.log"

	// Telemetry
	TraceExporterNone   = "none"
	TraceExporterStdout = "stdout"
	DefaultServiceName  = "gwmerge"
)
