package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// PipelineConfig holds everything the merge run needs
type PipelineConfig struct {
	ParentDir        string `yaml:"parent_dir" envconfig:"PARENT_DIR" validate:"required"`
	Marker           string `yaml:"marker" envconfig:"MARKER" validate:"required"`
	StationColumn    string `yaml:"station_column" envconfig:"STATION_COLUMN" validate:"required"`
	LevelColumn      string `yaml:"level_column" envconfig:"LEVEL_COLUMN" validate:"required"`
	OutputPath       string `yaml:"output_path" envconfig:"OUTPUT_PATH" validate:"required"`
	ManifestPath     string `yaml:"manifest_path" envconfig:"MANIFEST_PATH"`
	ProgressInterval int    `yaml:"progress_interval" envconfig:"PROGRESS_INTERVAL" validate:"gte=1"`
	BOMPrefix        bool   `yaml:"bom_prefix" envconfig:"BOM_PREFIX"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// TelemetryConfig selects trace and metric exporters
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	Trace       string `yaml:"trace" envconfig:"TRACE" validate:"oneof=none stdout"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// LoadOptions points Load at explicit files. Empty fields fall back to the
// defaults (.env in the working directory, GW_CONFIG_FILE or gwmerge.yaml).
type LoadOptions struct {
	EnvFile    string
	ConfigFile string
}

// Load loads configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence
func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

// LoadWithOptions is Load with explicit file locations
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := Default()

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Only variables that are set override; everything else keeps the
	// default or file value
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadEnvFile reads KEY=VALUE pairs into the process environment without
// overriding variables that are already set. A missing default file is fine.
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// loadFromFile overlays a YAML file onto cfg; keys absent from the file keep
// their current value
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// getConfigFilePath returns the path to the config file, or "" when none
func getConfigFilePath() string {
	if path := os.Getenv(ConfigFileEnv); path != "" {
		return path
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}
	return ""
}

// Validate checks the configuration
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			ParentDir:        DefaultParentDir,
			Marker:           DefaultMarker,
			StationColumn:    DefaultStationColumn,
			LevelColumn:      DefaultLevelColumn,
			OutputPath:       DefaultOutputPath,
			ProgressInterval: DefaultProgressInterval,
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Output:   DefaultLogOutput,
			FilePath: DefaultLogFile,
		},
		Telemetry: TelemetryConfig{
			ServiceName: DefaultServiceName,
			Trace:       TraceExporterNone,
		},
	}
}
