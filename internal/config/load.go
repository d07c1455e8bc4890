package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"sales-etl/internal/util"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Default returns a validated configuration with every default applied.
func Default() *ETLConfig {
	cfg := &ETLConfig{}
	applyDefaults(cfg)
	return cfg
}

// LoadConfig reads, parses, and validates the YAML configuration file.
// It applies defaults before returning the validated configuration.
func LoadConfig(filename string) (*ETLConfig, error) {
	fileBytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filename, err)
	}

	var config ETLConfig
	if err := yaml.Unmarshal(fileBytes, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML in '%s': %w", filename, err)
	}

	applyDefaults(&config)

	if err := ValidateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// applyDefaults sets default values for every unset field.
func applyDefaults(cfg *ETLConfig) {
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}

	cfg.Source.Type = strings.ToLower(strings.TrimSpace(cfg.Source.Type))
	if cfg.Source.Type == "" {
		cfg.Source.Type = DefaultFormat
	}
	if cfg.Source.Type == FormatCSV && cfg.Source.Delimiter == "" {
		cfg.Source.Delimiter = DefaultCSVDelimiter
	}
	if cfg.Source.NAValues == nil {
		cfg.Source.NAValues = append([]string(nil), DefaultNAValues...)
	}

	cfg.Destination.Type = strings.ToLower(strings.TrimSpace(cfg.Destination.Type))
	if cfg.Destination.Type == "" {
		cfg.Destination.Type = DefaultFormat
	}
	if cfg.Destination.Type == FormatCSV && cfg.Destination.Delimiter == "" {
		cfg.Destination.Delimiter = DefaultCSVDelimiter
	}
	if cfg.Destination.Type == FormatXLSX && cfg.Destination.SheetName == "" {
		cfg.Destination.SheetName = DefaultSheetName
	}

	if cfg.Transform.DerivedColumn == "" {
		cfg.Transform.DerivedColumn = DefaultDerivedColumn
	}
	if cfg.Transform.Expression == "" {
		cfg.Transform.Expression = DefaultDeriveExpression
	}
	if len(cfg.Transform.DedupKeys) == 0 {
		cfg.Transform.DedupKeys = append([]string(nil), DefaultDedupKeys...)
	}
	if cfg.Transform.GroupBy == "" {
		cfg.Transform.GroupBy = DefaultGroupBy
	}
}

// LoadEnvFile loads KEY=VALUE pairs into the process environment without
// overriding variables that are already set. An empty path loads DefaultEnvFile
// only if it exists; an explicit path must exist.
func LoadEnvFile(path string) (bool, error) {
	if path == "" {
		if _, err := os.Stat(DefaultEnvFile); errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("failed to load env file '%s': %w", path, err)
	}
	return true, nil
}

// LoadEnvOverrides reads the SALES_ETL_* variables.
func LoadEnvOverrides() (EnvOverrides, error) {
	var env EnvOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return EnvOverrides{}, fmt.Errorf("failed to load config from env: %w", err)
	}
	return env, nil
}

// ApplyEnv layers SALES_ETL_* overrides over the loaded configuration and
// expands environment references in file paths and the mirror connection.
func ApplyEnv(cfg *ETLConfig, env EnvOverrides) {
	if env.LogLevel != "" {
		cfg.Logging.Level = strings.ToLower(env.LogLevel)
	}
	if cfg.Mirror != nil && env.DBCredentials != "" {
		cfg.Mirror.Connection = env.DBCredentials
	}
	cfg.Source.File = util.ExpandEnvUniversal(cfg.Source.File)
	cfg.Destination.File = util.ExpandEnvUniversal(cfg.Destination.File)
	if cfg.Mirror != nil {
		cfg.Mirror.Connection = util.ExpandEnvUniversal(cfg.Mirror.Connection)
	}
}
