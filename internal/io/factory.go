package io

import (
	"fmt"
	"strings"

	"sales-etl/internal/config"
	"sales-etl/internal/logging"
)

// NewTableReader creates the reader for the new sales data.
func NewTableReader(cfg config.SourceConfig, log *logging.Logger) (TableReader, error) {
	sourceType := strings.ToLower(cfg.Type)
	log.Logf(logging.Debug, "Creating input reader for type: %s", sourceType)

	switch sourceType {
	case config.FormatCSV, "":
		reader, err := NewCSVReader(cfg.Delimiter, cfg.CommentChar, cfg.NAValues, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create CSV reader: %w", err)
		}
		return reader, nil
	case config.FormatXLSX:
		return NewXLSXReader(cfg.SheetName, cfg.NAValues, log), nil
	default:
		return nil, fmt.Errorf("unsupported source type '%s'", cfg.Type)
	}
}

// NewPreviousReader creates the reader for the previously written output, which is
// stored in the destination format with the default null markers.
func NewPreviousReader(cfg config.DestinationConfig, log *logging.Logger) (TableReader, error) {
	destType := strings.ToLower(cfg.Type)
	switch destType {
	case config.FormatCSV, "":
		reader, err := NewCSVReader(cfg.Delimiter, "", nil, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create CSV reader for previous output: %w", err)
		}
		return reader, nil
	case config.FormatXLSX:
		return NewXLSXReader(cfg.SheetName, nil, log), nil
	default:
		return nil, fmt.Errorf("unsupported destination type '%s'", cfg.Type)
	}
}

// NewTableWriter creates the writer for the aggregate output file.
func NewTableWriter(cfg config.DestinationConfig, log *logging.Logger) (TableWriter, error) {
	destType := strings.ToLower(cfg.Type)
	log.Logf(logging.Debug, "Creating output writer for type: %s", destType)

	switch destType {
	case config.FormatCSV, "":
		writer, err := NewCSVWriter(cfg.Delimiter, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create CSV writer: %w", err)
		}
		return writer, nil
	case config.FormatXLSX:
		return NewXLSXWriter(cfg.SheetName, log), nil
	default:
		return nil, fmt.Errorf("unsupported destination type '%s'", cfg.Type)
	}
}

// NewMirrorWriter creates the PostgreSQL mirror writer. connStr overrides the
// connection string from the mirror configuration when non-empty.
func NewMirrorWriter(cfg *config.MirrorConfig, connStr string, log *logging.Logger) (TableWriter, error) {
	if cfg == nil || cfg.Table == "" {
		return nil, fmt.Errorf("mirror table is required for the PostgreSQL mirror")
	}
	if connStr == "" {
		connStr = cfg.Connection
	}
	if connStr == "" {
		return nil, fmt.Errorf("database connection string (-db, %s_DB_CREDENTIALS or mirror.connection) is required for the PostgreSQL mirror", config.EnvPrefix)
	}
	return NewPostgresWriter(connStr, cfg.Table, log), nil
}
