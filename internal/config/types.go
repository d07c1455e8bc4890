package config

// Define constants for configuration keys, types, defaults etc.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	DefaultLogLevel         = "info"
	DefaultFormat           = FormatCSV
	DefaultCSVDelimiter     = ","
	DefaultSheetName        = "Sheet1" // Default sheet name for the XLSX writer
	DefaultDerivedColumn    = "TotalSales"
	DefaultDeriveExpression = "Price * Quantity"
	DefaultGroupBy          = "ProductID"

	// EnvPrefix prefixes every environment override, e.g. SALES_ETL_LOG_LEVEL.
	EnvPrefix = "SALES_ETL"
	// DefaultEnvFile is loaded when present and no explicit env file is given.
	DefaultEnvFile = ".env"
)

// DefaultDedupKeys is the change-data-capture key: one row per (Date, ProductID).
var DefaultDedupKeys = []string{"Date", "ProductID"}

// DefaultNAValues are the cell strings read as null, matching the usual
// table-library convention for CSV input.
var DefaultNAValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// ETLConfig defines the overall structure for the optional YAML configuration file.
// Every field has a default, so a run with no file behaves like the plain
// `sales-etl <input> <output>` invocation.
type ETLConfig struct {
	// Logging configuration specifies the verbosity level.
	Logging LoggingConfig `yaml:"logging"`
	// Source describes the new sales data file.
	Source SourceConfig `yaml:"source"`
	// Destination describes the aggregate output file, which is also the previous state.
	Destination DestinationConfig `yaml:"destination"`
	// Transform holds the derive/merge/aggregate settings.
	Transform TransformConfig `yaml:"transform"`
	// Mirror optionally copies the aggregate into a PostgreSQL table after the file write.
	Mirror *MirrorConfig `yaml:"mirror,omitempty"`
}

// LoggingConfig holds settings related to logging verbosity.
type LoggingConfig struct {
	// Level is one of "none", "error", "warn", "info", "debug". Defaults to "info".
	Level string `yaml:"level" validate:"oneof=none error warn warning info debug"`
}

// SourceConfig details the input file properties.
type SourceConfig struct {
	// Type is the input format: "csv" (default) or "xlsx".
	Type string `yaml:"type" validate:"oneof=csv xlsx"`
	// File is the input path. A positional CLI argument overrides it. Environment variables are expanded.
	File string `yaml:"file,omitempty"`
	// Delimiter is the CSV field delimiter (default ",").
	Delimiter string `yaml:"delimiter,omitempty"`
	// CommentChar marks CSV comment lines. Empty disables comments.
	CommentChar string `yaml:"commentChar,omitempty"`
	// SheetName selects the XLSX sheet. Defaults to the active sheet.
	SheetName string `yaml:"sheetName,omitempty"`
	// NAValues lists the cell strings read as null. Defaults to DefaultNAValues.
	NAValues []string `yaml:"naValues,omitempty"`
}

// DestinationConfig details the output file properties.
type DestinationConfig struct {
	// Type is the output format: "csv" (default) or "xlsx".
	Type string `yaml:"type" validate:"oneof=csv xlsx"`
	// File is the output path. A positional CLI argument overrides it.
	File string `yaml:"file,omitempty"`
	// Delimiter is the CSV field delimiter (default ",").
	Delimiter string `yaml:"delimiter,omitempty"`
	// SheetName is the XLSX sheet to write (default "Sheet1").
	SheetName string `yaml:"sheetName,omitempty"`
}

// TransformConfig drives the Transformer.
type TransformConfig struct {
	// Filter is an optional govaluate boolean expression; new rows for which it is
	// false are dropped before the derived column is computed.
	Filter string `yaml:"filter,omitempty"`
	// DerivedColumn names the computed column (default "TotalSales").
	DerivedColumn string `yaml:"derivedColumn" validate:"required"`
	// Expression computes the derived column (default "Price * Quantity").
	Expression string `yaml:"expression" validate:"required"`
	// DedupKeys identify a row for the last-wins merge (default [Date, ProductID]).
	DedupKeys []string `yaml:"dedupKeys" validate:"required,min=1,dive,required"`
	// GroupBy is the aggregation key column (default "ProductID").
	GroupBy string `yaml:"groupBy" validate:"required"`
}

// MirrorConfig holds settings for the optional PostgreSQL copy of the aggregate.
type MirrorConfig struct {
	// Table is the target table, optionally schema-qualified ("public.sales_totals").
	Table string `yaml:"table" validate:"required"`
	// Connection is the PostgreSQL connection string. The -db flag and
	// SALES_ETL_DB_CREDENTIALS override it. Environment variables are expanded.
	Connection string `yaml:"connection,omitempty"`
}

// EnvOverrides are read from the environment with the SALES_ETL prefix.
type EnvOverrides struct {
	LogLevel      string `envconfig:"LOG_LEVEL"`
	DBCredentials string `envconfig:"DB_CREDENTIALS"`
}
