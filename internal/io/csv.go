package io

import (
	"encoding/csv"
	"errors"
	"fmt"
	stdio "io"
	"os"
	"unicode/utf8"

	"sales-etl/internal/config"
	"sales-etl/internal/etlerr"
	"sales-etl/internal/logging"
	"sales-etl/internal/table"
)

// CSVReader implements the TableReader interface for CSV files.
// It supports configurable delimiters, comment characters and null markers.
type CSVReader struct {
	Delimiter   rune // Field delimiter (e.g., ',', '\t').
	CommentChar rune // Character indicating a comment line (e.g., '#'). 0 disables.
	naValues    map[string]struct{}
	log         *logging.Logger
}

// NewCSVReader creates a CSVReader. A nil naValues slice selects config.DefaultNAValues.
func NewCSVReader(delimiter, commentChar string, naValues []string, log *logging.Logger) (*CSVReader, error) {
	delim, err := parseDelimiter(delimiter)
	if err != nil {
		return nil, err
	}

	var comment rune
	if commentChar != "" {
		if utf8.RuneCountInString(commentChar) != 1 {
			return nil, fmt.Errorf("invalid comment character '%s': must be a single character or empty", commentChar)
		}
		comment, _ = utf8.DecodeRuneInString(commentChar)
	}

	if naValues == nil {
		naValues = config.DefaultNAValues
	}
	return &CSVReader{
		Delimiter:   delim,
		CommentChar: comment,
		naValues:    naSet(naValues),
		log:         log,
	}, nil
}

func parseDelimiter(delimiter string) (rune, error) {
	if delimiter == "" {
		return ',', nil
	}
	if utf8.RuneCountInString(delimiter) != 1 {
		return 0, fmt.Errorf("invalid delimiter '%s': must be a single character", delimiter)
	}
	r, _ := utf8.DecodeRuneInString(delimiter)
	return r, nil
}

// Read loads a CSV file into a table. The first record is the header.
// Blank lines are skipped, short rows are padded with nulls, and a row with more
// fields than the header is a parse error. A header-only file yields an empty
// table that keeps its columns; a file without a header is a parse error.
func (cr *CSVReader) Read(filePath string) (*table.Table, error) {
	cr.log.Logf(logging.Debug, "CSVReader reading file: %s (Delimiter: '%c')", filePath, cr.Delimiter)

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: CSVReader failed to open file '%s': %w", etlerr.ErrIO, filePath, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = cr.Delimiter
	if cr.CommentChar != 0 {
		reader.Comment = cr.CommentChar
	}
	reader.FieldsPerRecord = -1 // Row width is checked against the header below.

	header, err := reader.Read()
	if errors.Is(err, stdio.EOF) {
		return nil, fmt.Errorf("%w: CSVReader found no columns to parse in '%s'", etlerr.ErrParse, filePath)
	}
	if err != nil {
		return nil, cr.wrapReadError(filePath, err)
	}
	columns := normalizeHeaders(header, cr.log, filePath)

	records := make([]table.Record, 0)
	for {
		row, err := reader.Read()
		if errors.Is(err, stdio.EOF) {
			break
		}
		if err != nil {
			return nil, cr.wrapReadError(filePath, err)
		}
		if len(row) > len(columns) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("%w: CSVReader expected %d fields in '%s' line %d, saw %d",
				etlerr.ErrParse, len(columns), filePath, line, len(row))
		}

		rec := make(table.Record, len(columns))
		for i, col := range columns {
			if i < len(row) {
				rec[col] = parseCell(row[i], cr.naValues)
			} else {
				rec[col] = nil
			}
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		cr.log.Logf(logging.Warning, "CSV file '%s' contains only a header row", filePath)
	}
	cr.log.Logf(logging.Debug, "CSVReader successfully loaded %d records from %s", len(records), filePath)
	return table.New(columns, records), nil
}

func (cr *CSVReader) wrapReadError(filePath string, err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Errorf("%w: CSVReader parse error in '%s' on line %d, column %d: %w",
			etlerr.ErrParse, filePath, parseErr.Line, parseErr.Column, parseErr.Err)
	}
	return fmt.Errorf("%w: CSVReader failed to read rows from '%s': %w", etlerr.ErrIO, filePath, err)
}

// CSVWriter implements the TableWriter interface for CSV files.
// Each Write replaces the file in one step.
type CSVWriter struct {
	Delimiter rune // Field delimiter to use for writing.
	log       *logging.Logger
}

// NewCSVWriter creates a CSVWriter.
func NewCSVWriter(delimiter string, log *logging.Logger) (*CSVWriter, error) {
	delim, err := parseDelimiter(delimiter)
	if err != nil {
		return nil, err
	}
	return &CSVWriter{Delimiter: delim, log: log}, nil
}

// Write saves the table as header plus rows, in the table's column order and
// without an index column. Nil cells are written empty. The parent directory
// is created when missing.
func (cw *CSVWriter) Write(t *table.Table, filePath string) error {
	if t == nil {
		t = table.Empty()
	}
	cw.log.Logf(logging.Debug, "CSVWriter writing %d records to %s (Delimiter: '%c')", t.Len(), filePath, cw.Delimiter)

	err := writeFileAtomic(filePath, func(w stdio.Writer) error {
		writer := csv.NewWriter(w)
		writer.Comma = cw.Delimiter
		if len(t.Columns) == 0 {
			return nil
		}
		if err := writer.Write(t.Columns); err != nil {
			return fmt.Errorf("header: %w", err)
		}
		row := make([]string, len(t.Columns))
		for i, rec := range t.Records {
			for j, col := range t.Columns {
				row[j] = formatCell(rec[col])
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("data row %d: %w", i+1, err)
			}
		}
		writer.Flush()
		return writer.Error()
	})
	if err != nil {
		return fmt.Errorf("CSVWriter: %w", err)
	}

	cw.log.Logf(logging.Debug, "CSVWriter successfully wrote %d records to %s", t.Len(), filePath)
	return nil
}

// Close is a no-op; Write holds no resources between calls.
func (cw *CSVWriter) Close() error {
	return nil
}
