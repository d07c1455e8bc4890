package io

import (
	"fmt"
	stdio "io"
	"os"

	"sales-etl/internal/config"
	"sales-etl/internal/etlerr"
	"sales-etl/internal/logging"
	"sales-etl/internal/table"

	"github.com/xuri/excelize/v2"
)

// XLSXReader implements the TableReader interface for Excel (.xlsx) files.
type XLSXReader struct {
	sheetName string
	naValues  map[string]struct{}
	log       *logging.Logger
}

// NewXLSXReader creates an XLSXReader. An empty sheetName selects the active sheet;
// a nil naValues slice selects config.DefaultNAValues.
func NewXLSXReader(sheetName string, naValues []string, log *logging.Logger) *XLSXReader {
	if naValues == nil {
		naValues = config.DefaultNAValues
	}
	return &XLSXReader{sheetName: sheetName, naValues: naSet(naValues), log: log}
}

// Read loads one sheet of a workbook into a table, with the same header, padding
// and null rules as the CSV reader. Empty rows are skipped.
func (xr *XLSXReader) Read(filePath string) (*table.Table, error) {
	xr.log.Logf(logging.Debug, "XLSXReader reading file: %s (SheetName: '%s')", filePath, xr.sheetName)

	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("%w: XLSXReader failed to open file '%s': %w", etlerr.ErrIO, filePath, err)
	}
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: XLSXReader failed to open workbook '%s': %w", etlerr.ErrParse, filePath, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			xr.log.Logf(logging.Error, "XLSXReader failed to close file '%s': %v", filePath, err)
		}
	}()

	sheet, err := xr.targetSheet(f, filePath)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: XLSXReader failed to get rows from sheet '%s' in '%s': %w", etlerr.ErrParse, sheet, filePath, err)
	}

	var columns []string
	records := make([]table.Record, 0)
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if columns == nil {
			columns = normalizeHeaders(row, xr.log, filePath)
			continue
		}
		if len(row) > len(columns) {
			return nil, fmt.Errorf("%w: XLSXReader expected %d fields in sheet '%s' row %d of '%s', saw %d",
				etlerr.ErrParse, len(columns), sheet, i+1, filePath, len(row))
		}
		rec := make(table.Record, len(columns))
		for j, col := range columns {
			if j < len(row) {
				rec[col] = parseCell(row[j], xr.naValues)
			} else {
				rec[col] = nil
			}
		}
		records = append(records, rec)
	}
	if columns == nil {
		return nil, fmt.Errorf("%w: XLSXReader found no columns to parse in sheet '%s' of '%s'", etlerr.ErrParse, sheet, filePath)
	}

	xr.log.Logf(logging.Debug, "XLSXReader successfully loaded %d records from sheet '%s' in %s", len(records), sheet, filePath)
	return table.New(columns, records), nil
}

func (xr *XLSXReader) targetSheet(f *excelize.File, filePath string) (string, error) {
	if xr.sheetName != "" {
		for _, name := range f.GetSheetList() {
			if name == xr.sheetName {
				return name, nil
			}
		}
		return "", fmt.Errorf("%w: XLSXReader: sheet '%s' not found in '%s'", etlerr.ErrParse, xr.sheetName, filePath)
	}
	if name := f.GetSheetName(f.GetActiveSheetIndex()); name != "" {
		return name, nil
	}
	if list := f.GetSheetList(); len(list) > 0 {
		return list[0], nil
	}
	return "", fmt.Errorf("%w: XLSXReader: file '%s' contains no sheets", etlerr.ErrParse, filePath)
}

// XLSXWriter implements the TableWriter interface for Excel (.xlsx) files.
type XLSXWriter struct {
	sheetName string
	log       *logging.Logger
}

// NewXLSXWriter creates an XLSXWriter. An empty sheetName selects config.DefaultSheetName.
func NewXLSXWriter(sheetName string, log *logging.Logger) *XLSXWriter {
	if sheetName == "" {
		sheetName = config.DefaultSheetName
	}
	return &XLSXWriter{sheetName: sheetName, log: log}
}

// Write saves the table to a new single-sheet workbook that replaces filePath.
// Decimal values are stored as numbers.
func (xw *XLSXWriter) Write(t *table.Table, filePath string) error {
	if t == nil {
		t = table.Empty()
	}
	xw.log.Logf(logging.Debug, "XLSXWriter writing %d records to file: %s (Sheet: '%s')", t.Len(), filePath, xw.sheetName)

	f := excelize.NewFile()
	defer f.Close()

	if xw.sheetName != config.DefaultSheetName {
		if err := f.SetSheetName(config.DefaultSheetName, xw.sheetName); err != nil {
			return fmt.Errorf("%w: XLSXWriter failed to name sheet '%s': %w", etlerr.ErrIO, xw.sheetName, err)
		}
	}

	if len(t.Columns) > 0 {
		header := make([]interface{}, len(t.Columns))
		for i, c := range t.Columns {
			header[i] = c
		}
		if err := f.SetSheetRow(xw.sheetName, "A1", &header); err != nil {
			return fmt.Errorf("%w: XLSXWriter failed to write header row to sheet '%s': %w", etlerr.ErrIO, xw.sheetName, err)
		}
	}

	for i, rec := range t.Records {
		rowData := make([]interface{}, len(t.Columns))
		for j, col := range t.Columns {
			rowData[j] = nativeValue(rec[col])
		}
		startCell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("%w: XLSXWriter failed to calculate cell coordinates for row %d: %w", etlerr.ErrIO, i+2, err)
		}
		if err := f.SetSheetRow(xw.sheetName, startCell, &rowData); err != nil {
			return fmt.Errorf("%w: XLSXWriter failed to write data row %d to sheet '%s': %w", etlerr.ErrIO, i+1, xw.sheetName, err)
		}
	}

	err := writeFileAtomic(filePath, func(w stdio.Writer) error {
		return f.Write(w)
	})
	if err != nil {
		return fmt.Errorf("XLSXWriter: %w", err)
	}

	xw.log.Logf(logging.Debug, "XLSXWriter successfully wrote %d data rows to sheet '%s' in %s", t.Len(), xw.sheetName, filePath)
	return nil
}

// Close is a no-op; Write holds no resources between calls.
func (xw *XLSXWriter) Close() error {
	return nil
}
