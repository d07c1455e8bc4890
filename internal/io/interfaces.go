package io

import "sales-etl/internal/table"

// TableReader loads a whole table from a source.
type TableReader interface {
	// Read extracts the table stored at path.
	// Failures wrap etlerr.ErrIO (missing or unreadable file) or etlerr.ErrParse (malformed content).
	Read(path string) (*table.Table, error)
}

// TableWriter persists a whole table, replacing whatever the destination held.
type TableWriter interface {
	// Write stores t at pathOrTable. File writers treat the argument as a path;
	// database writers ignore it and use their configured table.
	// Failures wrap etlerr.ErrIO.
	Write(t *table.Table, pathOrTable string) error

	// Close releases any resources held by the writer. Safe to call more than once.
	Close() error
}
