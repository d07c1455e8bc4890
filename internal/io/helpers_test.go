package io

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"sales-etl/internal/table"
)

// createTempFile writes content to a file named name inside a fresh temp dir.
func createTempFile(t *testing.T, content, name string) string {
	t.Helper()
	filePath := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file %s: %v", filePath, err)
	}
	return filePath
}

// readFileString returns the file content or fails the test.
func readFileString(t *testing.T, filePath string) string {
	t.Helper()
	b, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", filePath, err)
	}
	return string(b)
}

// assertNoTempFiles fails if a writer left temp files next to its output.
func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".*.tmp-*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) > 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

// compareTables compares columns and records, reporting both on mismatch.
func compareTables(t *testing.T, got, want *table.Table) {
	t.Helper()
	if got == nil || want == nil {
		if got != want {
			t.Errorf("table mismatch: got %v, want %v", got, want)
		}
		return
	}
	if !reflect.DeepEqual(got.Columns, want.Columns) {
		t.Errorf("columns mismatch:\ngot:  %#v\nwant: %#v", got.Columns, want.Columns)
	}
	if !reflect.DeepEqual(got.Records, want.Records) {
		t.Errorf("records mismatch:\ngot:  %#v\nwant: %#v", got.Records, want.Records)
	}
}
