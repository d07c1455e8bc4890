// Package etlerr defines the error kinds shared by every pipeline stage.
//
// Stages wrap their failures with one of the kinds below so callers can branch
// with errors.Is while the underlying cause stays reachable:
//
//	return fmt.Errorf("%w: CSVReader failed to open '%s': %w", etlerr.ErrIO, path, err)
package etlerr

import "errors"

var (
	// ErrDataQuality marks input rejected by validation (null cells).
	ErrDataQuality = errors.New("data quality check failed")
	// ErrIO marks a file that is missing, unreadable or not writable.
	ErrIO = errors.New("i/o failure")
	// ErrParse marks input that could not be parsed as a table.
	ErrParse = errors.New("malformed input")
	// ErrComputation marks a transform failure (missing column, non-numeric value).
	ErrComputation = errors.New("computation failed")
)

// Kind returns the first error kind matched by err, or nil.
func Kind(err error) error {
	for _, kind := range []error{ErrDataQuality, ErrIO, ErrParse, ErrComputation} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
