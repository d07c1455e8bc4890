package etlerr

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestKind(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "unrelated", err: errors.New("boom"), want: nil},
		{name: "io wrapping cause", err: fmt.Errorf("%w: open 'x': %w", ErrIO, os.ErrNotExist), want: ErrIO},
		{name: "parse", err: fmt.Errorf("%w: bad quote", ErrParse), want: ErrParse},
		{name: "double wrapped computation", err: fmt.Errorf("transform: %w", fmt.Errorf("%w: no column", ErrComputation)), want: ErrComputation},
		{name: "data quality", err: ErrDataQuality, want: ErrDataQuality},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Kind(tc.err); got != tc.want {
				t.Errorf("Kind(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestWrappedCauseStaysReachable(t *testing.T) {
	err := fmt.Errorf("%w: open 'missing.csv': %w", ErrIO, os.ErrNotExist)
	if !errors.Is(err, ErrIO) {
		t.Error("errors.Is(err, ErrIO) = false, want true")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("errors.Is(err, os.ErrNotExist) = false, want true")
	}
}
