package main

import (
	"errors"
	"fmt"
	"os"

	"sales-etl/internal/app"
	"sales-etl/internal/etlerr"
	"sales-etl/internal/logging"
)

// main runs one sales ETL batch and exits non-zero on any failure.
func main() {
	log := logging.New(os.Stderr, logging.Info)
	runner := app.NewAppRunner(log)

	err := runner.Run(os.Args[1:])
	if err != nil {
		if errors.Is(err, app.ErrUsage) || errors.Is(err, app.ErrConfigNotFound) || errors.Is(err, app.ErrMissingArgs) {
			fmt.Fprintln(os.Stderr, "")
			runner.Usage(os.Stderr)
		}
		// Make sure the failure is visible even with -loglevel=none.
		if log.GetLevel() < logging.Error {
			log.SetLevel(logging.Error)
		}
		if kind := etlerr.Kind(err); kind != nil {
			log.Logf(logging.Error, "Application execution failed (%v): %v", kind, err)
		} else {
			log.Logf(logging.Error, "Application execution failed: %v", err)
		}
		os.Exit(1)
	}
	log.Logf(logging.Info, "ETL process completed successfully.")
}
