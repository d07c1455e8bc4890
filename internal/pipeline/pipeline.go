// Package pipeline sequences the sales ETL stages: load the previous output,
// extract and validate the new data, transform, and load the aggregate.
package pipeline

import (
	"errors"
	"fmt"
	"os"
	"time"

	"sales-etl/internal/config"
	"sales-etl/internal/etlerr"
	etlio "sales-etl/internal/io"
	"sales-etl/internal/logging"
	"sales-etl/internal/table"
	"sales-etl/internal/transform"
	"sales-etl/internal/validation"

	"github.com/google/uuid"
)

// auditTimeLayout renders audit timestamps with microseconds.
const auditTimeLayout = "2006-01-02 15:04:05.000000"

// Stage names used in failure logs.
const (
	StageLoadPrevious = "load previous"
	StageExtract      = "extract"
	StageTransform    = "transform"
	StageLoad         = "load"
)

// Components are the collaborators a Pipeline drives.
type Components struct {
	Reader         etlio.TableReader // New sales data.
	PreviousReader etlio.TableReader // Previous output, in the destination format.
	Writer         etlio.TableWriter // Aggregate output file.
	Transformer    *transform.Transformer
	Mirror         etlio.TableWriter // Optional database copy of the aggregate; nil disables it.
	MirrorTarget   string            // Name of the mirror table, for the audit trail.
}

// Pipeline runs one batch. It is not safe for concurrent use, and two runs
// against the same output path race.
type Pipeline struct {
	Components
	log    *logging.Logger
	dryRun bool

	now      func() time.Time
	newRunID func() string
}

// New creates a Pipeline from explicit components.
func New(c Components, log *logging.Logger) *Pipeline {
	return &Pipeline{
		Components: c,
		log:        log,
		now:        time.Now,
		newRunID:   func() string { return uuid.New().String() },
	}
}

// FromConfig builds every component from cfg. dbConn, when set, overrides the
// mirror connection string.
func FromConfig(cfg *config.ETLConfig, dbConn string, log *logging.Logger) (*Pipeline, error) {
	reader, err := etlio.NewTableReader(cfg.Source, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create input reader: %w", err)
	}
	prevReader, err := etlio.NewPreviousReader(cfg.Destination, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create previous output reader: %w", err)
	}
	writer, err := etlio.NewTableWriter(cfg.Destination, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create output writer: %w", err)
	}
	tr, err := transform.NewTransformer(cfg.Transform, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create transformer: %w", err)
	}

	c := Components{Reader: reader, PreviousReader: prevReader, Writer: writer, Transformer: tr}
	if cfg.Mirror != nil {
		mirror, err := etlio.NewMirrorWriter(cfg.Mirror, dbConn, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create mirror writer: %w", err)
		}
		c.Mirror = mirror
		c.MirrorTarget = cfg.Mirror.Table
	}
	return New(c, log), nil
}

// SetDryRun makes Run skip every write while still running all other stages.
func (p *Pipeline) SetDryRun(dryRun bool) {
	p.dryRun = dryRun
}

// LoadPrevious reads the previous output when it exists. A missing file yields
// an empty table with no columns.
func (p *Pipeline) LoadPrevious(outputPath string) (*table.Table, error) {
	if _, err := os.Stat(outputPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			p.log.Logf(logging.Info, "No previous data found.")
			return table.Empty(), nil
		}
		return nil, fmt.Errorf("%w: failed to stat previous output '%s': %w", etlerr.ErrIO, outputPath, err)
	}
	previous, err := p.PreviousReader.Read(outputPath)
	if err != nil {
		return nil, err
	}
	p.log.Logf(logging.Info, "Previous data loaded from %s (%d rows)", outputPath, previous.Len())
	return previous, nil
}

// Extract reads the new data and rejects it if any cell is null.
func (p *Pipeline) Extract(inputPath string) (*table.Table, error) {
	p.log.Logf(logging.Info, "Fetching data from %s", inputPath)
	current, err := p.Reader.Read(inputPath)
	if err != nil {
		return nil, err
	}
	if err := validation.CheckNulls(current); err != nil {
		var nullErr *validation.NullValuesError
		if errors.As(err, &nullErr) {
			return nil, fmt.Errorf("validating '%s': %d null cell(s): %w", inputPath, nullErr.Total(), err)
		}
		return nil, fmt.Errorf("validating '%s': %w", inputPath, err)
	}
	p.log.Logf(logging.Info, "Data extracted successfully from %s", inputPath)
	return current, nil
}

// Transform derives, merges and aggregates.
func (p *Pipeline) Transform(current, previous *table.Table) (*table.Table, error) {
	result, err := p.Transformer.Transform(current, previous)
	if err != nil {
		return nil, err
	}
	p.log.Logf(logging.Info, "Data transformation completed.")
	p.log.Logf(logging.Debug, "Transformed %d rows into %d groups", current.Len(), result.Len())
	return result, nil
}

// Load overwrites the output file with result, records the audit event, then
// refreshes the mirror when one is configured.
func (p *Pipeline) Load(result *table.Table, outputPath string) error {
	if p.dryRun {
		p.log.Logf(logging.Info, "DRY RUN: Skip load. Would write %d records to %s.", result.Len(), outputPath)
		sampleSize := 5
		if result.Len() < sampleSize {
			sampleSize = result.Len()
		}
		for i := 0; i < sampleSize; i++ {
			p.log.Logf(logging.Debug, "Record %d: %v", i, result.Row(i))
		}
		return nil
	}

	if err := p.Writer.Write(result, outputPath); err != nil {
		return err
	}
	p.log.Audit("Data Load", "Data loaded into "+outputPath)

	if p.Mirror != nil {
		if err := p.Mirror.Write(result, p.MirrorTarget); err != nil {
			return err
		}
		p.log.Audit("Data Load", "Data mirrored into table "+p.MirrorTarget)
	}
	return nil
}

// Run executes one batch: audit start, load previous, extract, transform, load,
// audit end. The first stage failure is logged and returned unchanged; nothing
// written before the failure is rolled back.
func (p *Pipeline) Run(inputPath, outputPath string) error {
	start := p.now()
	p.log.Audit("Pipeline Start", fmt.Sprintf("Started at %s - Run: %s", start.Format(auditTimeLayout), p.newRunID()))

	if err := p.run(inputPath, outputPath); err != nil {
		p.log.Logf(logging.Error, "Pipeline execution failed: %v", err)
		return err
	}

	end := p.now()
	p.log.Audit("Pipeline End", fmt.Sprintf("Ended at %s - Duration: %s", end.Format(auditTimeLayout), end.Sub(start)))
	p.log.Logf(logging.Info, "Pipeline executed successfully.")
	return nil
}

func (p *Pipeline) run(inputPath, outputPath string) error {
	defer p.close()

	var previous, current, result *table.Table
	err := p.stage(StageLoadPrevious, func() (err error) {
		previous, err = p.LoadPrevious(outputPath)
		return err
	})
	if err != nil {
		return err
	}
	err = p.stage(StageExtract, func() (err error) {
		current, err = p.Extract(inputPath)
		return err
	})
	if err != nil {
		return err
	}
	err = p.stage(StageTransform, func() (err error) {
		result, err = p.Transform(current, previous)
		return err
	})
	if err != nil {
		return err
	}
	return p.stage(StageLoad, func() error {
		return p.Load(result, outputPath)
	})
}

// stage logs a failure once, tagged with the stage name.
func (p *Pipeline) stage(name string, fn func() error) error {
	if err := fn(); err != nil {
		p.log.Logf(logging.Error, "Error in %s: %v", name, err)
		return err
	}
	return nil
}

func (p *Pipeline) close() {
	for _, w := range []etlio.TableWriter{p.Writer, p.Mirror} {
		if w == nil {
			continue
		}
		if err := w.Close(); err != nil {
			p.log.Logf(logging.Error, "Failed to close writer: %v", err)
		}
	}
}
