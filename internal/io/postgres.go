package io

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sales-etl/internal/etlerr"
	"sales-etl/internal/logging"
	"sales-etl/internal/table"
	"sales-etl/internal/util"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxPoolNewFunc allows overriding pgxpool.New for testing.
var pgxPoolNewFunc = pgxpool.New

// Default database connection and load timeout.
const defaultDbTimeout = 5 * time.Minute

// txBeginner is the part of *pgxpool.Pool the writer needs.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresWriter implements the TableWriter interface by mirroring a table into
// PostgreSQL. Each Write truncates the target table and COPYs the rows in a single
// transaction, so the database always holds exactly one complete aggregate.
type PostgresWriter struct {
	connStr     string
	targetTable string
	timeout     time.Duration
	log         *logging.Logger
}

// NewPostgresWriter creates a new PostgresWriter. targetTable may be schema-qualified.
func NewPostgresWriter(connStr, targetTable string, log *logging.Logger) *PostgresWriter {
	return &PostgresWriter{
		connStr:     connStr,
		targetTable: targetTable,
		timeout:     defaultDbTimeout,
		log:         log,
	}
}

// Write replaces the contents of the configured table with t. The second
// argument is ignored.
func (pw *PostgresWriter) Write(t *table.Table, _ string) error {
	if t == nil {
		t = table.Empty()
	}
	ctx, cancel := context.WithTimeout(context.Background(), pw.timeout)
	defer cancel()

	expandedConnStr := util.ExpandEnvUniversal(pw.connStr)
	maskedConnStr := util.MaskCredentials(expandedConnStr)
	pw.log.Logf(logging.Debug, "PostgresWriter connecting to %s", maskedConnStr)

	pool, err := pgxPoolNewFunc(ctx, expandedConnStr)
	if err != nil {
		pw.log.Logf(logging.Error, "PostgresWriter failed to create connection pool: %s", maskedConnStr)
		return fmt.Errorf("%w: PostgresWriter failed to create connection pool (using %s): %w", etlerr.ErrIO, maskedConnStr, err)
	}
	defer pool.Close()

	return pw.replaceTable(ctx, pool, t)
}

// replaceTable truncates the target and copies t into it inside one transaction.
func (pw *PostgresWriter) replaceTable(ctx context.Context, db txBeginner, t *table.Table) error {
	ident := pgx.Identifier(strings.Split(pw.targetTable, "."))

	tx, err := db.Begin(ctx)
	if err != nil {
		return pw.wrapDBError(ctx, "begin transaction", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		rbCtx, rbCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer rbCancel()
		if err := tx.Rollback(rbCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			pw.log.Logf(logging.Error, "PostgresWriter: Failed to rollback transaction: %v", err)
		}
	}()

	if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+ident.Sanitize()); err != nil {
		return pw.wrapDBError(ctx, "truncate", err)
	}

	copyData := make([][]interface{}, len(t.Records))
	for i, rec := range t.Records {
		row := make([]interface{}, len(t.Columns))
		for j, col := range t.Columns {
			row[j] = nativeValue(rec[col])
		}
		copyData[i] = row
	}

	if len(copyData) > 0 {
		copyCount, err := tx.CopyFrom(ctx, ident, t.Columns, pgx.CopyFromRows(copyData))
		if err != nil {
			return pw.wrapDBError(ctx, "COPY", err)
		}
		if copyCount != int64(len(copyData)) {
			return fmt.Errorf("%w: PostgresWriter (COPY): expected to copy %d rows to table '%s', driver reported %d",
				etlerr.ErrIO, len(copyData), pw.targetTable, copyCount)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return pw.wrapDBError(ctx, "commit", err)
	}
	committed = true

	pw.log.Logf(logging.Info, "PostgresWriter: Replaced contents of table '%s' with %d rows.", pw.targetTable, len(copyData))
	return nil
}

func (pw *PostgresWriter) wrapDBError(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w: PostgresWriter (%s) timed out for table '%s': %w", etlerr.ErrIO, op, pw.targetTable, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		pw.log.Logf(logging.Error, "PostgresWriter (%s) failed for table '%s'. PG Error Code: %s, Message: %s, Detail: %s",
			op, pw.targetTable, pgErr.Code, pgErr.Message, pgErr.Detail)
	}
	return fmt.Errorf("%w: PostgresWriter (%s) failed for table '%s': %w", etlerr.ErrIO, op, pw.targetTable, err)
}

// Close is a no-op; each Write opens and closes its own pool.
func (pw *PostgresWriter) Close() error {
	return nil
}
