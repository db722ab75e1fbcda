// Package sqlite implements a SQLite-backed record sink using database/sql.
// It batches INSERTs inside transactions; SQLite has no dedicated bulk-load
// API, but transactions keep performance acceptable for streaming loads.
//
// All columns are created as TEXT: the pipeline performs no type inference,
// so field values are stored exactly as they appeared in the input.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure-Go driver, registers as "sqlite"
)

// defaultBatchSize is the number of rows buffered before a transactional
// flush.
const defaultBatchSize = 500

// Loader streams records into a single SQLite table.
//
// Loader is not safe for concurrent use; the pipeline writes from one
// goroutine only.
type Loader struct {
	db        *sql.DB
	table     string
	columns   []string
	insertSQL string

	batch     [][]any
	batchSize int
}

// Open opens (or creates) the SQLite database at path, creates the
// destination table from the projected header, and returns a Loader ready to
// receive rows.
//
// Header cells are canonicalized into SQL identifiers via ColumnName; a
// duplicate or empty result is disambiguated with its column position.
func Open(ctx context.Context, path, table string, header []string) (*Loader, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite: path must not be empty")
	}
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("sqlite: table must not be empty")
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("sqlite: at least one column is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	columns := columnNames(header)

	colDefs := make([]string, len(columns))
	for i, c := range columns {
		colDefs[i] = c + " TEXT"
	}
	createSQL := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s)",
		table, strings.Join(colDefs, ", "),
	)
	if _, err := db.ExecContext(ctx, createSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: create table %s: %w", table, err)
	}

	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "),
	)

	return &Loader{
		db:        db,
		table:     table,
		columns:   columns,
		insertSQL: insertSQL,
		batch:     make([][]any, 0, defaultBatchSize),
		batchSize: defaultBatchSize,
	}, nil
}

// Columns returns the canonicalized column names of the destination table.
func (l *Loader) Columns() []string { return l.columns }

// WriteRow buffers one record for insertion, flushing a full batch
// transactionally. Short rows are padded with NULL; extra trailing fields
// beyond the table width are dropped, matching the flexible-width input
// contract.
func (l *Loader) WriteRow(ctx context.Context, fields []string) error {
	row := make([]any, len(l.columns))
	for i := range l.columns {
		if i < len(fields) {
			row[i] = fields[i]
		} else {
			row[i] = nil
		}
	}
	l.batch = append(l.batch, row)
	if len(l.batch) >= l.batchSize {
		return l.Flush(ctx)
	}
	return nil
}

// Flush inserts all buffered rows inside a single transaction with a
// prepared statement. It is a no-op when the buffer is empty.
func (l *Loader) Flush(ctx context.Context) error {
	if len(l.batch) == 0 {
		return nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, l.insertSQL)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range l.batch {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite: insert into %s: %w", l.table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}

	l.batch = l.batch[:0]
	return nil
}

// Close flushes any buffered rows and closes the database handle.
func (l *Loader) Close(ctx context.Context) error {
	flushErr := l.Flush(ctx)
	closeErr := l.db.Close()
	if flushErr != nil {
		return flushErr
	}
	if closeErr != nil {
		return fmt.Errorf("sqlite: close: %w", closeErr)
	}
	return nil
}

// columnNames canonicalizes every header cell and disambiguates duplicates
// with a positional suffix.
func columnNames(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := ColumnName(h)
		if name == "col" || seen[name] {
			name = fmt.Sprintf("%s_%d", name, i)
		}
		seen[name] = true
		out[i] = name
	}
	return out
}
