// Package executor runs compiled SQL against modernc.org/sqlite,
// binding the transform's named parameters and formatting result rows.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/sync/semaphore"

	_ "modernc.org/sqlite"
)

// Compiled is the shape engine/transform.Result takes: a SQL string
// (possibly semicolon-separated statements for write clauses) plus the
// ordered, deduplicated parameter names the caller must bind.
type Compiled struct {
	SQL    string
	Params []string
}

// Runner wraps a *sql.DB opened against modernc.org/sqlite, bounding
// concurrent access with a weighted semaphore so compiled queries
// sharing one connection pool don't starve each other.
type Runner struct {
	db  *sql.DB
	sem *semaphore.Weighted
}

// Open opens path (":memory:" for an ephemeral in-process database).
// It does not create the schema; engine/schema.Apply does that.
// maxConcurrent bounds simultaneous Run calls; 0 means unbounded.
func Open(path string, maxConcurrent int64) (*Runner, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	var sem *semaphore.Weighted
	if maxConcurrent > 0 {
		sem = semaphore.NewWeighted(maxConcurrent)
	}
	return &Runner{db: db, sem: sem}, nil
}

// DB exposes the underlying connection, e.g. for engine/schema.Apply.
func (r *Runner) DB() *sql.DB {
	return r.db
}

// Close closes the underlying connection pool.
func (r *Runner) Close() error {
	return r.db.Close()
}

// Rows is the read-query result shape: column names plus row data.
type Rows struct {
	Columns []string
	Data    [][]any
}

// Run executes compiled against the wrapped database. params supplies
// a value for every name in compiled.Params, by name. A single SELECT/
// WITH statement returns *Rows; anything else (CREATE/SET/REMOVE/
// DELETE/MERGE output, possibly several semicolon-separated statements)
// runs inside one transaction and returns the final statement's
// affected-row count as a *Rows with a single "rows_affected" column.
func (r *Runner) Run(ctx context.Context, compiled *Compiled, params map[string]any) (*Rows, error) {
	if r.sem != nil {
		if err := r.sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("acquiring executor slot: %w", err)
		}
		defer r.sem.Release(1)
	}

	statements := splitStatements(compiled.SQL)
	args := bindArgs(compiled.Params, params)

	trimmed := strings.ToUpper(strings.TrimSpace(statements[0]))
	if len(statements) == 1 && (strings.HasPrefix(trimmed, "SELECT") || strings.HasPrefix(trimmed, "WITH")) {
		return r.query(ctx, statements[0], args)
	}

	return r.execTx(ctx, statements, args)
}

func (r *Runner) query(ctx context.Context, stmt string, args []any) (*Rows, error) {
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()
	return Format(rows)
}

func (r *Runner) execTx(ctx context.Context, statements []string, args []any) (*Rows, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var affected int64
	for _, stmt := range statements {
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return nil, fmt.Errorf("exec error: %w", err)
		}
		affected, _ = res.RowsAffected()
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return &Rows{Columns: []string{"rows_affected"}, Data: [][]any{{affected}}}, nil
}

// splitStatements splits a transform result on ";\n" (the separator
// Finalize joins statements with), trimming empties from a trailing
// separator.
func splitStatements(sql string) []string {
	parts := strings.Split(sql, ";\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{sql}
	}
	return out
}

// bindArgs resolves named SQL driver args in compiled.Params order,
// each wrapped as sql.Named so ":name" placeholders bind by name
// regardless of how many times a name repeats across statements.
func bindArgs(names []string, params map[string]any) []any {
	args := make([]any, 0, len(names))
	for _, name := range names {
		args = append(args, sql.Named(name, params[name]))
	}
	return args
}

// Format drains rows into a Rows value, converting []byte column
// values (sqlite's TEXT affinity) to string for display.
func Format(rows *sql.Rows) (*Rows, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var data [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		data = append(data, values)
	}
	return &Rows{Columns: columns, Data: data}, rows.Err()
}
