// Package postgres implements storage.Repository for Postgres via pgx.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"autoimport/internal/storage"
)

// Repo implements storage.Repository for Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

func init() {
	storage.Register("postgres", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() { r.pool.Close() }

func (r *Repo) EnsureTable(ctx context.Context, plan storage.TablePlan) error {
	ddl, err := buildCreateTableSQL(plan)
	if err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("postgres: create table %s: %w", plan.Name, err)
	}
	return nil
}

// ReplaceDate runs delete + insert inside one transaction. Partial writes for
// a (table, date) pair are never visible to readers.
func (r *Repo) ReplaceDate(ctx context.Context, plan storage.TablePlan, date time.Time) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	del, delArgs := buildDeleteSQL(plan, date)
	if _, err := tx.Exec(ctx, del, delArgs...); err != nil {
		return 0, fmt.Errorf("postgres: delete %s: %w", plan.Name, err)
	}

	var inserted int64
	// Chunked multi-row inserts; Postgres caps bind parameters at 65535 per
	// statement.
	for _, chunk := range chunkRows(plan.Rows, maxRowsPerInsert(len(plan.Columns))) {
		sql, args := buildInsertSQL(plan, chunk)
		cmd, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return 0, fmt.Errorf("postgres: insert %s: %w", plan.Name, err)
		}
		inserted += cmd.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return inserted, nil
}

// buildDeleteSQL clears every date the plan touches. Rows in a standard list
// sheet can carry their own dates, so deleting only the request date would
// leave stale off-date rows behind on re-import.
func buildDeleteSQL(plan storage.TablePlan, date time.Time) (string, []any) {
	dates := plan.DeleteDates(date)
	marks := make([]string, len(dates))
	args := make([]any, len(dates))
	for i, d := range dates {
		marks[i] = fmt.Sprintf("$%d", i+1)
		args[i] = d
	}
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)",
		pgIdent(plan.Name), pgIdent(plan.DateColumn), strings.Join(marks, ", "))
	return stmt, args
}

func pgIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// pgType translates the shared column type tokens into Postgres types.
func pgType(token string) string {
	switch token {
	case storage.TypeDate:
		return "DATE"
	case storage.TypeTime:
		return "VARCHAR(8)"
	case storage.TypeVarchar:
		return "VARCHAR(255)"
	case storage.TypeShortText:
		return "VARCHAR(100)"
	case storage.TypeDecimal:
		return "DECIMAL(18,6)"
	case storage.TypeTimestamp:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

func buildCreateTableSQL(plan storage.TablePlan) (string, error) {
	if strings.TrimSpace(plan.Name) == "" {
		return "", fmt.Errorf("postgres: table name is empty")
	}

	parts := []string{fmt.Sprintf("%s BIGSERIAL PRIMARY KEY", pgIdent(plan.PrimaryKey))}
	for _, c := range plan.Columns {
		parts = append(parts, fmt.Sprintf("%s %s", pgIdent(c.Name), pgType(c.Type)))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", pgIdent(plan.Name), strings.Join(parts, ",\n  ")), nil
}

// buildInsertSQL constructs a single multi-row INSERT and its args.
//
// It is pure and deterministic so placeholder numbering can be unit tested
// without a database.
func buildInsertSQL(plan storage.TablePlan, rows [][]any) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(pgIdent(plan.Name))
	b.WriteString(" (")
	for i, c := range plan.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgIdent(c.Name))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(plan.Columns))
	p := 1
	for ri, row := range rows {
		if ri > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for ci := range plan.Columns {
			if ci > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", p)
			args = append(args, row[ci])
			p++
		}
		b.WriteString(")")
	}
	return b.String(), args
}

func maxRowsPerInsert(cols int) int {
	const maxParams = 60000
	if cols <= 0 {
		return 1
	}
	n := maxParams / cols
	if n < 1 {
		return 1
	}
	return n
}

func chunkRows(rows [][]any, size int) [][][]any {
	var out [][][]any
	for len(rows) > 0 {
		n := size
		if n > len(rows) {
			n = len(rows)
		}
		out = append(out, rows[:n])
		rows = rows[n:]
	}
	return out
}
