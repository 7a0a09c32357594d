// Package sqlite implements storage.Repository for SQLite via modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"autoimport/internal/storage"
)

// Repo implements storage.Repository for SQLite.
//
// Key design points vs the server backends:
//   - SQLite has no DATE/TIMESTAMP types; dates are stored as "2006-01-02"
//     strings and timestamps as RFC3339Nano strings for reliable round-trips.
//   - DECIMAL maps to REAL.
type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("sqlite", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

func (r *Repo) EnsureTable(ctx context.Context, plan storage.TablePlan) error {
	ddl, err := buildCreateTableSQL(plan)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlite: create table %s: %w", plan.Name, err)
	}
	return nil
}

// ReplaceDate deletes and reinserts the plan's date partitions in one
// transaction, so a concurrent reader never observes a partially replaced
// date.
func (r *Repo) ReplaceDate(ctx context.Context, plan storage.TablePlan, date time.Time) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	del, delArgs := buildDeleteSQL(plan, date)
	if _, err := tx.ExecContext(ctx, del, delArgs...); err != nil {
		return 0, fmt.Errorf("sqlite: delete %s: %w", plan.Name, err)
	}

	var inserted int64
	// Chunked multi-row inserts; SQLite caps bind variables per statement.
	for _, chunk := range chunkRows(plan.Rows, maxRowsPerInsert(len(plan.Columns))) {
		stmt, args := buildInsertSQL(plan, chunk)
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return 0, fmt.Errorf("sqlite: insert %s: %w", plan.Name, err)
		}
		n, _ := res.RowsAffected()
		inserted += n
	}

	if err := tx.Commit(); err != nil {
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
		marks[i] = "?"
		args[i] = formatDate(d)
	}
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)",
		sqlIdent(plan.Name), sqlIdent(plan.DateColumn), strings.Join(marks, ", "))
	return stmt, args
}

func sqlIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// sqliteType translates the shared column type tokens into SQLite affinities.
func sqliteType(token string) string {
	switch token {
	case storage.TypeDecimal:
		return "REAL"
	default:
		return "TEXT"
	}
}

func buildCreateTableSQL(plan storage.TablePlan) (string, error) {
	if strings.TrimSpace(plan.Name) == "" {
		return "", fmt.Errorf("sqlite: table name is empty")
	}

	parts := []string{fmt.Sprintf("%s INTEGER PRIMARY KEY AUTOINCREMENT", sqlIdent(plan.PrimaryKey))}
	for _, c := range plan.Columns {
		parts = append(parts, fmt.Sprintf("%s %s", sqlIdent(c.Name), sqliteType(c.Type)))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", sqlIdent(plan.Name), strings.Join(parts, ",\n  ")), nil
}

func buildInsertSQL(plan storage.TablePlan, rows [][]any) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(sqlIdent(plan.Name))
	b.WriteString(" (")
	for i, c := range plan.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sqlIdent(c.Name))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(plan.Columns))
	for ri, row := range rows {
		if ri > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for ci := range plan.Columns {
			if ci > 0 {
				b.WriteString(", ")
			}
			b.WriteString("?")
			args = append(args, bindValue(plan.Columns[ci].Type, row[ci]))
		}
		b.WriteString(")")
	}
	return b.String(), args
}

// bindValue converts Go values into SQLite-storable forms per column token.
func bindValue(token string, v any) any {
	t, ok := v.(time.Time)
	if !ok {
		return v
	}
	if token == storage.TypeDate {
		return formatDate(t)
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func formatDate(t time.Time) string { return t.Format("2006-01-02") }

// maxRowsPerInsert keeps cols*rows under SQLite's default bind-variable cap.
func maxRowsPerInsert(cols int) int {
	const maxVars = 900
	if cols <= 0 {
		return 1
	}
	n := maxVars / cols
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
