// Package mssql implements storage.Repository for SQL Server via go-mssqldb.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"autoimport/internal/storage"
)

// Repo implements storage.Repository for SQL Server.
type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("mssql", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
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
		return fmt.Errorf("mssql: create table %s: %w", plan.Name, err)
	}
	return nil
}

func (r *Repo) ReplaceDate(ctx context.Context, plan storage.TablePlan, date time.Time) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	del, delArgs := buildDeleteSQL(plan, date)
	if _, err := tx.ExecContext(ctx, del, delArgs...); err != nil {
		return 0, fmt.Errorf("mssql: delete %s: %w", plan.Name, err)
	}

	var inserted int64
	// SQL Server caps parameters at 2100 per statement.
	for _, chunk := range chunkRows(plan.Rows, maxRowsPerInsert(len(plan.Columns))) {
		stmt, args := buildInsertSQL(plan, chunk)
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return 0, fmt.Errorf("mssql: insert %s: %w", plan.Name, err)
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
		marks[i] = fmt.Sprintf("@p%d", i+1)
		args[i] = d
	}
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)",
		mssqlIdent(plan.Name), mssqlIdent(plan.DateColumn), strings.Join(marks, ", "))
	return stmt, args
}

func mssqlIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// mssqlType translates the shared column type tokens into SQL Server types.
// Text columns use NVARCHAR so the provider's CJK headers and values survive.
func mssqlType(token string) string {
	switch token {
	case storage.TypeDate:
		return "DATE"
	case storage.TypeTime:
		return "NVARCHAR(8)"
	case storage.TypeVarchar:
		return "NVARCHAR(255)"
	case storage.TypeShortText:
		return "NVARCHAR(100)"
	case storage.TypeDecimal:
		return "DECIMAL(18,6)"
	case storage.TypeTimestamp:
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}

// buildCreateTableSQL wraps the CREATE in an OBJECT_ID guard; SQL Server has
// no CREATE TABLE IF NOT EXISTS.
func buildCreateTableSQL(plan storage.TablePlan) (string, error) {
	if strings.TrimSpace(plan.Name) == "" {
		return "", fmt.Errorf("mssql: table name is empty")
	}

	parts := []string{fmt.Sprintf("%s BIGINT IDENTITY(1,1) PRIMARY KEY", mssqlIdent(plan.PrimaryKey))}
	for _, c := range plan.Columns {
		parts = append(parts, fmt.Sprintf("%s %s", mssqlIdent(c.Name), mssqlType(c.Type)))
	}
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL BEGIN CREATE TABLE %s (%s); END;",
		plan.Name,
		mssqlIdent(plan.Name),
		strings.Join(parts, ", "),
	), nil
}

func buildInsertSQL(plan storage.TablePlan, rows [][]any) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(mssqlIdent(plan.Name))
	b.WriteString(" (")
	for i, c := range plan.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(mssqlIdent(c.Name))
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
			fmt.Fprintf(&b, "@p%d", p)
			args = append(args, row[ci])
			p++
		}
		b.WriteString(")")
	}
	return b.String(), args
}

func maxRowsPerInsert(cols int) int {
	const maxParams = 2000
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
