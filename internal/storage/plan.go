// TablePlan types live in internal/storage so the planner and every backend
// package can import them without circular deps.
package storage

import "time"

// Column type tokens. Backends translate these into their own SQL types
// (e.g. "decimal" becomes DECIMAL(18,6) on Postgres but REAL on SQLite).
const (
	TypeDate      = "date"
	TypeTime      = "time"
	TypeVarchar   = "varchar(255)"
	TypeShortText = "varchar(100)"
	TypeDecimal   = "decimal"
	TypeText      = "text"
	TypeTimestamp = "timestamp"
)

// TablePlan is the executable load plan for one destination table: shape plus
// the idempotent load strategy (create-if-missing, delete-by-date, insert).
//
// It is data, not code: backends render the three statements from it, and the
// planner can serialize it for preview or audit.
type TablePlan struct {
	// Name is the destination table name, already sanitized.
	Name string `json:"name"`

	// PrimaryKey is the surrogate key column, created by the backend with its
	// native auto-increment flavor.
	PrimaryKey string `json:"primary_key"`

	// DateColumn keys the delete-before-insert replacement; re-importing a
	// file replaces the rows under its dates instead of duplicating them.
	DateColumn string `json:"date_column"`

	// Columns are the insert columns in order, surrogate key excluded.
	Columns []ColumnPlan `json:"columns"`

	// Rows are the bound insert parameter rows, aligned with Columns.
	Rows [][]any `json:"-"`

	// Dates are the distinct DateColumn values present in Rows, first-seen
	// order. Rows can carry their own dates (a sheet may list several days),
	// so the delete-before-insert step must clear every date the plan writes,
	// not just the file date.
	Dates []time.Time `json:"-"`
}

// ColumnPlan is one (identifier, type, origin-header) triple.
type ColumnPlan struct {
	Name string `json:"name"`
	Type string `json:"type"`
	// Origin is the source header the identifier was derived from; empty for
	// the fixed envelope columns.
	Origin string `json:"origin,omitempty"`
}

// DeleteDates returns the union of date and p.Dates with duplicate days
// removed, in first-seen order starting from date. Backends delete exactly
// this set before inserting so a re-import converges instead of accumulating
// rows under off-key dates.
func (p TablePlan) DeleteDates(date time.Time) []time.Time {
	out := make([]time.Time, 0, len(p.Dates)+1)
	seen := make(map[string]struct{}, len(p.Dates)+1)
	for _, d := range append([]time.Time{date}, p.Dates...) {
		k := d.Format("2006-01-02")
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, d)
	}
	return out
}

// ColumnNames returns the insert column identifiers in plan order.
func (p TablePlan) ColumnNames() []string {
	out := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		out[i] = c.Name
	}
	return out
}
