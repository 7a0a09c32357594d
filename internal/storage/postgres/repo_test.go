package postgres

import (
	"strings"
	"testing"
	"time"

	"autoimport/internal/storage"
)

func testPlan() storage.TablePlan {
	return storage.TablePlan{
		Name:       "report",
		PrimaryKey: "id",
		DateColumn: "record_date",
		Columns: []storage.ColumnPlan{
			{Name: "record_date", Type: storage.TypeDate},
			{Name: "record_time", Type: storage.TypeTime},
			{Name: "channel_name", Type: storage.TypeVarchar},
			{Name: "value", Type: storage.TypeDecimal},
			{Name: "type", Type: storage.TypeShortText},
			{Name: "remarks", Type: storage.TypeText},
			{Name: "created_at", Type: storage.TypeTimestamp},
		},
	}
}

func TestBuildCreateTableSQLTypeMapping(t *testing.T) {
	t.Parallel()

	ddl, err := buildCreateTableSQL(testPlan())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`CREATE TABLE IF NOT EXISTS "report"`,
		`"id" BIGSERIAL PRIMARY KEY`,
		`"record_date" DATE`,
		`"record_time" VARCHAR(8)`,
		`"channel_name" VARCHAR(255)`,
		`"value" DECIMAL(18,6)`,
		`"type" VARCHAR(100)`,
		`"remarks" TEXT`,
		`"created_at" TIMESTAMPTZ`,
	} {
		if !strings.Contains(ddl, want) {
			t.Fatalf("ddl missing %q:\n%s", want, ddl)
		}
	}
}

// TestBuildInsertSQLPlaceholderNumbering: $n numbering must be continuous
// across rows, and args aligned with it.
func TestBuildInsertSQLPlaceholderNumbering(t *testing.T) {
	t.Parallel()

	plan := storage.TablePlan{
		Name:       "t",
		PrimaryKey: "id",
		Columns: []storage.ColumnPlan{
			{Name: "a", Type: storage.TypeText},
			{Name: "b", Type: storage.TypeText},
		},
	}
	stmt, args := buildInsertSQL(plan, [][]any{{"x", "y"}, {"z", "w"}})
	if want := `INSERT INTO "t" ("a", "b") VALUES ($1, $2), ($3, $4)`; stmt != want {
		t.Fatalf("stmt = %s", stmt)
	}
	if len(args) != 4 || args[3] != "w" {
		t.Fatalf("args = %v", args)
	}
}

// TestBuildDeleteSQLCoversPlanDates: the delete must clear every date the
// rows carry, not just the request date, or re-imports accumulate rows.
func TestBuildDeleteSQLCoversPlanDates(t *testing.T) {
	t.Parallel()

	d28 := time.Date(2025, 6, 28, 0, 0, 0, 0, time.UTC)
	d27 := time.Date(2025, 6, 27, 0, 0, 0, 0, time.UTC)
	p := testPlan()
	p.Dates = []time.Time{d28, d27}
	stmt, args := buildDeleteSQL(p, d28)

	if want := `DELETE FROM "report" WHERE "record_date" IN ($1, $2)`; stmt != want {
		t.Fatalf("stmt = %s", stmt)
	}
	if len(args) != 2 || args[0] != d28 || args[1] != d27 {
		t.Fatalf("args = %v", args)
	}
}

func TestMaxRowsPerInsertFloor(t *testing.T) {
	t.Parallel()

	if got := maxRowsPerInsert(70000); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
}
