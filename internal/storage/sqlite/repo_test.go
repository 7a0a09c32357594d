package sqlite

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
			{Name: "value", Type: storage.TypeDecimal},
			{Name: "created_at", Type: storage.TypeTimestamp},
		},
	}
}

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	ddl, err := buildCreateTableSQL(testPlan())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`CREATE TABLE IF NOT EXISTS "report"`,
		`"id" INTEGER PRIMARY KEY AUTOINCREMENT`,
		`"record_date" TEXT`,
		`"value" REAL`,
		`"created_at" TEXT`,
	} {
		if !strings.Contains(ddl, want) {
			t.Fatalf("ddl missing %q:\n%s", want, ddl)
		}
	}
}

func TestBuildCreateTableSQLEmptyName(t *testing.T) {
	t.Parallel()

	p := testPlan()
	p.Name = "  "
	if _, err := buildCreateTableSQL(p); err == nil {
		t.Fatal("expected error for empty table name")
	}
}

func TestBuildInsertSQLBindsDatesAsText(t *testing.T) {
	t.Parallel()

	d := time.Date(2025, 6, 28, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 6, 28, 8, 30, 0, 0, time.UTC)
	stmt, args := buildInsertSQL(testPlan(), [][]any{
		{d, 1.5, now},
		{d, 2.5, now},
	})

	if want := `INSERT INTO "report" ("record_date", "value", "created_at") VALUES (?, ?, ?), (?, ?, ?)`; stmt != want {
		t.Fatalf("stmt = %s", stmt)
	}
	if args[0] != "2025-06-28" {
		t.Fatalf("date arg = %v, want formatted string", args[0])
	}
	if args[1] != 1.5 {
		t.Fatalf("value arg = %v", args[1])
	}
	if args[2] != now.UTC().Format(time.RFC3339Nano) {
		t.Fatalf("timestamp arg = %v", args[2])
	}
}

// TestBuildDeleteSQLCoversPlanDates: the delete must clear every date the
// rows carry, not just the request date, or re-imports accumulate rows.
func TestBuildDeleteSQLCoversPlanDates(t *testing.T) {
	t.Parallel()

	p := testPlan()
	p.Dates = []time.Time{
		time.Date(2025, 6, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 27, 0, 0, 0, 0, time.UTC),
	}
	stmt, args := buildDeleteSQL(p, time.Date(2025, 6, 28, 0, 0, 0, 0, time.UTC))

	if want := `DELETE FROM "report" WHERE "record_date" IN (?, ?)`; stmt != want {
		t.Fatalf("stmt = %s", stmt)
	}
	if len(args) != 2 || args[0] != "2025-06-28" || args[1] != "2025-06-27" {
		t.Fatalf("args = %v", args)
	}
}

func TestMaxRowsPerInsert(t *testing.T) {
	t.Parallel()

	if got := maxRowsPerInsert(3); got != 300 {
		t.Fatalf("got %d, want 300", got)
	}
	if got := maxRowsPerInsert(0); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
	if got := maxRowsPerInsert(1000); got != 1 {
		t.Fatalf("got %d, want 1 (never zero rows per chunk)", got)
	}
}

func TestChunkRows(t *testing.T) {
	t.Parallel()

	rows := [][]any{{1}, {2}, {3}, {4}, {5}}
	chunks := chunkRows(rows, 2)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	if len(chunks[2]) != 1 {
		t.Fatalf("tail chunk = %d rows, want 1", len(chunks[2]))
	}
}
