// Package importer orchestrates one file's import run: read the workbook,
// classify and melt every sheet, derive load plans, and persist them.
//
// Failure isolation is per table: one plan failing to persist is recorded in
// the Result and its siblings still load. The only hard error is an
// unreadable source file.
package importer

import (
	"context"
	"fmt"
	"log"
	"time"

	"autoimport/internal/classify"
	"autoimport/internal/extract"
	"autoimport/internal/metrics"
	"autoimport/internal/plan"
	"autoimport/internal/sheet"
	"autoimport/internal/storage"
)

// Logger is the minimal logging interface used by the importer.
// *log.Logger satisfies this interface.
type Logger interface {
	Printf(format string, v ...any)
}

// ReadFn is a seam for providing raw sheets. Unit tests inject deterministic
// sheets without file I/O; production uses sheet.Read.
type ReadFn func(path string) ([]sheet.RawSheet, error)

// previewRows caps how many rows of the first table a Result carries.
const previewRows = 10

// Importer runs the read-classify-extract-plan-persist pipeline for files.
type Importer struct {
	Repo    storage.Repository
	Planner *plan.Planner
	Logger  Logger
	Metrics metrics.Backend

	// BackendKind tags table metrics (e.g. "postgres"). Informational only.
	BackendKind string

	// Read is an optional seam; when nil, sheet.Read is used.
	Read ReadFn

	// Now is a clock seam for CreatedAt stamps and date defaulting.
	Now func() time.Time

	// ForceDate and ForceType override file-name derivation when set.
	ForceDate *time.Time
	ForceType string
}

// TableResult reports one persisted (or failed) destination table.
type TableResult struct {
	Name string
	Rows int64
	Err  error
}

// Preview is the first rows of the first planned table, for operator
// inspection and dry runs.
type Preview struct {
	Table   string
	Columns []string
	Rows    [][]any
}

// Result summarizes one import run.
type Result struct {
	// Success is true when every planned table persisted without error.
	Success bool

	File    string
	Context FileContext

	Tables  []TableResult
	Records int
	Dropped int
	Preview Preview

	// Plans are the derived load plans, retained for dry runs and rendering.
	Plans []storage.TablePlan
}

// Run imports one file.
//
// Errors:
//   - Returns a non-nil error only when the file cannot be read at all; no
//     plans are produced in that case.
//   - Per-table persistence failures land in Result.Tables[i].Err and flip
//     Result.Success to false.
func (im *Importer) Run(ctx context.Context, filePath string) (Result, error) {
	logf := im.logger()
	mb := im.metrics()

	fc := DeriveContext(filePath, im.Now)
	if im.ForceDate != nil {
		fc.Date = *im.ForceDate
		fc.DateFromName = true
	}
	if im.ForceType != "" {
		fc.Type = im.ForceType
	}
	if !fc.DateFromName {
		logf("stage=context warn=no_date_in_filename file=%s default=%s", filePath, fc.Date.Format("2006-01-02"))
	}

	res := Result{File: filePath, Context: fc}

	// Read.
	readStart := time.Now()
	sheets, err := im.read(filePath)
	if err != nil {
		mb.ObserveHistogram(metrics.ImportStageSeconds, time.Since(readStart).Seconds(), metrics.Labels{"stage": "read", "status": "error"})
		return res, fmt.Errorf("importer: read %s: %w", filePath, err)
	}
	mb.ObserveHistogram(metrics.ImportStageSeconds, time.Since(readStart).Seconds(), metrics.Labels{"stage": "read", "status": "ok"})
	mb.IncCounter(metrics.ImportFilesTotal, 1, nil)
	logf("stage=read ok sheets=%d duration=%s", len(sheets), durMS(readStart))

	// Classify and extract, sheet by sheet.
	extractStart := time.Now()
	ectx := extract.Context{Date: fc.Date, Type: fc.Type, Now: im.Now}

	groups := make([]plan.SheetGroup, 0, len(sheets))
	for _, s := range sheets {
		st := classify.Classify(s)
		recs, dropped := extract.Sheet(s, st, ectx)

		res.Records += len(recs)
		res.Dropped += dropped
		mb.IncCounter(metrics.ImportRecordsTotal, float64(len(recs)), metrics.Labels{"pattern": string(st.Pattern)})
		if dropped > 0 {
			mb.IncCounter(metrics.ImportDroppedTotal, float64(dropped), metrics.Labels{"pattern": string(st.Pattern)})
			logf("stage=extract sheet=%s pattern=%s records=%d dropped=%d", s.Name, st.Pattern, len(recs), dropped)
		}

		groups = append(groups, plan.SheetGroup{SheetName: s.Name, Structure: st, Records: recs})
	}
	mb.ObserveHistogram(metrics.ImportStageSeconds, time.Since(extractStart).Seconds(), metrics.Labels{"stage": "extract", "status": "ok"})
	logf("stage=extract ok records=%d dropped=%d duration=%s", res.Records, res.Dropped, durMS(extractStart))

	// Plan.
	planStart := time.Now()
	res.Plans = im.Planner.Plan(filePath, groups)
	mb.ObserveHistogram(metrics.ImportStageSeconds, time.Since(planStart).Seconds(), metrics.Labels{"stage": "plan", "status": "ok"})
	logf("stage=plan ok tables=%d duration=%s", len(res.Plans), durMS(planStart))

	res.Preview = buildPreview(res.Plans)

	// Persist. A nil Repo means dry run: plans are derived but not executed.
	if im.Repo == nil {
		res.Success = true
		return res, nil
	}

	persistStart := time.Now()
	ok := true
	for _, tp := range res.Plans {
		tr := im.persistPlan(ctx, tp, fc.Date)
		if tr.Err != nil {
			ok = false
			logf("stage=persist table=%s status=error err=%v", tp.Name, tr.Err)
			mb.IncCounter(metrics.ImportTablesTotal, 1, metrics.Labels{"backend": im.BackendKind, "status": "error"})
		} else {
			logf("stage=persist table=%s status=ok rows=%d", tp.Name, tr.Rows)
			mb.IncCounter(metrics.ImportTablesTotal, 1, metrics.Labels{"backend": im.BackendKind, "status": "ok"})
		}
		res.Tables = append(res.Tables, tr)
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	mb.ObserveHistogram(metrics.ImportStageSeconds, time.Since(persistStart).Seconds(), metrics.Labels{"stage": "persist", "status": status})
	logf("stage=persist %s tables=%d duration=%s", status, len(res.Tables), durMS(persistStart))

	res.Success = ok
	return res, nil
}

// persistPlan loads one table plan: ensure the table exists, then replace the
// run date's partition with the plan's rows.
func (im *Importer) persistPlan(ctx context.Context, tp storage.TablePlan, date time.Time) TableResult {
	tr := TableResult{Name: tp.Name}

	if err := im.Repo.EnsureTable(ctx, tp); err != nil {
		tr.Err = fmt.Errorf("ensure table %s: %w", tp.Name, err)
		return tr
	}

	n, err := im.Repo.ReplaceDate(ctx, tp, date)
	if err != nil {
		tr.Err = fmt.Errorf("load table %s: %w", tp.Name, err)
		return tr
	}
	tr.Rows = n
	return tr
}

func buildPreview(plans []storage.TablePlan) Preview {
	if len(plans) == 0 {
		return Preview{}
	}
	first := plans[0]

	n := len(first.Rows)
	if n > previewRows {
		n = previewRows
	}
	return Preview{
		Table:   first.Name,
		Columns: first.ColumnNames(),
		Rows:    first.Rows[:n],
	}
}

func (im *Importer) read(path string) ([]sheet.RawSheet, error) {
	if im.Read != nil {
		return im.Read(path)
	}
	return sheet.Read(path)
}

func (im *Importer) logger() func(format string, v ...any) {
	if im.Logger == nil {
		l := log.New(discardWriter{}, "", 0)
		return l.Printf
	}
	return im.Logger.Printf
}

func (im *Importer) metrics() metrics.Backend {
	if im.Metrics == nil {
		return metrics.Nop{}
	}
	return im.Metrics
}

func durMS(start time.Time) time.Duration { return time.Since(start).Truncate(time.Millisecond) }

type discardWriter struct{}

func (discardWriter) Write(p []byte) (n int, err error) { return len(p), nil }
