// Package plan derives table shapes and idempotent load plans from extracted
// records.
//
// The planner produces storage.TablePlan values: executable data, not
// generated source. Backends render the statements; Render produces the
// human-readable "what would be generated" preview for operators.
package plan

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"autoimport/internal/classify"
	"autoimport/internal/extract"
	"autoimport/internal/identifier"
	"autoimport/internal/storage"
)

// SheetGroup is one sheet's extraction output, grouped by the importer.
type SheetGroup struct {
	SheetName string
	Structure classify.Structure
	Records   []extract.FlatRecord
}

// Planner derives per-file load plans. The Translator is shared, immutable
// state; a zero Planner is not usable, construct with New.
type Planner struct {
	tr *identifier.Translator
}

func New(tr *identifier.Translator) *Planner {
	return &Planner{tr: tr}
}

// reservedColumns are the fixed envelope identifiers dynamic columns must
// never collide with.
var reservedColumns = []string{
	"id", "record_date", "record_time", "channel_name", "value",
	"sheet_name", "type", "created_at",
}

var (
	dateTokenRe      = regexp.MustCompile(`\d{4}[-_/]?\d{1,2}[-_/]?\d{1,2}`)
	parenDateTokenRe = regexp.MustCompile(`[(（]\d{4}[-_/]?\d{1,2}[-_/]?\d{1,2}[)）]`)
	edgeSeparatorsRe = regexp.MustCompile(`^[-_（()）\s]+|[-_（()）\s]+$`)
	fileExtensionsRe = regexp.MustCompile(`(?i)\.(xlsx|xlsm|xls|csv)$`)
)

// BaseName derives the stable table-name root for a file: path and extension
// stripped, embedded date tokens removed so recurring daily exports collapse
// to one identity ("Report_2025-06-28" and "Report_2025-07-01" both become
// "report"). Files whose name is nothing but a date fall back to "generic".
//
// The stripped base goes through the Translator so dictionary report names
// land on their English identifiers. A base the dictionary cannot resolve,
// and that sanitizes down to the shared fallback token, gets a hash-derived
// identity instead; two unrelated Chinese file names must never collide on
// one table.
func (p *Planner) BaseName(fileName string) string {
	name := fileName
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = fileExtensionsRe.ReplaceAllString(name, "")
	name = dateTokenRe.ReplaceAllString(name, "")
	name = edgeSeparatorsRe.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	if name == "" {
		return "generic"
	}
	base := identifier.Sanitize(p.tr.Translate(name))
	if base == identifier.Fallback && !strings.EqualFold(name, identifier.Fallback) {
		base = hashName(name)
	}
	return base
}

// hashName gives an untranslatable name a deterministic identifier, e.g.
// "t_4cd8ba41".
func hashName(name string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return fmt.Sprintf("t_%08x", h.Sum32())
}

// sheetBaseName strips date tokens (parenthesized or bare) from a sheet name,
// e.g. "Info(2025-12-23)" -> "Info".
func sheetBaseName(sheetName string) string {
	s := parenDateTokenRe.ReplaceAllString(sheetName, "")
	s = dateTokenRe.ReplaceAllString(s, "")
	return strings.TrimSpace(edgeSeparatorsRe.ReplaceAllString(s, ""))
}

// Plan derives the load plans for one file.
//
// Matrix and standard-list sheets share one canonical long-form table named
// after the file base; each generic sheet gets its own "{base}_{sheet base}"
// table ("{base}_data" when the sheet base collapses to empty or duplicates
// the file base). Table names are unique within the file; duplicates get
// numeric suffixes.
//
// The returned plans carry their bound insert rows; executing a plan must not
// require revisiting the source sheets.
func (p *Planner) Plan(fileName string, groups []SheetGroup) []storage.TablePlan {
	base := p.BaseName(fileName)

	var plans []storage.TablePlan
	usedTables := map[string]struct{}{}

	var longRecords []extract.FlatRecord
	for _, g := range groups {
		if g.Structure.Pattern != classify.GenericTable {
			longRecords = append(longRecords, g.Records...)
		}
	}
	if len(longRecords) > 0 {
		plans = append(plans, p.longFormPlan(base, usedTables, longRecords))
	}

	for _, g := range groups {
		if g.Structure.Pattern != classify.GenericTable || len(g.Records) == 0 {
			continue
		}
		plans = append(plans, p.genericPlan(base, g, usedTables))
	}
	return plans
}

// longFormPlan targets the canonical melted table shared by all matrix and
// standard-list sheets of the file.
func (p *Planner) longFormPlan(base string, usedTables map[string]struct{}, recs []extract.FlatRecord) storage.TablePlan {
	tp := storage.TablePlan{
		Name:       identifier.SanitizeUnique(base, usedTables),
		PrimaryKey: "id",
		DateColumn: "record_date",
		Columns: []storage.ColumnPlan{
			{Name: "record_date", Type: storage.TypeDate},
			{Name: "record_time", Type: storage.TypeTime},
			{Name: "channel_name", Type: storage.TypeVarchar},
			{Name: "value", Type: storage.TypeDecimal},
			{Name: "sheet_name", Type: storage.TypeVarchar},
			{Name: "type", Type: storage.TypeShortText},
			{Name: "created_at", Type: storage.TypeTimestamp},
		},
	}

	seenDates := map[string]struct{}{}
	for _, r := range recs {
		var recTime any
		if r.RecordTime != "" {
			recTime = r.RecordTime
		}
		tp.Rows = append(tp.Rows, []any{
			r.RecordDate, recTime, r.ChannelName, r.Value.Any(),
			r.SheetName, r.Type, r.CreatedAt,
		})
		k := r.RecordDate.Format("2006-01-02")
		if _, dup := seenDates[k]; !dup {
			seenDates[k] = struct{}{}
			tp.Dates = append(tp.Dates, r.RecordDate)
		}
	}
	return tp
}

// genericPlan targets a per-sheet table with one TEXT column per distinct
// source header observed in the sheet's records.
func (p *Planner) genericPlan(base string, g SheetGroup, usedTables map[string]struct{}) storage.TablePlan {
	name := base + "_data"
	if raw := sheetBaseName(g.SheetName); raw != "" {
		sheetBase := identifier.Sanitize(p.tr.Translate(raw))
		// A sheet base that sanitized down to the fallback token, or that
		// duplicates the file base, adds nothing to the table identity. A
		// sheet literally named after the fallback token keeps it; the name
		// is faithful there, not collapsed.
		faithful := sheetBase != identifier.Fallback || strings.EqualFold(raw, identifier.Fallback)
		if faithful && sheetBase != base {
			name = base + "_" + sheetBase
		}
	}

	tp := storage.TablePlan{
		Name:       identifier.SanitizeUnique(name, usedTables),
		PrimaryKey: "id",
		DateColumn: "record_date",
		Columns: []storage.ColumnPlan{
			{Name: "record_date", Type: storage.TypeDate},
			{Name: "sheet_name", Type: storage.TypeVarchar},
			{Name: "type", Type: storage.TypeShortText},
			{Name: "created_at", Type: storage.TypeTimestamp},
		},
	}

	// Union of headers across records, first-seen order, translated and
	// sanitized into unique identifiers. The used-set is pre-seeded with the
	// reserved envelope so a header like 时间 (-> record_time) cannot shadow a
	// fixed column.
	usedCols := map[string]struct{}{}
	for _, r := range reservedColumns {
		usedCols[r] = struct{}{}
	}

	colByHeader := map[string]string{}
	for _, rec := range g.Records {
		for _, a := range rec.Extra {
			if _, seen := colByHeader[a.Header]; seen {
				continue
			}
			id := identifier.SanitizeUnique(p.tr.Translate(a.Header), usedCols)
			colByHeader[a.Header] = id
			tp.Columns = append(tp.Columns, storage.ColumnPlan{
				Name:   id,
				Type:   storage.TypeText,
				Origin: a.Header,
			})
		}
	}

	colIndex := make(map[string]int, len(tp.Columns))
	for i, c := range tp.Columns {
		colIndex[c.Name] = i
	}

	seenDates := map[string]struct{}{}
	for _, rec := range g.Records {
		k := rec.RecordDate.Format("2006-01-02")
		if _, dup := seenDates[k]; !dup {
			seenDates[k] = struct{}{}
			tp.Dates = append(tp.Dates, rec.RecordDate)
		}
		row := make([]any, len(tp.Columns))
		row[colIndex["record_date"]] = rec.RecordDate
		row[colIndex["sheet_name"]] = rec.SheetName
		row[colIndex["type"]] = rec.Type
		row[colIndex["created_at"]] = rec.CreatedAt
		for _, a := range rec.Extra {
			id, ok := colByHeader[a.Header]
			if !ok {
				// Cannot happen given the union above; dropped defensively
				// rather than inventing a column at insert time.
				continue
			}
			row[colIndex[id]] = a.Value.Any()
		}
		tp.Rows = append(tp.Rows, row)
	}

	return tp
}
