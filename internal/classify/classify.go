// Package classify assigns a structural pattern to a sheet's header set.
//
// Classification is a pure function of the headers: the same header list
// always yields the same pattern. Rules are kept as an explicit ordered list
// so precedence and fallbacks stay unit-testable.
package classify

import (
	"regexp"
	"strings"

	"autoimport/internal/sheet"
)

// Pattern tags the structural shape of one sheet. The set is closed; every
// sheet maps to exactly one pattern.
type Pattern string

const (
	// TimeSeriesMatrix is a wide table: one row per entity, one column per
	// intraday time label (96 quarter-hour or 24 hourly columns are typical).
	TimeSeriesMatrix Pattern = "time_series_matrix"
	// StandardList has one row per (date, category) with scalar value columns.
	StandardList Pattern = "standard_list"
	// GenericTable is the universal fallback: every column is an independent
	// attribute mapped verbatim.
	GenericTable Pattern = "generic_table"
)

// timeColThreshold is the matrix cut-off: strictly more than this many
// time-of-day columns classifies the sheet as a matrix.
const timeColThreshold = 5

var timeColRe = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?$`)

// Structure is the classification result plus the pattern-specific metadata
// the extractors need.
type Structure struct {
	Pattern Pattern

	// TimeSeriesMatrix: recognized time-of-day columns in header order, and
	// the column supplying the entity/channel name.
	TimeCols  []string
	EntityCol string

	// StandardList: resolved date and category columns plus the remaining
	// value columns.
	DateCol   string
	TypeCol   string
	ValueCols []string

	// GenericTable: the full column list verbatim.
	Columns []string
}

// Classify inspects a sheet's headers and resolves its structural pattern.
//
// Rules are checked in fixed precedence order, first match wins:
//  1. more than timeColThreshold time-of-day columns -> TimeSeriesMatrix
//  2. a date-like header plus a category-like header -> StandardList
//  3. otherwise -> GenericTable
//
// A sheet with both six time columns and a date+category pair resolves to
// TimeSeriesMatrix: the matrix extraction preserves more information, and the
// ordering makes that policy explicit.
func Classify(s sheet.RawSheet) Structure {
	var timeCols []string
	for _, h := range s.Headers {
		if timeColRe.MatchString(h) {
			timeCols = append(timeCols, h)
		}
	}

	if len(timeCols) > timeColThreshold {
		return Structure{
			Pattern:   TimeSeriesMatrix,
			TimeCols:  timeCols,
			EntityCol: entityColumn(s.Headers, timeCols),
		}
	}

	dateCol, typeCol := listColumns(s.Headers)
	if dateCol != "" && typeCol != "" {
		var valueCols []string
		for _, h := range s.Headers {
			if h != dateCol && h != typeCol {
				valueCols = append(valueCols, h)
			}
		}
		return Structure{
			Pattern:   StandardList,
			DateCol:   dateCol,
			TypeCol:   typeCol,
			ValueCols: valueCols,
		}
	}

	return Structure{
		Pattern: GenericTable,
		Columns: append([]string(nil), s.Headers...),
	}
}

// entityColumn picks the column holding the channel/entity name: the first
// column, left to right, that is neither a time label nor date-like.
//
// NOTE: on sheets with several plausible label columns this heuristic can pick
// an unintended one. The behavior is load-bearing for existing tables, so it
// is preserved as-is rather than second-guessed.
func entityColumn(headers, timeCols []string) string {
	times := make(map[string]struct{}, len(timeCols))
	for _, c := range timeCols {
		times[c] = struct{}{}
	}
	for _, h := range headers {
		if _, isTime := times[h]; isTime {
			continue
		}
		if isDateHeader(h) {
			continue
		}
		return h
	}
	return ""
}

// listColumns resolves the (date, category) pair for StandardList detection.
// Both must be present for the pattern to apply.
func listColumns(headers []string) (dateCol, typeCol string) {
	for _, h := range headers {
		if dateCol == "" && isDateHeader(h) {
			dateCol = h
			continue
		}
		if typeCol == "" && isCategoryHeader(h) {
			typeCol = h
		}
	}
	return dateCol, typeCol
}

func isDateHeader(h string) bool {
	return strings.Contains(h, "日期") || strings.Contains(strings.ToLower(h), "date")
}

func isCategoryHeader(h string) bool {
	if strings.Contains(h, "类型") || strings.Contains(h, "通道名称") {
		return true
	}
	l := strings.ToLower(h)
	return l == "type" || l == "channel" || l == "channel_name"
}
