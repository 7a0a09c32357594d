// Package extract melts classified sheets into flat long-form records.
package extract

import (
	"strconv"
	"strings"
	"time"
)

// Value is a cell value after coercion: numeric, textual, or empty.
type Value struct {
	Kind ValueKind
	Num  float64
	Text string
}

type ValueKind int

const (
	Empty ValueKind = iota
	Number
	Text
)

// Num wraps a float as a Value.
func Num(f float64) Value { return Value{Kind: Number, Num: f} }

// Str wraps text as a Value.
func Str(s string) Value { return Value{Kind: Text, Text: s} }

// Any returns the database parameter form of the value.
func (v Value) Any() any {
	switch v.Kind {
	case Number:
		return v.Num
	case Text:
		return v.Text
	default:
		return nil
	}
}

// Attr is one dynamically-keyed attribute of a generic-table record. Order is
// preserved so generated column order follows the source sheet.
type Attr struct {
	Header string
	Value  Value
}

// FlatRecord is the canonical long-form row every extractor produces.
//
// The envelope fields are fixed; Extra carries the open per-header attributes
// of generic-table sheets. Every non-discarded source cell maps to exactly one
// FlatRecord, and empty cells never produce one.
type FlatRecord struct {
	RecordDate  time.Time
	RecordTime  string // "HH:MM" label, empty when the pattern has no intraday axis
	ChannelName string
	Value       Value
	SheetName   string
	Type        string
	CreatedAt   time.Time
	Extra       []Attr
}

// CoerceNumeric applies the shared numeric coercion policy: thousands
// separators are stripped and the remainder float-parsed. The second return
// reports success; callers destined for a DECIMAL column drop the record on
// failure rather than letting a stray string break the column.
func CoerceNumeric(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "，", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseCellDate parses the date formats seen in provider exports.
func parseCellDate(cell string) (time.Time, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{
		"2006-01-02", "2006/01/02", "2006-1-2", "2006/1/2",
		"2006-01-02 15:04:05", "01-02-06", "2006年1月2日",
	} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
