package importer

import (
	"path/filepath"
	"regexp"
	"time"
	"unicode"
)

// DefaultType labels imports whose file name carries no Han-character
// category token.
const DefaultType = "自动导入"

var fileDateRe = regexp.MustCompile(`\d{4}-\d{1,2}-\d{1,2}`)

// FileContext is the per-file import context derived from the file name.
type FileContext struct {
	// Date is the business date the export covers.
	Date time.Time

	// DateFromName reports whether Date was parsed from the file name. When
	// false, Date defaulted to today and the run should warn.
	DateFromName bool

	// Type is the file-level category, e.g. 实时负荷 from
	// 实时负荷_2025-06-28.xlsx.
	Type string
}

// DeriveContext inspects a file name and extracts the import date and
// category.
//
// Rules:
//   - Date: first YYYY-M-D token. Absent or unparsable, today's date is used
//     and DateFromName is false.
//   - Type: the first contiguous run of Han characters, else DefaultType.
func DeriveContext(fileName string, now func() time.Time) FileContext {
	if now == nil {
		now = time.Now
	}
	base := filepath.Base(fileName)

	fc := FileContext{Type: hanRun(base)}
	if fc.Type == "" {
		fc.Type = DefaultType
	}

	if tok := fileDateRe.FindString(base); tok != "" {
		if d, err := time.Parse("2006-1-2", tok); err == nil {
			fc.Date = d
			fc.DateFromName = true
			return fc
		}
	}

	t := now()
	fc.Date = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return fc
}

// hanRun returns the first contiguous run of Han characters in s.
func hanRun(s string) string {
	start := -1
	for i, r := range s {
		if unicode.Is(unicode.Han, r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return s[start:i]
		}
	}
	if start >= 0 {
		return s[start:]
	}
	return ""
}
