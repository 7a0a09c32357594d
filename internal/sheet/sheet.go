// Package sheet reads spreadsheet workbooks into in-memory tabular grids.
//
// Two readers are provided:
//   - ReadWorkbook: xlsx/xlsm via excelize.
//   - readHTMLTables: fallback for provider portals that serve ".xls" files
//     that are really HTML documents with <table> markup.
//
// Read tries excelize first and falls back to the HTML reader; only when both
// fail is the file reported as unreadable.
package sheet

import (
	"strconv"
	"strings"

	"autoimport/internal/identifier"
)

// RawSheet is the tabular grid for one workbook tab.
//
// Headers are trimmed and deduplicated at construction; Rows are aligned with
// Headers by index. A RawSheet is read-only after New returns.
type RawSheet struct {
	Name    string
	Headers []string
	Rows    [][]string

	byHeader map[string]int
}

// New builds a RawSheet from a raw cell grid. The first row is treated as the
// header row. Header cells are whitespace-trimmed; blank headers become the
// fallback token and duplicates get a numeric suffix (_1, _2, ...), so header
// lookups stay unambiguous and stable across re-reads.
//
// Rows consisting entirely of empty cells are dropped. Data rows shorter than
// the header row are padded with empty cells; longer rows are truncated.
func New(name string, grid [][]string) RawSheet {
	s := RawSheet{Name: name}
	if len(grid) == 0 {
		return s
	}

	seen := map[string]struct{}{}
	next := map[string]int{}
	for _, h := range grid[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = identifier.Fallback
		}
		// Suffix duplicates until the name is free; a generated name can
		// itself collide with a header appearing later in the row.
		name := h
		for {
			if _, dup := seen[name]; !dup {
				break
			}
			next[h]++
			name = h + "_" + strconv.Itoa(next[h])
		}
		seen[name] = struct{}{}
		s.Headers = append(s.Headers, name)
	}

	for _, raw := range grid[1:] {
		row := make([]string, len(s.Headers))
		empty := true
		for i := range row {
			if i < len(raw) {
				row[i] = strings.TrimSpace(raw[i])
				if row[i] != "" {
					empty = false
				}
			}
		}
		if empty {
			continue
		}
		s.Rows = append(s.Rows, row)
	}

	s.byHeader = make(map[string]int, len(s.Headers))
	for i, h := range s.Headers {
		s.byHeader[h] = i
	}
	return s
}

// Col returns the index of header h, or -1 when absent.
func (s RawSheet) Col(h string) int {
	if i, ok := s.byHeader[h]; ok {
		return i
	}
	return -1
}

// Cell returns the trimmed cell at (row, header index). Out-of-range access
// yields the empty string, which callers treat as a missing value.
func (s RawSheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row]) {
		return ""
	}
	return s.Rows[row][col]
}

