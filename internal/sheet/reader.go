package sheet

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"
)

// Read loads every tab of the workbook at path.
//
// xlsx/xlsm files go through excelize. Files excelize rejects are retried as
// HTML documents, because several provider portals export ".xls" downloads
// that are actually HTML tables. Only when both readers fail is the file
// considered unreadable; that error is fatal for the file and no sheets are
// returned.
func Read(path string) ([]RawSheet, error) {
	sheets, xlsxErr := readWorkbook(path)
	if xlsxErr == nil {
		return sheets, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	sheets, htmlErr := readHTMLTables(raw)
	if htmlErr == nil && len(sheets) > 0 {
		return sheets, nil
	}
	if htmlErr == nil {
		htmlErr = fmt.Errorf("no <table> elements found")
	}
	return nil, fmt.Errorf("unreadable workbook %s: xlsx: %v; html: %w", path, xlsxErr, htmlErr)
}

func readWorkbook(path string) ([]RawSheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []RawSheet
	for _, name := range f.GetSheetList() {
		grid, err := f.GetRows(name)
		if err != nil {
			// A broken tab should not sink the whole workbook.
			continue
		}
		s := New(name, grid)
		if len(s.Headers) == 0 {
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("workbook %s has no readable sheets", path)
	}
	return out, nil
}

// readHTMLTables parses every <table> in an HTML document into a RawSheet.
// Sheets are named after the table's <caption> when present, else Sheet1,
// Sheet2, ... in document order.
func readHTMLTables(raw []byte) ([]RawSheet, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	var out []RawSheet
	doc.Find("table").Each(func(i int, tbl *goquery.Selection) {
		var grid [][]string
		tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			var row []string
			tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				row = append(row, strings.TrimSpace(cell.Text()))
			})
			if len(row) > 0 {
				grid = append(grid, row)
			}
		})

		name := strings.TrimSpace(tbl.Find("caption").First().Text())
		if name == "" {
			name = "Sheet" + strconv.Itoa(i+1)
		}
		s := New(name, grid)
		if len(s.Headers) > 0 {
			out = append(out, s)
		}
	})
	return out, nil
}
