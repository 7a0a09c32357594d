package extract

import (
	"time"

	"autoimport/internal/classify"
	"autoimport/internal/sheet"
)

// Context is the file-level import context supplied by the caller: the date
// the export covers and the file-level category. The extractors consume it
// but never derive it.
type Context struct {
	Date time.Time
	Type string

	// Now is a clock seam for CreatedAt stamps. Defaults to time.Now.
	Now func() time.Time
}

func (c Context) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// DefaultChannel labels standard-list rows that carry no category cell.
const DefaultChannel = "Default"

// Sheet melts one classified sheet into flat records.
//
// dropped counts records discarded by numeric coercion (matrix and
// standard-list values target a DECIMAL column; generic-table cells keep their
// text). A non-zero drop count is reported, never hidden, and never aborts the
// sheet.
func Sheet(s sheet.RawSheet, st classify.Structure, ctx Context) (records []FlatRecord, dropped int) {
	switch st.Pattern {
	case classify.TimeSeriesMatrix:
		return matrix(s, st, ctx)
	case classify.StandardList:
		return standardList(s, st, ctx)
	default:
		return generic(s, ctx), 0
	}
}

// matrix emits one record per non-empty (row, time-column) cell. The entity
// column supplies the channel name; rows without one fall back to "Unknown".
func matrix(s sheet.RawSheet, st classify.Structure, ctx Context) ([]FlatRecord, int) {
	entityIdx := s.Col(st.EntityCol)

	var out []FlatRecord
	dropped := 0
	for ri := range s.Rows {
		channel := "Unknown"
		if entityIdx >= 0 {
			if v := s.Cell(ri, entityIdx); v != "" {
				channel = v
			}
		}

		for _, tc := range st.TimeCols {
			cell := s.Cell(ri, s.Col(tc))
			if cell == "" {
				continue
			}
			num, ok := CoerceNumeric(cell)
			if !ok {
				dropped++
				continue
			}
			out = append(out, FlatRecord{
				RecordDate:  ctx.Date,
				RecordTime:  tc,
				ChannelName: channel,
				Value:       Num(num),
				SheetName:   s.Name,
				Type:        ctx.Type,
				CreatedAt:   ctx.now(),
			})
		}
	}
	return out, dropped
}

// standardList emits one record per (row, value column). The row's date cell
// wins when parseable, else the file context date applies. With more than one
// value column the channel is disambiguated as "{channel}-{column}" so
// parallel series from one row do not collide.
func standardList(s sheet.RawSheet, st classify.Structure, ctx Context) ([]FlatRecord, int) {
	dateIdx := s.Col(st.DateCol)
	typeIdx := s.Col(st.TypeCol)

	var out []FlatRecord
	dropped := 0
	for ri := range s.Rows {
		recDate := ctx.Date
		if dateIdx >= 0 {
			if d, ok := parseCellDate(s.Cell(ri, dateIdx)); ok {
				recDate = d
			}
		}

		channel := DefaultChannel
		if typeIdx >= 0 {
			if v := s.Cell(ri, typeIdx); v != "" {
				channel = v
			}
		}

		for _, vc := range st.ValueCols {
			cell := s.Cell(ri, s.Col(vc))
			if cell == "" {
				continue
			}
			num, ok := CoerceNumeric(cell)
			if !ok {
				dropped++
				continue
			}

			finalChannel := channel
			if len(st.ValueCols) > 1 {
				finalChannel = channel + "-" + vc
			}
			out = append(out, FlatRecord{
				RecordDate:  recDate,
				ChannelName: finalChannel,
				Value:       Num(num),
				SheetName:   s.Name,
				Type:        ctx.Type,
				CreatedAt:   ctx.now(),
			})
		}
	}
	return out, dropped
}

// generic emits exactly one record per source row, carrying every non-empty
// cell as an ordered extra attribute. Text is preserved verbatim; the
// destination columns are dynamic TEXT, so no coercion drop applies.
func generic(s sheet.RawSheet, ctx Context) []FlatRecord {
	var out []FlatRecord
	for ri := range s.Rows {
		rec := FlatRecord{
			RecordDate: ctx.Date,
			SheetName:  s.Name,
			Type:       ctx.Type,
			CreatedAt:  ctx.now(),
		}
		for ci, h := range s.Headers {
			cell := s.Cell(ri, ci)
			if cell == "" {
				continue
			}
			rec.Extra = append(rec.Extra, Attr{Header: h, Value: Str(cell)})
		}
		if len(rec.Extra) == 0 {
			continue
		}
		out = append(out, rec)
	}
	return out
}
