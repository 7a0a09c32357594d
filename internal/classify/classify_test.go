package classify

import (
	"fmt"
	"reflect"
	"testing"

	"autoimport/internal/sheet"
)

func sheetWithHeaders(headers ...string) sheet.RawSheet {
	return sheet.New("t", [][]string{headers, make([]string, len(headers))})
}

func timeHeaders(n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf("%d:%02d", i/4, (i%4)*15))
	}
	return out
}

// TestClassifyThreshold pins the matrix boundary: strictly more than five
// time-of-day columns.
func TestClassifyThreshold(t *testing.T) {
	t.Parallel()

	six := append([]string{"机组名称"}, timeHeaders(6)...)
	if got := Classify(sheetWithHeaders(six...)); got.Pattern != TimeSeriesMatrix {
		t.Fatalf("6 time cols => %s, want %s", got.Pattern, TimeSeriesMatrix)
	}

	five := append([]string{"机组名称"}, timeHeaders(5)...)
	if got := Classify(sheetWithHeaders(five...)); got.Pattern != GenericTable {
		t.Fatalf("5 time cols => %s, want %s", got.Pattern, GenericTable)
	}
}

func TestClassifyMatrixMetadata(t *testing.T) {
	t.Parallel()

	headers := append([]string{"日期", "机组名称"}, timeHeaders(8)...)
	got := Classify(sheetWithHeaders(headers...))

	if got.Pattern != TimeSeriesMatrix {
		t.Fatalf("pattern = %s", got.Pattern)
	}
	if got.EntityCol != "机组名称" {
		t.Fatalf("entity col = %q, want first non-time non-date column", got.EntityCol)
	}
	if !reflect.DeepEqual(got.TimeCols, timeHeaders(8)) {
		t.Fatalf("time cols = %v", got.TimeCols)
	}
}

func TestClassifyStandardList(t *testing.T) {
	t.Parallel()

	got := Classify(sheetWithHeaders("日期", "类型", "预测值", "实际值"))
	if got.Pattern != StandardList {
		t.Fatalf("pattern = %s, want %s", got.Pattern, StandardList)
	}
	if got.DateCol != "日期" || got.TypeCol != "类型" {
		t.Fatalf("date=%q type=%q", got.DateCol, got.TypeCol)
	}
	if !reflect.DeepEqual(got.ValueCols, []string{"预测值", "实际值"}) {
		t.Fatalf("value cols = %v", got.ValueCols)
	}

	// Channel-name style category also qualifies.
	if got := Classify(sheetWithHeaders("日期", "通道名称", "值")); got.Pattern != StandardList {
		t.Fatalf("channel-name category => %s", got.Pattern)
	}
}

// TestClassifyPrecedence: a sheet carrying both six time columns and a
// date+category pair resolves to the matrix pattern, because the matrix rule
// is checked first.
func TestClassifyPrecedence(t *testing.T) {
	t.Parallel()

	headers := append([]string{"日期", "类型"}, timeHeaders(6)...)
	if got := Classify(sheetWithHeaders(headers...)); got.Pattern != TimeSeriesMatrix {
		t.Fatalf("pattern = %s, want %s", got.Pattern, TimeSeriesMatrix)
	}
}

func TestClassifyGenericFallback(t *testing.T) {
	t.Parallel()

	got := Classify(sheetWithHeaders("设备名称", "电压等级", "备注"))
	if got.Pattern != GenericTable {
		t.Fatalf("pattern = %s, want %s", got.Pattern, GenericTable)
	}
	if !reflect.DeepEqual(got.Columns, []string{"设备名称", "电压等级", "备注"}) {
		t.Fatalf("columns = %v", got.Columns)
	}

	// Date without category is not enough for a standard list.
	if got := Classify(sheetWithHeaders("日期", "值")); got.Pattern != GenericTable {
		t.Fatalf("date-only => %s, want %s", got.Pattern, GenericTable)
	}
}

// TestClassifyDeterminism: classification is a pure function of the headers.
func TestClassifyDeterminism(t *testing.T) {
	t.Parallel()

	s := sheetWithHeaders(append([]string{"日期", "类型"}, timeHeaders(7)...)...)
	first := Classify(s)
	for i := 0; i < 20; i++ {
		if got := Classify(s); !reflect.DeepEqual(got, first) {
			t.Fatalf("iteration %d: %+v != %+v", i, got, first)
		}
	}
}
