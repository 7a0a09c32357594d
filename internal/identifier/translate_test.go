package identifier

import "testing"

// TestTranslate verifies the three-step lookup: exact, substring, fallback.
func TestTranslate(t *testing.T) {
	t.Parallel()

	tr := NewTranslator(map[string]string{
		"日期":   "maintenance_date",
		"电厂名称": "power_plant_name",
		"最小技术出力":     "min_technical_output",
		"最小技术出力(MW)": "min_technical_output_mw",
	})

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"exact", "电厂名称", "power_plant_name"},
		{"exact trimmed", "  电厂名称  ", "power_plant_name"},
		{"substring", "检修日期", "maintenance_date"},
		{"longest key wins", "最小技术出力(MW)", "min_technical_output_mw"},
		{"fallback keeps text", "Plant Output", "Plant_Output"},
		{"fallback replaces punctuation", "出率(%)", "出率___"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tr.Translate(tt.header); got != tt.want {
				t.Fatalf("Translate(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

// TestTranslateDeterministic guards against map-iteration nondeterminism in
// the substring scan.
func TestTranslateDeterministic(t *testing.T) {
	t.Parallel()

	tr := NewTranslator(DefaultDictionary())
	first := tr.Translate("2025年机组检修预测信息表")
	for i := 0; i < 50; i++ {
		if got := tr.Translate("2025年机组检修预测信息表"); got != first {
			t.Fatalf("iteration %d: %q != %q", i, got, first)
		}
	}
	if first != "unit_maintenance_prediction" {
		t.Fatalf("got %q, want unit_maintenance_prediction", first)
	}
}

func TestTranslateSanitized(t *testing.T) {
	t.Parallel()

	tr := NewTranslator(DefaultDictionary())
	if got := tr.TranslateSanitized("额定出力(MW)"); got != "rated_output" {
		t.Fatalf("got %q, want rated_output", got)
	}
	// Untranslated Chinese degrades to the fallback identifier rather than failing.
	if got := tr.TranslateSanitized("不存在的列"); got != Fallback {
		t.Fatalf("got %q, want %q", got, Fallback)
	}
}
