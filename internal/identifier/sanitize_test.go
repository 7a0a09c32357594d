package identifier

import (
	"regexp"
	"strings"
	"testing"
)

var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// TestSanitize verifies the mechanical identifier rules.
//
// Every output must be a valid SQL identifier regardless of input; the
// fallback token covers inputs that sanitize down to nothing.
func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Power Plant", "power_plant"},
		{"collapse runs", "a -- b..c", "a_b_c"},
		{"trim underscores", "__x__", "x"},
		{"empty", "", "col"},
		{"punctuation only", "(%)", "col"},
		{"full width punctuation only", "（％）", "col"},
		{"leading digit", "95 percentile", "c_95_percentile"},
		{"mixed case", "MaxOutputMW", "maxoutputmw"},
		{"full width folded", "load（MW）", "load_mw"},
		{"chinese drops to fallback", "负荷", "col"},
		{"chinese with ascii tail", "负荷A", "a"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Sanitize(tt.in)
			if got != tt.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if !identRe.MatchString(got) {
				t.Fatalf("Sanitize(%q) = %q is not a valid identifier", tt.in, got)
			}
		})
	}
}

func TestSanitizeTruncates(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("abc_", 40)
	got := Sanitize(long)
	if len(got) > MaxLen {
		t.Fatalf("len = %d, want <= %d", len(got), MaxLen)
	}
	if !identRe.MatchString(got) {
		t.Fatalf("truncated result %q is not a valid identifier", got)
	}
}

// TestSanitizeUnique verifies collision suffixing through a shared used-set:
// no duplicates, valid identifiers, length cap respected even for suffixed
// forms of maximum-length bases.
func TestSanitizeUnique(t *testing.T) {
	t.Parallel()

	used := map[string]struct{}{}
	headers := []string{"Value", "value", "VALUE", "(%)", "%%", "", strings.Repeat("x", 80), strings.Repeat("x", 80)}

	seen := map[string]bool{}
	for _, h := range headers {
		id := SanitizeUnique(h, used)
		if seen[id] {
			t.Fatalf("duplicate identifier %q for header %q", id, h)
		}
		seen[id] = true
		if !identRe.MatchString(id) {
			t.Fatalf("invalid identifier %q for header %q", id, h)
		}
		if len(id) > MaxLen {
			t.Fatalf("identifier %q exceeds %d bytes", id, MaxLen)
		}
	}

	if got := len(used); got != len(headers) {
		t.Fatalf("used-set has %d entries, want %d", got, len(headers))
	}
}

func TestSanitizeUniqueSuffixOrder(t *testing.T) {
	t.Parallel()

	used := map[string]struct{}{}
	if got := SanitizeUnique("value", used); got != "value" {
		t.Fatalf("first = %q, want value", got)
	}
	if got := SanitizeUnique("value", used); got != "value_1" {
		t.Fatalf("second = %q, want value_1", got)
	}
	if got := SanitizeUnique("value", used); got != "value_2" {
		t.Fatalf("third = %q, want value_2", got)
	}
}

func TestSanitizeUniqueRespectsReserved(t *testing.T) {
	t.Parallel()

	used := map[string]struct{}{"type": {}}
	if got := SanitizeUnique("类型", used); got != "col" {
		// 类型 is untranslated here; the raw fallback applies.
		t.Fatalf("got %q, want col", got)
	}
	if got := SanitizeUnique("Type", used); got != "type_1" {
		t.Fatalf("got %q, want type_1", got)
	}
}
