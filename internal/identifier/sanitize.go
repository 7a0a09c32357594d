// Package identifier derives safe relational identifiers from arbitrary
// header text.
//
// The package has two layers:
//   - Sanitize/SanitizeUnique: mechanical conversion of any string into a
//     valid, bounded SQL identifier. Never fails; any input coerces to
//     something usable.
//   - Translator: best-effort mapping from provider vocabulary (Chinese
//     power-market headers) to stable English identifier roots, applied
//     before sanitization so generated schemas stay human-legible.
//
// Design constraints:
//   - Output must always match ^[a-zA-Z_][a-zA-Z0-9_]*$ and be <= MaxLen bytes.
//   - Uniqueness within one table is the caller's concern; SanitizeUnique
//     supports it through a shared used-set.
package identifier

import (
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// MaxLen is the identifier length cap, matching common RDBMS limits.
const MaxLen = 64

// Fallback is returned when the input sanitizes down to nothing
// (empty strings, pure punctuation, untranslated non-ASCII text).
const Fallback = "col"

// Sanitize converts arbitrary text into a safe lowercase SQL identifier.
//
// Rules, in order:
//   - full-width punctuation is folded to its narrow form, so （%） and (%)
//     normalize identically
//   - lower-cased; every run outside [a-z0-9] collapses to a single underscore
//   - leading/trailing underscores stripped
//   - empty result becomes Fallback
//   - leading digit gets a "c_" prefix
//   - result truncated to MaxLen bytes
func Sanitize(s string) string {
	s = strings.ToLower(width.Narrow.String(strings.TrimSpace(s)))

	var b strings.Builder
	b.Grow(len(s))

	lastUnderscore := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	out := strings.Trim(b.String(), "_")
	if out == "" {
		return Fallback
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "c_" + out
	}
	if len(out) > MaxLen {
		out = out[:MaxLen]
	}
	return out
}

// SanitizeUnique sanitizes s and guarantees the result is not already present
// in used. On collision a numeric suffix (_1, _2, ...) is appended, and the
// base is re-truncated so the suffixed form still fits MaxLen.
//
// SanitizeUnique records its result into used. Mutating the caller's set is
// intentional: it lets a whole header list be sanitized through one set while
// guaranteeing intra-table uniqueness.
func SanitizeUnique(s string, used map[string]struct{}) string {
	out := Sanitize(s)

	if _, taken := used[out]; taken {
		for n := 1; ; n++ {
			suffix := "_" + strconv.Itoa(n)
			base := out
			if len(base)+len(suffix) > MaxLen {
				base = base[:MaxLen-len(suffix)]
				base = strings.TrimRight(base, "_")
			}
			candidate := base + suffix
			if _, taken := used[candidate]; !taken {
				out = candidate
				break
			}
		}
	}

	used[out] = struct{}{}
	return out
}
