package plan

import (
	"fmt"
	"strings"

	"autoimport/internal/storage"
)

// Render produces the human-readable preview of what a set of plans will do:
// table shapes with column origins plus the three statement templates. The
// preview is informational (backends render the real, dialect-specific SQL)
// but mirrors their shape closely enough to hand-check a new file format
// before letting it write anywhere.
func Render(plans []storage.TablePlan) string {
	var b strings.Builder
	for i, p := range plans {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "table %s (%d rows)\n", p.Name, len(p.Rows))

		fmt.Fprintf(&b, "  CREATE TABLE IF NOT EXISTS %s (\n", p.Name)
		fmt.Fprintf(&b, "    %s BIGINT AUTO PRIMARY KEY,\n", p.PrimaryKey)
		for _, c := range p.Columns {
			if c.Origin != "" {
				fmt.Fprintf(&b, "    %s %s,  -- %s\n", c.Name, strings.ToUpper(c.Type), c.Origin)
			} else {
				fmt.Fprintf(&b, "    %s %s,\n", c.Name, strings.ToUpper(c.Type))
			}
		}
		b.WriteString("  )\n")

		fmt.Fprintf(&b, "  DELETE FROM %s WHERE %s IN (:dates)\n", p.Name, p.DateColumn)
		fmt.Fprintf(&b, "  INSERT INTO %s (%s) VALUES (...)\n", p.Name, strings.Join(p.ColumnNames(), ", "))
	}
	return b.String()
}
