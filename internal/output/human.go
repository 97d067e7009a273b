package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"dbplat/internal/core"
	"dbplat/internal/detect"
)

type humanFormatter struct{}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	return t
}

// FormatIdentity formats a detected identity as aligned key/value lines.
func (humanFormatter) FormatIdentity(id detect.Identity) (string, error) {
	version := id.Version
	if version == "" {
		version = "(unknown)"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Vendor:  %s\n", id.Vendor)
	fmt.Fprintf(&sb, "Version: %s\n", version)
	fmt.Fprintf(&sb, "Family:  %s\n", id.Family)
	return sb.String(), nil
}

// FormatPlatforms renders one row per platform with its resolved flags.
func (humanFormatter) FormatPlatforms(infos []PlatformInfo) (string, error) {
	if len(infos) == 0 {
		return "(no platforms)\n", nil
	}
	t := newTable()
	t.AppendHeader(table.Row{"Platform", "Vendor", "Family", "Chain", "Triggers", "Sequences", "Identity", "Max ident", "Quote", "Tx DDL", "Distributed"})
	for _, info := range infos {
		f := info.Flags
		t.AppendRow(table.Row{
			info.Name,
			info.Vendor,
			info.Family,
			strings.Join(info.Chain, " -> "),
			yesNo(f.TriggersSupported),
			yesNo(f.SequencesSupported),
			string(f.IdentityStyle),
			identLimit(f.MaxIdentifierLength),
			f.IdentifierQuote,
			yesNo(f.TransactionalDDL),
			yesNo(f.DistributedTables),
		})
	}
	return t.Render() + "\n", nil
}

// FormatSchema renders each table as a column grid followed by its keys,
// indexes and triggers.
func (humanFormatter) FormatSchema(db *core.Database) (string, error) {
	if db == nil {
		return "", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Database: %s", db.Name)
	if db.Dialect != "" {
		fmt.Fprintf(&sb, " (%s", db.Dialect)
		if db.Version != "" {
			fmt.Fprintf(&sb, " %s", db.Version)
		}
		sb.WriteString(")")
	}
	sb.WriteString("\n")
	if db.Schema != "" {
		fmt.Fprintf(&sb, "Schema:   %s\n", db.Schema)
	}

	for _, tbl := range db.Tables {
		sb.WriteString("\n")
		writeTable(&sb, tbl)
	}

	if len(db.Sequences) > 0 {
		sb.WriteString("\nSequences:\n")
		for _, seq := range db.Sequences {
			fmt.Fprintf(&sb, "  %s (start %d, increment %d)\n", seq.Name, seq.Start, seq.Increment)
		}
	}
	return sb.String(), nil
}

func writeTable(sb *strings.Builder, tbl *core.Table) {
	fmt.Fprintf(sb, "Table: %s", tbl.Name)
	if tbl.Comment != "" {
		fmt.Fprintf(sb, " -- %s", tbl.Comment)
	}
	sb.WriteString("\n")
	if d := tbl.Distribution; d != nil {
		fmt.Fprintf(sb, "Distribution: %s\n", distribution(d))
	}

	t := newTable()
	t.AppendHeader(table.Row{"#", "Column", "Type", "Nullable", "Default", "Extra"})
	for _, col := range tbl.Columns {
		def := ""
		if col.DefaultValue != nil {
			def = *col.DefaultValue
		}
		t.AppendRow(table.Row{col.Position, col.Name, col.TypeRaw, yesNo(col.Nullable), def, columnExtra(col)})
	}
	sb.WriteString(t.Render())
	sb.WriteString("\n")

	for _, c := range tbl.Constraints {
		fmt.Fprintf(sb, "  %s\n", constraintLine(c))
	}
	for _, idx := range tbl.Indexes {
		fmt.Fprintf(sb, "  %s\n", indexLine(idx))
	}
	for _, tr := range tbl.Triggers {
		fmt.Fprintf(sb, "  TRIGGER %s %s %s\n", tr.Name, tr.Timing, strings.Join(tr.Events, " OR "))
	}
}

func columnExtra(col *core.Column) string {
	var parts []string
	if col.PrimaryKey {
		parts = append(parts, "pk")
	}
	if col.AutoIncrement {
		parts = append(parts, "auto")
	}
	if col.SequenceName != "" {
		parts = append(parts, "seq:"+col.SequenceName)
	}
	if col.IsGenerated {
		parts = append(parts, "generated")
	}
	return strings.Join(parts, ",")
}

func distribution(d *core.Distribution) string {
	switch {
	case d.Replicated:
		return "REPLICATED"
	case d.Random:
		return "RANDOMLY"
	default:
		return "BY (" + strings.Join(d.Columns, ", ") + ")"
	}
}

func constraintLine(c *core.Constraint) string {
	var sb strings.Builder
	sb.WriteString(string(c.Type))
	if c.Name != "" {
		sb.WriteString(" " + c.Name)
	}
	switch c.Type {
	case core.ConstraintCheck:
		sb.WriteString(" (" + c.CheckExpression + ")")
	case core.ConstraintForeignKey:
		fmt.Fprintf(&sb, " (%s) -> %s (%s)", strings.Join(c.Columns, ", "), c.ReferencedTable, strings.Join(c.ReferencedColumns, ", "))
		if c.OnDelete != "" {
			sb.WriteString(" ON DELETE " + string(c.OnDelete))
		}
		if c.OnUpdate != "" {
			sb.WriteString(" ON UPDATE " + string(c.OnUpdate))
		}
	default:
		sb.WriteString(" (" + strings.Join(c.Columns, ", ") + ")")
	}
	return sb.String()
}

func indexLine(idx *core.Index) string {
	kind := "INDEX"
	if idx.Unique {
		kind = "UNIQUE INDEX"
	}
	keys := make([]string, len(idx.Columns))
	for i, ic := range idx.Columns {
		keys[i] = ic.Name
		if ic.Length > 0 {
			keys[i] += "(" + strconv.Itoa(ic.Length) + ")"
		}
		if ic.Order == core.SortDesc {
			keys[i] += " DESC"
		}
	}
	line := fmt.Sprintf("%s %s (%s)", kind, idx.Name, strings.Join(keys, ", "))
	if idx.Type != "" && idx.Type != core.IndexTypeBTree {
		line += " USING " + string(idx.Type)
	}
	return line
}

// FormatDDL prints the statements as a runnable script.
func (humanFormatter) FormatDDL(platform string, statements []string) (string, error) {
	return formatScript(platform, statements), nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func identLimit(n int) string {
	if n == 0 {
		return "unlimited"
	}
	return strconv.Itoa(n)
}
