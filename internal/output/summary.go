package output

import (
	"fmt"
	"strings"

	"dbplat/internal/core"
	"dbplat/internal/detect"
)

type summaryFormatter struct{}

// FormatIdentity prints the identity on one line.
func (summaryFormatter) FormatIdentity(id detect.Identity) (string, error) {
	return id.String() + "\n", nil
}

// FormatPlatforms prints one "name: chain" line per platform.
func (summaryFormatter) FormatPlatforms(infos []PlatformInfo) (string, error) {
	var sb strings.Builder
	for _, info := range infos {
		fmt.Fprintf(&sb, "%s: %s\n", info.Name, strings.Join(info.Chain, " -> "))
	}
	return sb.String(), nil
}

// FormatSchema formats a schema model as a compact summary.
// Example output:
//
//	Tables:      2
//	Columns:     9
//	Constraints: 4
func (summaryFormatter) FormatSchema(db *core.Database) (string, error) {
	if db == nil || (len(db.Tables) == 0 && len(db.Sequences) == 0) {
		return "Empty schema.\n", nil
	}

	s := summarize(db)
	var sb strings.Builder
	sb.WriteString("Schema Summary\n")
	sb.WriteString("==============\n\n")

	fmt.Fprintf(&sb, "Tables:      %d\n", s.Tables)
	fmt.Fprintf(&sb, "Columns:     %d\n", s.Columns)
	fmt.Fprintf(&sb, "Constraints: %d\n", s.Constraints)
	fmt.Fprintf(&sb, "Indexes:     %d\n", s.Indexes)
	fmt.Fprintf(&sb, "Triggers:    %d\n", s.Triggers)
	fmt.Fprintf(&sb, "Sequences:   %d\n", s.Sequences)

	if len(db.Tables) > 0 {
		sb.WriteString("\nDetails:\n")
		for _, t := range db.Tables {
			fmt.Fprintf(&sb, "  %s (%s)\n", t.Name, tableCounts(t))
		}
	}
	return sb.String(), nil
}

func tableCounts(t *core.Table) string {
	parts := []string{fmt.Sprintf("%d cols", len(t.Columns))}
	if n := len(t.Constraints); n > 0 {
		parts = append(parts, fmt.Sprintf("%d constraints", n))
	}
	if n := len(t.Indexes); n > 0 {
		parts = append(parts, fmt.Sprintf("%d idx", n))
	}
	if n := len(t.Triggers); n > 0 {
		parts = append(parts, fmt.Sprintf("%d triggers", n))
	}
	if t.Distribution != nil {
		parts = append(parts, "distributed "+distribution(t.Distribution))
	}
	return strings.Join(parts, ", ")
}

// FormatDDL counts statements by their leading keywords.
func (summaryFormatter) FormatDDL(platform string, statements []string) (string, error) {
	stmts := normalizeStatements(statements)
	if len(stmts) == 0 {
		return fmt.Sprintf("%s: no statements.\n", platform), nil
	}

	var order []string
	counts := map[string]int{}
	for _, stmt := range stmts {
		kind := statementKind(stmt)
		if counts[kind] == 0 {
			order = append(order, kind)
		}
		counts[kind]++
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d statements\n", platform, len(stmts))
	for _, kind := range order {
		fmt.Fprintf(&sb, "  %-16s %d\n", kind, counts[kind])
	}
	return sb.String(), nil
}

// statementKind returns the first two keywords, or "CREATE UNIQUE INDEX"
// style three for unique indexes.
func statementKind(stmt string) string {
	fields := strings.Fields(strings.ToUpper(stmt))
	switch {
	case len(fields) >= 3 && fields[1] == "UNIQUE":
		return strings.Join(fields[:3], " ")
	case len(fields) >= 2:
		return fields[0] + " " + fields[1]
	default:
		return strings.TrimSuffix(strings.Join(fields, " "), ";")
	}
}
