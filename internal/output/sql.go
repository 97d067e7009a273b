package output

import (
	"io"
	"strings"
)

// formatScript renders DDL statements as a SQL script with a short header.
func formatScript(platform string, statements []string) string {
	var sb strings.Builder
	sb.WriteString("-- dbplat DDL for " + platform + "\n")

	stmts := normalizeStatements(statements)
	if len(stmts) == 0 {
		sb.WriteString("\n-- No SQL statements generated.\n")
		return sb.String()
	}
	for _, stmt := range stmts {
		sb.WriteString("\n")
		sb.WriteString(stmt)
		sb.WriteString("\n")
	}
	return sb.String()
}

// WriteDDL writes statements for platform to w as a SQL script.
func WriteDDL(w io.Writer, platform string, statements []string) error {
	_, err := io.WriteString(w, formatScript(platform, statements))
	return err
}
