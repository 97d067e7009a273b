package postgresql

import (
	"regexp"
	"strings"
)

var (
	reTypeName  = regexp.MustCompile(`(?i)^\s*([a-z_ ]+?)\s*(\(.*\))?\s*(unsigned)?\s*(zerofill)?\s*$`)
	reIntWidth  = regexp.MustCompile(`^\(\d+\)$`)
	mysqlToPgTy = map[string]string{
		"tinyint":    "smallint",
		"mediumint":  "integer",
		"int":        "integer",
		"datetime":   "timestamp",
		"double":     "double precision",
		"float":      "real",
		"tinytext":   "text",
		"mediumtext": "text",
		"longtext":   "text",
		"tinyblob":   "bytea",
		"blob":       "bytea",
		"mediumblob": "bytea",
		"longblob":   "bytea",
		"binary":     "bytea",
		"varbinary":  "bytea",
		"json":       "jsonb",
	}
)

// Type translates MySQL spellings that PostgreSQL rejects into their
// PostgreSQL equivalents and passes everything else through unchanged.
func Type(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "tinyint(1)") {
		return "boolean"
	}
	m := reTypeName.FindStringSubmatch(raw)
	if m == nil {
		return raw
	}
	base := strings.ToLower(strings.TrimSpace(m[1]))
	args := m[2]
	mapped, ok := mysqlToPgTy[base]
	if !ok {
		if m[3] == "" && m[4] == "" {
			return raw
		}
		mapped = base
	}
	switch {
	case base == "bigint", base == "smallint", base == "integer", mapped == "smallint", mapped == "integer":
		// display widths are meaningless here
		if reIntWidth.MatchString(args) {
			args = ""
		}
	case strings.HasPrefix(mapped, "bytea"), mapped == "text", mapped == "jsonb", mapped == "real", mapped == "double precision":
		args = ""
	}
	return mapped + args
}

// serialType maps an integer type onto its serial pseudo-type.
func serialType(typ string) string {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "bigint", "int8":
		return "bigserial"
	case "smallint", "int2":
		return "smallserial"
	case "integer", "int", "int4":
		return "serial"
	default:
		return typ
	}
}

func isCollatable(typ string) bool {
	lower := strings.ToLower(typ)
	return strings.Contains(lower, "char") || strings.HasPrefix(lower, "text")
}
