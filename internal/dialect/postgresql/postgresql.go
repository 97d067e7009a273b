// Package postgresql renders DDL for PostgreSQL and its forks. Identity
// columns follow the platform's identity style, and platforms with
// distributed tables (Greenplum) get a DISTRIBUTED clause.
package postgresql

import (
	"fmt"
	"strings"

	"dbplat/internal/capability"
	"dbplat/internal/core"
	"dbplat/internal/dialect"
)

// Name is the registry key of this generator.
const Name = "postgresql"

func init() {
	dialect.Register(Name, func() dialect.Generator {
		return NewGenerator()
	})
}

// Generator is a stateless PostgreSQL DDL generator.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Name() string { return Name }

// GenerateCreateTable returns CREATE TABLE followed by any COMMENT ON
// statements, and the foreign keys as separate ALTER TABLE statements.
func (g *Generator) GenerateCreateTable(t *core.Table, caps capability.Descriptor) (string, []string) {
	name := g.QuoteIdentifier(t.Name)

	var lines []string
	for _, c := range t.Columns {
		if c == nil {
			continue
		}
		lines = append(lines, "  "+g.columnDefinition(c, caps))
	}

	var fks []*core.Constraint
	for _, c := range t.Constraints {
		if c == nil {
			continue
		}
		if c.Type == core.ConstraintForeignKey {
			fks = append(fks, c)
			continue
		}
		if line := g.constraintDefinition(c); line != "" {
			lines = append(lines, "  "+line)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE TABLE %s (\n%s\n)", name, strings.Join(lines, ",\n"))
	if caps.DistributedTables() {
		sb.WriteString(g.distributionClause(t.Distribution))
	}
	sb.WriteString(";")

	if cmt := strings.TrimSpace(t.Comment); cmt != "" {
		fmt.Fprintf(&sb, "\nCOMMENT ON TABLE %s IS %s;", name, g.QuoteString(cmt))
	}
	for _, c := range t.Columns {
		if c == nil || strings.TrimSpace(c.Comment) == "" {
			continue
		}
		fmt.Fprintf(&sb, "\nCOMMENT ON COLUMN %s.%s IS %s;", name, g.QuoteIdentifier(c.Name), g.QuoteString(strings.TrimSpace(c.Comment)))
	}

	var fkStmts []string
	for _, fk := range fks {
		if stmt := g.foreignKey(name, fk); stmt != "" {
			fkStmts = append(fkStmts, stmt)
		}
	}
	return sb.String(), fkStmts
}

// GenerateCreateIndex generates a standalone CREATE INDEX statement. Access
// methods other than btree are spelled out with USING.
func (g *Generator) GenerateCreateIndex(table string, idx *core.Index) string {
	if idx == nil || strings.TrimSpace(idx.Name) == "" {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("CREATE ")
	if idx.Unique {
		sb.WriteString("UNIQUE ")
	}
	fmt.Fprintf(&sb, "INDEX %s ON %s", g.QuoteIdentifier(idx.Name), g.QuoteIdentifier(table))
	if method := accessMethod(idx.Type); method != "" {
		sb.WriteString(" USING ")
		sb.WriteString(method)
	}
	sb.WriteString(" (")
	for i, c := range idx.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(g.indexKey(c.Name))
		if c.Order == core.SortDesc {
			sb.WriteString(" DESC")
		}
	}
	sb.WriteString(");")
	return sb.String()
}

// GenerateCreateSequence generates CREATE SEQUENCE. A zero start or
// increment is left to the server default.
func (g *Generator) GenerateCreateSequence(seq *core.Sequence) string {
	var sb strings.Builder
	sb.WriteString("CREATE SEQUENCE ")
	sb.WriteString(g.QuoteIdentifier(seq.Name))
	if seq.Increment != 0 {
		fmt.Fprintf(&sb, " INCREMENT BY %d", seq.Increment)
	}
	if seq.Start != 0 {
		fmt.Fprintf(&sb, " START WITH %d", seq.Start)
	}
	sb.WriteString(";")
	return sb.String()
}

// QuoteIdentifier wraps name in double quotes, doubling embedded ones.
func (g *Generator) QuoteIdentifier(name string) string {
	name = strings.TrimSpace(name)
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteString quotes value as a standard-conforming string literal. Values
// containing a NUL byte cannot be represented and have it removed.
func (g *Generator) QuoteString(value string) string {
	value = strings.ReplaceAll(value, "\x00", "")
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func (g *Generator) distributionClause(d *core.Distribution) string {
	switch {
	case d == nil:
		return ""
	case d.Replicated:
		return " DISTRIBUTED REPLICATED"
	case d.Random:
		return " DISTRIBUTED RANDOMLY"
	case len(d.Columns) > 0:
		return " DISTRIBUTED BY " + g.formatColumns(d.Columns)
	default:
		return ""
	}
}

func accessMethod(t core.IndexType) string {
	switch t {
	case core.IndexTypeHash:
		return "hash"
	case core.IndexTypeGIN:
		return "gin"
	case core.IndexTypeGiST:
		return "gist"
	case core.IndexTypeBitmap:
		return "bitmap"
	default:
		return ""
	}
}

// indexKey quotes plain column names and leaves expressions as written.
func (g *Generator) indexKey(key string) string {
	key = strings.TrimSpace(key)
	if strings.ContainsAny(key, "()") {
		return key
	}
	return g.QuoteIdentifier(key)
}

func (g *Generator) formatColumns(cols []string) string {
	quoted := make([]string, 0, len(cols))
	for _, c := range cols {
		if c = strings.TrimSpace(c); c != "" {
			quoted = append(quoted, g.QuoteIdentifier(c))
		}
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}
