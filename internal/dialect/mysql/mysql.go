// Package mysql renders DDL for MySQL and its protocol-compatible forks.
package mysql

import (
	"fmt"
	"strings"

	"dbplat/internal/capability"
	"dbplat/internal/core"
	"dbplat/internal/dialect"
)

// Name is the registry key of this generator.
const Name = "mysql"

func init() {
	dialect.Register(Name, func() dialect.Generator {
		return NewMySQLGenerator()
	})
}

// Generator is a stateless MySQL DDL generator.
type Generator struct{}

// NewMySQLGenerator initializes a new MySQL generator instance.
func NewMySQLGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Name() string { return Name }

// GenerateCreateTable generates the CREATE TABLE statement for t. Indexes are
// left to GenerateCreateIndex and foreign keys are returned separately.
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

	create := fmt.Sprintf("CREATE TABLE %s (\n%s\n)%s;", name, strings.Join(lines, ",\n"), g.tableOptions(t))

	var fkStmts []string
	for _, fk := range fks {
		if stmt := g.addForeignKeyConstraint(name, fk); stmt != "" {
			fkStmts = append(fkStmts, stmt)
		}
	}
	return create, fkStmts
}

// GenerateCreateIndex generates a standalone CREATE INDEX statement.
func (g *Generator) GenerateCreateIndex(table string, idx *core.Index) string {
	return g.createIndex(g.QuoteIdentifier(table), idx)
}

// GenerateCreateSequence generates a MariaDB-style CREATE SEQUENCE statement.
func (g *Generator) GenerateCreateSequence(seq *core.Sequence) string {
	var sb strings.Builder
	sb.WriteString("CREATE SEQUENCE ")
	sb.WriteString(g.QuoteIdentifier(seq.Name))
	if seq.Start != 0 {
		fmt.Fprintf(&sb, " START WITH %d", seq.Start)
	}
	if seq.Increment != 0 {
		fmt.Fprintf(&sb, " INCREMENT BY %d", seq.Increment)
	}
	sb.WriteString(";")
	return sb.String()
}

// QuoteIdentifier wraps name in backticks, doubling embedded ones.
func (g *Generator) QuoteIdentifier(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "`", "``")
	return "`" + name + "`"
}

// QuoteString quotes value as a MySQL string literal.
func (g *Generator) QuoteString(value string) string {
	var b strings.Builder
	b.Grow(len(value) + len(value)/10 + 2)

	b.WriteByte('\'')
	for _, char := range value {
		switch char {
		case '\'':
			b.WriteString("''")
		case '\\':
			b.WriteString(`\\`)
		case '\x00':
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\x1A': // Ctrl+Z
			b.WriteString(`\Z`)
		default:
			b.WriteRune(char)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
