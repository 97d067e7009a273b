package mysql

import (
	"fmt"
	"regexp"
	"strings"

	"dbplat/internal/capability"
	"dbplat/internal/core"
)

func (g *Generator) tableOptions(t *core.Table) string {
	if cmt := strings.TrimSpace(t.Comment); cmt != "" {
		return " COMMENT=" + g.QuoteString(cmt)
	}
	return ""
}

func (g *Generator) columnDefinition(c *core.Column, caps capability.Descriptor) string {
	var parts []string

	parts = append(parts, g.QuoteIdentifier(c.Name), sanitizeMySQLTypeRaw(c.TypeRaw))
	parts = g.addCharsetCollation(parts, c)
	parts = g.addGeneratedColumn(parts, c)
	parts = g.addNullability(parts, c)
	parts = g.addAutoAttributes(parts, c, caps)
	parts = g.addDefault(parts, c)
	if comment := strings.TrimSpace(c.Comment); comment != "" {
		parts = append(parts, "COMMENT", g.QuoteString(comment))
	}

	return strings.Join(parts, " ")
}

func (g *Generator) addGeneratedColumn(parts []string, c *core.Column) []string {
	if !c.IsGenerated {
		return parts
	}
	expr := strings.TrimSpace(c.GenerationExpression)
	if expr == "" {
		return parts
	}
	storage := strings.ToUpper(strings.TrimSpace(string(c.GenerationStorage)))
	if storage == "" {
		storage = string(core.GenerationVirtual)
	}
	return append(parts, fmt.Sprintf("GENERATED ALWAYS AS (%s) %s", expr, storage))
}

func (g *Generator) addNullability(parts []string, c *core.Column) []string {
	if c.Nullable {
		return append(parts, "NULL")
	}
	return append(parts, "NOT NULL")
}

// addAutoAttributes spells AUTO_INCREMENT only for platforms whose identity
// style is auto_increment.
func (g *Generator) addAutoAttributes(parts []string, c *core.Column, caps capability.Descriptor) []string {
	if c.AutoIncrement && caps.IdentityStyle() == capability.IdentityAutoIncrement {
		parts = append(parts, "AUTO_INCREMENT")
	}
	return parts
}

func (g *Generator) addCharsetCollation(parts []string, c *core.Column) []string {
	if !supportsCharsetCollation(c.TypeRaw) {
		return parts
	}
	if cs := strings.TrimSpace(c.Charset); cs != "" {
		parts = append(parts, "CHARACTER SET", cs)
	}
	if coll := strings.TrimSpace(c.Collate); coll != "" {
		parts = append(parts, "COLLATE", coll)
	}
	return parts
}

func (g *Generator) addDefault(parts []string, c *core.Column) []string {
	if c.DefaultValue != nil && !c.IsGenerated {
		parts = append(parts, "DEFAULT", g.formatValue(*c.DefaultValue))
	}
	return parts
}

func (g *Generator) createIndex(table string, idx *core.Index) string {
	if idx == nil {
		return ""
	}
	name := strings.TrimSpace(idx.Name)
	if name == "" {
		return ""
	}

	cols := g.formatIndexColumns(idx.Columns)
	typ := strings.ToUpper(strings.TrimSpace(string(idx.Type)))

	switch {
	case idx.Unique:
		return fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s %s;", g.QuoteIdentifier(name), table, cols)
	case typ == string(core.IndexTypeFullText):
		return fmt.Sprintf("CREATE FULLTEXT INDEX %s ON %s %s;", g.QuoteIdentifier(name), table, cols)
	case typ == string(core.IndexTypeSpatial):
		return fmt.Sprintf("CREATE SPATIAL INDEX %s ON %s %s;", g.QuoteIdentifier(name), table, cols)
	case typ == string(core.IndexTypeHash):
		return fmt.Sprintf("CREATE INDEX %s ON %s %s USING HASH;", g.QuoteIdentifier(name), table, cols)
	default:
		return fmt.Sprintf("CREATE INDEX %s ON %s %s;", g.QuoteIdentifier(name), table, cols)
	}
}

func (g *Generator) constraintDefinition(c *core.Constraint) string {
	cols := g.formatColumns(c.Columns)

	switch c.Type {
	case core.ConstraintPrimaryKey:
		return fmt.Sprintf("PRIMARY KEY %s", cols)
	case core.ConstraintUnique:
		if name := strings.TrimSpace(c.Name); name != "" {
			return fmt.Sprintf("CONSTRAINT %s UNIQUE KEY %s", g.QuoteIdentifier(name), cols)
		}
		return fmt.Sprintf("UNIQUE KEY %s", cols)
	case core.ConstraintCheck:
		expr := strings.TrimSpace(c.CheckExpression)
		if expr == "" {
			return ""
		}
		if name := strings.TrimSpace(c.Name); name != "" {
			return fmt.Sprintf("CONSTRAINT %s CHECK (%s)", g.QuoteIdentifier(name), expr)
		}
		return fmt.Sprintf("CHECK (%s)", expr)
	default:
		return ""
	}
}

func (g *Generator) addForeignKeyConstraint(table string, c *core.Constraint) string {
	if len(c.Columns) == 0 || strings.TrimSpace(c.ReferencedTable) == "" {
		return ""
	}
	var sb strings.Builder
	sb.Grow(128)
	sb.WriteString("ALTER TABLE ")
	sb.WriteString(table)
	sb.WriteString(" ADD ")
	if name := strings.TrimSpace(c.Name); name != "" {
		sb.WriteString("CONSTRAINT ")
		sb.WriteString(g.QuoteIdentifier(name))
		sb.WriteString(" ")
	}
	sb.WriteString("FOREIGN KEY ")
	sb.WriteString(g.formatColumns(c.Columns))
	sb.WriteString(" REFERENCES ")
	sb.WriteString(g.QuoteIdentifier(c.ReferencedTable))
	sb.WriteString(" ")
	sb.WriteString(g.formatColumns(c.ReferencedColumns))
	if del := strings.TrimSpace(string(c.OnDelete)); del != "" {
		sb.WriteString(" ON DELETE ")
		sb.WriteString(del)
	}
	if upd := strings.TrimSpace(string(c.OnUpdate)); upd != "" {
		sb.WriteString(" ON UPDATE ")
		sb.WriteString(upd)
	}
	sb.WriteString(";")
	return sb.String()
}

var reBaseType = regexp.MustCompile(`(?i)^\s*([a-z0-9_]+)\b`)

func supportsCharsetCollation(typeRaw string) bool {
	m := reBaseType.FindStringSubmatch(typeRaw)
	if len(m) < 2 {
		return false
	}
	switch strings.ToLower(m[1]) {
	case "char", "varchar", "tinytext", "text", "mediumtext", "longtext", "enum", "set":
		return true
	default:
		return false
	}
}

// sanitizeMySQLTypeRaw drops the redundant BINARY attribute information_schema
// reports on binary and varbinary columns.
func sanitizeMySQLTypeRaw(typeRaw string) string {
	tr := strings.TrimSpace(typeRaw)
	m := reBaseType.FindStringSubmatch(tr)
	if len(m) < 2 {
		return tr
	}
	base := strings.ToLower(m[1])
	if base == "varbinary" || base == "binary" {
		tokens := strings.Fields(tr)
		if len(tokens) >= 2 && strings.EqualFold(tokens[len(tokens)-1], "BINARY") {
			return strings.Join(tokens[:len(tokens)-1], " ")
		}
	}
	return tr
}
