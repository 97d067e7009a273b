package postgresql

import (
	"fmt"
	"strings"

	"dbplat/internal/capability"
	"dbplat/internal/core"
)

func (g *Generator) columnDefinition(c *core.Column, caps capability.Descriptor) string {
	typ := Type(c.TypeRaw)
	parts := []string{g.QuoteIdentifier(c.Name)}

	identity := ""
	switch {
	case c.IsGenerated:
	case c.SequenceName != "" && caps.SequencesSupported():
		identity = fmt.Sprintf("DEFAULT nextval(%s)", g.QuoteString(c.SequenceName))
	case c.AutoIncrement:
		switch caps.IdentityStyle() {
		case capability.IdentitySerial:
			typ = serialType(typ)
		case capability.IdentityGenerated, capability.IdentityAutoIncrement:
			identity = "GENERATED BY DEFAULT AS IDENTITY"
		}
	}
	parts = append(parts, typ)

	// a charset means the collation came from MySQL and has no equivalent here
	if coll := strings.TrimSpace(c.Collate); coll != "" && c.Charset == "" && isCollatable(typ) {
		parts = append(parts, "COLLATE", g.QuoteIdentifier(coll))
	}
	if c.IsGenerated && strings.TrimSpace(c.GenerationExpression) != "" {
		parts = append(parts, fmt.Sprintf("GENERATED ALWAYS AS (%s) STORED", strings.TrimSpace(c.GenerationExpression)))
	}
	if !c.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if identity != "" {
		parts = append(parts, identity)
	} else if c.DefaultValue != nil && !c.IsGenerated && !(c.AutoIncrement && caps.IdentityStyle() == capability.IdentitySerial) {
		parts = append(parts, "DEFAULT", g.formatValue(*c.DefaultValue))
	}
	return strings.Join(parts, " ")
}

func (g *Generator) constraintDefinition(c *core.Constraint) string {
	prefix := ""
	if name := strings.TrimSpace(c.Name); name != "" && !strings.EqualFold(name, "PRIMARY") {
		prefix = "CONSTRAINT " + g.QuoteIdentifier(name) + " "
	}
	switch c.Type {
	case core.ConstraintPrimaryKey:
		return prefix + "PRIMARY KEY " + g.formatColumns(c.Columns)
	case core.ConstraintUnique:
		return prefix + "UNIQUE " + g.formatColumns(c.Columns)
	case core.ConstraintCheck:
		expr := strings.TrimSpace(c.CheckExpression)
		if expr == "" {
			return ""
		}
		return prefix + "CHECK (" + expr + ")"
	default:
		return ""
	}
}

func (g *Generator) foreignKey(table string, c *core.Constraint) string {
	if len(c.Columns) == 0 || strings.TrimSpace(c.ReferencedTable) == "" {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "ALTER TABLE %s ADD ", table)
	if name := strings.TrimSpace(c.Name); name != "" {
		fmt.Fprintf(&sb, "CONSTRAINT %s ", g.QuoteIdentifier(name))
	}
	fmt.Fprintf(&sb, "FOREIGN KEY %s REFERENCES %s %s",
		g.formatColumns(c.Columns), g.QuoteIdentifier(c.ReferencedTable), g.formatColumns(c.ReferencedColumns))
	if del := strings.TrimSpace(string(c.OnDelete)); del != "" {
		sb.WriteString(" ON DELETE " + del)
	}
	if upd := strings.TrimSpace(string(c.OnUpdate)); upd != "" {
		sb.WriteString(" ON UPDATE " + upd)
	}
	sb.WriteString(";")
	return sb.String()
}

var defaultKeywords = map[string]bool{
	"NULL": true, "TRUE": true, "FALSE": true,
	"CURRENT_TIMESTAMP": true, "CURRENT_DATE": true, "CURRENT_TIME": true, "LOCALTIMESTAMP": true,
}

// formatValue keeps keywords, numbers, literals and expressions as written
// and quotes bare words.
func (g *Generator) formatValue(v string) string {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return "''"
	case defaultKeywords[strings.ToUpper(v)]:
		return strings.ToUpper(v)
	case strings.EqualFold(v, "now()"):
		return "now()"
	case isNumber(v):
		return v
	case strings.HasPrefix(v, "'"), strings.ContainsAny(v, "()"), strings.Contains(v, "::"):
		return v
	default:
		return g.QuoteString(v)
	}
}

func isNumber(v string) bool {
	dot := false
	for i, r := range v {
		switch {
		case r >= '0' && r <= '9':
		case r == '-' && i == 0 && len(v) > 1:
		case r == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return true
}
