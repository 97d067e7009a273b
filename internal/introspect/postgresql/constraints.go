package postgresql

import (
	"context"
	"database/sql"
	"strings"

	"dbplat/internal/core"
	"dbplat/internal/introspect"
)

func readConstraints(ctx context.Context, cat *introspect.Catalog, query string, ref tableRef) error {
	t := ref.table
	return cat.Query(ctx, "constraints", t.Name, query, func(rows *sql.Rows) error {
		var name, kind, cols, refTable, refCols, onDelete, onUpdate, def string
		if err := rows.Scan(&name, &kind, &cols, &refTable, &refCols, &onDelete, &onUpdate, &def); err != nil {
			return err
		}

		c := &core.Constraint{
			Name:    name,
			Columns: splitList(cols),
		}
		switch kind {
		case "p":
			c.Type = core.ConstraintPrimaryKey
		case "u":
			c.Type = core.ConstraintUnique
		case "c":
			c.Type = core.ConstraintCheck
			c.CheckExpression = CheckExpression(def)
		case "f":
			c.Type = core.ConstraintForeignKey
			c.ReferencedTable = refTable
			c.ReferencedColumns = splitList(refCols)
			c.OnDelete = referentialAction(onDelete)
			c.OnUpdate = referentialAction(onUpdate)
		default:
			return nil
		}

		t.Constraints = append(t.Constraints, c)
		return nil
	}, ref.oid)
}

// CheckExpression strips the CHECK keyword and the outer parentheses from a
// pg_get_constraintdef result.
func CheckExpression(def string) string {
	def = strings.TrimSpace(def)
	def = strings.TrimSuffix(def, " NOT VALID")
	if len(def) >= 5 && strings.EqualFold(def[:5], "CHECK") {
		def = strings.TrimSpace(def[5:])
	}
	if strings.HasPrefix(def, "(") && strings.HasSuffix(def, ")") {
		def = def[1 : len(def)-1]
	}
	return strings.TrimSpace(def)
}

func referentialAction(code string) core.ReferentialAction {
	switch code {
	case "c":
		return core.RefActionCascade
	case "r":
		return core.RefActionRestrict
	case "n":
		return core.RefActionSetNull
	case "d":
		return core.RefActionSetDefault
	case "a":
		return core.RefActionNoAction
	default:
		return core.RefActionNone
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
