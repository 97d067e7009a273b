package mysql

import (
	"context"
	"database/sql"
	"strings"

	"dbplat/internal/core"
	"dbplat/internal/introspect"
)

// ConstraintsQuery reads primary and foreign keys, one row per key column.
// Unique keys are indexes in MySQL and come back from IndexesQuery.
const ConstraintsQuery = `
	SELECT
		k.constraint_name,
		tc.constraint_type,
		k.column_name,
		COALESCE(k.referenced_table_name, ''),
		COALESCE(k.referenced_column_name, ''),
		COALESCE(rc.delete_rule, ''),
		COALESCE(rc.update_rule, '')
	FROM information_schema.key_column_usage k
	JOIN information_schema.table_constraints tc
		ON tc.constraint_schema = k.constraint_schema
		AND tc.table_name = k.table_name
		AND tc.constraint_name = k.constraint_name
	LEFT JOIN information_schema.referential_constraints rc
		ON rc.constraint_schema = k.constraint_schema
		AND rc.table_name = k.table_name
		AND rc.constraint_name = k.constraint_name
	WHERE k.table_schema = DATABASE() AND k.table_name = ?
		AND tc.constraint_type IN ('PRIMARY KEY', 'FOREIGN KEY')
	ORDER BY k.constraint_name, k.ordinal_position`

func readConstraints(ctx context.Context, cat *introspect.Catalog, t *core.Table) error {
	var last *core.Constraint
	return cat.Query(ctx, "constraints", t.Name, ConstraintsQuery, func(rows *sql.Rows) error {
		var name, kind, col, refTable, refCol, onDelete, onUpdate string
		if err := rows.Scan(&name, &kind, &col, &refTable, &refCol, &onDelete, &onUpdate); err != nil {
			return err
		}

		// rows arrive grouped by constraint in key order
		if last == nil || last.Name != name {
			last = &core.Constraint{
				Name: name,
				Type: core.ConstraintType(kind),
			}
			if last.Type == core.ConstraintForeignKey {
				last.ReferencedTable = refTable
				last.OnDelete = core.ReferentialAction(strings.ToUpper(onDelete))
				last.OnUpdate = core.ReferentialAction(strings.ToUpper(onUpdate))
			}
			t.Constraints = append(t.Constraints, last)
		}
		last.Columns = append(last.Columns, col)
		if last.Type == core.ConstraintForeignKey {
			last.ReferencedColumns = append(last.ReferencedColumns, refCol)
		}
		return nil
	}, t.Name)
}
