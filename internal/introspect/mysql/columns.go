package mysql

import (
	"context"
	"database/sql"
	"strings"

	"dbplat/internal/core"
	"dbplat/internal/introspect"
)

const ColumnsQuery = `
	SELECT
		c.column_name,
		c.ordinal_position,
		c.column_type,
		c.column_comment,
		c.is_nullable,
		c.column_default,
		c.extra,
		c.character_set_name,
		c.collation_name,
		c.column_key,
		c.generation_expression
	FROM information_schema.columns c
	WHERE c.table_schema = DATABASE() AND c.table_name = ?
	ORDER BY c.ordinal_position`

func readColumns(ctx context.Context, cat *introspect.Catalog, t *core.Table) error {
	return cat.Query(ctx, "columns", t.Name, ColumnsQuery, func(rows *sql.Rows) error {
		var position int
		var name, colType, comment, nullable, defaultVal, extra, charset, collation, colKey, genExpr sql.NullString
		if err := rows.Scan(&name, &position, &colType, &comment, &nullable, &defaultVal, &extra, &charset, &collation, &colKey, &genExpr); err != nil {
			return err
		}

		col := &core.Column{
			Name:          name.String,
			Position:      position,
			TypeRaw:       colType.String,
			Type:          core.NormalizeDataType(colType.String),
			Nullable:      nullable.String == "YES",
			PrimaryKey:    colKey.String == "PRI",
			AutoIncrement: strings.Contains(strings.ToLower(extra.String), "auto_increment"),
			Comment:       comment.String,
			Charset:       charset.String,
			Collate:       collation.String,
		}

		if genExpr.String != "" {
			col.IsGenerated = true
			col.GenerationExpression = genExpr.String
			col.GenerationStorage = core.GenerationVirtual
			if strings.Contains(strings.ToUpper(extra.String), "STORED") {
				col.GenerationStorage = core.GenerationStored
			}
		} else if defaultVal.Valid {
			col.DefaultValue = &defaultVal.String
		}

		t.Columns = append(t.Columns, col)
		return nil
	}, t.Name)
}
