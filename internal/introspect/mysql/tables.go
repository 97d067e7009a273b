package mysql

import (
	"context"
	"database/sql"

	"dbplat/internal/core"
	"dbplat/internal/introspect"
)

const TablesQuery = `
	SELECT table_name, table_comment
	FROM information_schema.tables
	WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
	ORDER BY table_name`

func readTables(ctx context.Context, cat *introspect.Catalog, database string) ([]*core.Table, error) {
	var tables []*core.Table
	err := cat.Query(ctx, "tables", database, TablesQuery, func(rows *sql.Rows) error {
		var name, comment sql.NullString
		if err := rows.Scan(&name, &comment); err != nil {
			return err
		}
		tables = append(tables, &core.Table{
			Name:     name.String,
			Position: len(tables) + 1,
			Comment:  comment.String,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tables, nil
}
