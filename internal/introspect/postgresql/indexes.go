package postgresql

import (
	"context"
	"database/sql"
	"strings"

	"dbplat/internal/core"
	"dbplat/internal/introspect"
)

func readIndexes(ctx context.Context, cat *introspect.Catalog, query string, ref tableRef) error {
	t := ref.table
	return cat.Query(ctx, "indexes", t.Name, query, func(rows *sql.Rows) error {
		var name, method, keys string
		var unique bool
		if err := rows.Scan(&name, &unique, &method, &keys); err != nil {
			return err
		}

		idx := &core.Index{
			Name:   name,
			Unique: unique,
			Type:   IndexType(method),
		}
		for _, key := range splitList(keys) {
			idx.Columns = append(idx.Columns, indexColumn(key))
		}

		t.Indexes = append(t.Indexes, idx)
		return nil
	}, ref.oid)
}

// IndexType maps a pg_am access method name onto core.IndexType.
func IndexType(method string) core.IndexType {
	switch strings.ToLower(method) {
	case "hash":
		return core.IndexTypeHash
	case "gin":
		return core.IndexTypeGIN
	case "gist":
		return core.IndexTypeGiST
	case "bitmap":
		return core.IndexTypeBitmap
	default:
		return core.IndexTypeBTree
	}
}

func indexColumn(key string) core.IndexColumn {
	key = strings.TrimSpace(key)
	if base, ok := strings.CutSuffix(key, " DESC"); ok {
		return core.IndexColumn{Name: strings.Trim(base, `"`), Order: core.SortDesc}
	}
	return core.IndexColumn{Name: strings.Trim(key, `"`)}
}
