package mysql

import (
	"context"
	"database/sql"
	"strings"

	"dbplat/internal/core"
	"dbplat/internal/introspect"
)

// IndexesQuery lists secondary indexes, one row per key part; the PRIMARY
// index is reported as a constraint instead. Functional key parts have no
// column_name and are skipped.
const IndexesQuery = `
	SELECT
		index_name,
		non_unique,
		index_type,
		index_comment,
		column_name,
		sub_part,
		collation
	FROM information_schema.statistics
	WHERE table_schema = DATABASE() AND table_name = ? AND index_name <> 'PRIMARY'
	ORDER BY index_name, seq_in_index`

func readIndexes(ctx context.Context, cat *introspect.Catalog, t *core.Table) error {
	var last *core.Index
	return cat.Query(ctx, "indexes", t.Name, IndexesQuery, func(rows *sql.Rows) error {
		var indexName, nonUnique, indexType, comment, column, collation sql.NullString
		var subPart sql.NullInt64
		if err := rows.Scan(&indexName, &nonUnique, &indexType, &comment, &column, &subPart, &collation); err != nil {
			return err
		}

		if last == nil || last.Name != indexName.String {
			last = &core.Index{
				Name:    indexName.String,
				Unique:  nonUnique.String == "0",
				Type:    normalizeIndexType(indexType.String),
				Comment: comment.String,
			}
			t.Indexes = append(t.Indexes, last)
		}
		if !column.Valid || column.String == "" {
			return nil
		}
		ic := core.IndexColumn{Name: column.String, Length: int(subPart.Int64)}
		if collation.String == "D" {
			ic.Order = core.SortDesc
		}
		last.Columns = append(last.Columns, ic)
		return nil
	}, t.Name)
}

func normalizeIndexType(t string) core.IndexType {
	switch strings.ToUpper(t) {
	case "HASH":
		return core.IndexTypeHash
	case "FULLTEXT":
		return core.IndexTypeFullText
	case "SPATIAL":
		return core.IndexTypeSpatial
	default:
		return core.IndexTypeBTree
	}
}
