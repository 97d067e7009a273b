package postgresql

import (
	"context"
	"database/sql"

	"dbplat/internal/core"
	"dbplat/internal/introspect"
)

// readSequences expects rows of (name, start, increment). Start and
// increment may be NULL on engines that cannot report them in one query.
func readSequences(ctx context.Context, cat *introspect.Catalog, query, schema string) ([]*core.Sequence, error) {
	var seqs []*core.Sequence
	err := cat.Query(ctx, "sequences", schema, query, func(rows *sql.Rows) error {
		var name string
		var start, increment sql.NullInt64
		if err := rows.Scan(&name, &start, &increment); err != nil {
			return err
		}
		seqs = append(seqs, &core.Sequence{
			Name:      name,
			Start:     start.Int64,
			Increment: increment.Int64,
		})
		return nil
	}, schema)
	if err != nil {
		return nil, err
	}
	return seqs, nil
}
