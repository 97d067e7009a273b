package introspect

import (
	"context"
	"database/sql"
	"log/slog"

	"dbplat/internal/dberr"
)

// Catalog runs named catalog queries for one dialect. Every failure,
// including a scan or iteration error, comes back as a
// *dberr.IntrospectionError carrying the query name and the object it ran
// against.
type Catalog struct {
	Dialect string
	DB      *sql.DB
	Logger  *slog.Logger
}

// Query runs sqlText and calls scan once per row.
func (c *Catalog) Query(ctx context.Context, name, object, sqlText string, scan func(*sql.Rows) error, args ...any) error {
	if err := ctx.Err(); err != nil {
		return dberr.Introspection(c.Dialect, name, sqlText, object, err)
	}
	if c.Logger != nil {
		c.Logger.Debug("catalog query", "dialect", c.Dialect, "query", name, "object", object)
	}

	rows, err := c.DB.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return dberr.Introspection(c.Dialect, name, sqlText, object, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return dberr.Introspection(c.Dialect, name, sqlText, object, err)
		}
	}
	if err := rows.Err(); err != nil {
		return dberr.Introspection(c.Dialect, name, sqlText, object, err)
	}
	return nil
}

// QueryRow runs sqlText and scans exactly one row into dest. A query that
// returns no row is a failure.
func (c *Catalog) QueryRow(ctx context.Context, name, object, sqlText string, dest []any, args ...any) error {
	if err := ctx.Err(); err != nil {
		return dberr.Introspection(c.Dialect, name, sqlText, object, err)
	}
	if c.Logger != nil {
		c.Logger.Debug("catalog query", "dialect", c.Dialect, "query", name, "object", object)
	}
	if err := c.DB.QueryRowContext(ctx, sqlText, args...).Scan(dest...); err != nil {
		return dberr.Introspection(c.Dialect, name, sqlText, object, err)
	}
	return nil
}
