// Package mysql contains the DDL reader for MySQL and the servers that speak
// its protocol (MariaDB, TiDB). Everything is read from information_schema
// for the current DATABASE().
package mysql

import (
	"context"
	"database/sql"
	"log/slog"

	"dbplat/internal/core"
	"dbplat/internal/introspect"
)

// Name is the registry key of this reader.
const Name = "mysql"

func init() {
	introspect.Register(Name, func(logger *slog.Logger) introspect.Reader {
		return New(logger)
	})
}

const DatabaseQuery = `SELECT COALESCE(DATABASE(), ''), VERSION()`

type Reader struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reader{logger: logger}
}

func (r *Reader) Read(ctx context.Context, db *sql.DB) (*core.Database, error) {
	cat := &introspect.Catalog{Dialect: Name, DB: db, Logger: r.logger}

	d := &core.Database{Dialect: core.DialectMySQL}
	if err := cat.QueryRow(ctx, "database", "", DatabaseQuery, []any{&d.Name, &d.Version}); err != nil {
		return nil, err
	}
	d.Version = trimVersion(d.Version)

	tables, err := readTables(ctx, cat, d.Name)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		if err := readColumns(ctx, cat, t); err != nil {
			return nil, err
		}
		if err := readConstraints(ctx, cat, t); err != nil {
			return nil, err
		}
		if err := readIndexes(ctx, cat, t); err != nil {
			return nil, err
		}
	}
	d.Tables = tables

	core.SortTables(d.Tables)
	r.logger.Debug("schema read", "dialect", Name, "database", d.Name, "tables", len(d.Tables))
	return d, nil
}

// trimVersion cuts vendor suffixes such as "-MariaDB" or "-log".
func trimVersion(v string) string {
	for i, c := range v {
		if c == '-' && i > 0 {
			return v[:i]
		}
	}
	return v
}
