// Package postgresql reads schema metadata from pg_catalog. It is the
// reference reader for the PostgreSQL family: forks such as Greenplum reuse
// it with substituted catalog queries and extra per-table steps.
package postgresql

import (
	"context"
	"database/sql"
	"log/slog"

	"dbplat/internal/core"
	"dbplat/internal/introspect"
)

// Name is the registry key of this reader.
const Name = "postgresql"

func init() {
	introspect.Register(Name, func(logger *slog.Logger) introspect.Reader {
		return New(WithLogger(logger))
	})
}

// TableStep is an additional catalog query run once per table. The table
// OID is passed as $1.
type TableStep struct {
	Name string
	SQL  string
	Scan func(t *core.Table, rows *sql.Rows) error
}

// Reader introspects one schema of a PostgreSQL-family database.
type Reader struct {
	dialect string
	schema  string
	queries Queries
	forVer  func(version string, q Queries) Queries
	steps   []TableStep
	logger  *slog.Logger
}

type Option func(*Reader)

// WithSchema reads the named schema instead of current_schema().
func WithSchema(schema string) Option {
	return func(r *Reader) { r.schema = schema }
}

// WithDialect sets the dialect reported on the model and in errors.
func WithDialect(dialect string) Option {
	return func(r *Reader) { r.dialect = dialect }
}

// WithQueries replaces the catalog queries.
func WithQueries(q Queries) Option {
	return func(r *Reader) { r.queries = q }
}

// WithVersionQueries lets fn swap the catalog queries once the server
// version is known. Only the Database query runs before fn.
func WithVersionQueries(fn func(version string, q Queries) Queries) Option {
	return func(r *Reader) { r.forVer = fn }
}

// WithTableStep appends a per-table catalog query.
func WithTableStep(step TableStep) Option {
	return func(r *Reader) { r.steps = append(r.steps, step) }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) { r.logger = logger }
}

func New(opts ...Option) *Reader {
	r := &Reader{
		dialect: Name,
		queries: DefaultQueries(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	return r
}

type tableRef struct {
	table *core.Table
	oid   int64
}

// Read returns the schema model or, on any failed catalog query, no model
// and a *dberr.IntrospectionError.
func (r *Reader) Read(ctx context.Context, db *sql.DB) (*core.Database, error) {
	cat := &introspect.Catalog{Dialect: r.dialect, DB: db, Logger: r.logger}

	d := &core.Database{Dialect: core.Dialect(r.dialect)}
	var current string
	if err := cat.QueryRow(ctx, "database", "", r.queries.Database, []any{&d.Name, &current, &d.Version}); err != nil {
		return nil, err
	}
	qs := r.queries
	if r.forVer != nil {
		qs = r.forVer(d.Version, qs)
	}
	d.Schema = current
	if r.schema != "" {
		d.Schema = r.schema
	}

	refs, err := readTables(ctx, cat, qs.Tables, d.Schema)
	if err != nil {
		return nil, err
	}

	for _, ref := range refs {
		if err := r.readTable(ctx, cat, qs, ref); err != nil {
			return nil, err
		}
		d.Tables = append(d.Tables, ref.table)
	}

	if qs.Sequences != "" {
		if d.Sequences, err = readSequences(ctx, cat, qs.Sequences, d.Schema); err != nil {
			return nil, err
		}
	}

	core.SortTables(d.Tables)
	core.SortSequences(d.Sequences)

	r.logger.Debug("schema read", "dialect", r.dialect, "schema", d.Schema, "tables", len(d.Tables))
	return d, nil
}

func readTables(ctx context.Context, cat *introspect.Catalog, query, schema string) ([]tableRef, error) {
	var refs []tableRef
	err := cat.Query(ctx, "tables", schema, query, func(rows *sql.Rows) error {
		var ref tableRef
		var name, comment string
		if err := rows.Scan(&name, &ref.oid, &comment); err != nil {
			return err
		}
		ref.table = &core.Table{
			Name:     name,
			Position: len(refs) + 1,
			Comment:  comment,
		}
		refs = append(refs, ref)
		return nil
	}, schema)
	return refs, err
}

func (r *Reader) readTable(ctx context.Context, cat *introspect.Catalog, qs Queries, ref tableRef) error {
	t := ref.table
	if err := readColumns(ctx, cat, qs.Columns, ref); err != nil {
		return err
	}
	if err := readConstraints(ctx, cat, qs.Constraints, ref); err != nil {
		return err
	}
	if err := readIndexes(ctx, cat, qs.Indexes, ref); err != nil {
		return err
	}
	if qs.Triggers != "" {
		if err := readTriggers(ctx, cat, qs.Triggers, ref); err != nil {
			return err
		}
	}
	for _, step := range r.steps {
		err := cat.Query(ctx, step.Name, t.Name, step.SQL, func(rows *sql.Rows) error {
			return step.Scan(t, rows)
		}, ref.oid)
		if err != nil {
			return err
		}
	}

	for _, name := range t.PrimaryKeyColumns() {
		if col := t.FindColumn(name); col != nil {
			col.PrimaryKey = true
		}
	}
	return nil
}
