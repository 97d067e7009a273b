// Package greenplum reads schema metadata from a Greenplum cluster. The
// catalog is PostgreSQL's, but Greenplum has no triggers, keeps external
// tables and partition children in pg_class, and records how each table is
// spread across segments in gp_distribution_policy.
//
// Greenplum 6 and older filter relations through relstorage and
// pg_partition_rule. Greenplum 7 dropped both; it is based on PostgreSQL 12
// and reads with that catalog, where external tables are foreign tables
// and partitions carry relispartition.
package greenplum

import (
	"database/sql"
	"log/slog"
	"strconv"
	"strings"

	"dbplat/internal/core"
	"dbplat/internal/introspect"
	"dbplat/internal/introspect/postgresql"
)

// Name is the registry key of this reader.
const Name = "greenplum"

func init() {
	introspect.Register(Name, func(logger *slog.Logger) introspect.Reader {
		return New(logger)
	})
}

const (
	DatabaseQuery = `SELECT current_database(), COALESCE(current_schema(), 'public'), (SELECT productversion FROM gp_version_at_initdb LIMIT 1)`

	TablesQuery = `
		SELECT c.relname, c.oid::bigint, COALESCE(pg_catalog.obj_description(c.oid, 'pg_class'), '')
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relkind = 'r' AND c.relstorage <> 'x'
			AND NOT EXISTS (SELECT 1 FROM pg_catalog.pg_exttable e WHERE e.reloid = c.oid)
			AND NOT EXISTS (SELECT 1 FROM pg_catalog.pg_partition_rule r WHERE r.parchildrelid = c.oid)
		ORDER BY c.oid`

	ColumnsQuery = `
		SELECT a.attname, a.attnum, pg_catalog.format_type(a.atttypid, a.atttypmod), a.attnotnull,
			pg_catalog.pg_get_expr(d.adbin, d.adrelid),
			COALESCE(pg_catalog.col_description(a.attrelid, a.attnum), ''),
			COALESCE(co.collname, ''),
			''::text, ''::text
		FROM pg_catalog.pg_attribute a
		LEFT JOIN pg_catalog.pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
		LEFT JOIN pg_catalog.pg_collation co ON co.oid = a.attcollation AND a.attcollation <> 100
		WHERE a.attrelid = $1 AND a.attnum > 0 AND NOT a.attisdropped
		ORDER BY a.attnum`

	SequencesQuery = `
		SELECT c.relname, NULL::bigint, NULL::bigint
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relkind = 'S'
		ORDER BY c.relname`

	DistributionQuery = `
		SELECT pg_catalog.pg_get_table_distributedby(p.localoid)
		FROM gp_distribution_policy p
		WHERE p.localoid = $1`
)

// Queries returns the PostgreSQL catalog queries adjusted for Greenplum.
func Queries() postgresql.Queries {
	q := postgresql.DefaultQueries()
	q.Database = DatabaseQuery
	q.Tables = TablesQuery
	q.Columns = ColumnsQuery
	q.Triggers = ""
	q.Sequences = SequencesQuery
	return q
}

// QueriesFor picks the catalog queries for a Greenplum version string such
// as "6.26.0". Unparsable versions get the Greenplum 6 queries.
func QueriesFor(version string, q postgresql.Queries) postgresql.Queries {
	major, _, _ := strings.Cut(strings.TrimSpace(version), ".")
	if n, err := strconv.Atoi(major); err != nil || n < 7 {
		return q
	}
	q.Tables = postgresql.TablesQuery
	q.Columns = postgresql.ColumnsQuery
	q.Sequences = postgresql.SequencesQuery
	return q
}

// New returns a PostgreSQL reader running the Greenplum catalog queries.
func New(logger *slog.Logger, opts ...postgresql.Option) *postgresql.Reader {
	base := []postgresql.Option{
		postgresql.WithDialect(Name),
		postgresql.WithQueries(Queries()),
		postgresql.WithVersionQueries(QueriesFor),
		postgresql.WithTableStep(postgresql.TableStep{
			Name: "distribution",
			SQL:  DistributionQuery,
			Scan: scanDistribution,
		}),
		postgresql.WithLogger(logger),
	}
	return postgresql.New(append(base, opts...)...)
}

func scanDistribution(t *core.Table, rows *sql.Rows) error {
	var clause string
	if err := rows.Scan(&clause); err != nil {
		return err
	}
	t.Distribution = ParseDistribution(clause)
	return nil
}

// ParseDistribution parses the clause printed by pg_get_table_distributedby.
// It returns nil for an empty clause.
func ParseDistribution(clause string) *core.Distribution {
	upper := strings.ToUpper(strings.TrimSpace(clause))
	switch {
	case upper == "":
		return nil
	case strings.HasSuffix(upper, "RANDOMLY"):
		return &core.Distribution{Random: true}
	case strings.HasSuffix(upper, "REPLICATED"):
		return &core.Distribution{Replicated: true}
	}

	open := strings.Index(clause, "(")
	end := strings.LastIndex(clause, ")")
	if open < 0 || end <= open {
		return nil
	}
	d := &core.Distribution{}
	for part := range strings.SplitSeq(clause[open+1:end], ",") {
		part = strings.TrimSpace(part)
		// drop a trailing operator class
		if strings.HasPrefix(part, `"`) {
			if q := strings.IndexByte(part[1:], '"'); q >= 0 {
				part = part[1 : q+1]
			}
		} else if sp := strings.IndexByte(part, ' '); sp > 0 {
			part = part[:sp]
		}
		if part != "" {
			d.Columns = append(d.Columns, part)
		}
	}
	return d
}
