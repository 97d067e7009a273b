package postgresql

// Queries holds the catalog statements a Reader runs. Tables and Sequences
// take the schema name as $1; per-table queries take the table OID as $1.
// An empty Triggers or Sequences query skips that step.
type Queries struct {
	Database    string
	Tables      string
	Columns     string
	Constraints string
	Indexes     string
	Triggers    string
	Sequences   string
}

const (
	DatabaseQuery = `SELECT current_database(), COALESCE(current_schema(), 'public'), current_setting('server_version')`

	TablesQuery = `
		SELECT c.relname, c.oid::bigint, COALESCE(pg_catalog.obj_description(c.oid, 'pg_class'), '')
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relkind IN ('r', 'p') AND NOT c.relispartition
		ORDER BY c.oid`

	ColumnsQuery = `
		SELECT a.attname, a.attnum, pg_catalog.format_type(a.atttypid, a.atttypmod), a.attnotnull,
			pg_catalog.pg_get_expr(d.adbin, d.adrelid),
			COALESCE(pg_catalog.col_description(a.attrelid, a.attnum), ''),
			COALESCE(co.collname, ''),
			a.attidentity::text, a.attgenerated::text
		FROM pg_catalog.pg_attribute a
		LEFT JOIN pg_catalog.pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
		LEFT JOIN pg_catalog.pg_collation co ON co.oid = a.attcollation AND a.attcollation <> 100
		WHERE a.attrelid = $1 AND a.attnum > 0 AND NOT a.attisdropped
		ORDER BY a.attnum`

	ConstraintsQuery = `
		SELECT con.conname, con.contype::text,
			COALESCE(array_to_string(ARRAY(
				SELECT a.attname FROM unnest(con.conkey) WITH ORDINALITY AS k(attnum, ord)
				JOIN pg_catalog.pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum
				ORDER BY k.ord), ','), ''),
			COALESCE(ref.relname, ''),
			COALESCE(array_to_string(ARRAY(
				SELECT a.attname FROM unnest(con.confkey) WITH ORDINALITY AS k(attnum, ord)
				JOIN pg_catalog.pg_attribute a ON a.attrelid = con.confrelid AND a.attnum = k.attnum
				ORDER BY k.ord), ','), ''),
			con.confdeltype::text, con.confupdtype::text,
			CASE WHEN con.contype = 'c' THEN pg_catalog.pg_get_constraintdef(con.oid, true) ELSE '' END
		FROM pg_catalog.pg_constraint con
		LEFT JOIN pg_catalog.pg_class ref ON ref.oid = con.confrelid
		WHERE con.conrelid = $1 AND con.contype IN ('p', 'u', 'f', 'c')
		ORDER BY con.conname`

	IndexesQuery = `
		SELECT i.relname, ix.indisunique, am.amname,
			COALESCE(array_to_string(ARRAY(
				SELECT pg_catalog.pg_get_indexdef(ix.indexrelid, k.ord, true)
				FROM generate_series(1, ix.indnatts) AS k(ord)
				ORDER BY k.ord), ','), '')
		FROM pg_catalog.pg_index ix
		JOIN pg_catalog.pg_class i ON i.oid = ix.indexrelid
		JOIN pg_catalog.pg_am am ON am.oid = i.relam
		WHERE ix.indrelid = $1 AND NOT ix.indisprimary
			AND NOT EXISTS (SELECT 1 FROM pg_catalog.pg_constraint c WHERE c.conindid = ix.indexrelid)
		ORDER BY i.relname`

	TriggersQuery = `
		SELECT t.tgname, pg_catalog.pg_get_triggerdef(t.oid, true)
		FROM pg_catalog.pg_trigger t
		WHERE t.tgrelid = $1 AND NOT t.tgisinternal
		ORDER BY t.tgname`

	SequencesQuery = `
		SELECT s.sequencename, s.start_value, s.increment_by
		FROM pg_catalog.pg_sequences s
		WHERE s.schemaname = $1
		ORDER BY s.sequencename`
)

// DefaultQueries returns the catalog queries for PostgreSQL 12 and later.
func DefaultQueries() Queries {
	return Queries{
		Database:    DatabaseQuery,
		Tables:      TablesQuery,
		Columns:     ColumnsQuery,
		Constraints: ConstraintsQuery,
		Indexes:     IndexesQuery,
		Triggers:    TriggersQuery,
		Sequences:   SequencesQuery,
	}
}
