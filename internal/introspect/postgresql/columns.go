package postgresql

import (
	"context"
	"database/sql"
	"strings"

	"dbplat/internal/core"
	"dbplat/internal/introspect"
)

func readColumns(ctx context.Context, cat *introspect.Catalog, query string, ref tableRef) error {
	t := ref.table
	return cat.Query(ctx, "columns", t.Name, query, func(rows *sql.Rows) error {
		var (
			name, typ, comment, collation, identity, generated string
			position                                           int
			notNull                                            bool
			def                                                sql.NullString
		)
		if err := rows.Scan(&name, &position, &typ, &notNull, &def, &comment, &collation, &identity, &generated); err != nil {
			return err
		}

		col := &core.Column{
			Name:     name,
			Position: position,
			TypeRaw:  typ,
			Type:     core.NormalizeDataType(typ),
			Nullable: !notNull,
			Comment:  comment,
			Collate:  collation,
		}

		switch {
		case generated == "s":
			col.IsGenerated = true
			col.GenerationExpression = def.String
			col.GenerationStorage = core.GenerationStored
		case identity == "a" || identity == "d":
			col.AutoIncrement = true
		case def.Valid:
			if seq, ok := SequenceFromDefault(def.String); ok {
				col.AutoIncrement = true
				col.SequenceName = seq
			} else {
				col.DefaultValue = &def.String
			}
		}

		t.Columns = append(t.Columns, col)
		return nil
	}, ref.oid)
}

// SequenceFromDefault extracts the sequence name from a column default of the
// form nextval('schema.name'::regclass). The schema qualifier is dropped.
func SequenceFromDefault(def string) (string, bool) {
	const prefix = "nextval('"
	def = strings.TrimSpace(def)
	if !strings.HasPrefix(strings.ToLower(def), prefix) {
		return "", false
	}
	rest := def[len(prefix):]
	end := strings.Index(rest, "'")
	if end <= 0 {
		return "", false
	}
	name := rest[:end]
	if dot := strings.LastIndex(name, "."); dot >= 0 {
		name = name[dot+1:]
	}
	return strings.Trim(name, `"`), true
}
