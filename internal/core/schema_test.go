package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseFindTable(t *testing.T) {
	db := &Database{
		Name: "testdb",
		Tables: []*Table{
			{Name: "users"},
			{Name: "orders"},
			{Name: "Products"},
		},
	}

	t.Run("find existing table", func(t *testing.T) {
		table := db.FindTable("users")
		assert.NotNil(t, table)
		assert.Equal(t, "users", table.Name)
	})

	t.Run("find existing table case insensitive", func(t *testing.T) {
		table := db.FindTable("PRODUCTS")
		assert.NotNil(t, table)
		assert.Equal(t, "Products", table.Name)
	})

	t.Run("table not found", func(t *testing.T) {
		assert.Nil(t, db.FindTable("nonexistent"))
	})
}

func TestTableFindColumn(t *testing.T) {
	table := &Table{
		Name:    "users",
		Columns: []*Column{{Name: "id"}, {Name: "Email"}},
	}

	assert.NotNil(t, table.FindColumn("email"))
	assert.Nil(t, table.FindColumn("missing"))
}

func TestTablePrimaryKeyColumns(t *testing.T) {
	t.Run("from constraint", func(t *testing.T) {
		table := &Table{
			Columns:     []*Column{{Name: "a", PrimaryKey: true}, {Name: "b"}},
			Constraints: []*Constraint{{Type: ConstraintPrimaryKey, Columns: []string{"a", "b"}}},
		}
		assert.Equal(t, []string{"a", "b"}, table.PrimaryKeyColumns())
	})

	t.Run("from column flags", func(t *testing.T) {
		table := &Table{
			Columns: []*Column{{Name: "id", PrimaryKey: true}, {Name: "name"}},
		}
		assert.Equal(t, []string{"id"}, table.PrimaryKeyColumns())
	})

	t.Run("none", func(t *testing.T) {
		assert.Nil(t, (&Table{Columns: []*Column{{Name: "x"}}}).PrimaryKeyColumns())
	})
}

func TestIndexNames(t *testing.T) {
	idx := &Index{Columns: []IndexColumn{{Name: "a"}, {Name: "b", Length: 10}}}
	assert.Equal(t, []string{"a", "b"}, idx.Names())
}

func TestTableString(t *testing.T) {
	table := &Table{Name: "users", Columns: []*Column{{Name: "id"}}}
	assert.Equal(t, "Table: users (1 cols, 0 constraints, 0 indexes)", table.String())
}

func TestIsValidDialect(t *testing.T) {
	assert.True(t, IsValidDialect("Greenplum"))
	assert.True(t, IsValidDialect("postgresql"))
	assert.False(t, IsValidDialect("oracle"))
}

func TestParseReferences(t *testing.T) {
	tests := []struct {
		ref    string
		table  string
		column string
		ok     bool
	}{
		{ref: "users.id", table: "users", column: "id", ok: true},
		{ref: "public.users.id", table: "public.users", column: "id", ok: true},
		{ref: "users", ok: false},
		{ref: ".id", ok: false},
		{ref: "users.", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			table, column, ok := ParseReferences(tt.ref)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.table, table)
			assert.Equal(t, tt.column, column)
		})
	}
}

func TestNormalizeDataType(t *testing.T) {
	tests := []struct {
		raw  string
		want DataType
	}{
		{raw: "VARCHAR(255)", want: DataTypeString},
		{raw: "character varying(64)", want: DataTypeString},
		{raw: "tinyint(1)", want: DataTypeBoolean},
		{raw: "bigint", want: DataTypeInt},
		{raw: "bigserial", want: DataTypeInt},
		{raw: "numeric(10,2)", want: DataTypeFloat},
		{raw: "timestamp with time zone", want: DataTypeDatetime},
		{raw: "jsonb", want: DataTypeJSON},
		{raw: "uuid", want: DataTypeUUID},
		{raw: "bytea", want: DataTypeBinary},
		{raw: "enum('a','b')", want: DataTypeEnum},
		{raw: "", want: DataTypeUnknown},
		{raw: "geometry", want: DataTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDataType(tt.raw))
		})
	}
}
