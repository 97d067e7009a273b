package toml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbplat/internal/core"
)

func parseString(t *testing.T, doc string) (*core.Database, error) {
	t.Helper()
	return NewParser().Parse(strings.NewReader(doc))
}

func TestParseFileWarehouse(t *testing.T) {
	db, err := NewParser().ParseFile("testdata/warehouse.toml")
	require.NoError(t, err)

	assert.Equal(t, "warehouse", db.Name)
	assert.Equal(t, core.DialectGreenplum, db.Dialect)
	require.Len(t, db.Sequences, 1)
	assert.Equal(t, core.Sequence{Name: "order_seq", Start: 1000, Increment: 1}, *db.Sequences[0])

	require.Len(t, db.Tables, 2)
	assert.Equal(t, "customers", db.Tables[0].Name)
	assert.Equal(t, 1, db.Tables[0].Position)
	assert.Equal(t, "orders", db.Tables[1].Name)
	assert.Equal(t, 2, db.Tables[1].Position)
}

func TestParseFileCustomers(t *testing.T) {
	db, err := NewParser().ParseFile("testdata/warehouse.toml")
	require.NoError(t, err)

	tbl := db.FindTable("customers")
	require.NotNil(t, tbl)
	assert.Equal(t, "Customer master", tbl.Comment)
	assert.Equal(t, &core.Distribution{Replicated: true}, tbl.Distribution)

	names := make([]string, len(tbl.Columns))
	for i, c := range tbl.Columns {
		names[i] = c.Name
		assert.Equal(t, i+1, c.Position)
	}
	assert.Equal(t, []string{"id", "email", "active", "created_at", "updated_at"}, names)

	id := tbl.FindColumn("id")
	assert.True(t, id.PrimaryKey)
	assert.True(t, id.AutoIncrement)
	assert.False(t, id.Nullable)
	assert.Equal(t, core.DataTypeInt, id.Type)

	email := tbl.FindColumn("email")
	assert.Equal(t, "varchar(255)", email.TypeRaw)
	assert.Equal(t, "C", email.Collate)

	active := tbl.FindColumn("active")
	require.NotNil(t, active.DefaultValue)
	assert.Equal(t, "TRUE", *active.DefaultValue)

	created := tbl.FindColumn("created_at")
	assert.Equal(t, "timestamp", created.TypeRaw)
	assert.Equal(t, "CURRENT_TIMESTAMP", *created.DefaultValue)

	require.Len(t, tbl.Constraints, 2)
	assert.Equal(t, &core.Constraint{Name: "pk_customers", Type: core.ConstraintPrimaryKey, Columns: []string{"id"}}, tbl.Constraints[0])
	assert.Equal(t, &core.Constraint{Name: "uq_customers_email", Type: core.ConstraintUnique, Columns: []string{"email"}}, tbl.Constraints[1])
}

func TestParseFileOrders(t *testing.T) {
	db, err := NewParser().ParseFile("testdata/warehouse.toml")
	require.NoError(t, err)

	tbl := db.FindTable("orders")
	require.NotNil(t, tbl)
	assert.Equal(t, &core.Distribution{Columns: []string{"customer_id"}}, tbl.Distribution)
	assert.Equal(t, []string{"id", "customer_id"}, tbl.PrimaryKeyColumns())

	id := tbl.FindColumn("id")
	assert.True(t, id.PrimaryKey, "composite PK marks its columns")
	assert.Equal(t, "order_seq", id.SequenceName)
	assert.Equal(t, "nextval('order_seq')", *id.DefaultValue)

	gen := tbl.FindColumn("total_with_tax")
	assert.True(t, gen.IsGenerated)
	assert.Equal(t, "total * 1.2", gen.GenerationExpression)
	assert.Equal(t, core.GenerationStored, gen.GenerationStorage)
	assert.True(t, gen.Nullable)

	require.Len(t, tbl.Constraints, 3)
	fk := tbl.Constraints[1]
	assert.Equal(t, "fk_orders_customers", fk.Name)
	assert.Equal(t, core.ConstraintForeignKey, fk.Type)
	assert.Equal(t, "customers", fk.ReferencedTable)
	assert.Equal(t, []string{"id"}, fk.ReferencedColumns)
	assert.Equal(t, core.RefActionCascade, fk.OnDelete)

	chk := tbl.Constraints[2]
	assert.Equal(t, "chk_orders_total", chk.Name)
	assert.Equal(t, "total >= 0", chk.CheckExpression)

	require.Len(t, tbl.Indexes, 2)
	assert.Equal(t, core.IndexTypeBitmap, tbl.Indexes[0].Type)
	assert.Equal(t, []core.IndexColumn{{Name: "customer_id", Order: core.SortAsc}}, tbl.Indexes[0].Columns)
	assert.Equal(t, core.IndexTypeBTree, tbl.Indexes[1].Type)
	assert.Equal(t, []core.IndexColumn{{Name: "total", Order: core.SortDesc}}, tbl.Indexes[1].Columns)

	require.Len(t, tbl.Triggers, 1)
	assert.Equal(t, "AFTER", tbl.Triggers[0].Timing)
	assert.Equal(t, []string{"INSERT", "UPDATE"}, tbl.Triggers[0].Events)
}

func TestParseMinimal(t *testing.T) {
	db, err := parseString(t, `
[[tables]]
name = "t"
[[tables.columns]]
name = "id"
type = "int"
`)
	require.NoError(t, err)
	assert.Empty(t, db.Dialect)
	require.Len(t, db.Tables, 1)
	assert.Nil(t, db.Tables[0].Distribution)
	assert.Empty(t, db.Tables[0].Constraints)
}

func TestNormalizeDefault(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{true, "TRUE"},
		{false, "FALSE"},
		{"'x'", "'x'"},
		{int64(42), "42"},
		{1.5, "1.5"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeDefault(tt.in))
	}
}

func TestTimestampsCustomNames(t *testing.T) {
	db, err := parseString(t, `
[[tables]]
name = "t"
[tables.timestamps]
enabled = true
created_column = "inserted_at"
[[tables.columns]]
name = "updated_at"
type = "timestamptz"
`)
	require.NoError(t, err)
	cols := db.Tables[0].Columns
	require.Len(t, cols, 2)
	assert.Equal(t, "timestamptz", cols[0].TypeRaw, "existing column is kept")
	assert.Equal(t, "inserted_at", cols[1].Name)
	assert.Equal(t, 2, cols[1].Position)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "malformed",
			doc:     "[[tables]\n",
			wantErr: "toml: decode error",
		},
		{
			name:    "unknown key",
			doc:     "[[tables]]\nname = \"t\"\nengine = \"InnoDB\"",
			wantErr: "unknown keys: tables.engine",
		},
		{
			name:    "bad dialect",
			doc:     "[database]\ndialect = \"oracle\"",
			wantErr: `unsupported dialect "oracle"`,
		},
		{
			name:    "bad pattern",
			doc:     "[validation]\nallowed_name_pattern = \"[\"",
			wantErr: "invalid allowed_name_pattern",
		},
		{
			name: "name too long",
			doc: `[validation]
max_identifier_length = 4
[[tables]]
name = "customers"`,
			wantErr: `table "customers" exceeds maximum length 4`,
		},
		{
			name: "pattern mismatch",
			doc: `[validation]
allowed_name_pattern = "^[a-z]+$"
[[tables]]
name = "t"
[[tables.columns]]
name = "Bad"
type = "int"`,
			wantErr: `column "Bad" does not match allowed pattern`,
		},
		{
			name:    "empty type",
			doc:     "[[tables]]\nname = \"t\"\n[[tables.columns]]\nname = \"id\"",
			wantErr: "type is empty",
		},
		{
			name: "duplicate column",
			doc: `[[tables]]
name = "t"
[[tables.columns]]
name = "id"
type = "int"
[[tables.columns]]
name = "ID"
type = "int"`,
			wantErr: `duplicate column name "ID"`,
		},
		{
			name: "duplicate table",
			doc: `[[tables]]
name = "t"
[[tables.columns]]
name = "id"
type = "int"
[[tables]]
name = "T"
[[tables.columns]]
name = "id"
type = "int"`,
			wantErr: `duplicate table name "T"`,
		},
		{
			name: "pk twice",
			doc: `[[tables]]
name = "t"
[[tables.columns]]
name = "id"
type = "int"
primary_key = true
[[tables.constraints]]
type = "PRIMARY KEY"
columns = ["id"]`,
			wantErr: "primary key declared on both",
		},
		{
			name: "bad references",
			doc: `[[tables]]
name = "t"
[[tables.columns]]
name = "a_id"
type = "int"
references = "a"`,
			wantErr: `invalid references "a"`,
		},
		{
			name: "on_delete without references",
			doc: `[[tables]]
name = "t"
[[tables.columns]]
name = "a_id"
type = "int"
on_delete = "cascade"`,
			wantErr: "require references",
		},
		{
			name: "fk to unknown table",
			doc: `[[tables]]
name = "t"
[[tables.columns]]
name = "a_id"
type = "int"
references = "a.id"`,
			wantErr: `references unknown table "a"`,
		},
		{
			name: "fk to unknown column",
			doc: `[[tables]]
name = "a"
[[tables.columns]]
name = "id"
type = "int"
[[tables]]
name = "t"
[[tables.columns]]
name = "a_id"
type = "int"
references = "a.uuid"`,
			wantErr: "references unknown column a.uuid",
		},
		{
			name: "unknown constraint type",
			doc: `[[tables]]
name = "t"
[[tables.columns]]
name = "id"
type = "int"
[[tables.constraints]]
name = "x"
type = "EXCLUDE"
columns = ["id"]`,
			wantErr: `constraint "x" has unknown type "EXCLUDE"`,
		},
		{
			name: "constraint on missing column",
			doc: `[[tables]]
name = "t"
[[tables.columns]]
name = "id"
type = "int"
[[tables.constraints]]
name = "uq"
type = "unique"
columns = ["email"]`,
			wantErr: `constraint "uq" references nonexistent column "email"`,
		},
		{
			name: "generated without expression",
			doc: `[[tables]]
name = "t"
[[tables.columns]]
name = "g"
type = "int"
is_generated = true`,
			wantErr: "has no generation_expression",
		},
		{
			name: "bad generation storage",
			doc: `[[tables]]
name = "t"
[[tables.columns]]
name = "g"
type = "int"
is_generated = true
generation_expression = "1"
generation_storage = "persisted"`,
			wantErr: `unknown generation_storage "persisted"`,
		},
		{
			name: "index on missing column",
			doc: `[[tables]]
name = "t"
[[tables.columns]]
name = "id"
type = "int"
[[tables.indexes]]
name = "idx"
columns = ["missing"]`,
			wantErr: `index "idx" references nonexistent column "missing"`,
		},
		{
			name: "index without columns",
			doc: `[[tables]]
name = "t"
[[tables.columns]]
name = "id"
type = "int"
[[tables.indexes]]
name = "idx"`,
			wantErr: "index idx has no columns",
		},
		{
			name: "unknown index type",
			doc: `[[tables]]
name = "t"
[[tables.columns]]
name = "id"
type = "int"
[[tables.indexes]]
columns = ["id"]
type = "brin"`,
			wantErr: `index (unnamed) has unknown type "brin"`,
		},
		{
			name: "two distribution policies",
			doc: `[[tables]]
name = "t"
[tables.distribution]
random = true
replicated = true
[[tables.columns]]
name = "id"
type = "int"`,
			wantErr: "set only one of",
		},
		{
			name: "distribution on missing column",
			doc: `[[tables]]
name = "t"
[tables.distribution]
columns = ["tenant_id"]
[[tables.columns]]
name = "id"
type = "int"`,
			wantErr: `distribution references nonexistent column "tenant_id"`,
		},
		{
			name: "trigger without definition",
			doc: `[[tables]]
name = "t"
[[tables.columns]]
name = "id"
type = "int"
[[tables.triggers]]
name = "audit"`,
			wantErr: `trigger "audit" has no definition`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := parseString(t, tt.doc)
			require.Error(t, err)
			assert.Nil(t, db)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseFileMissing(t *testing.T) {
	_, err := NewParser().ParseFile("testdata/missing.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "toml: open file")
}
