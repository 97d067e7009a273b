package output

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbplat/internal/capability"
	"dbplat/internal/config"
	"dbplat/internal/core"
	"dbplat/internal/detect"
	_ "dbplat/internal/dialect/mysql"
	_ "dbplat/internal/dialect/postgresql"
	_ "dbplat/internal/introspect/greenplum"
	_ "dbplat/internal/introspect/mysql"
	_ "dbplat/internal/introspect/postgresql"
)

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name string
		want Formatter
	}{
		{"", humanFormatter{}},
		{"human", humanFormatter{}},
		{"  HUMAN ", humanFormatter{}},
		{"json", jsonFormatter{}},
		{"JSON", jsonFormatter{}},
		{"summary", summaryFormatter{}},
	}
	for _, tt := range tests {
		f, err := NewFormatter(tt.name)
		require.NoError(t, err, tt.name)
		assert.IsType(t, tt.want, f, tt.name)
	}
}

func TestNewFormatterInvalidFormat(t *testing.T) {
	f, err := NewFormatter("xml")
	assert.Nil(t, f)
	assert.EqualError(t, err, "unsupported format: xml; use 'human', 'json', or 'summary'")
}

func sampleSchema() *core.Database {
	def := "0"
	return &core.Database{
		Name:    "warehouse",
		Schema:  "public",
		Dialect: core.DialectGreenplum,
		Version: "6.2.1",
		Tables: []*core.Table{
			{
				Name:     "orders",
				Position: 1,
				Comment:  "fact table",
				Columns: []*core.Column{
					{Name: "id", Position: 1, TypeRaw: "bigint", PrimaryKey: true, SequenceName: "orders_id_seq"},
					{Name: "total", Position: 2, TypeRaw: "numeric(12,2)", Nullable: true, DefaultValue: &def},
					{Name: "customer_id", Position: 3, TypeRaw: "bigint"},
				},
				Constraints: []*core.Constraint{
					{Name: "orders_pkey", Type: core.ConstraintPrimaryKey, Columns: []string{"id"}},
					{Name: "orders_total_check", Type: core.ConstraintCheck, CheckExpression: "total >= 0"},
					{
						Name: "orders_customer_fk", Type: core.ConstraintForeignKey, Columns: []string{"customer_id"},
						ReferencedTable: "customers", ReferencedColumns: []string{"id"}, OnDelete: core.RefActionCascade,
					},
				},
				Indexes: []*core.Index{
					{Name: "orders_total_idx", Columns: []core.IndexColumn{{Name: "total", Order: core.SortDesc}}, Type: core.IndexTypeBitmap},
				},
				Distribution: &core.Distribution{Columns: []string{"id"}},
			},
		},
		Sequences: []*core.Sequence{{Name: "orders_id_seq", Start: 1, Increment: 1}},
	}
}

func samplePlatforms() []PlatformInfo {
	return []PlatformInfo{
		{
			Name:   "postgresql",
			Vendor: "PostgreSQL",
			Family: "postgres",
			Chain:  []string{"postgresql"},
			Flags: capability.Flags{
				TriggersSupported: true, SequencesSupported: true, IdentityStyle: capability.IdentityGenerated,
				MaxIdentifierLength: 63, IdentifierQuote: `"`, TransactionalDDL: true,
			},
		},
		{
			Name:      "greenplum",
			Vendor:    "Greenplum",
			Family:    "postgres",
			Chain:     []string{"greenplum", "postgresql"},
			Overrides: []string{"triggers_supported", "identity_style", "distributed_tables"},
			Flags: capability.Flags{
				SequencesSupported: true, IdentityStyle: capability.IdentitySerial,
				MaxIdentifierLength: 63, IdentifierQuote: `"`, TransactionalDDL: true, DistributedTables: true,
			},
		},
	}
}

func TestDescribe(t *testing.T) {
	r, err := config.NewRegistry(config.Default(), nil)
	require.NoError(t, err)
	p, err := r.ResolveName("gpdb")
	require.NoError(t, err)
	reg, ok := r.Lookup("greenplum")
	require.True(t, ok)

	info := Describe(p, reg.Delta.Overridden())
	assert.Equal(t, samplePlatforms()[1], info)
}

func TestHumanIdentity(t *testing.T) {
	out, err := humanFormatter{}.FormatIdentity(detect.Identity{Vendor: "Greenplum", Version: "6.2.1", Family: detect.FamilyPostgres})
	require.NoError(t, err)
	assert.Equal(t, "Vendor:  Greenplum\nVersion: 6.2.1\nFamily:  postgres\n", out)

	out, err = humanFormatter{}.FormatIdentity(detect.Identity{Vendor: "MySQL", Family: detect.FamilyMySQL})
	require.NoError(t, err)
	assert.Contains(t, out, "Version: (unknown)")
}

func TestHumanPlatforms(t *testing.T) {
	out, err := humanFormatter{}.FormatPlatforms(samplePlatforms())
	require.NoError(t, err)
	assert.Contains(t, out, "greenplum -> postgresql")
	assert.Contains(t, out, "serial")
	assert.Contains(t, out, "generated")
	assert.Regexp(t, `(?i)platform.*vendor.*family.*chain`, out)
	assert.Contains(t, out, "Greenplum")

	out, err = humanFormatter{}.FormatPlatforms(nil)
	require.NoError(t, err)
	assert.Equal(t, "(no platforms)\n", out)
}

func TestHumanSchema(t *testing.T) {
	out, err := humanFormatter{}.FormatSchema(sampleSchema())
	require.NoError(t, err)

	assert.Contains(t, out, "Database: warehouse (greenplum 6.2.1)\n")
	assert.Contains(t, out, "Schema:   public\n")
	assert.Contains(t, out, "Table: orders -- fact table\n")
	assert.Contains(t, out, "Distribution: BY (id)\n")
	assert.Contains(t, out, "numeric(12,2)")
	assert.Contains(t, out, "pk,seq:orders_id_seq")
	assert.Contains(t, out, "  PRIMARY KEY orders_pkey (id)\n")
	assert.Contains(t, out, "  CHECK orders_total_check (total >= 0)\n")
	assert.Contains(t, out, "  FOREIGN KEY orders_customer_fk (customer_id) -> customers (id) ON DELETE CASCADE\n")
	assert.Contains(t, out, "  INDEX orders_total_idx (total DESC) USING BITMAP\n")
	assert.Contains(t, out, "  orders_id_seq (start 1, increment 1)\n")

	out, err = humanFormatter{}.FormatSchema(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDistribution(t *testing.T) {
	assert.Equal(t, "REPLICATED", distribution(&core.Distribution{Replicated: true}))
	assert.Equal(t, "RANDOMLY", distribution(&core.Distribution{Random: true}))
	assert.Equal(t, "BY (a, b)", distribution(&core.Distribution{Columns: []string{"a", "b"}}))
}

func TestIndexLine(t *testing.T) {
	idx := &core.Index{
		Name:    "uq_email",
		Unique:  true,
		Columns: []core.IndexColumn{{Name: "email", Length: 16}, {Name: "tenant_id"}},
		Type:    core.IndexTypeBTree,
	}
	assert.Equal(t, "UNIQUE INDEX uq_email (email(16), tenant_id)", indexLine(idx))
}

func TestHumanDDL(t *testing.T) {
	out, err := humanFormatter{}.FormatDDL("greenplum", []string{
		"CREATE SEQUENCE \"s\" START WITH 1 INCREMENT BY 1;",
		"CREATE TABLE \"t\" (\n  \"id\" bigint\n) DISTRIBUTED BY (\"id\")",
		"  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "-- dbplat DDL for greenplum\n"+
		"\nCREATE SEQUENCE \"s\" START WITH 1 INCREMENT BY 1;\n"+
		"\nCREATE TABLE \"t\" (\n  \"id\" bigint\n) DISTRIBUTED BY (\"id\");\n", out)

	out, err = humanFormatter{}.FormatDDL("mysql", nil)
	require.NoError(t, err)
	assert.Equal(t, "-- dbplat DDL for mysql\n\n-- No SQL statements generated.\n", out)
}

func TestJSONIdentity(t *testing.T) {
	out, err := jsonFormatter{}.FormatIdentity(detect.Identity{Vendor: "TiDB", Version: "8.1.0", Family: detect.FamilyMySQL})
	require.NoError(t, err)
	assert.JSONEq(t, `{"format":"json","identity":{"vendor":"TiDB","version":"8.1.0","family":"mysql"}}`, out)
}

func TestJSONPlatforms(t *testing.T) {
	out, err := jsonFormatter{}.FormatPlatforms(samplePlatforms()[1:])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"format": "json",
		"platforms": [{
			"name": "greenplum",
			"vendor": "Greenplum",
			"family": "postgres",
			"chain": ["greenplum", "postgresql"],
			"overrides": ["triggers_supported", "identity_style", "distributed_tables"],
			"capabilities": {
				"triggersSupported": false,
				"sequencesSupported": true,
				"identityStyle": "serial",
				"maxIdentifierLength": 63,
				"identifierQuote": "\"",
				"transactionalDdl": true,
				"distributedTables": true
			}
		}]
	}`, out)

	out, err = jsonFormatter{}.FormatPlatforms(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"format":"json","platforms":[]}`, out)
}

func TestJSONSchema(t *testing.T) {
	out, err := jsonFormatter{}.FormatSchema(sampleSchema())
	require.NoError(t, err)

	var payload struct {
		Format   string         `json:"format"`
		Summary  schemaSummary  `json:"summary"`
		Database *core.Database `json:"database"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "json", payload.Format)
	assert.Equal(t, schemaSummary{Tables: 1, Columns: 3, Constraints: 3, Indexes: 1, Sequences: 1}, payload.Summary)
	assert.Equal(t, sampleSchema(), payload.Database)
}

func TestJSONDDL(t *testing.T) {
	out, err := jsonFormatter{}.FormatDDL("postgresql", []string{"CREATE TABLE \"t\" (\"id\" integer)"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"format":"json","platform":"postgresql","statements":["CREATE TABLE \"t\" (\"id\" integer);"]}`, out)

	out, err = jsonFormatter{}.FormatDDL("postgresql", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"format":"json","platform":"postgresql","statements":[]}`, out)
}

func TestSummary(t *testing.T) {
	f := summaryFormatter{}

	out, err := f.FormatIdentity(detect.Identity{Vendor: "Greenplum", Family: detect.FamilyPostgres})
	require.NoError(t, err)
	assert.Equal(t, detect.Identity{Vendor: "Greenplum", Family: detect.FamilyPostgres}.String()+"\n", out)

	out, err = f.FormatPlatforms(samplePlatforms())
	require.NoError(t, err)
	assert.Equal(t, "postgresql: postgresql\ngreenplum: greenplum -> postgresql\n", out)

	out, err = f.FormatSchema(sampleSchema())
	require.NoError(t, err)
	assert.Contains(t, out, "Tables:      1\n")
	assert.Contains(t, out, "Columns:     3\n")
	assert.Contains(t, out, "  orders (3 cols, 3 constraints, 1 idx, distributed BY (id))\n")

	out, err = f.FormatSchema(&core.Database{})
	require.NoError(t, err)
	assert.Equal(t, "Empty schema.\n", out)
}

func TestSummaryDDL(t *testing.T) {
	out, err := summaryFormatter{}.FormatDDL("greenplum", []string{
		"CREATE SEQUENCE s",
		"CREATE TABLE a (id int)",
		"CREATE TABLE b (id int)",
		"CREATE UNIQUE INDEX u ON a (id)",
		"ALTER TABLE b ADD FOREIGN KEY (id) REFERENCES a (id)",
	})
	require.NoError(t, err)
	assert.Equal(t, "greenplum: 5 statements\n"+
		"  CREATE SEQUENCE  1\n"+
		"  CREATE TABLE     2\n"+
		"  CREATE UNIQUE INDEX 1\n"+
		"  ALTER TABLE      1\n", out)

	out, err = summaryFormatter{}.FormatDDL("mysql", nil)
	require.NoError(t, err)
	assert.Equal(t, "mysql: no statements.\n", out)
}
