package config

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbplat/internal/capability"
	"dbplat/internal/detect"
	_ "dbplat/internal/dialect/mysql"
	_ "dbplat/internal/dialect/postgresql"
	_ "dbplat/internal/introspect/greenplum"
	_ "dbplat/internal/introspect/mysql"
	_ "dbplat/internal/introspect/postgresql"
	"dbplat/internal/testutil"
)

func TestBuiltinPlatforms(t *testing.T) {
	regs, err := BuiltinPlatforms()
	require.NoError(t, err)

	names := make([]string, len(regs))
	for i, r := range regs {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"postgresql", "greenplum", "mysql", "mariadb", "tidb"}, names)

	gp := regs[1]
	assert.Equal(t, "postgresql", gp.Base)
	assert.Equal(t, "Greenplum", gp.Vendor)
	assert.Equal(t, "greenplum", gp.Reader)
	assert.Empty(t, gp.Generator)
	assert.Nil(t, gp.Flags)
	assert.Equal(t, []string{"greenplum4", "gpdb"}, gp.Aliases)
	assert.Equal(t, []string{"triggers_supported", "identity_style", "distributed_tables"}, gp.Delta.Overridden())
	assert.False(t, *gp.Delta.TriggersSupported)

	pg := regs[0]
	require.NotNil(t, pg.Flags)
	assert.Equal(t, capability.Flags{
		TriggersSupported:   true,
		SequencesSupported:  true,
		IdentityStyle:       capability.IdentityGenerated,
		MaxIdentifierLength: 63,
		IdentifierQuote:     `"`,
		TransactionalDDL:    true,
	}, *pg.Flags)
}

func TestBuiltinRegistryResolvesEveryPlatform(t *testing.T) {
	r, err := NewRegistry(Default(), testutil.NewTestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"greenplum", "mariadb", "mysql", "postgresql", "tidb"}, r.Names())

	tests := []struct {
		name       string
		chain      []string
		triggers   bool
		sequences  bool
		identity   capability.IdentityStyle
		distribute bool
		generator  string
	}{
		{"postgresql", []string{"postgresql"}, true, true, capability.IdentityGenerated, false, "postgresql"},
		{"greenplum", []string{"greenplum", "postgresql"}, false, true, capability.IdentitySerial, true, "postgresql"},
		{"mysql", []string{"mysql"}, true, false, capability.IdentityAutoIncrement, false, "mysql"},
		{"mariadb", []string{"mariadb", "mysql"}, true, true, capability.IdentityAutoIncrement, false, "mysql"},
		{"tidb", []string{"tidb", "mysql"}, false, true, capability.IdentityAutoIncrement, false, "mysql"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := r.ResolveName(tt.name)
			require.NoError(t, err)
			caps := p.Capabilities()
			assert.Equal(t, tt.chain, p.Chain())
			assert.Equal(t, tt.triggers, caps.TriggersSupported())
			assert.Equal(t, tt.sequences, caps.SequencesSupported())
			assert.Equal(t, tt.identity, caps.IdentityStyle())
			assert.Equal(t, tt.distribute, caps.DistributedTables())
			assert.Equal(t, tt.generator, p.Generator().Name())
		})
	}

	p, err := r.Resolve(detect.Identity{Vendor: "greenplum4", Family: detect.FamilyPostgres})
	require.NoError(t, err)
	assert.Equal(t, "greenplum", p.Name())
}

func TestNewRegistryWithFallbacks(t *testing.T) {
	cfg := Default()
	cfg.Registry.Fallbacks = map[string]string{"mysql": "mysql", "postgres": "postgresql"}

	logger, rec := testutil.NewRecorder()
	r, err := NewRegistry(cfg, logger)
	require.NoError(t, err)

	p, err := r.Resolve(detect.Identity{Vendor: "singlestore", Family: detect.FamilyMySQL})
	require.NoError(t, err)
	assert.Equal(t, "mysql", p.Name())
	assert.Len(t, rec.Messages(slog.LevelWarn), 1)
}

func TestLoadPlatformsMergesUserFile(t *testing.T) {
	path := writeFile(t, "platforms.toml", `
[[platform]]
name = "greenplum"
base = "postgresql"
reader = "greenplum"
triggers_supported = false
distributed_tables = true
max_identifier_length = 48

[[platform]]
name = "cockroachdb"
base = "postgresql"
aliases = ["crdb"]
identity_style = "none"
triggers_supported = false
`)
	regs, err := LoadPlatforms(path)
	require.NoError(t, err)
	require.Len(t, regs, 6)
	assert.Equal(t, "greenplum", regs[1].Name)
	assert.Equal(t, 48, *regs[1].Delta.MaxIdentifierLength)
	assert.Nil(t, regs[1].Delta.IdentityStyle)
	assert.Equal(t, "cockroachdb", regs[5].Name)

	cfg := Default()
	cfg.Registry.File = path
	r, err := NewRegistry(cfg, nil)
	require.NoError(t, err)
	p, err := r.ResolveName("crdb")
	require.NoError(t, err)
	assert.Equal(t, capability.IdentityNone, p.Capabilities().IdentityStyle())
	assert.Equal(t, []string{"cockroachdb", "postgresql"}, p.Chain())
}

func TestParsePlatformsErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name: "root missing flags",
			doc: `[[platform]]
name = "oracle"
reader = "oracle"
generator = "oracle"
triggers_supported = true`,
			wantErr: `platform "oracle": root platform must set sequences_supported, identity_style, max_identifier_length, identifier_quote, transactional_ddl, distributed_tables`,
		},
		{
			name: "misspelled flag",
			doc: `[[platform]]
name = "gp"
base = "postgresql"
trigers_supported = false`,
			wantErr: "unknown keys: platform.trigers_supported",
		},
		{
			name: "bad identity style",
			doc: `[[platform]]
name = "gp"
base = "postgresql"
identity_style = "rowid"`,
			wantErr: `unknown identity style "rowid"`,
		},
		{
			name:    "missing name",
			doc:     "[[platform]]\nbase = \"postgresql\"",
			wantErr: "platform #1: name is required",
		},
		{
			name:    "malformed",
			doc:     "[[platform]\n",
			wantErr: "decode error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlatforms(strings.NewReader(tt.doc), "test.toml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewRegistryRejectsCycleInUserFile(t *testing.T) {
	path := writeFile(t, "platforms.toml", `
[[platform]]
name = "postgresql"
base = "greenplum"
`)
	cfg := Default()
	cfg.Registry.File = path
	_, err := NewRegistry(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}
