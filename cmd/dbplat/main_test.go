package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbplat/internal/dberr"
)

const eventsSchema = `
[database]
name = "events"
dialect = "postgresql"

[[tables]]
name = "events"

[tables.distribution]
columns = ["id"]

[[tables.columns]]
name = "id"
type = "bigint"
primary_key = true

[[tables.columns]]
name = "payload"
type = "text"
nullable = true
`

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("DBPLAT_DSN", "")
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.toml")
	require.NoError(t, os.WriteFile(path, []byte(eventsSchema), 0o644))
	return path
}

func TestPlatformsCommand(t *testing.T) {
	out, _, err := run(t, "platforms", "--format", "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "greenplum: greenplum -> postgresql\n")
	assert.Contains(t, out, "tidb: tidb -> mysql\n")
	assert.Contains(t, out, "postgresql: postgresql\n")
}

func TestCapabilitiesCommand(t *testing.T) {
	out, _, err := run(t, "capabilities", "gpdb", "--format", "json")
	require.NoError(t, err)

	var payload struct {
		Platforms []struct {
			Name         string         `json:"name"`
			Vendor       string         `json:"vendor"`
			Chain        []string       `json:"chain"`
			Overrides    []string       `json:"overrides"`
			Capabilities map[string]any `json:"capabilities"`
		} `json:"platforms"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	require.Len(t, payload.Platforms, 1)

	gp := payload.Platforms[0]
	assert.Equal(t, "greenplum", gp.Name)
	assert.Equal(t, "Greenplum", gp.Vendor)
	assert.Equal(t, []string{"greenplum", "postgresql"}, gp.Chain)
	assert.Equal(t, []string{"triggers_supported", "identity_style", "distributed_tables"}, gp.Overrides)
	assert.Equal(t, false, gp.Capabilities["triggersSupported"])
	assert.Equal(t, true, gp.Capabilities["sequencesSupported"])
	assert.Equal(t, "serial", gp.Capabilities["identityStyle"])
}

func TestCapabilitiesUnknownDialect(t *testing.T) {
	_, _, err := run(t, "capabilities", "oracle")
	var unknown *dberr.UnknownDialectError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "oracle", unknown.Dialect)
}

func TestCommandsNeedingConnection(t *testing.T) {
	for _, args := range [][]string{
		{"detect"},
		{"inspect"},
		{"capabilities"},
	} {
		t.Run(args[0], func(t *testing.T) {
			_, _, err := run(t, args...)
			assert.True(t, errors.Is(err, errNoDSN), "got %v", err)
		})
	}
}

func TestDDLCommand(t *testing.T) {
	schema := writeSchema(t)

	t.Run("dialect from source", func(t *testing.T) {
		out, _, err := run(t, "ddl", schema)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "-- dbplat DDL for postgresql\n"))
		assert.Contains(t, out, `CREATE TABLE "events"`)
		assert.NotContains(t, out, "DISTRIBUTED")
	})

	t.Run("greenplum distributes", func(t *testing.T) {
		out, _, err := run(t, "ddl", schema, "--platform", "greenplum")
		require.NoError(t, err)
		assert.Contains(t, out, `DISTRIBUTED BY ("id");`)
	})

	t.Run("summary", func(t *testing.T) {
		out, _, err := run(t, "ddl", schema, "-p", "mysql", "-f", "summary")
		require.NoError(t, err)
		assert.Equal(t, "mysql: 1 statements\n  CREATE TABLE     1\n", out)
	})

	t.Run("json to file", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "events.sql")
		out, stderr, err := run(t, "ddl", schema, "-p", "greenplum", "-o", target, "-f", "json")
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.Contains(t, stderr, "DDL for greenplum saved to "+target)

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "-- dbplat DDL for greenplum\n"))
	})

	t.Run("unsupported source", func(t *testing.T) {
		_, _, err := run(t, "ddl", "schema.yaml")
		assert.EqualError(t, err, "unsupported file format: schema.yaml (want .toml or .sql)")
	})
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := run(t, "platforms", "--format", "xml")
	assert.EqualError(t, err, "unsupported format: xml; use 'human', 'json', or 'summary'")
}
