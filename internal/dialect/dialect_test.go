package dialect

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbplat/internal/capability"
	"dbplat/internal/core"
)

type mockGenerator struct {
	name string
}

func (m *mockGenerator) Name() string { return m.name }

func (m *mockGenerator) GenerateCreateTable(*core.Table, capability.Descriptor) (string, []string) {
	return "CREATE TABLE", nil
}

func (m *mockGenerator) GenerateCreateIndex(string, *core.Index) string { return "CREATE INDEX" }

func (m *mockGenerator) GenerateCreateSequence(*core.Sequence) string { return "CREATE SEQUENCE" }

func (m *mockGenerator) QuoteIdentifier(name string) string { return "`" + name + "`" }

func (m *mockGenerator) QuoteString(value string) string { return "'" + value + "'" }

func withEmptyRegistry(t *testing.T) {
	t.Helper()
	original := make(map[string]func() Generator)
	maps.Copy(original, registry)
	registry = make(map[string]func() Generator)
	t.Cleanup(func() { registry = original })
}

func TestRegisterAndNew(t *testing.T) {
	withEmptyRegistry(t)

	Register("test_dialect", func() Generator { return &mockGenerator{name: "test_dialect"} })

	g, err := New("test_dialect")
	require.NoError(t, err)
	assert.Equal(t, "test_dialect", g.Name())
}

func TestRegisterOverwrite(t *testing.T) {
	withEmptyRegistry(t)

	Register("x", func() Generator { return &mockGenerator{name: "first"} })
	Register("x", func() Generator { return &mockGenerator{name: "second"} })

	g, err := New("x")
	require.NoError(t, err)
	assert.Equal(t, "second", g.Name())
}

func TestNewEveryCallIsFresh(t *testing.T) {
	withEmptyRegistry(t)
	Register("x", func() Generator { return &mockGenerator{name: "x"} })

	a, err := New("x")
	require.NoError(t, err)
	b, err := New("x")
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestNewUnknownHasNoFallback(t *testing.T) {
	withEmptyRegistry(t)
	Register("mysql", func() Generator { return &mockGenerator{name: "mysql"} })

	g, err := New("postgresql")
	assert.Nil(t, g)
	assert.EqualError(t, err, `no DDL generator registered as "postgresql" (available: [mysql])`)
}

func TestNames(t *testing.T) {
	withEmptyRegistry(t)
	Register("b", func() Generator { return &mockGenerator{} })
	Register("a", func() Generator { return &mockGenerator{} })
	assert.Equal(t, []string{"a", "b"}, Names())
}
