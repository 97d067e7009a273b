package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbplat/internal/core"
	"dbplat/internal/parser/mysql"
	"dbplat/internal/parser/toml"
)

func TestForFile(t *testing.T) {
	p, err := ForFile("schema.TOML")
	require.NoError(t, err)
	assert.IsType(t, &toml.Parser{}, p)

	p, err = ForFile("dump.sql")
	require.NoError(t, err)
	assert.IsType(t, &mysql.Parser{}, p)

	_, err = ForFile("schema.json")
	var unsupported *UnsupportedFormatError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "schema.json", unsupported.Path)
}

func TestParseFile(t *testing.T) {
	db, err := ParseFile("toml/testdata/warehouse.toml")
	require.NoError(t, err)
	assert.Equal(t, core.DialectGreenplum, db.Dialect)

	db, err = ParseFile("mysql/testdata/shop.sql")
	require.NoError(t, err)
	assert.Equal(t, core.DialectMySQL, db.Dialect)
	assert.Len(t, db.Tables, 2)

	_, err = ParseFile("schema.yaml")
	assert.EqualError(t, err, "unsupported file format: schema.yaml (want .toml or .sql)")
}
