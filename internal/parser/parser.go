// Package parser reads offline schema sources and converts them to the
// canonical core.Database representation.
package parser

import (
	"path/filepath"
	"strings"

	"dbplat/internal/core"
	"dbplat/internal/parser/mysql"
	"dbplat/internal/parser/toml"
)

// FileParser is implemented by every offline schema source.
type FileParser interface {
	ParseFile(path string) (*core.Database, error)
}

// ForFile picks a parser by file extension: .toml for the schema format,
// .sql for a MySQL-family dump.
func ForFile(path string) (FileParser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.NewParser(), nil
	case ".sql":
		return mysql.NewParser(), nil
	default:
		return nil, &UnsupportedFormatError{Path: path}
	}
}

// ParseFile parses path with the parser ForFile selects.
func ParseFile(path string) (*core.Database, error) {
	p, err := ForFile(path)
	if err != nil {
		return nil, err
	}
	return p.ParseFile(path)
}

type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return "unsupported file format: " + e.Path + " (want .toml or .sql)"
}
