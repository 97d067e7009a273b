// Package toml reads a dialect-neutral schema definition from a TOML file
// and converts it into a core.Database, so DDL can be generated for any
// registered platform without a live connection.
package toml

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"dbplat/internal/core"
)

// schemaFile is the top-level TOML document.
type schemaFile struct {
	Database   tomlDatabase    `toml:"database"`
	Validation *tomlValidation `toml:"validation"`
	Sequences  []tomlSequence  `toml:"sequences"`
	Tables     []tomlTable     `toml:"tables"`
}

// tomlDatabase maps [database].
type tomlDatabase struct {
	Name    string `toml:"name"`
	Schema  string `toml:"schema"`
	Dialect string `toml:"dialect"`
}

// tomlValidation maps [validation].
type tomlValidation struct {
	MaxIdentifierLength int    `toml:"max_identifier_length"`
	AllowedNamePattern  string `toml:"allowed_name_pattern"`
}

// tomlSequence maps [[sequences]].
type tomlSequence struct {
	Name      string `toml:"name"`
	Start     int64  `toml:"start"`
	Increment int64  `toml:"increment"`
}

// Parser reads TOML schema files.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// ParseFile opens the file at path and parses it as a TOML schema.
func (p *Parser) ParseFile(path string) (*core.Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("toml: open file %q: %w", path, err)
	}
	defer f.Close()

	return p.Parse(f)
}

// Parse reads TOML content from r. Keys the format does not define are
// rejected.
func (p *Parser) Parse(r io.Reader) (*core.Database, error) {
	var sf schemaFile
	md, err := toml.NewDecoder(r).Decode(&sf)
	if err != nil {
		return nil, fmt.Errorf("toml: decode error: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("toml: unknown keys: %s", strings.Join(keys, ", "))
	}

	return newConverter(&sf).convert()
}

type converter struct {
	sf     *schemaFile
	maxLen int
	nameRe *regexp.Regexp
}

func newConverter(sf *schemaFile) *converter {
	return &converter{sf: sf}
}

func (c *converter) convert() (*core.Database, error) {
	dialect, err := validateDialect(c.sf.Database.Dialect)
	if err != nil {
		return nil, err
	}
	if err := c.validateRules(); err != nil {
		return nil, err
	}

	db := &core.Database{
		Name:    c.sf.Database.Name,
		Schema:  c.sf.Database.Schema,
		Dialect: dialect,
		Tables:  make([]*core.Table, 0, len(c.sf.Tables)),
	}

	for _, ts := range c.sf.Sequences {
		if err := c.validateName("sequence", ts.Name); err != nil {
			return nil, fmt.Errorf("toml: %w", err)
		}
		db.Sequences = append(db.Sequences, &core.Sequence{
			Name:      ts.Name,
			Start:     ts.Start,
			Increment: ts.Increment,
		})
	}

	seen := make(map[string]bool, len(c.sf.Tables))
	for i := range c.sf.Tables {
		tt := &c.sf.Tables[i]
		t, err := c.convertTable(tt, i+1)
		if err != nil {
			return nil, fmt.Errorf("toml: table %q: %w", tt.Name, err)
		}
		lower := strings.ToLower(t.Name)
		if seen[lower] {
			return nil, fmt.Errorf("toml: duplicate table name %q", t.Name)
		}
		seen[lower] = true
		db.Tables = append(db.Tables, t)
	}

	if err := validateForeignKeyTargets(db); err != nil {
		return nil, fmt.Errorf("toml: %w", err)
	}
	return db, nil
}

// validateDialect accepts an empty dialect or a known one.
func validateDialect(raw string) (core.Dialect, error) {
	if raw == "" {
		return "", nil
	}
	if !core.IsValidDialect(raw) {
		return "", fmt.Errorf("toml: unsupported dialect %q; supported: %v", raw, core.SupportedDialects())
	}
	return core.Dialect(strings.ToLower(raw)), nil
}

// validateRules reads [validation] and pre-compiles the name pattern.
func (c *converter) validateRules() error {
	v := c.sf.Validation
	if v == nil {
		return nil
	}
	if v.MaxIdentifierLength < 0 {
		return fmt.Errorf("toml: max_identifier_length must not be negative, got %d", v.MaxIdentifierLength)
	}
	c.maxLen = v.MaxIdentifierLength

	if v.AllowedNamePattern != "" {
		re, err := regexp.Compile(v.AllowedNamePattern)
		if err != nil {
			return fmt.Errorf("toml: invalid allowed_name_pattern %q: %w", v.AllowedNamePattern, err)
		}
		c.nameRe = re
	}
	return nil
}

func (c *converter) validateName(entity, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s name is empty", entity)
	}
	if c.maxLen > 0 && len(name) > c.maxLen {
		return fmt.Errorf("%s %q exceeds maximum length %d", entity, name, c.maxLen)
	}
	if c.nameRe != nil && !c.nameRe.MatchString(name) {
		return fmt.Errorf("%s %q does not match allowed pattern %q", entity, name, c.nameRe.String())
	}
	return nil
}

// validateForeignKeyTargets checks that every foreign key points at a table
// and columns defined in the same file.
func validateForeignKeyTargets(db *core.Database) error {
	var errs []error
	for _, t := range db.Tables {
		for _, con := range t.Constraints {
			if con.Type != core.ConstraintForeignKey {
				continue
			}
			ref := db.FindTable(con.ReferencedTable)
			if ref == nil {
				errs = append(errs, fmt.Errorf("table %q: foreign key %q references unknown table %q", t.Name, con.Name, con.ReferencedTable))
				continue
			}
			for _, col := range con.ReferencedColumns {
				if ref.FindColumn(col) == nil {
					errs = append(errs, fmt.Errorf("table %q: foreign key %q references unknown column %s.%s", t.Name, con.Name, ref.Name, col))
				}
			}
		}
	}
	return errors.Join(errs...)
}
