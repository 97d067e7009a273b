// Package core contains the single source of truth for a database schema.
// Every DDL reader produces a Database, and every generator consumes one, so
// the structure here stays dialect-neutral: vendor-specific details live in
// the few optional fields (distribution policy, triggers, sequences) that only
// some platforms fill in.
package core

import (
	"fmt"
	"strings"
)

// Dialect identifies a supported SQL dialect.
type Dialect string

const (
	DialectPostgreSQL Dialect = "postgresql"
	DialectGreenplum  Dialect = "greenplum"
	DialectMySQL      Dialect = "mysql"
	DialectMariaDB    Dialect = "mariadb"
	DialectTiDB       Dialect = "tidb"
)

// SupportedDialects returns a slice of all supported dialect values.
func SupportedDialects() []Dialect {
	return []Dialect{
		DialectPostgreSQL,
		DialectGreenplum,
		DialectMySQL,
		DialectMariaDB,
		DialectTiDB,
	}
}

// IsValidDialect reports whether d is a recognized dialect string.
func IsValidDialect(d string) bool {
	for _, supported := range SupportedDialects() {
		if strings.EqualFold(string(supported), d) {
			return true
		}
	}
	return false
}

// Database is the schema model produced by a single read. Tables are kept in
// catalog order; see SortTables.
type Database struct {
	Name      string      `json:"name"`
	Schema    string      `json:"schema,omitempty"`
	Dialect   Dialect     `json:"dialect,omitempty"`
	Version   string      `json:"version,omitempty"`
	Tables    []*Table    `json:"tables"`
	Sequences []*Sequence `json:"sequences,omitempty"`
}

// Table represents a table in the schema.
type Table struct {
	Name        string        `json:"name"`
	Position    int           `json:"position"`
	Columns     []*Column     `json:"columns"`
	Constraints []*Constraint `json:"constraints,omitempty"`
	Indexes     []*Index      `json:"indexes,omitempty"`
	Triggers    []*Trigger    `json:"triggers,omitempty"`
	Comment     string        `json:"comment,omitempty"`

	// Distribution is set by MPP readers (Greenplum) only.
	Distribution *Distribution `json:"distribution,omitempty"`
}

// Distribution describes how an MPP engine spreads table rows across segments.
type Distribution struct {
	Random     bool     `json:"random,omitempty"`
	Replicated bool     `json:"replicated,omitempty"`
	Columns    []string `json:"columns,omitempty"`
}

// Column represents a single column inside a table.
type Column struct {
	Name          string   `json:"name"`
	Position      int      `json:"position"`
	TypeRaw       string   `json:"typeRaw"`
	Type          DataType `json:"type"`
	Nullable      bool     `json:"nullable"`
	PrimaryKey    bool     `json:"primaryKey"`
	AutoIncrement bool     `json:"autoIncrement"`
	DefaultValue  *string  `json:"defaultValue,omitempty"`
	Comment       string   `json:"comment,omitempty"`
	Collate       string   `json:"collate,omitempty"`
	Charset       string   `json:"charset,omitempty"`

	// SequenceName binds the column to a named sequence (PostgreSQL family).
	SequenceName string `json:"sequenceName,omitempty"`

	IsGenerated          bool              `json:"isGenerated,omitempty"`
	GenerationExpression string            `json:"generationExpression,omitempty"`
	GenerationStorage    GenerationStorage `json:"generationStorage,omitempty"`
}

// DataType is an ENUM with all possible portable column data types.
type DataType string

const (
	DataTypeString   DataType = "string"
	DataTypeInt      DataType = "int"
	DataTypeFloat    DataType = "float"
	DataTypeBoolean  DataType = "boolean"
	DataTypeDatetime DataType = "datetime"
	DataTypeJSON     DataType = "json"
	DataTypeUUID     DataType = "uuid"
	DataTypeBinary   DataType = "binary"
	DataTypeEnum     DataType = "enum"
	DataTypeUnknown  DataType = "unknown"
)

// GenerationStorage is an ENUM with all possible column generation storage options.
type GenerationStorage string

const (
	GenerationVirtual GenerationStorage = "VIRTUAL"
	GenerationStored  GenerationStorage = "STORED"
)

// Constraint contains all constraint options for a table.
type Constraint struct {
	Name    string         `json:"name,omitempty"`
	Type    ConstraintType `json:"type"`
	Columns []string       `json:"columns"`

	ReferencedTable   string            `json:"referencedTable,omitempty"`
	ReferencedColumns []string          `json:"referencedColumns,omitempty"`
	OnDelete          ReferentialAction `json:"onDelete,omitempty"`
	OnUpdate          ReferentialAction `json:"onUpdate,omitempty"`

	CheckExpression string `json:"checkExpression,omitempty"`
}

// ConstraintType is an ENUM with all possible constraint types.
type ConstraintType string

const (
	ConstraintPrimaryKey ConstraintType = "PRIMARY KEY"
	ConstraintForeignKey ConstraintType = "FOREIGN KEY"
	ConstraintUnique     ConstraintType = "UNIQUE"
	ConstraintCheck      ConstraintType = "CHECK"
)

// ReferentialAction is an ENUM with all possible foreign key actions.
type ReferentialAction string

const (
	RefActionNone       ReferentialAction = ""
	RefActionCascade    ReferentialAction = "CASCADE"
	RefActionRestrict   ReferentialAction = "RESTRICT"
	RefActionSetNull    ReferentialAction = "SET NULL"
	RefActionSetDefault ReferentialAction = "SET DEFAULT"
	RefActionNoAction   ReferentialAction = "NO ACTION"
)

// Index contains all index options for a table.
type Index struct {
	Name    string        `json:"name,omitempty"`
	Columns []IndexColumn `json:"columns"`
	Unique  bool          `json:"unique,omitempty"`
	Type    IndexType     `json:"type,omitempty"`
	Comment string        `json:"comment,omitempty"`
}

// IndexColumn is one key part of an index.
type IndexColumn struct {
	Name   string    `json:"name"`
	Length int       `json:"length,omitempty"`
	Order  SortOrder `json:"order,omitempty"`
}

// IndexType is an ENUM with all possible index types.
type IndexType string

const (
	IndexTypeBTree    IndexType = "BTREE"
	IndexTypeHash     IndexType = "HASH"
	IndexTypeFullText IndexType = "FULLTEXT"
	IndexTypeSpatial  IndexType = "SPATIAL"
	IndexTypeGIN      IndexType = "GIN"
	IndexTypeGiST     IndexType = "GiST"
	IndexTypeBitmap   IndexType = "BITMAP"
)

// SortOrder is an ENUM with all possible column sort orders.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// Trigger holds a trigger as reported by the catalog. Definition is the
// complete CREATE TRIGGER statement when the engine can produce one.
type Trigger struct {
	Name       string   `json:"name"`
	Timing     string   `json:"timing,omitempty"`
	Events     []string `json:"events,omitempty"`
	Definition string   `json:"definition"`
}

// Sequence is a standalone sequence object.
type Sequence struct {
	Name      string `json:"name"`
	Start     int64  `json:"start"`
	Increment int64  `json:"increment"`
}

// FindTable looks for a table by name inside a database.
func (db *Database) FindTable(name string) *Table {
	for _, t := range db.Tables {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

// FindColumn looks for a column by name inside a table.
func (t *Table) FindColumn(name string) *Column {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// PrimaryKey returns the primary key constraint of the table.
func (t *Table) PrimaryKey() *Constraint {
	for _, c := range t.Constraints {
		if c.Type == ConstraintPrimaryKey {
			return c
		}
	}
	return nil
}

// PrimaryKeyColumns returns the primary key column names, falling back to
// column-level flags when no constraint was recorded.
func (t *Table) PrimaryKeyColumns() []string {
	if pk := t.PrimaryKey(); pk != nil {
		return pk.Columns
	}
	var cols []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

// Names returns the names of the columns in the index.
func (i *Index) Names() []string {
	names := make([]string, len(i.Columns))
	for idx, col := range i.Columns {
		names[idx] = col.Name
	}
	return names
}

// String returns a string representation of a table with all columns, constraints, and indexes.
func (t *Table) String() string {
	return fmt.Sprintf("Table: %s (%d cols, %d constraints, %d indexes)",
		t.Name, len(t.Columns), len(t.Constraints), len(t.Indexes))
}

// ParseReferences splits a "table.column" reference string into its two parts.
// It returns ("", "", false) if the format is invalid.
func ParseReferences(ref string) (table, column string, ok bool) {
	ref = strings.TrimSpace(ref)
	dot := strings.LastIndex(ref, ".")
	if dot <= 0 || dot >= len(ref)-1 {
		return "", "", false
	}
	return ref[:dot], ref[dot+1:], true
}

type normalizeDataTypeRule struct {
	dataType   DataType
	substrings []string
}

var normalizeDataTypeRules = []normalizeDataTypeRule{
	{dataType: DataTypeEnum, substrings: []string{"enum"}},
	{dataType: DataTypeJSON, substrings: []string{"json"}},
	{dataType: DataTypeUUID, substrings: []string{"uuid"}},
	{dataType: DataTypeString, substrings: []string{"char", "text", "string", "set"}},
	{dataType: DataTypeBoolean, substrings: []string{"bool", "tinyint(1)"}},
	{dataType: DataTypeInt, substrings: []string{"int", "serial"}},
	{dataType: DataTypeFloat, substrings: []string{"float", "double", "decimal", "numeric", "real"}},
	{dataType: DataTypeDatetime, substrings: []string{"timestamp", "date", "time"}},
	{dataType: DataTypeBinary, substrings: []string{"blob", "binary", "bytea"}},
}

// NormalizeDataType maps a raw SQL type string (e.g. "VARCHAR(255)") to one of
// the portable DataType constants. The matching is case-insensitive and based
// on substring containment using normalizeDataTypeRules.
func NormalizeDataType(rawType string) DataType {
	lower := strings.ToLower(strings.TrimSpace(rawType))
	if lower == "" {
		return DataTypeUnknown
	}
	for _, rule := range normalizeDataTypeRules {
		for _, sub := range rule.substrings {
			if strings.Contains(lower, sub) {
				return rule.dataType
			}
		}
	}
	return DataTypeUnknown
}
