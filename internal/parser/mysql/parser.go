// Package mysql builds a core.Database from a MySQL-family schema dump
// (mysqldump --no-data, SHOW CREATE TABLE output, hand-written DDL) using the
// TiDB SQL parser.
package mysql

import (
	"fmt"
	"os"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"

	"dbplat/internal/core"
)

type Parser struct {
	p *parser.Parser
}

func NewParser() *Parser {
	return &Parser{
		p: parser.New(),
	}
}

// Parse converts the CREATE TABLE, CREATE INDEX, CREATE SEQUENCE and
// ALTER TABLE ... ADD statements in sql. Other statements (SET, DROP,
// INSERT, LOCK) are ignored. Tables are positioned in dump order.
func (p *Parser) Parse(sql string) (*core.Database, error) {
	stmtNodes, _, err := p.p.Parse(sql, "", "")
	if err != nil {
		return nil, fmt.Errorf("failed to parse MySQL dump: %w", err)
	}

	db := &core.Database{
		Dialect: core.DialectMySQL,
		Tables:  []*core.Table{},
	}

	for _, stmtNode := range stmtNodes {
		switch stmt := stmtNode.(type) {
		case *ast.CreateTableStmt:
			if stmt.ReferTable != nil {
				return nil, fmt.Errorf("table %q: CREATE TABLE ... LIKE is not supported", stmt.Table.Name.O)
			}
			table := p.convertCreateTable(stmt)
			if db.FindTable(table.Name) != nil {
				return nil, fmt.Errorf("duplicate table %q", table.Name)
			}
			table.Position = len(db.Tables) + 1
			db.Tables = append(db.Tables, table)
		case *ast.CreateIndexStmt:
			table, err := findTable(db, stmt.Table)
			if err != nil {
				return nil, fmt.Errorf("CREATE INDEX %s: %w", stmt.IndexName, err)
			}
			p.applyCreateIndex(table, stmt)
		case *ast.AlterTableStmt:
			table, err := findTable(db, stmt.Table)
			if err != nil {
				return nil, fmt.Errorf("ALTER TABLE: %w", err)
			}
			p.applyAlterTable(table, stmt)
		case *ast.CreateSequenceStmt:
			db.Sequences = append(db.Sequences, convertSequence(stmt))
		}
	}

	return db, nil
}

// ParseFile reads the dump at path and parses it.
func (p *Parser) ParseFile(path string) (*core.Database, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mysql: read file %q: %w", path, err)
	}
	return p.Parse(string(b))
}

func findTable(db *core.Database, name *ast.TableName) (*core.Table, error) {
	t := db.FindTable(name.Name.O)
	if t == nil {
		return nil, fmt.Errorf("table %q is not defined before this statement", name.Name.O)
	}
	return t, nil
}

func (p *Parser) convertCreateTable(stmt *ast.CreateTableStmt) *core.Table {
	table := &core.Table{
		Name:        stmt.Table.Name.O,
		Columns:     []*core.Column{},
		Constraints: []*core.Constraint{},
		Indexes:     []*core.Index{},
	}

	p.parseColumns(stmt.Cols, table)
	p.parseConstraints(stmt.Constraints, table)
	p.parseTableOptions(stmt.Options, table)

	return table
}

// parseTableOptions keeps the table comment. Engine, row format and default
// charset are storage details of the source server.
func (p *Parser) parseTableOptions(opts []*ast.TableOption, table *core.Table) {
	for _, opt := range opts {
		if opt.Tp == ast.TableOptionComment {
			table.Comment = opt.StrValue
		}
	}
}

func convertSequence(stmt *ast.CreateSequenceStmt) *core.Sequence {
	seq := &core.Sequence{Name: stmt.Name.Name.O, Start: 1, Increment: 1}
	for _, opt := range stmt.SeqOptions {
		switch opt.Tp {
		case ast.SequenceStartWith:
			seq.Start = opt.IntValue
		case ast.SequenceOptionIncrementBy:
			seq.Increment = opt.IntValue
		}
	}
	return seq
}

func normalizeAction(s string) core.ReferentialAction {
	return core.ReferentialAction(strings.ToUpper(strings.TrimSpace(s)))
}
