package mysql

import (
	"github.com/pingcap/tidb/pkg/parser/ast"

	"dbplat/internal/core"
)

func (p *Parser) parseConstraints(constraints []*ast.Constraint, table *core.Table) {
	for _, constraint := range constraints {
		p.applyConstraint(table, constraint)
	}
}

// keyColumns converts index key parts. Expression keys are kept in
// parentheses so generators emit them unquoted.
func keyColumns(keys []*ast.IndexPartSpecification) ([]string, []core.IndexColumn) {
	columns := make([]string, 0, len(keys))
	indexCols := make([]core.IndexColumn, 0, len(keys))
	for _, key := range keys {
		ic := core.IndexColumn{Length: key.Length}
		switch {
		case key.Column != nil:
			ic.Name = key.Column.Name.O
		case key.Expr != nil:
			ic.Name = "(" + restoreExpr(key.Expr) + ")"
		default:
			continue
		}
		if key.Desc {
			ic.Order = core.SortDesc
		}
		columns = append(columns, ic.Name)
		indexCols = append(indexCols, ic)
	}
	return columns, indexCols
}

func (p *Parser) applyConstraint(table *core.Table, constraint *ast.Constraint) {
	if constraint == nil {
		return
	}
	columns, indexCols := keyColumns(constraint.Keys)

	switch constraint.Tp {
	case ast.ConstraintPrimaryKey:
		for _, colName := range columns {
			ensurePrimaryKeyColumn(table, colName)
		}
		if pk := table.PrimaryKey(); pk != nil {
			pk.Columns = columns
		}
	case ast.ConstraintUniq, ast.ConstraintUniqKey, ast.ConstraintUniqIndex:
		table.Constraints = append(table.Constraints, &core.Constraint{
			Name:    constraint.Name,
			Type:    core.ConstraintUnique,
			Columns: columns,
		})
	case ast.ConstraintForeignKey:
		table.Constraints = append(table.Constraints, foreignKey(constraint.Name, columns, constraint.Refer))
	case ast.ConstraintIndex, ast.ConstraintKey:
		table.Indexes = append(table.Indexes, newIndex(constraint.Name, indexCols, core.IndexTypeBTree, false, constraint.Option))
	case ast.ConstraintFulltext:
		table.Indexes = append(table.Indexes, newIndex(constraint.Name, indexCols, core.IndexTypeFullText, false, constraint.Option))
	case ast.ConstraintCheck:
		table.Constraints = append(table.Constraints, &core.Constraint{
			Name:            constraint.Name,
			Type:            core.ConstraintCheck,
			CheckExpression: restoreExpr(constraint.Expr),
		})
	}
}

func newIndex(name string, cols []core.IndexColumn, typ core.IndexType, unique bool, opt *ast.IndexOption) *core.Index {
	idx := &core.Index{
		Name:    name,
		Columns: cols,
		Unique:  unique,
		Type:    typ,
	}
	if opt != nil {
		idx.Comment = opt.Comment
	}
	return idx
}

// applyCreateIndex handles a standalone CREATE [UNIQUE|FULLTEXT|SPATIAL] INDEX.
func (p *Parser) applyCreateIndex(table *core.Table, stmt *ast.CreateIndexStmt) {
	_, cols := keyColumns(stmt.IndexPartSpecifications)
	typ := core.IndexTypeBTree
	switch stmt.KeyType {
	case ast.IndexKeyTypeFulltext:
		typ = core.IndexTypeFullText
	case ast.IndexKeyTypeSpatial:
		typ = core.IndexTypeSpatial
	}
	unique := stmt.KeyType == ast.IndexKeyTypeUnique
	table.Indexes = append(table.Indexes, newIndex(stmt.IndexName, cols, typ, unique, stmt.IndexOption))
}

// applyAlterTable handles the ADD CONSTRAINT / ADD INDEX forms dump tools
// emit after the CREATE TABLE statements.
func (p *Parser) applyAlterTable(table *core.Table, stmt *ast.AlterTableStmt) {
	for _, spec := range stmt.Specs {
		if spec.Tp == ast.AlterTableAddConstraint {
			p.applyConstraint(table, spec.Constraint)
		}
	}
}
