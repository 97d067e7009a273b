package mysql

import (
	"strings"

	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/format"

	"dbplat/internal/core"
)

// exprFlags restores expressions without identifier backquotes so that
// CHECK, generated and index expressions stay portable.
const exprFlags = format.RestoreStringSingleQuotes | format.RestoreKeyWordUppercase

func (p *Parser) parseColumns(cols []*ast.ColumnDef, table *core.Table) {
	for i, colDef := range cols {
		col := newColumnFromDef(colDef)
		col.Position = i + 1
		for _, opt := range colDef.Options {
			p.applyColumnOption(table, col, opt)
		}
		table.Columns = append(table.Columns, col)
		if col.PrimaryKey {
			ensurePrimaryKeyColumn(table, col.Name)
		}
	}
}

func newColumnFromDef(colDef *ast.ColumnDef) *core.Column {
	typeRaw := columnType(colDef.Tp.String())
	return &core.Column{
		Name:     colDef.Name.Name.O,
		TypeRaw:  typeRaw,
		Type:     core.NormalizeDataType(typeRaw),
		Nullable: true,
		Collate:  colDef.Tp.GetCollate(),
		Charset:  colDef.Tp.GetCharset(),
	}
}

// columnType drops the CHARACTER SET and COLLATE suffix the parser appends
// to string types; both are kept on their own column fields.
func columnType(s string) string {
	for _, marker := range []string{" CHARACTER SET ", " COLLATE "} {
		if i := strings.Index(s, marker); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}

func (p *Parser) applyColumnOption(table *core.Table, col *core.Column, opt *ast.ColumnOption) {
	if opt == nil {
		return
	}

	switch opt.Tp {
	case ast.ColumnOptionNotNull:
		col.Nullable = false
	case ast.ColumnOptionNull:
		col.Nullable = true
	case ast.ColumnOptionPrimaryKey:
		col.PrimaryKey = true
		col.Nullable = false
	case ast.ColumnOptionAutoIncrement:
		col.AutoIncrement = true
	case ast.ColumnOptionDefaultValue:
		if s := p.exprToString(opt.Expr); s != nil && !strings.EqualFold(*s, "NULL") {
			col.DefaultValue = s
		}
	case ast.ColumnOptionUniqKey:
		table.Constraints = append(table.Constraints, &core.Constraint{
			Type:    core.ConstraintUnique,
			Columns: []string{col.Name},
		})
	case ast.ColumnOptionComment:
		if s := p.exprToString(opt.Expr); s != nil {
			col.Comment = *s
		}
	case ast.ColumnOptionCollate:
		if s := p.exprToString(opt.Expr); s != nil {
			col.Collate = *s
		} else if opt.StrValue != "" {
			col.Collate = opt.StrValue
		}
	case ast.ColumnOptionFulltext:
		table.Indexes = append(table.Indexes, &core.Index{
			Columns: []core.IndexColumn{{Name: col.Name}},
			Type:    core.IndexTypeFullText,
		})
	case ast.ColumnOptionCheck:
		if s := restoreExpr(opt.Expr); s != "" {
			table.Constraints = append(table.Constraints, &core.Constraint{
				Type:            core.ConstraintCheck,
				Columns:         []string{col.Name},
				CheckExpression: s,
			})
		}
	case ast.ColumnOptionReference:
		table.Constraints = append(table.Constraints, foreignKey("", []string{col.Name}, opt.Refer))
	case ast.ColumnOptionGenerated:
		col.IsGenerated = true
		col.GenerationExpression = restoreExpr(opt.Expr)
		col.GenerationStorage = core.GenerationVirtual
		if opt.Stored {
			col.GenerationStorage = core.GenerationStored
		}
	}
}

func foreignKey(name string, columns []string, refer *ast.ReferenceDef) *core.Constraint {
	c := &core.Constraint{
		Name:            name,
		Type:            core.ConstraintForeignKey,
		Columns:         columns,
		ReferencedTable: refer.Table.Name.O,
	}
	for _, spec := range refer.IndexPartSpecifications {
		if spec.Column != nil {
			c.ReferencedColumns = append(c.ReferencedColumns, spec.Column.Name.O)
		}
	}
	if refer.OnDelete != nil {
		c.OnDelete = normalizeAction(refer.OnDelete.ReferOpt.String())
	}
	if refer.OnUpdate != nil {
		c.OnUpdate = normalizeAction(refer.OnUpdate.ReferOpt.String())
	}
	return c
}

func ensurePrimaryKeyColumn(table *core.Table, colName string) {
	colName = strings.TrimSpace(colName)
	if colName == "" {
		return
	}

	pk := table.PrimaryKey()
	if pk == nil {
		pk = &core.Constraint{Name: "PRIMARY", Type: core.ConstraintPrimaryKey}
		table.Constraints = append(table.Constraints, pk)
	}
	if !containsFold(pk.Columns, colName) {
		pk.Columns = append(pk.Columns, colName)
	}
	if col := table.FindColumn(colName); col != nil {
		col.PrimaryKey = true
		col.Nullable = false
	}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// restoreExpr renders an expression with bare identifiers.
func restoreExpr(expr ast.ExprNode) string {
	if expr == nil {
		return ""
	}
	var sb strings.Builder
	if err := expr.Restore(format.NewRestoreCtx(exprFlags, &sb)); err != nil {
		return ""
	}
	return strings.TrimSpace(sb.String())
}

// exprToString renders a literal-ish expression (default, comment) and
// unquotes string literals.
func (p *Parser) exprToString(expr ast.ExprNode) *string {
	if expr == nil {
		return nil
	}

	var sb strings.Builder
	restoreCtx := format.NewRestoreCtx(format.DefaultRestoreFlags, &sb)
	if err := expr.Restore(restoreCtx); err != nil {
		return nil
	}
	s := strings.TrimSpace(sb.String())

	if unquoted, ok := tryUnquoteSQLStringLiteral(s); ok {
		return &unquoted
	}

	return &s
}

func tryUnquoteSQLStringLiteral(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[len(s)-1] != '\'' {
		return "", false
	}

	if s[0] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'"), true
	}

	q := strings.IndexByte(s, '\'')
	if q <= 0 {
		return "", false
	}
	prefix := strings.TrimSpace(s[:q])
	if !isSQLStringIntroducer(prefix) {
		return "", false
	}
	inner := s[q+1 : len(s)-1]
	return strings.ReplaceAll(inner, "''", "'"), true
}

// isSQLStringIntroducer reports whether prefix is N or a _charset
// introducer such as _utf8mb4.
func isSQLStringIntroducer(prefix string) bool {
	if strings.EqualFold(prefix, "N") {
		return true
	}
	if !strings.HasPrefix(prefix, "_") || len(prefix) == 1 {
		return false
	}
	for _, r := range prefix[1:] {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}
