package toml

import (
	"errors"
	"fmt"
	"strings"

	"dbplat/internal/core"
)

// tomlConstraint maps [[tables.constraints]].
type tomlConstraint struct {
	Name              string   `toml:"name"`
	Type              string   `toml:"type"`
	Columns           []string `toml:"columns"`
	ReferencedTable   string   `toml:"referenced_table"`
	ReferencedColumns []string `toml:"referenced_columns"`
	OnDelete          string   `toml:"on_delete"`
	OnUpdate          string   `toml:"on_update"`
	CheckExpression   string   `toml:"check_expression"`
}

func convertTableConstraint(tc *tomlConstraint) *core.Constraint {
	return &core.Constraint{
		Name:              tc.Name,
		Type:              core.ConstraintType(strings.ToUpper(strings.TrimSpace(tc.Type))),
		Columns:           tc.Columns,
		ReferencedTable:   tc.ReferencedTable,
		ReferencedColumns: tc.ReferencedColumns,
		OnDelete:          core.ReferentialAction(strings.ToUpper(tc.OnDelete)),
		OnUpdate:          core.ReferentialAction(strings.ToUpper(tc.OnUpdate)),
		CheckExpression:   tc.CheckExpression,
	}
}

// constraintName builds names such as pk_users, uq_users_email,
// chk_users_age and fk_orders_users.
func constraintName(typ core.ConstraintType, table string, columns []string, refTable string) string {
	table = strings.ToLower(table)
	switch typ {
	case core.ConstraintPrimaryKey:
		return "pk_" + table
	case core.ConstraintForeignKey:
		return "fk_" + table + "_" + strings.ToLower(refTable)
	case core.ConstraintUnique:
		return "uq_" + table + "_" + strings.ToLower(strings.Join(columns, "_"))
	default:
		return "chk_" + table + "_" + strings.ToLower(strings.Join(columns, "_"))
	}
}

func checkPKConflict(table *core.Table) error {
	hasColumnPK := false
	for _, col := range table.Columns {
		if col.PrimaryKey {
			hasColumnPK = true
			break
		}
	}
	constraintPKCount := 0
	for _, con := range table.Constraints {
		if con.Type == core.ConstraintPrimaryKey {
			constraintPKCount++
		}
	}
	if constraintPKCount > 1 {
		return errors.New(
			"multiple PRIMARY KEY constraints declared; a table can have at most one primary key",
		)
	}
	if hasColumnPK && constraintPKCount > 0 {
		return errors.New(
			"primary key declared on both column(s) and in constraints section; " +
				"use column-level primary_key for single-column PKs or a constraint for composite PKs, not both",
		)
	}
	return nil
}

// synthesizeConstraints turns column-level primary_key, unique, check and
// references keys into table constraints.
func synthesizeConstraints(table *core.Table, columns []tomlColumn) {
	synthesizePK(table)
	for i := range columns {
		tc := &columns[i]
		cols := []string{tc.Name}
		if tc.Unique {
			table.Constraints = append(table.Constraints, &core.Constraint{
				Name:    constraintName(core.ConstraintUnique, table.Name, cols, ""),
				Type:    core.ConstraintUnique,
				Columns: cols,
			})
		}
		if tc.Check != "" {
			table.Constraints = append(table.Constraints, &core.Constraint{
				Name:            constraintName(core.ConstraintCheck, table.Name, cols, ""),
				Type:            core.ConstraintCheck,
				CheckExpression: tc.Check,
			})
		}
		if tc.References != "" {
			// Format was validated in convertColumn.
			refTable, refCol, _ := core.ParseReferences(tc.References)
			table.Constraints = append(table.Constraints, &core.Constraint{
				Name:              constraintName(core.ConstraintForeignKey, table.Name, cols, refTable),
				Type:              core.ConstraintForeignKey,
				Columns:           cols,
				ReferencedTable:   refTable,
				ReferencedColumns: []string{refCol},
				OnDelete:          core.ReferentialAction(strings.ToUpper(tc.OnDelete)),
				OnUpdate:          core.ReferentialAction(strings.ToUpper(tc.OnUpdate)),
			})
		}
	}
}

func synthesizePK(table *core.Table) {
	if table.PrimaryKey() != nil {
		return
	}
	var pkCols []string
	for _, col := range table.Columns {
		if col.PrimaryKey {
			pkCols = append(pkCols, col.Name)
		}
	}
	if len(pkCols) == 0 {
		return
	}
	table.Constraints = append(table.Constraints, &core.Constraint{
		Name:    constraintName(core.ConstraintPrimaryKey, table.Name, pkCols, ""),
		Type:    core.ConstraintPrimaryKey,
		Columns: pkCols,
	})
}

// validateConstraints checks for duplicate names, unknown types, missing
// columns and incomplete FK definitions.
func validateConstraints(table *core.Table) error {
	seen := make(map[string]bool, len(table.Constraints))
	for _, con := range table.Constraints {
		if con.Name == "" {
			continue
		}
		lower := strings.ToLower(con.Name)
		if seen[lower] {
			return fmt.Errorf("duplicate constraint name %q", con.Name)
		}
		seen[lower] = true
	}

	for _, con := range table.Constraints {
		if err := validateConstraint(table, con); err != nil {
			return err
		}
	}
	return nil
}

func validateConstraint(table *core.Table, con *core.Constraint) error {
	switch con.Type {
	case core.ConstraintCheck:
		if strings.TrimSpace(con.CheckExpression) == "" {
			return fmt.Errorf("check constraint %q has no check_expression", con.Name)
		}
		return nil
	case core.ConstraintPrimaryKey, core.ConstraintUnique, core.ConstraintForeignKey:
	default:
		return fmt.Errorf("constraint %q has unknown type %q", con.Name, con.Type)
	}

	if len(con.Columns) == 0 {
		return fmt.Errorf("constraint %q (%s) has no columns", con.Name, con.Type)
	}
	for _, colName := range con.Columns {
		if table.FindColumn(colName) == nil {
			return fmt.Errorf("constraint %q references nonexistent column %q", con.Name, colName)
		}
	}
	if con.Type == core.ConstraintForeignKey {
		if con.ReferencedTable == "" {
			return fmt.Errorf("foreign key constraint %q is missing referenced_table", con.Name)
		}
		if len(con.ReferencedColumns) != len(con.Columns) {
			return fmt.Errorf("foreign key constraint %q has %d columns but %d referenced_columns",
				con.Name, len(con.Columns), len(con.ReferencedColumns))
		}
	}
	return nil
}
