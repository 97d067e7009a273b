package toml

import (
	"fmt"
	"strings"

	"dbplat/internal/core"
)

// tomlIndex maps [[tables.indexes]]. Columns is the short form; ColumnDefs
// wins when both are set.
type tomlIndex struct {
	Name       string            `toml:"name"`
	Columns    []string          `toml:"columns"`
	ColumnDefs []tomlIndexColumn `toml:"column_defs"`
	Unique     bool              `toml:"unique"`
	Type       string            `toml:"type"`
	Comment    string            `toml:"comment"`
}

// tomlIndexColumn maps [[tables.indexes.column_defs]].
type tomlIndexColumn struct {
	Name   string `toml:"name"`
	Length int    `toml:"length"`
	Order  string `toml:"order"`
}

var indexTypes = map[string]core.IndexType{
	"BTREE":    core.IndexTypeBTree,
	"HASH":     core.IndexTypeHash,
	"FULLTEXT": core.IndexTypeFullText,
	"SPATIAL":  core.IndexTypeSpatial,
	"GIN":      core.IndexTypeGIN,
	"GIST":     core.IndexTypeGiST,
	"BITMAP":   core.IndexTypeBitmap,
}

func convertTableIndex(ti *tomlIndex) (*core.Index, error) {
	name := ti.Name
	if name == "" {
		name = "(unnamed)"
	}

	idx := &core.Index{
		Name:    ti.Name,
		Unique:  ti.Unique,
		Comment: ti.Comment,
		Type:    core.IndexTypeBTree,
	}
	if ti.Type != "" {
		typ, ok := indexTypes[strings.ToUpper(ti.Type)]
		if !ok {
			return nil, fmt.Errorf("index %s has unknown type %q", name, ti.Type)
		}
		idx.Type = typ
	}

	cols, err := mergeIndexColumns(ti)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", name, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("index %s has no columns", name)
	}
	idx.Columns = cols
	return idx, nil
}

func mergeIndexColumns(ti *tomlIndex) ([]core.IndexColumn, error) {
	if len(ti.ColumnDefs) > 0 {
		cols := make([]core.IndexColumn, 0, len(ti.ColumnDefs))
		for _, def := range ti.ColumnDefs {
			ic := core.IndexColumn{Name: def.Name, Length: def.Length, Order: core.SortAsc}
			switch order := core.SortOrder(strings.ToUpper(def.Order)); order {
			case "":
			case core.SortAsc, core.SortDesc:
				ic.Order = order
			default:
				return nil, fmt.Errorf("column %q has unknown order %q", def.Name, def.Order)
			}
			if def.Length < 0 {
				return nil, fmt.Errorf("column %q has negative length %d", def.Name, def.Length)
			}
			cols = append(cols, ic)
		}
		return cols, nil
	}

	cols := make([]core.IndexColumn, 0, len(ti.Columns))
	for _, name := range ti.Columns {
		cols = append(cols, core.IndexColumn{Name: name, Order: core.SortAsc})
	}
	return cols, nil
}

// validateIndexes checks for duplicate names and verifies that every index
// column references an existing table column.
func validateIndexes(table *core.Table) error {
	seen := make(map[string]bool, len(table.Indexes))
	for _, idx := range table.Indexes {
		if idx.Name == "" {
			continue
		}
		lower := strings.ToLower(idx.Name)
		if seen[lower] {
			return fmt.Errorf("duplicate index name %q", idx.Name)
		}
		seen[lower] = true
	}

	for _, idx := range table.Indexes {
		for _, ic := range idx.Columns {
			if table.FindColumn(ic.Name) == nil {
				return fmt.Errorf("index %q references nonexistent column %q", idx.Name, ic.Name)
			}
		}
	}
	return nil
}
