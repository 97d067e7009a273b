package toml

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"dbplat/internal/core"
)

// tomlTable maps [[tables]].
type tomlTable struct {
	Name         string            `toml:"name"`
	Comment      string            `toml:"comment"`
	Columns      []tomlColumn      `toml:"columns"`
	Constraints  []tomlConstraint  `toml:"constraints"`
	Indexes      []tomlIndex       `toml:"indexes"`
	Triggers     []tomlTrigger     `toml:"triggers"`
	Distribution *tomlDistribution `toml:"distribution"`
	Timestamps   *tomlTimestamps   `toml:"timestamps"`
}

// tomlDistribution maps [tables.distribution].
type tomlDistribution struct {
	Columns    []string `toml:"columns"`
	Random     bool     `toml:"random"`
	Replicated bool     `toml:"replicated"`
}

// tomlTimestamps maps [tables.timestamps].
type tomlTimestamps struct {
	Enabled       bool   `toml:"enabled"`
	CreatedColumn string `toml:"created_column"`
	UpdatedColumn string `toml:"updated_column"`
}

// tomlTrigger maps [[tables.triggers]].
type tomlTrigger struct {
	Name       string   `toml:"name"`
	Timing     string   `toml:"timing"`
	Events     []string `toml:"events"`
	Definition string   `toml:"definition"`
}

func (c *converter) convertTable(tt *tomlTable, position int) (*core.Table, error) {
	if err := c.validateName("table", tt.Name); err != nil {
		return nil, err
	}

	table := &core.Table{
		Name:     tt.Name,
		Position: position,
		Comment:  tt.Comment,
	}

	if err := c.convertColumns(table, tt); err != nil {
		return nil, err
	}

	table.Constraints = make([]*core.Constraint, 0, len(tt.Constraints))
	for i := range tt.Constraints {
		table.Constraints = append(table.Constraints, convertTableConstraint(&tt.Constraints[i]))
	}
	if err := checkPKConflict(table); err != nil {
		return nil, err
	}
	synthesizeConstraints(table, tt.Columns)
	if err := validateConstraints(table); err != nil {
		return nil, err
	}
	for _, name := range table.PrimaryKeyColumns() {
		if col := table.FindColumn(name); col != nil {
			col.PrimaryKey = true
			col.Nullable = false
		}
	}

	for i := range tt.Indexes {
		idx, err := convertTableIndex(&tt.Indexes[i])
		if err != nil {
			return nil, err
		}
		table.Indexes = append(table.Indexes, idx)
	}
	if err := validateIndexes(table); err != nil {
		return nil, err
	}

	for _, tr := range tt.Triggers {
		if strings.TrimSpace(tr.Name) == "" {
			return nil, errors.New("trigger name is empty")
		}
		if strings.TrimSpace(tr.Definition) == "" {
			return nil, fmt.Errorf("trigger %q has no definition", tr.Name)
		}
		table.Triggers = append(table.Triggers, &core.Trigger{
			Name:       tr.Name,
			Timing:     strings.ToUpper(tr.Timing),
			Events:     tr.Events,
			Definition: tr.Definition,
		})
	}

	dist, err := convertDistribution(table, tt.Distribution)
	if err != nil {
		return nil, err
	}
	table.Distribution = dist

	return table, nil
}

func convertDistribution(table *core.Table, td *tomlDistribution) (*core.Distribution, error) {
	if td == nil {
		return nil, nil
	}
	set := 0
	for _, on := range []bool{len(td.Columns) > 0, td.Random, td.Replicated} {
		if on {
			set++
		}
	}
	switch set {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, errors.New("distribution: set only one of columns, random or replicated")
	}
	for _, name := range td.Columns {
		if table.FindColumn(name) == nil {
			return nil, fmt.Errorf("distribution references nonexistent column %q", name)
		}
	}
	return &core.Distribution{
		Columns:    slices.Clone(td.Columns),
		Random:     td.Random,
		Replicated: td.Replicated,
	}, nil
}

// convertColumns populates table.Columns and appends timestamp columns when
// enabled.
func (c *converter) convertColumns(table *core.Table, tt *tomlTable) error {
	table.Columns = make([]*core.Column, 0, len(tt.Columns))
	seen := make(map[string]bool, len(tt.Columns))
	for i := range tt.Columns {
		col, err := c.convertColumn(&tt.Columns[i])
		if err != nil {
			return fmt.Errorf("column %q: %w", tt.Columns[i].Name, err)
		}
		lower := strings.ToLower(col.Name)
		if seen[lower] {
			return fmt.Errorf("duplicate column name %q", col.Name)
		}
		seen[lower] = true
		col.Position = i + 1
		table.Columns = append(table.Columns, col)
	}

	if ts := tt.Timestamps; ts != nil && ts.Enabled {
		if err := injectTimestampColumns(table, ts); err != nil {
			return err
		}
	}
	return nil
}

// injectTimestampColumns appends the created/updated columns unless the
// table already defines them.
func injectTimestampColumns(table *core.Table, ts *tomlTimestamps) error {
	createdCol := "created_at"
	updatedCol := "updated_at"
	if ts.CreatedColumn != "" {
		createdCol = ts.CreatedColumn
	}
	if ts.UpdatedColumn != "" {
		updatedCol = ts.UpdatedColumn
	}
	if strings.EqualFold(createdCol, updatedCol) {
		return fmt.Errorf("timestamps: created_column and updated_column are both %q", createdCol)
	}

	for _, name := range []string{createdCol, updatedCol} {
		if table.FindColumn(name) != nil {
			continue
		}
		def := "CURRENT_TIMESTAMP"
		table.Columns = append(table.Columns, &core.Column{
			Name:         name,
			Position:     len(table.Columns) + 1,
			TypeRaw:      "timestamp",
			Type:         core.DataTypeDatetime,
			DefaultValue: &def,
		})
	}
	return nil
}
