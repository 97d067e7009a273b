package toml

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"dbplat/internal/core"
)

// tomlColumn maps [[tables.columns]].
type tomlColumn struct {
	Name          string `toml:"name"`
	Type          string `toml:"type"`
	PrimaryKey    bool   `toml:"primary_key"`
	AutoIncrement bool   `toml:"auto_increment"`
	Nullable      bool   `toml:"nullable"`
	Comment       string `toml:"comment"`
	Collate       string `toml:"collate"`
	Charset       string `toml:"charset"`

	// Default accepts a string, bool or number; it is stored as a string.
	Default any `toml:"default"`

	Unique     bool   `toml:"unique"`
	Check      string `toml:"check"`
	References string `toml:"references"`
	OnDelete   string `toml:"on_delete"`
	OnUpdate   string `toml:"on_update"`

	IsGenerated          bool   `toml:"is_generated"`
	GenerationExpression string `toml:"generation_expression"`
	GenerationStorage    string `toml:"generation_storage"`

	SequenceName string `toml:"sequence_name"`
}

func (c *converter) convertColumn(tc *tomlColumn) (*core.Column, error) {
	if err := c.validateName("column", tc.Name); err != nil {
		return nil, err
	}

	if tc.References != "" {
		if _, _, ok := core.ParseReferences(tc.References); !ok {
			return nil, fmt.Errorf("invalid references %q: expected format \"table.column\"", tc.References)
		}
	} else if tc.OnDelete != "" || tc.OnUpdate != "" {
		return nil, errors.New("on_delete and on_update require references")
	}

	typeRaw := strings.TrimSpace(tc.Type)
	if typeRaw == "" {
		return nil, errors.New("type is empty")
	}

	col := &core.Column{
		Name:          tc.Name,
		TypeRaw:       typeRaw,
		Type:          core.NormalizeDataType(typeRaw),
		Nullable:      tc.Nullable && !tc.PrimaryKey,
		PrimaryKey:    tc.PrimaryKey,
		AutoIncrement: tc.AutoIncrement,
		Comment:       tc.Comment,
		Collate:       tc.Collate,
		Charset:       tc.Charset,
		SequenceName:  tc.SequenceName,
	}
	if tc.Default != nil {
		s := normalizeDefault(tc.Default)
		col.DefaultValue = &s
	}

	if err := applyGeneration(col, tc); err != nil {
		return nil, err
	}
	return col, nil
}

func applyGeneration(col *core.Column, tc *tomlColumn) error {
	if !tc.IsGenerated {
		if tc.GenerationExpression != "" || tc.GenerationStorage != "" {
			return errors.New("generation_expression and generation_storage require is_generated")
		}
		return nil
	}
	if strings.TrimSpace(tc.GenerationExpression) == "" {
		return errors.New("generated column has no generation_expression")
	}
	col.IsGenerated = true
	col.GenerationExpression = tc.GenerationExpression

	switch storage := core.GenerationStorage(strings.ToUpper(tc.GenerationStorage)); storage {
	case "":
	case core.GenerationVirtual, core.GenerationStored:
		col.GenerationStorage = storage
	default:
		return fmt.Errorf("unknown generation_storage %q", tc.GenerationStorage)
	}
	return nil
}

func normalizeDefault(v any) string {
	switch val := v.(type) {
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
