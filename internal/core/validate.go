package core

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents an error during schema validation.
type ValidationError struct {
	Entity  string
	Name    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s %q: %s", e.Entity, e.Name, e.Message)
}

// ValidateIdentifiers checks every table, column, constraint, index and
// sequence name against maxLen. A non-positive maxLen only checks for empty
// and duplicate names. All violations are joined into one error.
func (db *Database) ValidateIdentifiers(maxLen int) error {
	if db == nil {
		return &ValidationError{Entity: "database", Message: "database is nil"}
	}

	var errs []error
	check := func(entity, name string) {
		switch {
		case strings.TrimSpace(name) == "":
			errs = append(errs, &ValidationError{Entity: entity, Name: name, Message: "name is empty"})
		case maxLen > 0 && len(name) > maxLen:
			errs = append(errs, &ValidationError{Entity: entity, Name: name, Message: fmt.Sprintf("exceeds maximum identifier length %d", maxLen)})
		}
	}

	seenTables := make(map[string]bool, len(db.Tables))
	for i, t := range db.Tables {
		if t == nil {
			errs = append(errs, &ValidationError{Entity: "database", Name: db.Name, Message: fmt.Sprintf("table at index %d is nil", i)})
			continue
		}
		check("table", t.Name)
		lower := strings.ToLower(t.Name)
		if seenTables[lower] {
			errs = append(errs, &ValidationError{Entity: "database", Name: db.Name, Message: fmt.Sprintf("duplicate table name %q", t.Name)})
		}
		seenTables[lower] = true

		nilAt := func(kind string, i int) {
			errs = append(errs, &ValidationError{Entity: "table", Name: t.Name, Message: fmt.Sprintf("%s at index %d is nil", kind, i)})
		}

		seenCols := make(map[string]bool, len(t.Columns))
		for i, c := range t.Columns {
			if c == nil {
				nilAt("column", i)
				continue
			}
			check("column", c.Name)
			if seenCols[strings.ToLower(c.Name)] {
				errs = append(errs, &ValidationError{Entity: "table", Name: t.Name, Message: fmt.Sprintf("duplicate column name %q", c.Name)})
			}
			seenCols[strings.ToLower(c.Name)] = true
		}
		for i, c := range t.Constraints {
			if c == nil {
				nilAt("constraint", i)
				continue
			}
			if c.Name != "" {
				check("constraint", c.Name)
			}
		}
		for i, idx := range t.Indexes {
			if idx == nil {
				nilAt("index", i)
				continue
			}
			check("index", idx.Name)
		}
		for i, tr := range t.Triggers {
			if tr == nil {
				nilAt("trigger", i)
			}
		}
	}
	for i, s := range db.Sequences {
		if s == nil {
			errs = append(errs, &ValidationError{Entity: "database", Name: db.Name, Message: fmt.Sprintf("sequence at index %d is nil", i)})
			continue
		}
		check("sequence", s.Name)
	}

	return errors.Join(errs...)
}
