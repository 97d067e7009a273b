package core

import (
	"cmp"
	"slices"
	"strings"
)

// SortTables orders tables by catalog position, breaking ties by name, and
// sorts every table's children. Readers call it before returning a model so
// that two reads of an unchanged schema are structurally identical.
func SortTables(tables []*Table) {
	slices.SortStableFunc(tables, func(a, b *Table) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	for _, t := range tables {
		t.sortChildren()
	}
}

func (t *Table) sortChildren() {
	slices.SortStableFunc(t.Columns, func(a, b *Column) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	slices.SortStableFunc(t.Constraints, func(a, b *Constraint) int {
		if c := cmp.Compare(constraintRank(a.Type), constraintRank(b.Type)); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	slices.SortStableFunc(t.Indexes, func(a, b *Index) int {
		return strings.Compare(a.Name, b.Name)
	})
	slices.SortStableFunc(t.Triggers, func(a, b *Trigger) int {
		return strings.Compare(a.Name, b.Name)
	})
}

// SortSequences orders sequences by name.
func SortSequences(seqs []*Sequence) {
	slices.SortStableFunc(seqs, func(a, b *Sequence) int {
		return strings.Compare(a.Name, b.Name)
	})
}

func constraintRank(t ConstraintType) int {
	switch t {
	case ConstraintPrimaryKey:
		return 0
	case ConstraintUnique:
		return 1
	case ConstraintCheck:
		return 2
	case ConstraintForeignKey:
		return 3
	default:
		return 4
	}
}
