package postgresql

import (
	"context"
	"database/sql"
	"strings"

	"dbplat/internal/core"
	"dbplat/internal/introspect"
)

func readTriggers(ctx context.Context, cat *introspect.Catalog, query string, ref tableRef) error {
	t := ref.table
	return cat.Query(ctx, "triggers", t.Name, query, func(rows *sql.Rows) error {
		var name, def string
		if err := rows.Scan(&name, &def); err != nil {
			return err
		}
		timing, events := ParseTriggerDef(def)
		t.Triggers = append(t.Triggers, &core.Trigger{
			Name:       name,
			Timing:     timing,
			Events:     events,
			Definition: def,
		})
		return nil
	}, ref.oid)
}

// ParseTriggerDef pulls the timing and event list out of a CREATE TRIGGER
// statement as printed by pg_get_triggerdef.
func ParseTriggerDef(def string) (timing string, events []string) {
	upper := strings.ToUpper(def)
	var rest string
	for _, tm := range []string{" BEFORE ", " AFTER ", " INSTEAD OF "} {
		if i := strings.Index(upper, tm); i >= 0 {
			timing = strings.TrimSpace(tm)
			rest = upper[i+len(tm):]
			break
		}
	}
	if timing == "" {
		return "", nil
	}
	if on := strings.Index(rest, " ON "); on >= 0 {
		rest = rest[:on]
	}
	for ev := range strings.SplitSeq(rest, " OR ") {
		ev = strings.TrimSpace(ev)
		if strings.HasPrefix(ev, "UPDATE OF ") {
			ev = "UPDATE"
		}
		if ev != "" {
			events = append(events, ev)
		}
	}
	return timing, events
}
