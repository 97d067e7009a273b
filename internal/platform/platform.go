// Package platform binds a dialect's capabilities, DDL reader and DDL
// generator into one immutable Platform, and resolves Platforms from
// registration data by name or by probing a live connection.
package platform

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"dbplat/internal/capability"
	"dbplat/internal/core"
	"dbplat/internal/dialect"
	"dbplat/internal/introspect"
)

// Platform is a resolved dialect. Its capabilities are fixed at
// construction and it owns its reader instance.
type Platform struct {
	name      string
	vendor    string
	family    string
	caps      capability.Descriptor
	reader    introspect.Reader
	generator dialect.Generator
	chain     []string
	logger    *slog.Logger
}

func (p *Platform) Name() string { return p.name }

// Vendor is the display name from the platform's own registration. It is
// not inherited from bases.
func (p *Platform) Vendor() string { return p.vendor }

// Family is the protocol family the platform belongs to.
func (p *Platform) Family() string { return p.family }

// Capabilities returns the flattened capability descriptor.
func (p *Platform) Capabilities() capability.Descriptor { return p.caps }

func (p *Platform) Generator() dialect.Generator { return p.generator }

// Chain lists the platform followed by its bases, root last.
func (p *Platform) Chain() []string {
	return append([]string(nil), p.chain...)
}

// ReadSchema reads the current schema of db with the platform's reader. On
// error no model is returned.
func (p *Platform) ReadSchema(ctx context.Context, db *sql.DB) (*core.Database, error) {
	model, err := p.reader.Read(ctx, db)
	if err != nil {
		return nil, err
	}
	model.Dialect = core.Dialect(p.name)
	p.logger.Debug("schema read", "platform", p.name, "tables", len(model.Tables), "sequences", len(model.Sequences))
	return model, nil
}

// GenerateDDL renders db as a script for this platform. Statements are
// separated by a blank line.
func (p *Platform) GenerateDDL(db *core.Database) (string, error) {
	stmts, err := p.Statements(db)
	if err != nil {
		return "", err
	}
	if len(stmts) == 0 {
		return "", nil
	}
	return strings.Join(stmts, "\n\n") + "\n", nil
}

// Statements renders db as individual statements: sequences, tables in
// model order, indexes, foreign keys, then triggers.
func (p *Platform) Statements(db *core.Database) ([]string, error) {
	if err := db.ValidateIdentifiers(p.caps.MaxIdentifierLength()); err != nil {
		return nil, fmt.Errorf("%s: %w", p.name, err)
	}

	var stmts []string
	if len(db.Sequences) > 0 {
		if p.caps.SequencesSupported() {
			for _, seq := range db.Sequences {
				stmts = append(stmts, p.generator.GenerateCreateSequence(seq))
			}
		} else {
			p.logger.Warn("sequences not supported; skipping", "platform", p.name, "count", len(db.Sequences))
		}
	}

	var indexes, fks []string
	for _, t := range db.Tables {
		create, tableFKs := p.generator.GenerateCreateTable(t, p.caps)
		stmts = append(stmts, create)
		fks = append(fks, tableFKs...)
		for _, idx := range t.Indexes {
			if stmt := p.generator.GenerateCreateIndex(t.Name, idx); stmt != "" {
				indexes = append(indexes, stmt)
			}
		}
	}
	stmts = append(stmts, indexes...)
	stmts = append(stmts, fks...)

	for _, t := range db.Tables {
		if len(t.Triggers) == 0 {
			continue
		}
		if !p.caps.TriggersSupported() {
			p.logger.Warn("triggers not supported; skipping", "platform", p.name, "table", t.Name, "count", len(t.Triggers))
			continue
		}
		for _, tr := range t.Triggers {
			def := strings.TrimSpace(tr.Definition)
			if def == "" {
				continue
			}
			if !strings.HasSuffix(def, ";") {
				def += ";"
			}
			stmts = append(stmts, def)
		}
	}
	return stmts, nil
}
