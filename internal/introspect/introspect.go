// Package introspect defines the DDL reader contract: given a live
// connection, produce a fresh core.Database describing its current schema,
// or an error and no model at all.
package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"dbplat/internal/core"
)

// Reader reads schema metadata from a connection. Implementations hold no
// per-call state, so a single Reader may serve concurrent reads on
// different connections.
type Reader interface {
	Read(ctx context.Context, db *sql.DB) (*core.Database, error)
}

// Factory builds a fresh Reader. Every Platform gets its own instance.
type Factory func(logger *slog.Logger) Reader

var (
	registry = make(map[string]Factory)
	mu       sync.RWMutex
)

// Register makes a reader available under name. Registering the same name
// twice replaces the earlier factory.
func Register(name string, fn Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = fn
}

// New constructs the reader registered under name.
func New(name string, logger *slog.Logger) (Reader, error) {
	mu.RLock()
	fn, ok := registry[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no DDL reader registered as %q (available: %v)", name, Names())
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return fn(logger), nil
}

// Names returns the registered reader names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
