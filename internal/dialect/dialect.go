// Package dialect defines how schema objects are rendered as DDL. Each
// dialect registers a Generator; a Platform picks one by name and feeds it
// its own capability descriptor, so forks that share a generator can still
// differ in identity columns or table distribution.
package dialect

import (
	"fmt"
	"slices"
	"sync"

	"dbplat/internal/capability"
	"dbplat/internal/core"
)

// Generator renders schema objects for one SQL dialect.
type Generator interface {
	Name() string
	// GenerateCreateTable returns the CREATE TABLE statement and, separately,
	// the foreign keys as ALTER TABLE statements so callers can emit them
	// after every table exists.
	GenerateCreateTable(t *core.Table, caps capability.Descriptor) (statement string, fkStatements []string)
	GenerateCreateIndex(table string, idx *core.Index) string
	GenerateCreateSequence(seq *core.Sequence) string
	QuoteIdentifier(name string) string
	QuoteString(value string) string
}

var (
	registry = map[string]func() Generator{}
	mu       sync.RWMutex
)

// Register creates a new registry entry for the named generator.
func Register(name string, ctor func() Generator) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = ctor
}

// New returns the generator registered under name. There is no fallback:
// an unknown name is an error.
func New(name string) (Generator, error) {
	mu.RLock()
	ctor, ok := registry[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no DDL generator registered as %q (available: %v)", name, Names())
	}
	return ctor(), nil
}

// Names returns the registered generator names in sorted order.
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
