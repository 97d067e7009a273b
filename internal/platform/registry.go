package platform

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"dbplat/internal/capability"
	"dbplat/internal/dberr"
	"dbplat/internal/detect"
	"dbplat/internal/dialect"
	"dbplat/internal/introspect"
)

// Registration describes one platform. A root registration has no Base and
// carries complete Flags plus a reader and a generator. A derived
// registration names its Base, overrides flags through Delta and may swap
// the reader or generator.
type Registration struct {
	Name      string
	Base      string
	Family    string
	Aliases   []string
	Vendor    string
	Flags     *capability.Flags
	Delta     capability.Delta
	Reader    string
	Generator string
}

func (r Registration) validate() error {
	if r.Name == "" {
		return errors.New("platform name is required")
	}
	if r.Base == "" {
		if r.Flags == nil {
			return fmt.Errorf("platform %q: root platform requires complete flags", r.Name)
		}
		if err := r.Flags.Validate(); err != nil {
			return fmt.Errorf("platform %q: %w", r.Name, err)
		}
		if !r.Delta.IsZero() {
			return fmt.Errorf("platform %q: root platform cannot carry overrides", r.Name)
		}
		if r.Reader == "" || r.Generator == "" {
			return fmt.Errorf("platform %q: root platform requires a reader and a generator", r.Name)
		}
		return nil
	}
	if r.Flags != nil {
		return fmt.Errorf("platform %q: derived platform must use overrides, not flags", r.Name)
	}
	if strings.EqualFold(r.Base, r.Name) {
		return fmt.Errorf("%w: %s -> %s", dberr.ErrCycle, r.Name, r.Name)
	}
	if err := r.Delta.Validate(); err != nil {
		return fmt.Errorf("platform %q: %w", r.Name, err)
	}
	return nil
}

// Registry maps dialect names to registrations and builds Platforms.
type Registry struct {
	mu        sync.RWMutex
	regs      map[string]Registration
	aliases   map[string]string
	fallbacks map[string]string
	detector  *detect.Detector
	logger    *slog.Logger
}

type Option func(*Registry)

// WithDetector replaces the default detector used by ResolveConnection.
func WithDetector(d *detect.Detector) Option {
	return func(r *Registry) { r.detector = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithFamilyFallback resolves unknown vendors of family to dialect. Every
// use is logged at WARN.
func WithFamilyFallback(family, dialect string) Option {
	return func(r *Registry) { r.fallbacks[normalize(family)] = normalize(dialect) }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		regs:      make(map[string]Registration),
		aliases:   make(map[string]string),
		fallbacks: make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	if r.detector == nil {
		r.detector = detect.New(detect.WithLogger(r.logger))
	}
	return r
}

// Register adds reg, replacing any registration of the same name.
func (r *Registry) Register(reg Registration) error {
	reg.Name = normalize(reg.Name)
	reg.Base = normalize(reg.Base)
	if err := reg.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if target, ok := r.aliases[reg.Name]; ok && target != reg.Name {
		return fmt.Errorf("platform %q: name is already an alias of %q", reg.Name, target)
	}
	for _, a := range reg.Aliases {
		a = normalize(a)
		if _, ok := r.regs[a]; ok && a != reg.Name {
			return fmt.Errorf("platform %q: alias %q is already a platform", reg.Name, a)
		}
		if target, ok := r.aliases[a]; ok && target != reg.Name {
			return fmt.Errorf("platform %q: alias %q already points at %q", reg.Name, a, target)
		}
	}

	// a new base link can only close a cycle through names already present;
	// bases may be aliases, including the new registration's own
	own := make(map[string]bool, len(reg.Aliases))
	for _, a := range reg.Aliases {
		own[normalize(a)] = true
	}
	baseOf := func(name string) string {
		if own[normalize(name)] {
			return reg.Name
		}
		return r.canonical(name)
	}
	for seen, next := []string{reg.Name}, baseOf(reg.Base); next != ""; {
		if slices.Contains(seen, next) {
			return fmt.Errorf("%w: %s", dberr.ErrCycle, strings.Join(append(seen, next), " -> "))
		}
		seen = append(seen, next)
		base, ok := r.regs[next]
		if !ok {
			break
		}
		next = baseOf(base.Base)
	}

	if old, ok := r.regs[reg.Name]; ok {
		for _, a := range old.Aliases {
			delete(r.aliases, normalize(a))
		}
	}
	r.regs[reg.Name] = reg
	for _, a := range reg.Aliases {
		r.aliases[normalize(a)] = reg.Name
	}
	return nil
}

// Names returns the registered platform names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.regs))
	for name := range r.regs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the registration for name or one of its aliases.
func (r *Registry) Lookup(name string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.regs[r.canonical(name)]
	return reg, ok
}

// Chain returns name followed by its bases, root last.
func (r *Registry) Chain(name string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	regs, err := r.chain(name)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(regs))
	for i, reg := range regs {
		names[i] = reg.Name
	}
	return names, nil
}

// ResolveName builds the Platform registered as name or one of its aliases.
func (r *Registry) ResolveName(name string) (*Platform, error) {
	r.mu.RLock()
	regs, err := r.chain(name)
	r.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	return r.build(regs)
}

// Resolve builds the Platform for a detected identity. A vendor with no
// registration resolves only through a configured family fallback.
func (r *Registry) Resolve(id detect.Identity) (*Platform, error) {
	r.mu.RLock()
	_, known := r.regs[r.canonical(id.Vendor)]
	fallback := r.fallbacks[normalize(id.Family)]
	r.mu.RUnlock()

	if known {
		return r.ResolveName(id.Vendor)
	}
	if fallback == "" {
		return nil, &dberr.UnknownDialectError{Dialect: id.Vendor, Available: r.Names()}
	}
	r.logger.Warn("no platform registered for vendor; using family fallback",
		"vendor", id.Vendor, "family", id.Family, "platform", fallback)
	return r.ResolveName(fallback)
}

// ResolveConnection detects the dialect behind db and resolves its Platform.
func (r *Registry) ResolveConnection(ctx context.Context, db *sql.DB) (*Platform, detect.Identity, error) {
	id, err := r.detector.Detect(ctx, db)
	if err != nil {
		return nil, detect.Identity{}, err
	}
	r.logger.Info("dialect detected", "identity", id.String())
	p, err := r.Resolve(id)
	if err != nil {
		return nil, id, err
	}
	return p, id, nil
}

func (r *Registry) canonical(name string) string {
	name = normalize(name)
	if target, ok := r.aliases[name]; ok {
		return target
	}
	return name
}

// chain walks from name to its root. Callers hold r.mu.
func (r *Registry) chain(name string) ([]Registration, error) {
	var (
		regs []Registration
		seen []string
	)
	for next := r.canonical(name); next != ""; {
		if slices.Contains(seen, next) {
			return nil, fmt.Errorf("%w: %s", dberr.ErrCycle, strings.Join(append(seen, next), " -> "))
		}
		reg, ok := r.regs[next]
		if !ok {
			if len(regs) == 0 {
				return nil, &dberr.UnknownDialectError{Dialect: name, Available: r.namesLocked()}
			}
			return nil, fmt.Errorf("platform %q: base %q is not registered", seen[len(seen)-1], next)
		}
		seen = append(seen, next)
		regs = append(regs, reg)
		next = r.canonical(reg.Base)
	}
	return regs, nil
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.regs))
	for name := range r.regs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// build flattens a chain: root flags first, then each delta from the root
// outwards. Reader and generator names follow the same order.
func (r *Registry) build(regs []Registration) (*Platform, error) {
	root := regs[len(regs)-1]
	caps := capability.New(*root.Flags)
	readerName, generatorName, family := root.Reader, root.Generator, root.Family
	for i := len(regs) - 2; i >= 0; i-- {
		reg := regs[i]
		caps = capability.Apply(caps, reg.Delta)
		if reg.Reader != "" {
			readerName = reg.Reader
		}
		if reg.Generator != "" {
			generatorName = reg.Generator
		}
		if reg.Family != "" {
			family = reg.Family
		}
	}

	name := regs[0].Name
	reader, err := introspect.New(readerName, r.logger.With("platform", name))
	if err != nil {
		return nil, fmt.Errorf("platform %q: %w", name, err)
	}
	generator, err := dialect.New(generatorName)
	if err != nil {
		return nil, fmt.Errorf("platform %q: %w", name, err)
	}

	chain := make([]string, len(regs))
	for i, reg := range regs {
		chain[i] = reg.Name
	}
	r.logger.Debug("platform built", "platform", name, "chain", chain, "reader", readerName, "generator", generatorName)
	return &Platform{
		name:      name,
		vendor:    regs[0].Vendor,
		family:    family,
		caps:      caps,
		reader:    reader,
		generator: generator,
		chain:     chain,
		logger:    r.logger,
	}, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
