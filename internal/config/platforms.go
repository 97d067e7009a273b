package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"dbplat/internal/capability"
	"dbplat/internal/platform"
)

//go:embed platforms.toml
var builtinPlatforms []byte

type platformFile struct {
	Platform []platformEntry `toml:"platform"`
}

// platformEntry maps one [[platform]] table. Flag fields are pointers so an
// absent key can be told apart from a false or zero value.
type platformEntry struct {
	Name      string   `toml:"name"`
	Base      string   `toml:"base"`
	Vendor    string   `toml:"vendor"`
	Family    string   `toml:"family"`
	Aliases   []string `toml:"aliases"`
	Reader    string   `toml:"reader"`
	Generator string   `toml:"generator"`

	TriggersSupported   *bool   `toml:"triggers_supported"`
	SequencesSupported  *bool   `toml:"sequences_supported"`
	IdentityStyle       *string `toml:"identity_style"`
	MaxIdentifierLength *int    `toml:"max_identifier_length"`
	IdentifierQuote     *string `toml:"identifier_quote"`
	TransactionalDDL    *bool   `toml:"transactional_ddl"`
	DistributedTables   *bool   `toml:"distributed_tables"`
}

func (e platformEntry) delta() (capability.Delta, error) {
	d := capability.Delta{
		TriggersSupported:   e.TriggersSupported,
		SequencesSupported:  e.SequencesSupported,
		MaxIdentifierLength: e.MaxIdentifierLength,
		IdentifierQuote:     e.IdentifierQuote,
		TransactionalDDL:    e.TransactionalDDL,
		DistributedTables:   e.DistributedTables,
	}
	if e.IdentityStyle != nil {
		style, err := capability.ParseIdentityStyle(*e.IdentityStyle)
		if err != nil {
			return capability.Delta{}, err
		}
		d.IdentityStyle = &style
	}
	return d, nil
}

func (e platformEntry) registration() (platform.Registration, error) {
	reg := platform.Registration{
		Name:      e.Name,
		Base:      e.Base,
		Family:    e.Family,
		Vendor:    e.Vendor,
		Aliases:   e.Aliases,
		Reader:    e.Reader,
		Generator: e.Generator,
	}
	delta, err := e.delta()
	if err != nil {
		return reg, err
	}
	if e.Base != "" {
		reg.Delta = delta
		return reg, nil
	}

	if missing := missingFlags(delta); len(missing) > 0 {
		return reg, fmt.Errorf("root platform must set %s", strings.Join(missing, ", "))
	}
	flags := capability.Apply(capability.Descriptor{}, delta).Flags()
	reg.Flags = &flags
	return reg, nil
}

var allFlags = []string{
	"triggers_supported",
	"sequences_supported",
	"identity_style",
	"max_identifier_length",
	"identifier_quote",
	"transactional_ddl",
	"distributed_tables",
}

func missingFlags(d capability.Delta) []string {
	set := d.Overridden()
	var missing []string
	for _, name := range allFlags {
		if !slices.Contains(set, name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// ParsePlatforms decodes [[platform]] tables from r. Unknown keys are an
// error so that a misspelled flag never silently inherits.
func ParsePlatforms(r io.Reader, source string) ([]platform.Registration, error) {
	var pf platformFile
	md, err := toml.NewDecoder(r).Decode(&pf)
	if err != nil {
		return nil, fmt.Errorf("%s: decode error: %w", source, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", source, strings.Join(keys, ", "))
	}

	regs := make([]platform.Registration, 0, len(pf.Platform))
	for i, e := range pf.Platform {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("%s: platform #%d: name is required", source, i+1)
		}
		reg, err := e.registration()
		if err != nil {
			return nil, fmt.Errorf("%s: platform %q: %w", source, e.Name, err)
		}
		regs = append(regs, reg)
	}
	return regs, nil
}

// BuiltinPlatforms returns the registrations shipped with the binary.
func BuiltinPlatforms() ([]platform.Registration, error) {
	return ParsePlatforms(bytes.NewReader(builtinPlatforms), "built-in platforms.toml")
}

// LoadPlatforms returns the built-in registrations merged with the file at
// path, if any. A file entry replaces the built-in entry of the same name.
func LoadPlatforms(path string) ([]platform.Registration, error) {
	regs, err := BuiltinPlatforms()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return regs, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open platform file: %w", err)
	}
	defer f.Close()

	extra, err := ParsePlatforms(f, path)
	if err != nil {
		return nil, err
	}
	for _, reg := range extra {
		i := slices.IndexFunc(regs, func(r platform.Registration) bool {
			return strings.EqualFold(r.Name, reg.Name)
		})
		if i >= 0 {
			regs[i] = reg
		} else {
			regs = append(regs, reg)
		}
	}
	return regs, nil
}

// NewRegistry builds a platform registry from cfg: built-in and user
// registrations plus the configured family fallbacks.
func NewRegistry(cfg *Config, logger *slog.Logger, opts ...platform.Option) (*platform.Registry, error) {
	regs, err := LoadPlatforms(cfg.Registry.File)
	if err != nil {
		return nil, err
	}

	families := make([]string, 0, len(cfg.Registry.Fallbacks))
	for family := range cfg.Registry.Fallbacks {
		families = append(families, family)
	}
	slices.Sort(families)

	all := []platform.Option{platform.WithLogger(logger)}
	for _, family := range families {
		all = append(all, platform.WithFamilyFallback(family, cfg.Registry.Fallbacks[family]))
	}
	r := platform.NewRegistry(append(all, opts...)...)

	for _, reg := range regs {
		if err := r.Register(reg); err != nil {
			return nil, err
		}
	}
	return r, nil
}
