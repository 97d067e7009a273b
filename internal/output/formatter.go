// Package output renders detection results, platform capabilities, schema
// models and generated DDL. Three formats are available: human (tables),
// json and summary.
package output

import (
	"fmt"
	"strings"

	"dbplat/internal/capability"
	"dbplat/internal/core"
	"dbplat/internal/detect"
	"dbplat/internal/platform"
)

// Format is an enum type representing the available output formats.
type Format string

const (
	FormatHuman   Format = "human"
	FormatJSON    Format = "json"
	FormatSummary Format = "summary"
)

// Formatter renders every result the CLI prints.
type Formatter interface {
	FormatIdentity(detect.Identity) (string, error)
	FormatPlatforms([]PlatformInfo) (string, error)
	FormatSchema(*core.Database) (string, error)
	FormatDDL(platform string, statements []string) (string, error)
}

// PlatformInfo is the printable view of a resolved platform.
type PlatformInfo struct {
	Name      string           `json:"name"`
	Vendor    string           `json:"vendor,omitempty"`
	Family    string           `json:"family"`
	Chain     []string         `json:"chain"`
	Overrides []string         `json:"overrides,omitempty"`
	Flags     capability.Flags `json:"capabilities"`
}

// Describe builds a PlatformInfo. overrides lists the flags the platform's
// own registration changes relative to its base.
func Describe(p *platform.Platform, overrides []string) PlatformInfo {
	return PlatformInfo{
		Name:      p.Name(),
		Vendor:    p.Vendor(),
		Family:    p.Family(),
		Chain:     p.Chain(),
		Overrides: overrides,
		Flags:     p.Capabilities().Flags(),
	}
}

// NewFormatter creates a new Formatter instance based on the given name.
// If no format is specified, defaults to human format.
func NewFormatter(name string) (Formatter, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	switch format {
	case "", FormatHuman:
		return humanFormatter{}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	case FormatSummary:
		return summaryFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s; use 'human', 'json', or 'summary'", name)
	}
}

func normalizeStatements(stmts []string) []string {
	var out []string
	for _, stmt := range stmts {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if !strings.HasSuffix(stmt, ";") {
			stmt += ";"
		}
		out = append(out, stmt)
	}
	return out
}
