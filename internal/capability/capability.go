// Package capability describes what a database dialect supports. A Descriptor
// is immutable: it is built once from complete Flags (a root dialect) or by
// applying a Delta to a base Descriptor (a fork of that dialect), and every
// Platform keeps its own copy.
package capability

import (
	"fmt"
	"strings"
)

// IdentityStyle tells generators how auto-generated key columns are spelled.
type IdentityStyle string

const (
	IdentityNone          IdentityStyle = "none"
	IdentityAutoIncrement IdentityStyle = "auto_increment"
	IdentitySerial        IdentityStyle = "serial"
	IdentityGenerated     IdentityStyle = "generated"
)

// ParseIdentityStyle converts a registration string into an IdentityStyle.
func ParseIdentityStyle(s string) (IdentityStyle, error) {
	switch style := IdentityStyle(strings.ToLower(strings.TrimSpace(s))); style {
	case IdentityNone, IdentityAutoIncrement, IdentitySerial, IdentityGenerated:
		return style, nil
	default:
		return "", fmt.Errorf("unknown identity style %q; use none, auto_increment, serial or generated", s)
	}
}

// Flags is the complete, flat set of capability values.
type Flags struct {
	TriggersSupported   bool          `json:"triggersSupported"`
	SequencesSupported  bool          `json:"sequencesSupported"`
	IdentityStyle       IdentityStyle `json:"identityStyle"`
	MaxIdentifierLength int           `json:"maxIdentifierLength"`
	IdentifierQuote     string        `json:"identifierQuote"`
	TransactionalDDL    bool          `json:"transactionalDdl"`
	DistributedTables   bool          `json:"distributedTables"`
}

// Validate checks that f can serve as a root dialect's defaults.
func (f Flags) Validate() error {
	if _, err := ParseIdentityStyle(string(f.IdentityStyle)); err != nil {
		return err
	}
	if f.MaxIdentifierLength < 0 {
		return fmt.Errorf("max identifier length must not be negative, got %d", f.MaxIdentifierLength)
	}
	if f.IdentifierQuote == "" {
		return fmt.Errorf("identifier quote is required")
	}
	return nil
}

// Descriptor is an immutable capability record.
type Descriptor struct {
	flags Flags
}

// New returns a Descriptor holding a copy of f.
func New(f Flags) Descriptor {
	return Descriptor{flags: f}
}

// Flags returns a copy of the descriptor's values.
func (d Descriptor) Flags() Flags { return d.flags }

func (d Descriptor) TriggersSupported() bool      { return d.flags.TriggersSupported }
func (d Descriptor) SequencesSupported() bool     { return d.flags.SequencesSupported }
func (d Descriptor) IdentityStyle() IdentityStyle { return d.flags.IdentityStyle }
func (d Descriptor) MaxIdentifierLength() int     { return d.flags.MaxIdentifierLength }
func (d Descriptor) IdentifierQuote() string      { return d.flags.IdentifierQuote }
func (d Descriptor) TransactionalDDL() bool       { return d.flags.TransactionalDDL }
func (d Descriptor) DistributedTables() bool      { return d.flags.DistributedTables }

// Delta is a set of optional overrides. A nil field inherits the base value.
type Delta struct {
	TriggersSupported   *bool
	SequencesSupported  *bool
	IdentityStyle       *IdentityStyle
	MaxIdentifierLength *int
	IdentifierQuote     *string
	TransactionalDDL    *bool
	DistributedTables   *bool
}

// IsZero reports whether the delta overrides nothing.
func (d Delta) IsZero() bool {
	return len(d.Overridden()) == 0
}

// Overridden lists the flag names the delta sets, in declaration order.
func (d Delta) Overridden() []string {
	var names []string
	if d.TriggersSupported != nil {
		names = append(names, "triggers_supported")
	}
	if d.SequencesSupported != nil {
		names = append(names, "sequences_supported")
	}
	if d.IdentityStyle != nil {
		names = append(names, "identity_style")
	}
	if d.MaxIdentifierLength != nil {
		names = append(names, "max_identifier_length")
	}
	if d.IdentifierQuote != nil {
		names = append(names, "identifier_quote")
	}
	if d.TransactionalDDL != nil {
		names = append(names, "transactional_ddl")
	}
	if d.DistributedTables != nil {
		names = append(names, "distributed_tables")
	}
	return names
}

// Apply flattens delta onto base and returns a new Descriptor. base is not
// modified.
func Apply(base Descriptor, delta Delta) Descriptor {
	f := base.flags
	if delta.TriggersSupported != nil {
		f.TriggersSupported = *delta.TriggersSupported
	}
	if delta.SequencesSupported != nil {
		f.SequencesSupported = *delta.SequencesSupported
	}
	if delta.IdentityStyle != nil {
		f.IdentityStyle = *delta.IdentityStyle
	}
	if delta.MaxIdentifierLength != nil {
		f.MaxIdentifierLength = *delta.MaxIdentifierLength
	}
	if delta.IdentifierQuote != nil {
		f.IdentifierQuote = *delta.IdentifierQuote
	}
	if delta.TransactionalDDL != nil {
		f.TransactionalDDL = *delta.TransactionalDDL
	}
	if delta.DistributedTables != nil {
		f.DistributedTables = *delta.DistributedTables
	}
	return Descriptor{flags: f}
}

// Validate checks the values a delta sets.
func (d Delta) Validate() error {
	if d.IdentityStyle != nil {
		if _, err := ParseIdentityStyle(string(*d.IdentityStyle)); err != nil {
			return err
		}
	}
	if d.MaxIdentifierLength != nil && *d.MaxIdentifierLength < 0 {
		return fmt.Errorf("max identifier length must not be negative, got %d", *d.MaxIdentifierLength)
	}
	if d.IdentifierQuote != nil && *d.IdentifierQuote == "" {
		return fmt.Errorf("identifier quote must not be empty")
	}
	return nil
}
