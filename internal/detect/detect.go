// Package detect identifies which SQL dialect a live connection speaks.
// Protocol-compatible forks answer their parent's queries too, so probes
// run most-specific first and the first match wins.
package detect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"dbplat/internal/dberr"
)

// Protocol families. A family groups dialects that share a wire protocol.
const (
	FamilyPostgres = "postgres"
	FamilyMySQL    = "mysql"
)

// Identity is the outcome of a successful detection.
type Identity struct {
	Vendor  string `json:"vendor"`
	Version string `json:"version,omitempty"`
	Family  string `json:"family"`
}

func (id Identity) String() string {
	if id.Version == "" {
		return fmt.Sprintf("%s (%s family)", id.Vendor, id.Family)
	}
	return fmt.Sprintf("%s %s (%s family)", id.Vendor, id.Version, id.Family)
}

// Probe is one discriminating query.
type Probe struct {
	Dialect string
	Family  string
	Query   string

	// Match decides whether the first scanned value identifies the dialect.
	// Nil accepts any non-empty value.
	Match func(value string) bool

	// VersionQuery, when set, is run after a match to read the version.
	// Otherwise the version comes from the probe value.
	VersionQuery string

	// Version extracts the version from a raw value. Nil means ExtractVersion.
	Version func(raw string) string
}

func (p Probe) matches(value string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}
	if p.Match == nil {
		return true
	}
	return p.Match(value)
}

func (p Probe) version(raw string) string {
	if p.Version != nil {
		return p.Version(raw)
	}
	return ExtractVersion(raw)
}

// Detector runs probes in declaration order.
type Detector struct {
	probes []Probe
	logger *slog.Logger
}

type Option func(*Detector)

// WithProbes replaces the default probe list.
func WithProbes(probes ...Probe) Option {
	return func(d *Detector) { d.probes = probes }
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) { d.logger = logger }
}

func New(opts ...Option) *Detector {
	d := &Detector{probes: DefaultProbes()}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	return d
}

// Probes returns a copy of the configured probes.
func (d *Detector) Probes() []Probe {
	return append([]Probe(nil), d.probes...)
}

// Detect returns the identity of the first probe that matches. Probes that
// fail with a server error, return no row or return a non-matching value
// are recorded and skipped; a connection fault stops detection with a
// *dberr.ConnectionError. When nothing matches the error is a
// *dberr.DetectionError listing every attempt.
func (d *Detector) Detect(ctx context.Context, db *sql.DB) (Identity, error) {
	var attempts []dberr.Attempt

	for _, p := range d.probes {
		value, err := queryString(ctx, db, p.Query)
		if err != nil {
			if dberr.Classify(err) == dberr.KindConnection {
				return Identity{}, &dberr.ConnectionError{Op: "detect " + p.Dialect, Err: err}
			}
			d.logger.Debug("probe failed", "dialect", p.Dialect, "kind", dberr.Classify(err).String(), "error", err)
			attempts = append(attempts, dberr.Attempt{Probe: p.Dialect, Reason: reason(err)})
			continue
		}
		if !p.matches(value) {
			d.logger.Debug("probe did not match", "dialect", p.Dialect, "value", value)
			attempts = append(attempts, dberr.Attempt{Probe: p.Dialect, Reason: fmt.Sprintf("value %q did not match", value)})
			continue
		}

		id := Identity{Vendor: p.Dialect, Family: p.Family, Version: p.version(value)}
		if p.VersionQuery != "" {
			raw, err := queryString(ctx, db, p.VersionQuery)
			switch {
			case err == nil:
				if v := p.version(raw); v != "" {
					id.Version = v
				}
			case dberr.Classify(err) == dberr.KindConnection:
				return Identity{}, &dberr.ConnectionError{Op: "detect " + p.Dialect + " version", Err: err}
			default:
				d.logger.Warn("version query failed", "dialect", p.Dialect, "error", err)
			}
		}

		d.logger.Info("dialect detected", "vendor", id.Vendor, "version", id.Version, "family", id.Family)
		return id, nil
	}

	return Identity{}, &dberr.DetectionError{Attempts: attempts}
}

func queryString(ctx context.Context, db *sql.DB, query string) (string, error) {
	var v sql.NullString
	if err := db.QueryRowContext(ctx, query).Scan(&v); err != nil {
		return "", err
	}
	return v.String, nil
}

func reason(err error) string {
	if errors.Is(err, sql.ErrNoRows) {
		return "no rows"
	}
	return err.Error()
}
