// Package dberr holds the error taxonomy shared by detection, resolution and
// introspection, and the classification of raw driver errors into "the
// object is not there" versus "the connection is gone".
package dberr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCycle is returned when platform registrations form a base cycle.
var ErrCycle = errors.New("platform base chain contains a cycle")

// ConnectionError marks a connection-level fault. It is never retried here.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error during %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Attempt records one probe that did not identify the dialect.
type Attempt struct {
	Probe  string
	Reason string
}

// DetectionError is returned when no probe identified the connection.
type DetectionError struct {
	Attempts []Attempt
}

func (e *DetectionError) Error() string {
	if len(e.Attempts) == 0 {
		return "could not detect database dialect: no probes configured"
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.Probe + ": " + a.Reason
	}
	return "could not detect database dialect (" + strings.Join(parts, "; ") + ")"
}

// UnknownDialectError is returned when the registry has no mapping for a dialect.
type UnknownDialectError struct {
	Dialect   string
	Available []string
}

func (e *UnknownDialectError) Error() string {
	return fmt.Sprintf("unknown dialect %q; registered platforms: %v", e.Dialect, e.Available)
}

// IntrospectionError reports a failed catalog query. Query names the step,
// SQL is the literal statement and Object the table it ran against, if any.
type IntrospectionError struct {
	Dialect string
	Query   string
	SQL     string
	Object  string
	Err     error
}

func (e *IntrospectionError) Error() string {
	if e.Object != "" {
		return fmt.Sprintf("%s: introspection query %q on %q failed: %v", e.Dialect, e.Query, e.Object, e.Err)
	}
	return fmt.Sprintf("%s: introspection query %q failed: %v", e.Dialect, e.Query, e.Err)
}

func (e *IntrospectionError) Unwrap() error { return e.Err }

// Introspection wraps err with catalog query context. Connection faults stay
// reachable through errors.As as *ConnectionError.
func Introspection(dialect, query, sql, object string, err error) error {
	if err == nil {
		return nil
	}
	var ie *IntrospectionError
	if errors.As(err, &ie) {
		return err
	}
	if Classify(err) == KindConnection {
		var ce *ConnectionError
		if !errors.As(err, &ce) {
			err = &ConnectionError{Op: "introspection", Err: err}
		}
	}
	return &IntrospectionError{
		Dialect: dialect,
		Query:   query,
		SQL:     sql,
		Object:  object,
		Err:     err,
	}
}

// IsConnection reports whether err is or wraps a connection-level fault.
func IsConnection(err error) bool {
	var ce *ConnectionError
	if errors.As(err, &ce) {
		return true
	}
	return Classify(err) == KindConnection
}
