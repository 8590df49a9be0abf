// Package docxerr provides the structured error type shared across every
// docxhtml package.
package docxerr

import (
	"errors"
	"fmt"
)

// Sentinel errors. Check against these with errors.Is, never by matching
// message text.
var (
	// ErrNotFound is returned when a requested part, node, or relationship
	// doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidFormat is returned when XML or package data has invalid
	// structure (the Parse category in the error taxonomy).
	ErrInvalidFormat = errors.New("invalid format")

	// ErrSemantic is returned when a word-processing element required by
	// the contract is missing, e.g. no w:body.
	ErrSemantic = errors.New("semantic error")

	// ErrIdentity is returned when a Put is asked to apply an HTML tree
	// whose ids do not correspond to the concrete document. Callers may
	// treat this as "create" rather than "put" for the affected subtree.
	ErrIdentity = errors.New("id does not correlate to a concrete node")

	// ErrAlreadyExists is returned when adding a part/relationship that
	// already exists.
	ErrAlreadyExists = errors.New("already exists")
)

// Error is the unified error type used across every docxhtml package: a
// Package/Op/Path/Err shape so errors.Is and errors.As keep working
// across package boundaries.
type Error struct {
	// Package identifies the package where the error originated, e.g.
	// "xmlio", "opc", "lens", "wordlens".
	Package string

	// Op describes the operation being performed, e.g. "parse", "get",
	// "put", "save".
	Op string

	// Path is the part path or file path involved, if any.
	Path string

	Err error
}

func (e *Error) Error() string {
	var msg string
	if e.Package != "" {
		msg = e.Package + ": "
	}
	if e.Op != "" {
		msg += e.Op
	}
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		if msg != "" {
			msg += ": "
		}
		msg += e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap wraps err with package/op context. Returns nil if err is nil.
func Wrap(pkg, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Package: pkg, Op: op, Err: err}
}

// WrapPath wraps err with package/op/path context. Returns nil if err is nil.
func WrapPath(pkg, op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Package: pkg, Op: op, Path: path, Err: err}
}

// Errorf creates an Error with a formatted underlying message.
func Errorf(pkg, op, path, format string, args ...any) *Error {
	return &Error{Package: pkg, Op: op, Path: path, Err: fmt.Errorf(format, args...)}
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsIdentity reports whether err is or wraps ErrIdentity.
func IsIdentity(err error) bool { return errors.Is(err, ErrIdentity) }
