package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSlides is reported when an imported document yields zero slides
	ErrNoSlides = errors.New("no slides found")

	// ErrUnknownTemplate is reported for a template tag outside the variant set
	ErrUnknownTemplate = errors.New("unknown template")

	// ErrMissingSlides is reported when a saved state lacks a slide sequence
	ErrMissingSlides = errors.New("missing slide sequence")
)

// ParseError aborts an import; the current deck is left untouched
type ParseError struct {
	Reason string
	Cause  error
}

func (e *ParseError) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Reason {
		return fmt.Sprintf("parse error: %s: %v", e.Reason, e.Cause)
	}
	return "parse error: " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// SnapshotError rejects a structural state load that is malformed
type SnapshotError struct {
	Reason string
	Cause  error
}

func (e *SnapshotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed snapshot: %s: %v", e.Reason, e.Cause)
	}
	return "malformed snapshot: " + e.Reason
}

func (e *SnapshotError) Unwrap() error {
	return e.Cause
}

// IsParseError reports whether err is or wraps a *ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsSnapshotError reports whether err is or wraps a *SnapshotError
func IsSnapshotError(err error) bool {
	var se *SnapshotError
	return errors.As(err, &se)
}
