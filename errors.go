// Package certgen renders certificate templates into print-accurate PDF
// documents. The root package holds the error vocabulary shared by the
// geometry, templating, composing and editing packages.
package certgen

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions callers are expected to test with errors.Is.
var (
	ErrNoPages          = errors.New("certgen: template has no pages")
	ErrInvalidLayout    = errors.New("certgen: invalid page layout")
	ErrDuplicateID      = errors.New("certgen: duplicate element id")
	ErrUnknownElement   = errors.New("certgen: unknown element type")
	ErrInvalidElement   = errors.New("certgen: invalid element")
	ErrFetch            = errors.New("certgen: resource fetch failed")
	ErrUnsupportedImage = errors.New("certgen: unsupported image")
	ErrFontFormat       = errors.New("certgen: unsupported font format")
	ErrGestureActive    = errors.New("certgen: another gesture is active")
	ErrNotFound         = errors.New("certgen: not found")
)

// Error represents a failure in a specific engine operation.
// It wraps an underlying error and includes the operation name for context.
type Error struct {
	Op  string // operation name, e.g. "image" or "font"
	Err error  // underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("certgen.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("certgen.%s: unknown error", e.Op)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns err wrapped with operation context, or nil when err is nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
