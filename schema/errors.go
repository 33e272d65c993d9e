package schema

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error patterns.
// These allow both errors.Is() checks and errors.As() for detailed information.
var (
	// ErrInvalidSchemaShape is returned when a payload does not have the shape
	// of a schema document.
	ErrInvalidSchemaShape = errors.New("invalid schema shape")

	// ErrMalformedVersion is returned when a version is not major.minor.patch.
	ErrMalformedVersion = errors.New("malformed version")

	// ErrInvalidSchema is returned when a document is not a valid JSON Schema.
	ErrInvalidSchema = errors.New("invalid JSON Schema")

	ErrEmptyFieldName = errors.New("field name cannot be empty")
	ErrFieldExists    = errors.New("field already exists")
	ErrFieldNotFound  = errors.New("field not found")
)

// InvalidSchemaShapeError indicates a payload that cannot be decoded into a
// Document. Path locates the offending keyword, e.g. "properties.age.type".
type InvalidSchemaShapeError struct {
	Path   string
	Reason string
}

func (e *InvalidSchemaShapeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid schema shape: %s", e.Reason)
	}
	return fmt.Sprintf("invalid schema shape at %s: %s", e.Path, e.Reason)
}

// Is implements error matching for errors.Is() checks.
func (e *InvalidSchemaShapeError) Is(target error) bool {
	return target == ErrInvalidSchemaShape
}

func (e *InvalidSchemaShapeError) under(prefix string) *InvalidSchemaShapeError {
	path := prefix
	if e.Path != "" {
		path = prefix + "." + e.Path
	}
	return &InvalidSchemaShapeError{Path: path, Reason: e.Reason}
}

// MalformedVersionError indicates a version string that does not split into
// exactly three non-negative integer components.
type MalformedVersionError struct {
	Err     error
	Version string
}

func (e *MalformedVersionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed version %q: expected major.minor.patch: %v", e.Version, e.Err)
	}
	return fmt.Sprintf("malformed version %q: expected major.minor.patch", e.Version)
}

// Is implements error matching for errors.Is() checks.
// This allows: errors.Is(err, schema.ErrMalformedVersion)
func (e *MalformedVersionError) Is(target error) bool {
	return target == ErrMalformedVersion
}

func (e *MalformedVersionError) Unwrap() error {
	return e.Err
}
