package entities

import (
	"errors"
	"fmt"

	"github.com/reglet-dev/schemactl/editor/values"
	"github.com/reglet-dev/schemactl/schema"
)

// Sentinel errors for common error patterns.
// These allow both errors.Is() checks and errors.As() for detailed information.
var (
	// ErrArtifactNotFound is returned when an artifact does not exist in the registry.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrVersionNotFound is returned when an artifact version does not exist.
	ErrVersionNotFound = errors.New("version not found")

	// ErrConflict is returned when an artifact or version already exists.
	ErrConflict = errors.New("already exists")

	// ErrIntegrityCheckFailed is returned when baseline content no longer
	// matches its recorded digest.
	ErrIntegrityCheckFailed = errors.New("integrity check failed")

	// ErrBreakingChange is returned when saving a breaking change that was not allowed.
	ErrBreakingChange = errors.New("breaking change not allowed")

	// ErrNoChanges is returned when a save finds nothing to persist.
	ErrNoChanges = errors.New("no changes to save")

	// ErrUnsupported is returned by registry backends for operations they cannot perform.
	ErrUnsupported = errors.New("operation not supported by registry backend")
)

// ArtifactNotFoundError indicates the artifact doesn't exist in the registry.
type ArtifactNotFoundError struct {
	Ref values.ArtifactRef
}

func (e *ArtifactNotFoundError) Error() string {
	return fmt.Sprintf("artifact not found: %s", e.Ref)
}

// Is implements error matching for errors.Is() checks.
// This allows: errors.Is(err, entities.ErrArtifactNotFound)
func (e *ArtifactNotFoundError) Is(target error) bool {
	return target == ErrArtifactNotFound
}

// VersionNotFoundError indicates the artifact exists but the version does not.
type VersionNotFoundError struct {
	Ref     values.ArtifactRef
	Version string
}

func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("version %s of %s not found", e.Version, e.Ref)
}

// Is implements error matching for errors.Is() checks.
func (e *VersionNotFoundError) Is(target error) bool {
	return target == ErrVersionNotFound
}

// ConflictError indicates the registry already holds the artifact or version.
type ConflictError struct {
	Ref     values.ArtifactRef
	Version string
}

func (e *ConflictError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("artifact %s already exists", e.Ref)
	}
	return fmt.Sprintf("version %s of %s already exists", e.Version, e.Ref)
}

// Is implements error matching for errors.Is() checks.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// IntegrityError indicates that the registry content of a baseline version no
// longer matches the digest recorded when it was pulled.
type IntegrityError struct {
	Ref      values.ArtifactRef
	Version  string
	Expected values.Digest
	Actual   values.Digest
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf(
		"integrity check failed for %s@%s: expected %s, got %s",
		e.Ref, e.Version, e.Expected, e.Actual,
	)
}

// Is implements error matching for errors.Is() checks.
func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrityCheckFailed
}

// BreakingChangeError reports a breaking change that the caller did not allow.
// Report lists the offending fields.
type BreakingChangeError struct {
	Ref    values.ArtifactRef
	From   string
	To     string
	Report schema.Report
}

func (e *BreakingChangeError) Error() string {
	return fmt.Sprintf(
		"breaking change to %s (%s -> %s): %d field(s) removed, %d retyped",
		e.Ref, e.From, e.To, len(e.Report.Removed), len(e.Report.Retyped),
	)
}

// Is implements error matching for errors.Is() checks.
func (e *BreakingChangeError) Is(target error) bool {
	return target == ErrBreakingChange
}
