package entities

import (
	"fmt"
	"time"
)

// CurrentBaselineVersion is the lock format version written by this release.
const CurrentBaselineVersion = 1

// Baseline is the aggregate root for locally pulled schemas.
// It pins, per local file, the registry version an edit started from and the
// digest of that version's content.
//
// Invariants:
// - Each entry must have a digest and a version
// - Generated timestamp must be set when entries exist
type Baseline struct {
	Generated time.Time
	Schemas   map[string]SchemaLock
	Version   int
}

// SchemaLock is a value object pinning one pulled schema.
// Immutable after creation.
type SchemaLock struct {
	Fetched  time.Time
	Group    string
	Artifact string
	Version  string
	Digest   string // sha256:... of the canonical content
}

// NewBaseline creates an empty baseline with the current format version.
func NewBaseline() *Baseline {
	return &Baseline{
		Version:   CurrentBaselineVersion,
		Generated: time.Now().UTC(),
		Schemas:   make(map[string]SchemaLock),
	}
}

// Lock adds or replaces the entry for a local file.
// Returns error if digest or version is empty (invariant enforcement).
func (b *Baseline) Lock(file string, lock SchemaLock) error {
	if lock.Digest == "" {
		return fmt.Errorf("schema %q: digest is required", file)
	}
	if lock.Version == "" {
		return fmt.Errorf("schema %q: version is required", file)
	}
	if b.Schemas == nil {
		b.Schemas = make(map[string]SchemaLock)
	}
	b.Schemas[file] = lock
	return nil
}

// Get retrieves the entry for a local file.
// Returns nil if not found.
func (b *Baseline) Get(file string) *SchemaLock {
	if b == nil || b.Schemas == nil {
		return nil
	}
	if lock, ok := b.Schemas[file]; ok {
		return &lock
	}
	return nil
}

// Validate checks baseline invariants.
func (b *Baseline) Validate() error {
	if b.Count() > 0 && b.Generated.IsZero() {
		return fmt.Errorf("generated timestamp is required")
	}
	if b.Version > CurrentBaselineVersion {
		return fmt.Errorf("unsupported baseline version %d", b.Version)
	}
	for file, lock := range b.Schemas {
		if lock.Digest == "" {
			return fmt.Errorf("schema %q: digest is required", file)
		}
		if lock.Version == "" {
			return fmt.Errorf("schema %q: version is required", file)
		}
	}
	return nil
}

// Count returns the number of locked schemas.
func (b *Baseline) Count() int {
	if b == nil {
		return 0
	}
	return len(b.Schemas)
}
