// Package values holds validated value objects shared by the editor layers.
package values

import (
	"encoding/json"
	"fmt"
	"strings"
)

const maxIDLength = 512

// DefaultGroup is the registry group used when none is given.
const DefaultGroup = "default"

// ArtifactID is a validated registry artifact or group identifier.
// Identifiers end up as URL path segments and local file names, so they are
// restricted to a conservative character set.
type ArtifactID struct {
	value string
}

// NewArtifactID creates an ArtifactID with strict validation.
// A valid identifier must:
// - Be non-empty after trimming
// - Be at most 512 characters long
// - Not contain path separators or parent directory references
// - Contain only alphanumeric characters, dots, underscores, and hyphens
func NewArtifactID(id string) (ArtifactID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ArtifactID{}, fmt.Errorf("artifact id cannot be empty")
	}

	if len(id) > maxIDLength {
		return ArtifactID{}, fmt.Errorf("artifact id too long (max %d chars)", maxIDLength)
	}

	if strings.ContainsAny(id, `/\`) {
		return ArtifactID{}, fmt.Errorf("artifact id cannot contain path separators")
	}

	if strings.Contains(id, "..") {
		return ArtifactID{}, fmt.Errorf("artifact id cannot contain parent directory references")
	}

	for _, ch := range id {
		if !isValidIDChar(ch) {
			return ArtifactID{}, fmt.Errorf("invalid artifact id %q: must contain only alphanumeric characters, dots, underscores, and hyphens", id)
		}
	}

	return ArtifactID{value: id}, nil
}

func isValidIDChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '.' ||
		r == '_' ||
		r == '-'
}

// MustNewArtifactID creates an ArtifactID or panics
func MustNewArtifactID(id string) ArtifactID {
	a, err := NewArtifactID(id)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the string representation
func (a ArtifactID) String() string {
	return a.value
}

// IsEmpty returns true if this is the zero value
func (a ArtifactID) IsEmpty() bool {
	return a.value == ""
}

// MarshalJSON implements json.Marshaler.
func (a ArtifactID) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (a *ArtifactID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid artifact id JSON: %w", err)
	}

	id, err := NewArtifactID(s)
	if err != nil {
		return err
	}
	*a = id
	return nil
}

// ArtifactRef identifies an artifact within a registry group.
type ArtifactRef struct {
	group    ArtifactID
	artifact ArtifactID
}

// NewArtifactRef validates group and artifact. An empty group means DefaultGroup.
func NewArtifactRef(group, artifact string) (ArtifactRef, error) {
	if strings.TrimSpace(group) == "" {
		group = DefaultGroup
	}
	g, err := NewArtifactID(group)
	if err != nil {
		return ArtifactRef{}, fmt.Errorf("invalid group: %w", err)
	}
	a, err := NewArtifactID(artifact)
	if err != nil {
		return ArtifactRef{}, err
	}
	return ArtifactRef{group: g, artifact: a}, nil
}

// MustNewArtifactRef creates an ArtifactRef or panics.
func MustNewArtifactRef(group, artifact string) ArtifactRef {
	r, err := NewArtifactRef(group, artifact)
	if err != nil {
		panic(err)
	}
	return r
}

// ParseArtifactRef parses "group/artifact" or a bare "artifact" in the default group.
func ParseArtifactRef(s string) (ArtifactRef, error) {
	group, artifact, found := strings.Cut(s, "/")
	if !found {
		return NewArtifactRef(DefaultGroup, s)
	}
	return NewArtifactRef(group, artifact)
}

// Group returns the group identifier.
func (r ArtifactRef) Group() string {
	return r.group.String()
}

// Artifact returns the artifact identifier.
func (r ArtifactRef) Artifact() string {
	return r.artifact.String()
}

// String returns "group/artifact".
func (r ArtifactRef) String() string {
	return r.group.String() + "/" + r.artifact.String()
}

// Equals checks equality with another reference.
func (r ArtifactRef) Equals(other ArtifactRef) bool {
	return r.group == other.group && r.artifact == other.artifact
}
