// Package entities holds the editor's domain types: registry artifacts, their
// versions, and the local baseline lock.
package entities

import (
	"time"

	"github.com/reglet-dev/schemactl/editor/values"
)

// ArtifactTypeJSON is the registry artifact type of JSON Schema artifacts.
const ArtifactTypeJSON = "JSON"

// ContentTypeJSON is the content type schema versions are stored with.
const ContentTypeJSON = "application/json"

// Artifact is the registry metadata of one schema artifact.
type Artifact struct {
	CreatedOn    time.Time
	ModifiedOn   time.Time
	Labels       map[string]string
	Ref          values.ArtifactRef
	Name         string
	Description  string
	ArtifactType string
	Owner        string
	ModifiedBy   string
}

// IsJSONSchema reports whether the artifact holds a JSON Schema.
func (a Artifact) IsJSONSchema() bool {
	return a.ArtifactType == ArtifactTypeJSON
}

// Version is the registry metadata of one artifact version.
type Version struct {
	CreatedOn    time.Time
	Ref          values.ArtifactRef
	Version      string
	ArtifactType string
	Owner        string
	State        string
	GlobalID     int64
	ContentID    int64
}

// IsJSONSchema reports whether the version holds a JSON Schema.
func (v Version) IsJSONSchema() bool {
	return v.ArtifactType == ArtifactTypeJSON
}

// NewArtifact describes an artifact to create together with its first version.
type NewArtifact struct {
	Ref         values.ArtifactRef
	Name        string
	Description string
	Version     string
	Content     []byte
}
