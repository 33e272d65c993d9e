// Package ports defines the interfaces the editor service depends on.
package ports

import (
	"context"

	"github.com/reglet-dev/schemactl/editor/entities"
	"github.com/reglet-dev/schemactl/editor/values"
)

// SchemaRegistry provides access to a remote schema registry.
// Implementations return *entities.ArtifactNotFoundError, *entities.VersionNotFoundError
// and *entities.ConflictError for the matching conditions.
type SchemaRegistry interface {
	// SearchArtifacts lists the JSON Schema artifacts known to the registry.
	SearchArtifacts(ctx context.Context) ([]entities.Artifact, error)

	// GetArtifact returns artifact metadata.
	GetArtifact(ctx context.Context, ref values.ArtifactRef) (*entities.Artifact, error)

	// ListVersions returns the versions of an artifact in registry order.
	ListVersions(ctx context.Context, ref values.ArtifactRef) ([]entities.Version, error)

	// GetContent fetches the raw content of one version.
	GetContent(ctx context.Context, ref values.ArtifactRef, version string) ([]byte, error)

	// CreateArtifact creates an artifact together with its first version.
	CreateArtifact(ctx context.Context, artifact entities.NewArtifact) (*entities.Version, error)

	// CreateVersion appends a version to an existing artifact.
	CreateVersion(ctx context.Context, ref values.ArtifactRef, version string, content []byte) (*entities.Version, error)

	// UpdateArtifactMetadata replaces the artifact's name and description.
	UpdateArtifactMetadata(ctx context.Context, ref values.ArtifactRef, name, description string) error
}
