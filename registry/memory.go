// Package registry holds schema registry backends. The in-memory backend lives
// here; remote backends live in the apicurio and oci sub-packages.
package registry

import (
	"bytes"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/reglet-dev/schemactl/editor/entities"
	"github.com/reglet-dev/schemactl/editor/values"
)

// Memory implements ports.SchemaRegistry using in-memory storage.
type Memory struct {
	artifacts map[string]*memoryArtifact
	now       func() time.Time
	owner     string
	globalID  int64
	mu        sync.RWMutex
}

type memoryArtifact struct {
	meta     entities.Artifact
	versions []entities.Version
	content  map[string][]byte
}

// MemoryOption configures the Memory registry.
type MemoryOption func(*Memory)

// WithClock sets the time source used for creation and modification stamps.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

// WithOwner sets the owner recorded on created artifacts and versions.
func WithOwner(owner string) MemoryOption {
	return func(m *Memory) {
		m.owner = owner
	}
}

// NewMemory creates an empty in-memory registry.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		artifacts: make(map[string]*memoryArtifact),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SearchArtifacts returns every artifact, sorted by group and artifact ID.
func (m *Memory) SearchArtifacts(ctx context.Context) ([]entities.Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := slices.Sorted(maps.Keys(m.artifacts))
	out := make([]entities.Artifact, 0, len(keys))
	for _, key := range keys {
		out = append(out, m.artifacts[key].meta)
	}
	return out, nil
}

// GetArtifact returns artifact metadata.
func (m *Memory) GetArtifact(ctx context.Context, ref values.ArtifactRef) (*entities.Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.artifacts[ref.String()]
	if !ok {
		return nil, &entities.ArtifactNotFoundError{Ref: ref}
	}
	meta := a.meta
	meta.Labels = maps.Clone(a.meta.Labels)
	return &meta, nil
}

// ListVersions returns the versions of an artifact in creation order.
func (m *Memory) ListVersions(ctx context.Context, ref values.ArtifactRef) ([]entities.Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.artifacts[ref.String()]
	if !ok {
		return nil, &entities.ArtifactNotFoundError{Ref: ref}
	}
	return slices.Clone(a.versions), nil
}

// GetContent returns a copy of the stored content of one version.
func (m *Memory) GetContent(ctx context.Context, ref values.ArtifactRef, version string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.artifacts[ref.String()]
	if !ok {
		return nil, &entities.ArtifactNotFoundError{Ref: ref}
	}
	content, ok := a.content[version]
	if !ok {
		return nil, &entities.VersionNotFoundError{Ref: ref, Version: version}
	}
	return bytes.Clone(content), nil
}

// CreateArtifact stores a new artifact and its first version.
func (m *Memory) CreateArtifact(ctx context.Context, artifact entities.NewArtifact) (*entities.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := artifact.Ref.String()
	if _, exists := m.artifacts[key]; exists {
		return nil, &entities.ConflictError{Ref: artifact.Ref}
	}

	now := m.now()
	a := &memoryArtifact{
		meta: entities.Artifact{
			Ref:          artifact.Ref,
			Name:         artifact.Name,
			Description:  artifact.Description,
			ArtifactType: entities.ArtifactTypeJSON,
			Owner:        m.owner,
			ModifiedBy:   m.owner,
			CreatedOn:    now,
			ModifiedOn:   now,
		},
		content: make(map[string][]byte),
	}
	m.artifacts[key] = a

	v := m.appendVersion(a, artifact.Version, artifact.Content, now)
	return &v, nil
}

// CreateVersion appends a version to an existing artifact.
func (m *Memory) CreateVersion(ctx context.Context, ref values.ArtifactRef, version string, content []byte) (*entities.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.artifacts[ref.String()]
	if !ok {
		return nil, &entities.ArtifactNotFoundError{Ref: ref}
	}
	if _, exists := a.content[version]; exists {
		return nil, &entities.ConflictError{Ref: ref, Version: version}
	}

	now := m.now()
	v := m.appendVersion(a, version, content, now)
	a.meta.ModifiedOn = now
	a.meta.ModifiedBy = m.owner
	return &v, nil
}

// UpdateArtifactMetadata replaces the artifact's name and description.
func (m *Memory) UpdateArtifactMetadata(ctx context.Context, ref values.ArtifactRef, name, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.artifacts[ref.String()]
	if !ok {
		return &entities.ArtifactNotFoundError{Ref: ref}
	}
	a.meta.Name = name
	a.meta.Description = description
	a.meta.ModifiedOn = m.now()
	a.meta.ModifiedBy = m.owner
	return nil
}

// appendVersion must be called with the write lock held.
func (m *Memory) appendVersion(a *memoryArtifact, version string, content []byte, now time.Time) entities.Version {
	m.globalID++
	v := entities.Version{
		Ref:          a.meta.Ref,
		Version:      version,
		ArtifactType: entities.ArtifactTypeJSON,
		Owner:        m.owner,
		State:        "ENABLED",
		CreatedOn:    now,
		GlobalID:     m.globalID,
		ContentID:    m.globalID,
	}
	a.versions = append(a.versions, v)
	a.content[version] = bytes.Clone(content)
	return v
}
