// Package oci implements ports.SchemaRegistry on top of an OCI distribution
// registry. Each artifact is a repository and each version a tag whose
// manifest carries one schema layer.
package oci

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/errdef"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/errcode"

	"github.com/reglet-dev/schemactl/editor/entities"
	"github.com/reglet-dev/schemactl/editor/values"
)

const (
	// ArtifactType identifies schema manifests.
	ArtifactType = "application/vnd.schemactl.schema.v1"
	// SchemaMediaType is the media type of the schema layer.
	SchemaMediaType = "application/schema+json"
)

// Repository is the part of an OCI repository the registry needs.
type Repository interface {
	oras.Target
	Tags(ctx context.Context, last string, fn func(tags []string) error) error
}

// RepositoryFactory opens the repository holding an artifact.
type RepositoryFactory func(ref values.ArtifactRef) (Repository, error)

// Registry implements ports.SchemaRegistry using oras-go.
type Registry struct {
	open   RepositoryFactory
	logger *slog.Logger
	now    func() time.Time
	owner  string
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithClock sets the time source for creation annotations.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithOwner sets the owner reported for artifacts and versions.
func WithOwner(owner string) Option {
	return func(r *Registry) { r.owner = owner }
}

// New creates a registry over the repositories returned by open.
func New(open RepositoryFactory, opts ...Option) *Registry {
	r := &Registry{
		open:   open,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RemoteRepositories returns a factory for repositories named
// <host>/<prefix>/<group>/<artifact> on a remote registry.
func RemoteRepositories(host, prefix string, plainHTTP bool, client *http.Client) RepositoryFactory {
	return func(ref values.ArtifactRef) (Repository, error) {
		name := host + "/"
		if prefix != "" {
			name += prefix + "/"
		}
		name += ref.Group() + "/" + ref.Artifact()

		repo, err := remote.NewRepository(name)
		if err != nil {
			return nil, fmt.Errorf("create repository: %w", err)
		}
		repo.PlainHTTP = plainHTTP
		if client != nil {
			repo.Client = client
		}
		return repo, nil
	}
}

// SearchArtifacts is not supported: the distribution API has no search.
func (r *Registry) SearchArtifacts(ctx context.Context) ([]entities.Artifact, error) {
	return nil, fmt.Errorf("searching artifacts: %w", entities.ErrUnsupported)
}

// GetArtifact derives artifact metadata from the annotations of the first
// and latest versions.
func (r *Registry) GetArtifact(ctx context.Context, ref values.ArtifactRef) (*entities.Artifact, error) {
	repo, tags, err := r.repository(ctx, ref)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, &entities.ArtifactNotFoundError{Ref: ref}
	}

	first, err := r.manifest(ctx, repo, ref, tags[0])
	if err != nil {
		return nil, err
	}
	latest, err := r.manifest(ctx, repo, ref, tags[len(tags)-1])
	if err != nil {
		return nil, err
	}

	return &entities.Artifact{
		Ref:          ref,
		Name:         latest.Annotations[ocispec.AnnotationTitle],
		Description:  latest.Annotations[ocispec.AnnotationDescription],
		ArtifactType: entities.ArtifactTypeJSON,
		Owner:        r.owner,
		ModifiedBy:   r.owner,
		CreatedOn:    created(first),
		ModifiedOn:   created(latest),
	}, nil
}

// ListVersions returns one version per tag, in semantic version order.
func (r *Registry) ListVersions(ctx context.Context, ref values.ArtifactRef) ([]entities.Version, error) {
	repo, tags, err := r.repository(ctx, ref)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, &entities.ArtifactNotFoundError{Ref: ref}
	}

	versions := make([]entities.Version, 0, len(tags))
	for _, tag := range tags {
		m, err := r.manifest(ctx, repo, ref, tag)
		if err != nil {
			return nil, err
		}
		versions = append(versions, entities.Version{
			Ref:          ref,
			Version:      tag,
			ArtifactType: entities.ArtifactTypeJSON,
			Owner:        r.owner,
			State:        "ENABLED",
			CreatedOn:    created(m),
		})
	}
	return versions, nil
}

// GetContent fetches the schema layer of a version.
func (r *Registry) GetContent(ctx context.Context, ref values.ArtifactRef, version string) ([]byte, error) {
	repo, err := r.open(ref)
	if err != nil {
		return nil, err
	}
	m, err := r.manifest(ctx, repo, ref, version)
	if err != nil {
		return nil, err
	}
	layer, err := schemaLayer(m)
	if err != nil {
		return nil, fmt.Errorf("%s@%s: %w", ref, version, err)
	}
	data, err := content.FetchAll(ctx, repo, layer)
	if err != nil {
		return nil, fmt.Errorf("fetch schema layer of %s@%s: %w", ref, version, err)
	}
	return data, nil
}

// CreateArtifact pushes the first version of a new artifact.
func (r *Registry) CreateArtifact(ctx context.Context, artifact entities.NewArtifact) (*entities.Version, error) {
	repo, tags, err := r.repository(ctx, artifact.Ref)
	if err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		return nil, &entities.ConflictError{Ref: artifact.Ref}
	}
	return r.push(ctx, repo, artifact.Ref, artifact.Version, artifact.Content, artifact.Name, artifact.Description)
}

// CreateVersion pushes a new tag, carrying over the latest name and description.
func (r *Registry) CreateVersion(ctx context.Context, ref values.ArtifactRef, version string, data []byte) (*entities.Version, error) {
	repo, tags, err := r.repository(ctx, ref)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, &entities.ArtifactNotFoundError{Ref: ref}
	}
	if slices.Contains(tags, version) {
		return nil, &entities.ConflictError{Ref: ref, Version: version}
	}

	latest, err := r.manifest(ctx, repo, ref, tags[len(tags)-1])
	if err != nil {
		return nil, err
	}
	return r.push(ctx, repo, ref, version, data,
		latest.Annotations[ocispec.AnnotationTitle],
		latest.Annotations[ocispec.AnnotationDescription])
}

// UpdateArtifactMetadata re-tags the latest version with a manifest carrying
// the new name and description. The schema layer is reused unchanged.
func (r *Registry) UpdateArtifactMetadata(ctx context.Context, ref values.ArtifactRef, name, description string) error {
	repo, tags, err := r.repository(ctx, ref)
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		return &entities.ArtifactNotFoundError{Ref: ref}
	}

	tag := tags[len(tags)-1]
	latest, err := r.manifest(ctx, repo, ref, tag)
	if err != nil {
		return err
	}

	annotations := make(map[string]string, len(latest.Annotations))
	for k, v := range latest.Annotations {
		annotations[k] = v
	}
	annotations[ocispec.AnnotationTitle] = name
	annotations[ocispec.AnnotationDescription] = description

	desc, err := oras.PackManifest(ctx, repo, oras.PackManifestVersion1_1, ArtifactType, oras.PackManifestOptions{
		Layers:              latest.Layers,
		ManifestAnnotations: annotations,
	})
	if err != nil {
		return fmt.Errorf("pack manifest for %s@%s: %w", ref, tag, err)
	}
	if err := repo.Tag(ctx, desc, tag); err != nil {
		return fmt.Errorf("tag %s@%s: %w", ref, tag, err)
	}

	r.logger.Debug("retagged manifest with new metadata", "ref", ref.String(), "version", tag, "digest", desc.Digest.String())
	return nil
}

func (r *Registry) push(ctx context.Context, repo Repository, ref values.ArtifactRef, version string, data []byte, name, description string) (*entities.Version, error) {
	now := r.now().UTC().Truncate(time.Second)

	layer, err := pushBlob(ctx, repo, SchemaMediaType, data)
	if err != nil {
		return nil, fmt.Errorf("push schema layer of %s@%s: %w", ref, version, err)
	}

	desc, err := oras.PackManifest(ctx, repo, oras.PackManifestVersion1_1, ArtifactType, oras.PackManifestOptions{
		Layers: []ocispec.Descriptor{layer},
		ManifestAnnotations: map[string]string{
			ocispec.AnnotationTitle:       name,
			ocispec.AnnotationDescription: description,
			ocispec.AnnotationVersion:     version,
			ocispec.AnnotationCreated:     now.Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("pack manifest for %s@%s: %w", ref, version, err)
	}
	if err := repo.Tag(ctx, desc, version); err != nil {
		return nil, fmt.Errorf("tag %s@%s: %w", ref, version, err)
	}

	r.logger.Debug("pushed schema", "ref", ref.String(), "version", version, "digest", desc.Digest.String())
	return &entities.Version{
		Ref:          ref,
		Version:      version,
		ArtifactType: entities.ArtifactTypeJSON,
		Owner:        r.owner,
		State:        "ENABLED",
		CreatedOn:    now,
	}, nil
}

// repository opens the artifact's repository and lists its tags in version order.
// A repository the registry does not know yields no tags.
func (r *Registry) repository(ctx context.Context, ref values.ArtifactRef) (Repository, []string, error) {
	repo, err := r.open(ref)
	if err != nil {
		return nil, nil, err
	}

	var tags []string
	err = repo.Tags(ctx, "", func(page []string) error {
		tags = append(tags, page...)
		return nil
	})
	if err != nil && !isNotFound(err) {
		return nil, nil, fmt.Errorf("list tags of %s: %w", ref, err)
	}

	sortTags(tags)
	return repo, tags, nil
}

func (r *Registry) manifest(ctx context.Context, repo Repository, ref values.ArtifactRef, version string) (*ocispec.Manifest, error) {
	_, data, err := oras.FetchBytes(ctx, repo, version, oras.DefaultFetchBytesOptions)
	if err != nil {
		if isNotFound(err) {
			return nil, &entities.VersionNotFoundError{Ref: ref, Version: version}
		}
		return nil, fmt.Errorf("fetch manifest of %s@%s: %w", ref, version, err)
	}

	var m ocispec.Manifest
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
		return nil, fmt.Errorf("invalid manifest JSON for %s@%s: %w", ref, version, err)
	}
	return &m, nil
}

// pushBlob pushes data unless the repository already holds it, so versions
// with identical content share one layer.
func pushBlob(ctx context.Context, repo Repository, mediaType string, data []byte) (ocispec.Descriptor, error) {
	desc := ocispec.Descriptor{
		MediaType: mediaType,
		Digest:    digest.FromBytes(data),
		Size:      int64(len(data)),
	}
	exists, err := repo.Exists(ctx, desc)
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	if exists {
		return desc, nil
	}
	if err := repo.Push(ctx, desc, bytes.NewReader(data)); err != nil && !errors.Is(err, errdef.ErrAlreadyExists) {
		return ocispec.Descriptor{}, err
	}
	return desc, nil
}

func schemaLayer(m *ocispec.Manifest) (ocispec.Descriptor, error) {
	for _, layer := range m.Layers {
		if layer.MediaType == SchemaMediaType {
			return layer, nil
		}
	}
	return ocispec.Descriptor{}, fmt.Errorf("no %s layer found", SchemaMediaType)
}

func created(m *ocispec.Manifest) time.Time {
	t, err := time.Parse(time.RFC3339, m.Annotations[ocispec.AnnotationCreated])
	if err != nil {
		return time.Time{}
	}
	return t
}

func isNotFound(err error) bool {
	if errors.Is(err, errdef.ErrNotFound) {
		return true
	}
	var resp *errcode.ErrorResponse
	return errors.As(err, &resp) && resp.StatusCode == http.StatusNotFound
}

// sortTags orders semantic versions ascending, followed by other tags
// in lexical order.
func sortTags(tags []string) {
	slices.SortStableFunc(tags, func(a, b string) int {
		va, errA := semver.StrictNewVersion(a)
		vb, errB := semver.StrictNewVersion(b)
		switch {
		case errA == nil && errB == nil:
			return va.Compare(vb)
		case errA == nil:
			return -1
		case errB == nil:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})
}
