// Package editor orchestrates schema editing use cases: listing, creating,
// opening, and saving schemas in a registry, and syncing them with local files.
package editor

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/reglet-dev/schemactl/editor/entities"
	"github.com/reglet-dev/schemactl/editor/ports"
	"github.com/reglet-dev/schemactl/editor/resolvers"
	"github.com/reglet-dev/schemactl/editor/values"
	"github.com/reglet-dev/schemactl/schema"
)

// Service orchestrates schema editing use cases against a registry.
type Service struct {
	registry     ports.SchemaRegistry
	resolver     ports.VersionResolver
	baselines    ports.BaselineRepository
	logger       *slog.Logger
	group        string
	baselinePath string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// NewService creates an editing service. The registry is required.
func NewService(registry ports.SchemaRegistry, opts ...ServiceOption) *Service {
	s := &Service{
		registry: registry,
		resolver: resolvers.NewSemverResolver(),
		logger:   slog.Default(),
		group:    values.DefaultGroup,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithResolver sets the version resolver used by Open.
func WithResolver(r ports.VersionResolver) ServiceOption {
	return func(s *Service) { s.resolver = r }
}

// WithGroup sets the group used for bare artifact IDs.
func WithGroup(group string) ServiceOption {
	return func(s *Service) {
		if group != "" {
			s.group = group
		}
	}
}

// WithBaselineRepository enables Pull and Push, persisting the baseline lock at path.
func WithBaselineRepository(repo ports.BaselineRepository, path string) ServiceOption {
	return func(s *Service) {
		s.baselines = repo
		s.baselinePath = path
	}
}

// SaveOptions controls Save and Push.
type SaveOptions struct {
	// AllowBreaking permits saving a breaking change as a new major version.
	AllowBreaking bool
	// DryRun computes the result without writing to the registry.
	DryRun bool
}

// SaveResult describes what a save did, or would do under DryRun.
type SaveResult struct {
	Version         *entities.Version
	Report          schema.Report
	From            string
	To              string
	Content         []byte
	Change          schema.ChangeType
	MetadataUpdated bool
	DryRun          bool
}

// Ref parses "group/artifact" or a bare artifact ID in the service's group.
func (s *Service) Ref(id string) (values.ArtifactRef, error) {
	if strings.Contains(id, "/") {
		return values.ParseArtifactRef(id)
	}
	return values.NewArtifactRef(s.group, id)
}

// ListSchemas returns the registry's JSON Schema artifacts sorted by artifact ID.
// A non-empty pattern filters artifact IDs with doublestar glob syntax.
func (s *Service) ListSchemas(ctx context.Context, pattern string) ([]entities.Artifact, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid filter pattern %q", pattern)
	}

	artifacts, err := s.registry.SearchArtifacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing schemas: %w", err)
	}

	out := make([]entities.Artifact, 0, len(artifacts))
	for _, a := range artifacts {
		if !a.IsJSONSchema() {
			continue
		}
		if pattern != "" {
			// Pattern was validated above, so Match cannot fail.
			if ok, _ := doublestar.Match(pattern, a.Ref.Artifact()); !ok {
				continue
			}
		}
		out = append(out, a)
	}

	slices.SortStableFunc(out, func(a, b entities.Artifact) int {
		return cmp.Or(
			cmp.Compare(a.Ref.Artifact(), b.Ref.Artifact()),
			cmp.Compare(a.Ref.Group(), b.Ref.Group()),
		)
	})

	s.logger.Debug("listed schemas", "total", len(artifacts), "matched", len(out), "pattern", pattern)
	return out, nil
}

// CreateSchema creates an artifact whose first version is an empty object schema
// titled with the artifact ID. The description applies to the artifact metadata.
func (s *Service) CreateSchema(ctx context.Context, id, description string) (*entities.Version, error) {
	ref, err := s.Ref(id)
	if err != nil {
		return nil, fmt.Errorf("invalid schema id: %w", err)
	}

	doc := schema.NewObject(ref.Artifact())
	if strings.TrimSpace(description) == "" {
		description = doc.Description
	}

	content, err := encode(doc)
	if err != nil {
		return nil, err
	}

	v, err := s.registry.CreateArtifact(ctx, entities.NewArtifact{
		Ref:         ref,
		Name:        doc.Title,
		Description: description,
		Version:     schema.InitialVersion,
		Content:     content,
	})
	if err != nil {
		return nil, fmt.Errorf("creating schema %s: %w", ref, err)
	}

	s.logger.Info("schema created", "ref", ref.String(), "version", v.Version)
	return v, nil
}

// Versions returns the JSON Schema versions of an artifact sorted by semantic
// version. Versions that do not parse follow in registry order.
func (s *Service) Versions(ctx context.Context, ref values.ArtifactRef) ([]entities.Version, error) {
	all, err := s.registry.ListVersions(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("listing versions of %s: %w", ref, err)
	}

	type parsed struct {
		v   entities.Version
		sem *semver.Version
	}
	var sorted []parsed
	var rest []entities.Version
	for _, v := range all {
		if !v.IsJSONSchema() {
			continue
		}
		sem, err := semver.StrictNewVersion(v.Version)
		if err != nil {
			rest = append(rest, v)
			continue
		}
		sorted = append(sorted, parsed{v: v, sem: sem})
	}
	slices.SortStableFunc(sorted, func(a, b parsed) int {
		return a.sem.Compare(b.sem)
	})

	out := make([]entities.Version, 0, len(sorted)+len(rest))
	for _, p := range sorted {
		out = append(out, p.v)
	}
	return append(out, rest...), nil
}

// Open loads one version of an artifact into an editing session. The
// constraint is an exact version, a semver constraint, or empty for the latest.
func (s *Service) Open(ctx context.Context, ref values.ArtifactRef, constraint string) (*Session, error) {
	artifact, err := s.registry.GetArtifact(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", ref, err)
	}

	version, err := s.resolveVersion(ctx, ref, constraint)
	if err != nil {
		return nil, err
	}

	content, err := s.registry.GetContent(ctx, ref, version)
	if err != nil {
		return nil, fmt.Errorf("fetching %s@%s: %w", ref, version, err)
	}

	doc, err := schema.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("decoding %s@%s: %w", ref, version, err)
	}

	s.logger.Debug("opened schema", "ref", ref.String(), "version", version, "fields", len(doc.FieldNames()))
	return newSession(*artifact, version, doc), nil
}

func (s *Service) resolveVersion(ctx context.Context, ref values.ArtifactRef, constraint string) (string, error) {
	versions, err := s.Versions(ctx, ref)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", &entities.VersionNotFoundError{Ref: ref, Version: cmp.Or(constraint, resolvers.Latest)}
	}

	available := make([]string, len(versions))
	for i, v := range versions {
		if v.Version == constraint {
			return v.Version, nil
		}
		available[i] = v.Version
	}

	version, err := s.resolver.Resolve(constraint, available)
	if err != nil {
		return "", fmt.Errorf("%w: %w", &entities.VersionNotFoundError{Ref: ref, Version: cmp.Or(constraint, resolvers.Latest)}, err)
	}
	return version, nil
}

// Save persists a session's draft.
//
// Additive and breaking changes create a new version. A breaking change
// requires opts.AllowBreaking. When the fields are unchanged but the title or
// description changed, only the artifact metadata is updated. Anything else
// returns ErrNoChanges. On success the draft becomes the session's baseline.
//
// When the new version is created but the metadata update fails, Save returns
// both the result and the error. The session then sits on the new version with
// the metadata change still pending, so saving it again only re-sends the
// metadata.
func (s *Service) Save(ctx context.Context, session *Session, opts SaveOptions) (*SaveResult, error) {
	preview, err := session.Preview()
	if err != nil {
		return nil, fmt.Errorf("computing next version of %s: %w", session.Ref(), err)
	}

	result := &SaveResult{
		Report: preview.Report,
		Change: preview.Change,
		From:   preview.From,
		To:     preview.To,
		DryRun: opts.DryRun,
	}

	if err := schema.Validate(session.Draft()); err != nil {
		return nil, fmt.Errorf("validating %s: %w", session.Ref(), err)
	}

	if preview.Change == schema.ChangeBreaking && !opts.AllowBreaking {
		return nil, &entities.BreakingChangeError{
			Ref:    session.Ref(),
			From:   preview.From,
			To:     preview.To,
			Report: preview.Report,
		}
	}

	metadataChanged := session.MetadataChanged()

	switch preview.Change {
	case schema.ChangeAdditive, schema.ChangeBreaking:
		content, err := encode(session.Draft())
		if err != nil {
			return nil, err
		}
		result.Content = content
		if opts.DryRun {
			return result, nil
		}

		v, err := s.registry.CreateVersion(ctx, session.Ref(), preview.To, content)
		if err != nil {
			return nil, fmt.Errorf("saving %s@%s: %w", session.Ref(), preview.To, err)
		}
		result.Version = v

		if metadataChanged {
			if err := s.updateMetadata(ctx, session); err != nil {
				// The version exists now; only the metadata is left for a retry.
				session.rebase(preview.To, false)
				s.logger.Warn("schema saved without metadata",
					"ref", session.Ref().String(),
					"version", preview.To,
					"error", err)
				return result, fmt.Errorf("saved %s@%s but %w", session.Ref(), preview.To, err)
			}
			result.MetadataUpdated = true
		}

	case schema.ChangeNone:
		if !metadataChanged {
			return nil, entities.ErrNoChanges
		}
		if opts.DryRun {
			result.MetadataUpdated = true
			return result, nil
		}
		if err := s.updateMetadata(ctx, session); err != nil {
			return nil, err
		}
		result.MetadataUpdated = true
	}

	session.rebase(preview.To, true)

	s.logger.Info("schema saved",
		"ref", session.Ref().String(),
		"change", preview.Change.String(),
		"from", preview.From,
		"to", preview.To,
		"metadata_updated", result.MetadataUpdated)
	return result, nil
}

func (s *Service) updateMetadata(ctx context.Context, session *Session) error {
	draft := session.Draft()
	if err := s.registry.UpdateArtifactMetadata(ctx, session.Ref(), draft.Title, draft.Description); err != nil {
		return fmt.Errorf("updating metadata of %s: %w", session.Ref(), err)
	}
	return nil
}

// Compare reports the field differences between two registry versions.
func (s *Service) Compare(ctx context.Context, ref values.ArtifactRef, from, to string) (schema.Report, error) {
	docs := make([]*schema.Document, 2)
	for i, version := range []string{from, to} {
		content, err := s.registry.GetContent(ctx, ref, version)
		if err != nil {
			return schema.Report{}, fmt.Errorf("fetching %s@%s: %w", ref, version, err)
		}
		doc, err := schema.Parse(content)
		if err != nil {
			return schema.Report{}, fmt.Errorf("decoding %s@%s: %w", ref, version, err)
		}
		docs[i] = doc
	}
	return schema.Diff(docs[0], docs[1]), nil
}

// encode renders a document the way it is stored in the registry.
func encode(doc *schema.Document) ([]byte, error) {
	content, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding schema: %w", err)
	}
	return content, nil
}
