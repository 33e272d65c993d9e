package editor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/reglet-dev/schemactl/editor/entities"
	"github.com/reglet-dev/schemactl/editor/values"
	"github.com/reglet-dev/schemactl/parser"
	"github.com/reglet-dev/schemactl/schema"
)

var (
	// ErrNoBaselineRepository is returned by Pull and Push when the service has
	// no baseline repository configured.
	ErrNoBaselineRepository = errors.New("baseline repository not configured")

	// ErrNoLockfile is returned by Push when nothing was pulled yet and the
	// baseline lockfile does not exist.
	ErrNoLockfile = errors.New("baseline lockfile not found")

	// ErrNotPulled is returned by Push for files without a baseline entry.
	ErrNotPulled = errors.New("schema file has no baseline entry")
)

// PullResult describes a pulled schema file.
type PullResult struct {
	Ref     values.ArtifactRef
	Path    string
	Version string
	Digest  values.Digest
}

// Pull writes one version of an artifact to <dir>/<artifact>.json and pins it
// in the baseline lock.
func (s *Service) Pull(ctx context.Context, ref values.ArtifactRef, constraint, dir string) (*PullResult, error) {
	if s.baselines == nil {
		return nil, ErrNoBaselineRepository
	}

	version, err := s.resolveVersion(ctx, ref, constraint)
	if err != nil {
		return nil, err
	}

	content, err := s.registry.GetContent(ctx, ref, version)
	if err != nil {
		return nil, fmt.Errorf("fetching %s@%s: %w", ref, version, err)
	}

	digest, err := values.ComputeDigest(content)
	if err != nil {
		return nil, fmt.Errorf("digesting %s@%s: %w", ref, version, err)
	}

	doc, err := schema.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("decoding %s@%s: %w", ref, version, err)
	}
	local, err := encode(doc)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating directory %q: %w", dir, err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("opening directory %q: %w", dir, err)
	}
	defer func() { _ = root.Close() }()

	name := ref.Artifact() + ".json"
	if err := root.WriteFile(name, append(local, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", name, err)
	}
	path := filepath.Join(dir, name)

	err = s.updateBaseline(ctx, path, entities.SchemaLock{
		Group:    ref.Group(),
		Artifact: ref.Artifact(),
		Version:  version,
		Digest:   digest.String(),
		Fetched:  time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("schema pulled", "ref", ref.String(), "version", version, "path", path, "digest", digest.String())
	return &PullResult{Ref: ref, Path: path, Version: version, Digest: digest}, nil
}

// Push saves a pulled and locally edited schema file. The registry content of
// the pinned baseline version must still match the recorded digest.
func (s *Service) Push(ctx context.Context, path string, opts SaveOptions) (*SaveResult, error) {
	if s.baselines == nil {
		return nil, ErrNoBaselineRepository
	}

	exists, err := s.baselines.Exists(ctx, s.baselinePath)
	if err != nil {
		return nil, fmt.Errorf("checking baseline: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s (pull a schema first)", ErrNoLockfile, s.baselinePath)
	}

	baseline, err := s.baselines.Load(ctx, s.baselinePath)
	if err != nil {
		return nil, fmt.Errorf("loading baseline: %w", err)
	}
	key := filepath.Clean(path)
	lock := baseline.Get(key)
	if lock == nil {
		return nil, fmt.Errorf("%w: %s (pull it first)", ErrNotPulled, key)
	}

	ref, err := values.NewArtifactRef(lock.Group, lock.Artifact)
	if err != nil {
		return nil, fmt.Errorf("baseline entry %s: %w", key, err)
	}

	draft, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}

	original, err := s.verifiedBaseline(ctx, ref, lock)
	if err != nil {
		return nil, err
	}

	artifact, err := s.registry.GetArtifact(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", ref, err)
	}

	session := newSession(*artifact, lock.Version, original)
	session.draft = draft

	result, saveErr := s.Save(ctx, session, opts)
	if result == nil {
		return nil, saveErr
	}
	if opts.DryRun || result.Content == nil {
		return result, saveErr
	}

	digest, err := values.ComputeDigest(result.Content)
	if err != nil {
		return nil, fmt.Errorf("digesting %s@%s: %w", ref, result.To, err)
	}
	err = s.updateBaseline(ctx, key, entities.SchemaLock{
		Group:    ref.Group(),
		Artifact: ref.Artifact(),
		Version:  result.To,
		Digest:   digest.String(),
		Fetched:  time.Now().UTC(),
	})
	if err != nil {
		return nil, errors.Join(saveErr, err)
	}
	return result, saveErr
}

// verifiedBaseline fetches the pinned version and checks it against the lock digest.
func (s *Service) verifiedBaseline(ctx context.Context, ref values.ArtifactRef, lock *entities.SchemaLock) (*schema.Document, error) {
	expected, err := values.ParseDigest(lock.Digest)
	if err != nil {
		return nil, fmt.Errorf("baseline entry for %s: %w", ref, err)
	}

	content, err := s.registry.GetContent(ctx, ref, lock.Version)
	if err != nil {
		return nil, fmt.Errorf("fetching baseline %s@%s: %w", ref, lock.Version, err)
	}

	if err := expected.Verify(content); err != nil {
		actual, digestErr := values.ComputeDigest(content)
		if digestErr != nil {
			return nil, fmt.Errorf("digesting baseline %s@%s: %w", ref, lock.Version, digestErr)
		}
		return nil, &entities.IntegrityError{
			Ref:      ref,
			Version:  lock.Version,
			Expected: expected,
			Actual:   actual,
		}
	}

	doc, err := schema.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("decoding baseline %s@%s: %w", ref, lock.Version, err)
	}
	return doc, nil
}

func (s *Service) updateBaseline(ctx context.Context, path string, lock entities.SchemaLock) error {
	baseline, err := s.baselines.Load(ctx, s.baselinePath)
	if err != nil {
		return fmt.Errorf("loading baseline: %w", err)
	}
	if baseline == nil {
		baseline = entities.NewBaseline()
	}
	if err := baseline.Lock(filepath.Clean(path), lock); err != nil {
		return err
	}
	baseline.Generated = time.Now().UTC()
	if err := s.baselines.Save(ctx, baseline, s.baselinePath); err != nil {
		return fmt.Errorf("saving baseline: %w", err)
	}
	return nil
}

// ReadDocument decodes a local JSON or YAML schema file, choosing the parser
// by extension.
func ReadDocument(path string) (*schema.Document, error) {
	p, err := parser.ForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return doc, nil
}
