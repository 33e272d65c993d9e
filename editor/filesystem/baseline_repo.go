// Package filesystem provides file-based repositories for the editor.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/reglet-dev/schemactl/editor/entities"
)

// FileBaselineRepository implements ports.BaselineRepository using the local filesystem.
type FileBaselineRepository struct{}

// NewFileBaselineRepository creates a new FileBaselineRepository.
func NewFileBaselineRepository() *FileBaselineRepository {
	return &FileBaselineRepository{}
}

// Load reads a baseline from the given path. A missing file yields (nil, nil).
func (r *FileBaselineRepository) Load(ctx context.Context, path string) (*entities.Baseline, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	root, err := os.OpenRoot(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open directory %q: %w", dir, err)
	}
	defer func() { _ = root.Close() }()

	file, err := root.Open(base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open baseline %q: %w", base, err)
	}
	defer func() { _ = file.Close() }()

	var out Baseline
	if err := yaml.NewDecoder(file).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding baseline YAML: %w", err)
	}

	lock := out.ToEntity()
	if err := lock.Validate(); err != nil {
		return nil, fmt.Errorf("invalid baseline: %w", err)
	}

	return lock, nil
}

// Save writes a baseline to the given path, creating the directory if needed.
func (r *FileBaselineRepository) Save(ctx context.Context, baseline *entities.Baseline, path string) error {
	if err := baseline.Validate(); err != nil {
		return fmt.Errorf("invalid baseline: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory %q: %w", dir, err)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return fmt.Errorf("opening directory for write %q: %w", dir, err)
	}
	defer func() { _ = root.Close() }()

	base := filepath.Base(path)
	file, err := root.OpenFile(base, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating baseline %q: %w", base, err)
	}
	defer func() { _ = file.Close() }()

	encoder := yaml.NewEncoder(file)
	defer func() { _ = encoder.Close() }()

	if err := encoder.Encode(FromEntity(baseline)); err != nil {
		return fmt.Errorf("encoding baseline: %w", err)
	}

	return nil
}

// Exists checks if a baseline exists at the given path.
func (r *FileBaselineRepository) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
