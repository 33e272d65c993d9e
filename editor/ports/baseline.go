package ports

import (
	"context"

	"github.com/reglet-dev/schemactl/editor/entities"
)

// VersionResolver converts version constraints to exact versions.
type VersionResolver interface {
	Resolve(constraint string, available []string) (string, error)
}

// BaselineRepository manages baseline lock persistence.
type BaselineRepository interface {
	Load(ctx context.Context, path string) (*entities.Baseline, error)
	Save(ctx context.Context, baseline *entities.Baseline, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}
