package editor

import (
	"context"
	"io"
	"log/slog"

	"github.com/reglet-dev/schemactl/editor/entities"
	"github.com/reglet-dev/schemactl/editor/values"
	"github.com/stretchr/testify/mock"
)

// MockRegistry implements ports.SchemaRegistry for testing.
type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) SearchArtifacts(ctx context.Context) ([]entities.Artifact, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Artifact), args.Error(1)
}

func (m *MockRegistry) GetArtifact(ctx context.Context, ref values.ArtifactRef) (*entities.Artifact, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Artifact), args.Error(1)
}

func (m *MockRegistry) ListVersions(ctx context.Context, ref values.ArtifactRef) ([]entities.Version, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Version), args.Error(1)
}

func (m *MockRegistry) GetContent(ctx context.Context, ref values.ArtifactRef, version string) ([]byte, error) {
	args := m.Called(ctx, ref, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockRegistry) CreateArtifact(ctx context.Context, artifact entities.NewArtifact) (*entities.Version, error) {
	args := m.Called(ctx, artifact)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Version), args.Error(1)
}

func (m *MockRegistry) CreateVersion(ctx context.Context, ref values.ArtifactRef, version string, content []byte) (*entities.Version, error) {
	args := m.Called(ctx, ref, version, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Version), args.Error(1)
}

func (m *MockRegistry) UpdateArtifactMetadata(ctx context.Context, ref values.ArtifactRef, name, description string) error {
	args := m.Called(ctx, ref, name, description)
	return args.Error(0)
}

// MockBaselineRepository implements ports.BaselineRepository for testing.
type MockBaselineRepository struct {
	mock.Mock
}

func (m *MockBaselineRepository) Load(ctx context.Context, path string) (*entities.Baseline, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Baseline), args.Error(1)
}

func (m *MockBaselineRepository) Save(ctx context.Context, baseline *entities.Baseline, path string) error {
	args := m.Called(ctx, baseline, path)
	return args.Error(0)
}

func (m *MockBaselineRepository) Exists(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

// NewTestLogger returns a logger that discards output.
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
