package entities_test

import (
	"errors"
	"testing"
	"time"

	"github.com/reglet-dev/schemactl/editor/entities"
	"github.com/reglet-dev/schemactl/editor/values"
	"github.com/reglet-dev/schemactl/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseline_Lock(t *testing.T) {
	t.Parallel()

	b := entities.NewBaseline()
	assert.Equal(t, entities.CurrentBaselineVersion, b.Version)
	assert.Equal(t, 0, b.Count())

	err := b.Lock("orders.json", entities.SchemaLock{Version: "1.0.0"})
	assert.Error(t, err, "digest is required")

	err = b.Lock("orders.json", entities.SchemaLock{Digest: "sha256:abc"})
	assert.Error(t, err, "version is required")

	require.NoError(t, b.Lock("orders.json", entities.SchemaLock{
		Group:    "default",
		Artifact: "orders",
		Version:  "1.0.0",
		Digest:   "sha256:abc",
		Fetched:  time.Now(),
	}))
	assert.Equal(t, 1, b.Count())

	lock := b.Get("orders.json")
	require.NotNil(t, lock)
	assert.Equal(t, "orders", lock.Artifact)
	assert.Nil(t, b.Get("missing.json"))
}

func TestBaseline_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		b := entities.NewBaseline()
		require.NoError(t, b.Lock("a.json", entities.SchemaLock{Version: "1.0.0", Digest: "sha256:a"}))
		assert.NoError(t, b.Validate())
	})

	t.Run("missing generated", func(t *testing.T) {
		b := &entities.Baseline{Schemas: map[string]entities.SchemaLock{
			"a.json": {Version: "1.0.0", Digest: "sha256:a"},
		}}
		assert.Error(t, b.Validate())
	})

	t.Run("missing digest", func(t *testing.T) {
		b := &entities.Baseline{Generated: time.Now(), Schemas: map[string]entities.SchemaLock{
			"a.json": {Version: "1.0.0"},
		}}
		assert.Error(t, b.Validate())
	})

	t.Run("future format", func(t *testing.T) {
		b := &entities.Baseline{Generated: time.Now(), Version: entities.CurrentBaselineVersion + 1}
		assert.Error(t, b.Validate())
	})

	t.Run("empty is valid", func(t *testing.T) {
		assert.NoError(t, (&entities.Baseline{}).Validate())
	})
}

func TestErrors_Is(t *testing.T) {
	t.Parallel()

	ref := values.MustNewArtifactRef("default", "orders")

	assert.True(t, errors.Is(&entities.ArtifactNotFoundError{Ref: ref}, entities.ErrArtifactNotFound))
	assert.True(t, errors.Is(&entities.VersionNotFoundError{Ref: ref, Version: "9.9.9"}, entities.ErrVersionNotFound))
	assert.True(t, errors.Is(&entities.ConflictError{Ref: ref}, entities.ErrConflict))
	assert.True(t, errors.Is(&entities.IntegrityError{Ref: ref}, entities.ErrIntegrityCheckFailed))
	assert.True(t, errors.Is(&entities.BreakingChangeError{Ref: ref}, entities.ErrBreakingChange))
	assert.False(t, errors.Is(&entities.ConflictError{Ref: ref}, entities.ErrArtifactNotFound))

	err := &entities.BreakingChangeError{
		Ref: ref, From: "1.0.0", To: "2.0.0",
		Report: schema.Report{Removed: []string{"name"}},
	}
	assert.Contains(t, err.Error(), "1 field(s) removed")
	assert.Contains(t, (&entities.ConflictError{Ref: ref, Version: "1.0.0"}).Error(), "version 1.0.0")
}
