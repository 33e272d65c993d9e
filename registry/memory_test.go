package registry_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/reglet-dev/schemactl/editor/entities"
	"github.com/reglet-dev/schemactl/editor/values"
	"github.com/reglet-dev/schemactl/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mem := registry.NewMemory(registry.WithClock(func() time.Time { return created }), registry.WithOwner("alice"))
	ref := values.MustNewArtifactRef("default", "orders")

	v, err := mem.CreateArtifact(ctx, entities.NewArtifact{
		Ref:         ref,
		Name:        "Orders",
		Description: "order events",
		Version:     "1.0.0",
		Content:     []byte(`{"type":"object"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v.Version)
	assert.Equal(t, "alice", v.Owner)

	_, err = mem.CreateArtifact(ctx, entities.NewArtifact{Ref: ref, Version: "1.0.0"})
	assert.ErrorIs(t, err, entities.ErrConflict)

	_, err = mem.CreateVersion(ctx, ref, "1.1.0", []byte(`{"type":"object","properties":{}}`))
	require.NoError(t, err)

	_, err = mem.CreateVersion(ctx, ref, "1.1.0", []byte(`{}`))
	assert.ErrorIs(t, err, entities.ErrConflict)

	versions, err := mem.ListVersions(ctx, ref)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "1.0.0", versions[0].Version)
	assert.Equal(t, "1.1.0", versions[1].Version)
	assert.Less(t, versions[0].GlobalID, versions[1].GlobalID)

	content, err := mem.GetContent(ctx, ref, "1.0.0")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object"}`, string(content))

	_, err = mem.GetContent(ctx, ref, "9.9.9")
	assert.ErrorIs(t, err, entities.ErrVersionNotFound)

	require.NoError(t, mem.UpdateArtifactMetadata(ctx, ref, "Orders v2", "renamed"))
	meta, err := mem.GetArtifact(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "Orders v2", meta.Name)
	assert.Equal(t, "renamed", meta.Description)
	assert.Equal(t, created, meta.CreatedOn)
	assert.True(t, meta.IsJSONSchema())
}

func TestMemory_NotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := registry.NewMemory()
	ref := values.MustNewArtifactRef("default", "missing")

	_, err := mem.GetArtifact(ctx, ref)
	assert.ErrorIs(t, err, entities.ErrArtifactNotFound)
	_, err = mem.ListVersions(ctx, ref)
	assert.ErrorIs(t, err, entities.ErrArtifactNotFound)
	_, err = mem.CreateVersion(ctx, ref, "1.0.0", nil)
	assert.ErrorIs(t, err, entities.ErrArtifactNotFound)
	assert.ErrorIs(t, mem.UpdateArtifactMetadata(ctx, ref, "", ""), entities.ErrArtifactNotFound)
}

func TestMemory_SearchSorted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := registry.NewMemory()
	for _, id := range []string{"zeta", "alpha", "mid"} {
		_, err := mem.CreateArtifact(ctx, entities.NewArtifact{
			Ref:     values.MustNewArtifactRef("", id),
			Version: "1.0.0",
			Content: []byte(`{}`),
		})
		require.NoError(t, err)
	}

	artifacts, err := mem.SearchArtifacts(ctx)
	require.NoError(t, err)
	require.Len(t, artifacts, 3)
	assert.Equal(t, "alpha", artifacts[0].Ref.Artifact())
	assert.Equal(t, "zeta", artifacts[2].Ref.Artifact())
}

func TestMemory_ConcurrentVersions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := registry.NewMemory()
	ref := values.MustNewArtifactRef("", "orders")
	_, err := mem.CreateArtifact(ctx, entities.NewArtifact{Ref: ref, Version: "1.0.0", Content: []byte(`{}`)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mem.CreateVersion(ctx, ref, "2.0.0", []byte(`{}`))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, entities.ErrConflict)
	}
	assert.Equal(t, 1, succeeded)
}
