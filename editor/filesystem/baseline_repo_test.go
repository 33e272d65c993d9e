package filesystem_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/reglet-dev/schemactl/editor/entities"
	"github.com/reglet-dev/schemactl/editor/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBaselineRepository(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	lockPath := filepath.Join(tmpDir, "schemactl.lock")
	repo := filesystem.NewFileBaselineRepository()
	ctx := context.Background()

	t.Run("Save and Load", func(t *testing.T) {
		lock := entities.NewBaseline()
		lock.Generated = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, lock.Lock("orders.json", entities.SchemaLock{
			Group:    "default",
			Artifact: "orders",
			Version:  "1.2.0",
			Digest:   "sha256:abc",
		}))

		require.NoError(t, repo.Save(ctx, lock, lockPath))

		exists, err := repo.Exists(ctx, lockPath)
		require.NoError(t, err)
		assert.True(t, exists)

		loaded, err := repo.Load(ctx, lockPath)
		require.NoError(t, err)
		require.NotNil(t, loaded)

		assert.Equal(t, lock.Version, loaded.Version)
		assert.Equal(t, lock.Generated.Unix(), loaded.Generated.Unix())

		entry := loaded.Get("orders.json")
		require.NotNil(t, entry)
		assert.Equal(t, "orders", entry.Artifact)
		assert.Equal(t, "1.2.0", entry.Version)
		assert.Equal(t, "sha256:abc", entry.Digest)
	})

	t.Run("Load non-existent", func(t *testing.T) {
		loaded, err := repo.Load(ctx, filepath.Join(tmpDir, "missing.lock"))
		require.NoError(t, err)
		assert.Nil(t, loaded)

		loaded, err = repo.Load(ctx, filepath.Join(tmpDir, "nodir", "schemactl.lock"))
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("Load rejects invalid entries", func(t *testing.T) {
		path := filepath.Join(tmpDir, "bad.lock")
		content := "lockfile_version: 1\ngenerated: 2025-01-01T00:00:00Z\nschemas:\n  a.json:\n    version: 1.0.0\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		_, err := repo.Load(ctx, path)
		assert.ErrorContains(t, err, "digest is required")
	})

	t.Run("Save ensures directory", func(t *testing.T) {
		subLockPath := filepath.Join(tmpDir, "subdir", "schemactl.lock")

		lock := entities.NewBaseline()
		require.NoError(t, lock.Lock("a.json", entities.SchemaLock{Version: "1.0.0", Digest: "sha256:d"}))

		require.NoError(t, repo.Save(ctx, lock, subLockPath))

		exists, err := repo.Exists(ctx, subLockPath)
		require.NoError(t, err)
		assert.True(t, exists)
	})
}
