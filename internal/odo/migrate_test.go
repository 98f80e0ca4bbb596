package odo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateComponent(t *testing.T) {
	dir := t.TempDir()
	writeLegacyEnv(t, dir, "backend")

	require.NoError(t, migrateComponent(context.Background(), dir, "backend"))

	descriptor, ok, err := readComponent(dir)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "backend", descriptor.Name)
	assert.False(t, descriptor.Legacy)

	_, err = os.Stat(filepath.Join(dir, ".odo", "env", "env.yaml.migrated"))
	assert.NoError(t, err)

	// second run is a no-op
	require.NoError(t, migrateComponent(context.Background(), dir, "backend"))
}

func TestMigrateComponent_KeepsExistingDevfile(t *testing.T) {
	dir := t.TempDir()
	writeDevfile(t, dir, "custom")
	writeLegacyEnv(t, dir, "backend")

	require.NoError(t, migrateComponent(context.Background(), dir, "backend"))

	name, ok, err := readDevfileName(dir)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "custom", name)
}

func TestMigrateComponent_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeLegacyEnv(t, dir, "backend")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, migrateComponent(ctx, dir, "backend"), context.Canceled)

	_, isLegacy, err := readLegacyName(dir)
	require.NoError(t, err)
	assert.True(t, isLegacy)
}
