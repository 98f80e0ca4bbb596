package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a temporary config file
func createTempConfigFile(t *testing.T, dir string, content string) string {
	t.Helper()
	path := filepath.Join(dir, configFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_DefaultOnly(t *testing.T) {
	t.Setenv("KUBECONFIG", "")
	tempDir := t.TempDir()

	loaded, err := LoadConfig(tempDir)
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), loaded)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	t.Setenv("KUBECONFIG", "")
	tempDir := t.TempDir()
	createTempConfigFile(t, tempDir, `
kubeconfig: /etc/kube/config
workspace: /srv/projects
pollInterval: 10s
debounce: 50ms
discoveryConcurrency: 8
logLevel: debug
`)

	loaded, err := LoadConfig(tempDir)
	require.NoError(t, err)

	defaults := GetDefaultConfig()
	assert.Equal(t, "/etc/kube/config", loaded.Kubeconfig)
	assert.Equal(t, "/srv/projects", loaded.Workspace)
	assert.Equal(t, 10*time.Second, loaded.PollInterval)
	assert.Equal(t, 50*time.Millisecond, loaded.Debounce)
	assert.Equal(t, 8, loaded.DiscoveryConcurrency)
	assert.Equal(t, "debug", loaded.LogLevel)
	assert.Equal(t, defaults.DiscoveryDepth, loaded.DiscoveryDepth)
	assert.Equal(t, defaults.MaxReadFailures, loaded.MaxReadFailures)
}

func TestLoadConfig_KubeconfigEnvWins(t *testing.T) {
	tempDir := t.TempDir()
	createTempConfigFile(t, tempDir, "kubeconfig: /etc/kube/config\n")
	t.Setenv("KUBECONFIG", "/tmp/first"+string(os.PathListSeparator)+"/tmp/second")

	loaded, err := LoadConfig(tempDir)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/first", loaded.Kubeconfig)
}

func TestLoadConfig_ExpandsHome(t *testing.T) {
	t.Setenv("KUBECONFIG", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	tempDir := t.TempDir()
	createTempConfigFile(t, tempDir, "kubeconfig: ~/.kube/other\nworkspace: ~/src\n")

	loaded, err := LoadConfig(tempDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".kube/other"), loaded.Kubeconfig)
	assert.Equal(t, filepath.Join(home, "src"), loaded.Workspace)
}

func TestLoadConfig_Malformed(t *testing.T) {
	t.Setenv("KUBECONFIG", "")
	tempDir := t.TempDir()
	path := createTempConfigFile(t, tempDir, "pollInterval: [not a duration\n")

	_, err := LoadConfig(tempDir)
	require.Error(t, err)

	var cfgErr ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "parse", cfgErr.ErrorType)
	assert.Equal(t, path, cfgErr.FilePath)
	assert.Contains(t, cfgErr.DetailedError(), "Suggestions:")
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("KUBECONFIG", "")
	tempDir := t.TempDir()
	createTempConfigFile(t, tempDir, "discoveryConcurrency: -1\nlogLevel: chatty\n")

	_, err := LoadConfig(tempDir)
	require.Error(t, err)

	var cfgErr ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "validation", cfgErr.ErrorType)
	assert.Contains(t, cfgErr.Message, "discoveryConcurrency")
	assert.Contains(t, cfgErr.Message, "logLevel")

	var validation ValidationErrors
	assert.True(t, errors.As(err, &validation))
	assert.Len(t, validation, 2)
}
