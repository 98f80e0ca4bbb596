package odo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func writeDevfile(t *testing.T, dir, name string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, devfileName), "schemaVersion: 2.2.0\nmetadata:\n  name: "+name+"\n")
}

func writeLegacyEnv(t *testing.T, dir, name string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, ".odo", "env", "env.yaml"),
		"kind: EnvInfo\napiversion: odo.dev/v1alpha1\nComponentSettings:\n  Name: "+name+"\n  Project: myproject\n  AppName: app\n")
}
