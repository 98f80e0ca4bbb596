package odo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	sigsyaml "sigs.k8s.io/yaml"

	"odosync/pkg/logging"
)

// devfileSchemaVersion is written into devfiles created by migration.
const devfileSchemaVersion = "2.2.0"

// MigrateComponent converts an odo 2.x component at path to the odo 3.x layout.
func (k *kubeClient) MigrateComponent(ctx context.Context, path, name string) error {
	return migrateComponent(ctx, path, name)
}

// migrateComponent writes a devfile when none exists and retires the legacy
// env file. Running it on an already migrated component is a no-op.
func migrateComponent(ctx context.Context, path, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	envFile := filepath.Join(path, filepath.FromSlash(legacyEnvPath))
	if _, err := os.Stat(envFile); errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to stat %s: %w", envFile, err)
	}

	_, hasDevfile, err := readDevfileName(path)
	if err != nil {
		return err
	}
	if !hasDevfile {
		df := devfile{SchemaVersion: devfileSchemaVersion}
		df.Metadata.Name = name
		data, err := sigsyaml.Marshal(df)
		if err != nil {
			return fmt.Errorf("failed to render devfile for %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(path, devfileName), data, 0644); err != nil {
			return fmt.Errorf("failed to write devfile for %s: %w", name, err)
		}
	}

	if err := os.Rename(envFile, envFile+migratedSuffix); err != nil {
		return fmt.Errorf("failed to retire %s: %w", envFile, err)
	}
	logging.Info("OdoClient", "Migrated component %s at %s", name, path)
	return nil
}
