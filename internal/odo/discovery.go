package odo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"

	"odosync/pkg/logging"
)

const (
	devfileName       = "devfile.yaml"
	hiddenDevfileName = ".devfile.yaml"
	// legacyEnvPath is where odo 2.x stored per-component settings.
	legacyEnvPath = ".odo/env/env.yaml"
	// migratedSuffix is appended to the legacy env file once migrated.
	migratedSuffix = ".migrated"

	// DefaultDiscoveryDepth is how many directory levels below a root are scanned.
	DefaultDiscoveryDepth = 3
)

var skippedDirs = map[string]bool{
	".git":         true,
	".odo":         true,
	".idea":        true,
	"node_modules": true,
	"vendor":       true,
	"target":       true,
}

type devfile struct {
	SchemaVersion string `json:"schemaVersion"`
	Metadata      struct {
		Name string `json:"name,omitempty"`
	} `json:"metadata"`
}

// legacyEnv is the subset of the odo 2.x env.yaml read during discovery.
type legacyEnv struct {
	ComponentSettings struct {
		Name    string `yaml:"Name"`
		Project string `yaml:"Project"`
		AppName string `yaml:"AppName"`
	} `yaml:"ComponentSettings"`
}

// scanComponents walks root up to depth levels and returns the components it
// finds. A component directory is not descended into. Directories with an
// unreadable devfile or odo env are logged and skipped.
func scanComponents(root string, depth int) ([]ComponentDescriptor, error) {
	if depth <= 0 {
		depth = DefaultDiscoveryDepth
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace root %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %s is not a directory", abs)
	}

	var found []ComponentDescriptor
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == abs {
				return walkErr
			}
			// unreadable sub-directory
			return fs.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if path != abs {
			if skippedDirs[d.Name()] {
				return fs.SkipDir
			}
			rel, _ := filepath.Rel(abs, path)
			if strings.Count(rel, string(filepath.Separator))+1 > depth {
				return fs.SkipDir
			}
		}

		descriptor, ok, err := readComponent(path)
		if err != nil {
			logging.Warn("OdoClient", "Skipping %s: %v", path, err)
			return fs.SkipDir
		}
		if ok {
			found = append(found, descriptor)
			if path != abs {
				return fs.SkipDir
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// readComponent inspects a single directory.
func readComponent(dir string) (ComponentDescriptor, bool, error) {
	descriptor := ComponentDescriptor{Path: dir}

	name, hasDevfile, err := readDevfileName(dir)
	if err != nil {
		return descriptor, false, err
	}
	legacyName, isLegacy, err := readLegacyName(dir)
	if err != nil {
		return descriptor, false, err
	}
	if !hasDevfile && !isLegacy {
		return descriptor, false, nil
	}

	descriptor.Legacy = isLegacy
	switch {
	case name != "":
		descriptor.Name = name
	case legacyName != "":
		descriptor.Name = legacyName
	default:
		descriptor.Name = filepath.Base(dir)
	}
	return descriptor, true, nil
}

func readDevfileName(dir string) (string, bool, error) {
	for _, candidate := range []string{devfileName, hiddenDevfileName} {
		data, err := os.ReadFile(filepath.Join(dir, candidate))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("failed to read devfile in %s: %w", dir, err)
		}
		var df devfile
		if err := sigsyaml.Unmarshal(data, &df); err != nil {
			return "", false, fmt.Errorf("failed to parse devfile in %s: %w", dir, err)
		}
		return df.Metadata.Name, true, nil
	}
	return "", false, nil
}

func readLegacyName(dir string) (string, bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(legacyEnvPath)))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read odo env in %s: %w", dir, err)
	}
	var env legacyEnv
	if err := yaml.Unmarshal(data, &env); err != nil {
		return "", false, fmt.Errorf("failed to parse odo env in %s: %w", dir, err)
	}
	return env.ComponentSettings.Name, true, nil
}
