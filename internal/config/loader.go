package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	"k8s.io/client-go/tools/clientcmd"

	"odosync/internal/kubeconfig"
	"odosync/pkg/logging"
)

const (
	userConfigDir  = ".config/odosync"
	configFileName = "config.yaml"
)

// GetDefaultConfigPath returns ~/.config/odosync.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads config.yaml from configPath over the defaults, applies
// the KUBECONFIG override and validates the result.
func LoadConfig(configPath string) (OdosyncConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		return OdosyncConfig{}, ConfigurationError{
			FilePath:  configFilePath,
			FileName:  configFileName,
			ErrorType: "io",
			Message:   err.Error(),
			cause:     err,
		}
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			// config malformed
			return OdosyncConfig{}, ConfigurationError{
				FilePath:    configFilePath,
				FileName:    configFileName,
				ErrorType:   "parse",
				Message:     "invalid YAML",
				Details:     err.Error(),
				Suggestions: []string{"Durations use Go syntax, e.g. 5s or 200ms"},
				cause:       err,
			}
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	}

	if env := os.Getenv(clientcmd.RecommendedConfigPathEnvVar); env != "" {
		config.Kubeconfig = kubeconfig.DefaultPath()
	}
	config.Kubeconfig = expandHome(config.Kubeconfig)
	config.Workspace = expandHome(config.Workspace)

	if errs := Validate(config); errs.HasErrors() {
		return OdosyncConfig{}, ConfigurationError{
			FilePath:  configFilePath,
			FileName:  configFileName,
			ErrorType: "validation",
			Message:   errs.Error(),
			cause:     errs,
		}
	}
	return config, nil
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
}
