package config

import "time"

// OdosyncConfig is the top-level configuration structure for odosync.
type OdosyncConfig struct {
	// Kubeconfig is the kubeconfig file to watch.
	Kubeconfig string `yaml:"kubeconfig,omitempty"`

	// Workspace is the directory whose sub-directories are module roots.
	// Empty means the working directory.
	Workspace string `yaml:"workspace,omitempty"`

	// PollInterval is the fallback reload period of the kubeconfig watcher.
	PollInterval time.Duration `yaml:"pollInterval,omitempty"`

	// Debounce is the quiet period before a kubeconfig reload.
	Debounce time.Duration `yaml:"debounce,omitempty"`

	// MaxReadFailures is the number of failed reloads before the
	// kubeconfig is treated as having no current context.
	MaxReadFailures int `yaml:"maxReadFailures,omitempty"`

	// DiscoveryDepth bounds how deep component discovery walks below a root.
	DiscoveryDepth int `yaml:"discoveryDepth,omitempty"`

	// DiscoveryConcurrency bounds parallel root discoveries.
	DiscoveryConcurrency int `yaml:"discoveryConcurrency,omitempty"`

	// ClientTimeout bounds cluster requests.
	ClientTimeout time.Duration `yaml:"clientTimeout,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel,omitempty"`
}
