package config

import (
	"odosync/internal/coordinator"
	"odosync/internal/kubeconfig"
	"odosync/internal/odo"
	"odosync/internal/watcher"
)

// GetDefaultConfig returns the configuration used when no file is present.
func GetDefaultConfig() OdosyncConfig {
	return OdosyncConfig{
		Kubeconfig:           kubeconfig.DefaultPath(),
		PollInterval:         watcher.DefaultPollInterval,
		Debounce:             watcher.DefaultDebounce,
		MaxReadFailures:      watcher.DefaultMaxReadFailures,
		DiscoveryDepth:       odo.DefaultDiscoveryDepth,
		DiscoveryConcurrency: coordinator.DefaultDiscoveryConcurrency,
		ClientTimeout:        odo.DefaultTimeout,
		LogLevel:             "info",
	}
}
