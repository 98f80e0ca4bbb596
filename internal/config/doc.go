// Package config loads the odosync configuration.
//
// Configuration lives in a single directory, by default ~/.config/odosync,
// which holds a config.yaml file. Every setting has a default, so a missing
// file is not an error:
//
//	kubeconfig: ~/.kube/config
//	workspace: ~/projects
//	pollInterval: 5s
//	debounce: 200ms
//	maxReadFailures: 3
//	discoveryDepth: 3
//	discoveryConcurrency: 4
//	clientTimeout: 15s
//	logLevel: info
//
// The KUBECONFIG environment variable takes precedence over the kubeconfig
// setting. Malformed or invalid files are reported as ConfigurationError.
package config
