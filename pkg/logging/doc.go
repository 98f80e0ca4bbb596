// Package logging provides the subsystem-tagged structured logger used across
// odosync.
//
// It is a thin layer over Go's slog package. Every record carries a
// "subsystem" attribute so that output from the config watcher, the client
// handle, the registry and the coordinator can be filtered apart.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Coordinator", "Discovered %d components", n)
//	logging.Debug("ConfigWatcher", "Reloading %s", path)
//	logging.Error("Registry", err, "Discovery failed for %s", root)
//
// Before InitForCLI is called only warnings and errors are emitted, through
// slog's default logger.
//
// # Controller-Runtime Integration
//
// InitForCLI also installs the same handler as the controller-runtime global
// logger (via logr's slog bridge), so cluster client internals log through
// the odosync output.
//
// # Thread Safety
//
// Logging functions may be called from any goroutine. InitForCLI may be
// called again to swap the output, e.g. from tests.
package logging
