package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"odosync/internal/config"
	"odosync/internal/coordinator"
	"odosync/internal/odo"
	"odosync/internal/watcher"
	"odosync/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfig indicates the configuration could not be loaded.
	ExitCodeConfig = 2
	// ExitCodeUnavailable indicates the cluster could not be reached.
	ExitCodeUnavailable = 3
)

var (
	configPath     string
	logLevelFlag   string
	kubeconfigFlag string
	workspaceFlag  string

	// cfg is loaded before any subcommand runs
	cfg config.OdosyncConfig
)

// rootCmd represents the base command for the odosync application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "odosync",
	Short: "Keep odo components in sync with your cluster context",
	Long: `odosync watches your kubeconfig and your workspace and keeps track of
the odo components found in it. Whenever the current cluster, user,
namespace or token changes, the cluster client is recreated and all
workspace modules are discovered again.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage:      true,
	PersistentPreRunE: loadConfiguration,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "odosync version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		printErrorDetails(os.Stderr, err)
		os.Exit(getExitCode(err))
	}
}

// printErrorDetails writes the file, details and suggestions of
// configuration errors. Other errors were already printed by cobra.
func printErrorDetails(w io.Writer, err error) {
	var cfgErr config.ConfigurationError
	if errors.As(err, &cfgErr) {
		fmt.Fprintln(w, cfgErr.DetailedError())
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	var cfgErr config.ConfigurationError
	if errors.As(err, &cfgErr) {
		return ExitCodeConfig
	}
	if errors.Is(err, coordinator.ErrClientUnavailable) {
		return ExitCodeUnavailable
	}
	return ExitCodeError
}

// loadConfiguration reads the config file, applies flag overrides and
// initializes logging.
func loadConfiguration(cmd *cobra.Command, args []string) error {
	dir := configPath
	if dir == "" {
		var err error
		dir, err = config.GetDefaultConfigPath()
		if err != nil {
			return err
		}
	}

	loaded, err := config.LoadConfig(dir)
	if err != nil {
		return err
	}
	if kubeconfigFlag != "" {
		loaded.Kubeconfig = kubeconfigFlag
	}
	if workspaceFlag != "" {
		loaded.Workspace = workspaceFlag
	}
	if logLevelFlag != "" {
		loaded.LogLevel = logLevelFlag
	}
	if loaded.Workspace == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine working directory: %w", err)
		}
		loaded.Workspace = wd
	}
	loaded.Workspace, err = filepath.Abs(loaded.Workspace)
	if err != nil {
		return fmt.Errorf("failed to resolve workspace: %w", err)
	}

	level, err := logging.ParseLevel(loaded.LogLevel)
	if err != nil {
		return err
	}
	logging.InitForCLI(level, cmd.ErrOrStderr())

	cfg = loaded
	return nil
}

// newCoordinator builds a coordinator from the loaded configuration.
func newCoordinator(opts coordinator.Config) *coordinator.Coordinator {
	opts.Factory = odo.NewFactory(odo.Options{
		KubeconfigPath: cfg.Kubeconfig,
		DiscoveryDepth: cfg.DiscoveryDepth,
		Timeout:        cfg.ClientTimeout,
	})
	opts.Session = odo.NewKubeconfigSession(cfg.Kubeconfig)
	opts.DiscoveryConcurrency = cfg.DiscoveryConcurrency
	opts.WatcherOptions = []watcher.Option{
		watcher.WithDebounce(cfg.Debounce),
		watcher.WithPollInterval(cfg.PollInterval),
		watcher.WithMaxReadFailures(cfg.MaxReadFailures),
	}
	return coordinator.New(opts)
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())

	rootCmd.PersistentFlags().StringVar(&configPath, "config-path", "", "configuration directory (default is $HOME/.config/odosync)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&kubeconfigFlag, "kubeconfig", "", "kubeconfig file to watch")
	rootCmd.PersistentFlags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace directory whose sub-directories are modules")
}
