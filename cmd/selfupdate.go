package cmd

import (
	"fmt"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// defaultReleaseRepo is the GitHub repository (owner/repo) releases are fetched from.
const defaultReleaseRepo = "odosync/odosync"

var selfUpdateRepo string

// newSelfUpdateCmd creates the command that replaces the running binary with
// the latest GitHub release.
func newSelfUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "self-update",
		Short: "Update odosync to the latest version",
		Long: `Checks for the latest release of odosync on GitHub and
updates the current binary if a newer version is found.`,
		Args: cobra.NoArgs,
		// updating needs no configuration
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE:              runSelfUpdate,
	}
	cmd.Flags().StringVar(&selfUpdateRepo, "repo", defaultReleaseRepo, "GitHub repository to fetch releases from")
	return cmd
}

func runSelfUpdate(cmd *cobra.Command, args []string) error {
	currentVersion := rootCmd.Version
	if currentVersion == "" || currentVersion == "dev" {
		return fmt.Errorf("cannot self-update a development version")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Current version: %s\n", currentVersion)

	updater, err := selfupdate.NewUpdater(selfupdate.Config{})
	if err != nil {
		return fmt.Errorf("failed to create updater: %w", err)
	}

	var latest *selfupdate.Release
	var found bool
	err = withSpinner(cmd, "Checking for updates...", func() error {
		var detectErr error
		latest, found, detectErr = updater.DetectLatest(cmd.Context(), selfupdate.ParseSlug(selfUpdateRepo))
		return detectErr
	}, "Checked "+selfUpdateRepo)
	if err != nil {
		return fmt.Errorf("error detecting latest version: %w", err)
	}
	if !found {
		return fmt.Errorf("latest release for %s could not be found", selfUpdateRepo)
	}
	if !latest.GreaterThan(currentVersion) {
		fmt.Fprintln(out, "Current version is the latest.")
		return nil
	}

	fmt.Fprintf(out, "Found newer version: %s (published at %s)\n", latest.Version(), latest.PublishedAt)

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	return withSpinner(cmd, fmt.Sprintf("Updating %s to %s...", exe, latest.Version()), func() error {
		if err := updater.UpdateTo(cmd.Context(), latest, exe); err != nil {
			return fmt.Errorf("update failed: %w", err)
		}
		return nil
	}, "Updated to "+latest.Version())
}
