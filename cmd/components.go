package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"odosync/internal/coordinator"
	"odosync/internal/events"
	"odosync/internal/formatting"
	"odosync/internal/workspace"
)

var (
	componentsOutputFormat string
	componentsQuiet        bool
	componentsTimeout      time.Duration
)

// componentsCmd runs a single discovery pass
var componentsCmd = &cobra.Command{
	Use:     "components",
	Aliases: []string{"ls"},
	Short:   "List the odo components of the workspace",
	Long: `Discover the odo components below every module of the workspace once
and print them. Components created by odo 2.x are listed as needing
migration.

Examples:
  odosync components
  odosync components -w ~/projects -o yaml`,
	Args: cobra.NoArgs,
	RunE: runComponents,
}

func runComponents(cmd *cobra.Command, args []string) error {
	format, err := formatting.ParseOutputFormat(componentsOutputFormat)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), componentsTimeout)
	defer cancel()

	modules := workspace.NewModules()
	dirWatcher := workspace.NewDirWatcher(cfg.Workspace, modules)
	if err := dirWatcher.Start(ctx); err != nil {
		return err
	}
	defer dirWatcher.Stop()

	c := newCoordinator(coordinator.Config{Workspace: modules})
	defer c.Close()

	updates, unsubscribe := c.Bus().Subscribe(0)
	defer unsubscribe()

	var s *spinner.Spinner
	if !componentsQuiet && format == formatting.FormatTable {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Writer = cmd.ErrOrStderr()
		s.Suffix = " Discovering components..."
		s.Start()
	}
	stopSpinner := func() {
		if s != nil {
			s.Stop()
		}
	}

	if _, ok := c.GetClient().Wait(ctx); !ok {
		stopSpinner()
		fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", text.FgRed.Sprint("Cluster is not reachable"))
		return coordinator.ErrClientUnavailable
	}
	if err := waitForModelChanged(ctx, updates); err != nil {
		stopSpinner()
		return err
	}
	stopSpinner()

	return formatting.WriteComponents(cmd.OutOrStdout(), c.Components(), format)
}

// waitForModelChanged blocks until the first full discovery pass is published.
func waitForModelChanged(ctx context.Context, updates <-chan events.Event) error {
	for {
		select {
		case ev, ok := <-updates:
			if !ok {
				return fmt.Errorf("event bus closed")
			}
			if ev.Reason == events.ReasonModelChanged {
				return nil
			}
		case <-ctx.Done():
			return fmt.Errorf("discovery did not finish: %w", ctx.Err())
		}
	}
}

func init() {
	rootCmd.AddCommand(componentsCmd)
	componentsCmd.Flags().StringVarP(&componentsOutputFormat, "output", "o", "table", "output format: table, json, yaml")
	componentsCmd.Flags().BoolVarP(&componentsQuiet, "quiet", "q", false, "suppress the progress spinner")
	componentsCmd.Flags().DurationVar(&componentsTimeout, "timeout", time.Minute, "maximum time to wait for discovery")
}
