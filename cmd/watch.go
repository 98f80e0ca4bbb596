package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"odosync/internal/coordinator"
	"odosync/internal/events"
	"odosync/internal/workspace"
	"odosync/pkg/logging"
)

// watchCmd keeps the component registry in sync until interrupted
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the kubeconfig and the workspace",
	Long: `Watch the kubeconfig and the workspace directory and keep the list of
odo components in sync. Every change of the current context recreates the
cluster client and discovers all modules again; modules created or removed
in the workspace are picked up as they appear.

Events are printed as they happen. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	modules := workspace.NewModules()
	c := newCoordinator(coordinator.Config{
		KubeconfigPath: cfg.Kubeconfig,
		Workspace:      modules,
	})
	defer c.Close()
	modules.Subscribe(c)

	updates, unsubscribe := c.Bus().Subscribe(0)
	defer unsubscribe()

	dirWatcher := workspace.NewDirWatcher(cfg.Workspace, modules)
	if err := dirWatcher.Start(ctx); err != nil {
		return err
	}
	defer dirWatcher.Stop()

	if err := c.Start(ctx); err != nil {
		return err
	}

	// no-op unless started by systemd with Type=notify
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logging.Warn("CLI", "Failed to notify systemd: %v", err)
	}
	defer daemon.SdNotify(false, daemon.SdNotifyStopping)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching %s and %s\n", cfg.Kubeconfig, cfg.Workspace)
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "Stopping...")
			return nil
		case ev, ok := <-updates:
			if !ok {
				return nil
			}
			printEvent(out, c, ev)
		}
	}
}

// printEvent writes one line per event; model changes print the component count.
func printEvent(w io.Writer, c *coordinator.Coordinator, ev events.Event) {
	timestamp := ev.Timestamp.Format("15:04:05")
	switch {
	case ev.Reason == events.ReasonModelChanged:
		fmt.Fprintf(w, "%s %s %d components (client %s)\n",
			text.FgHiBlack.Sprint(timestamp), text.FgHiBlue.Sprint("sync"), len(c.Components()), c.State())
	case ev.Type == events.EventTypeWarning:
		fmt.Fprintf(w, "%s %s %s\n", text.FgHiBlack.Sprint(timestamp), text.FgYellow.Sprint(string(ev.Reason)), ev.Message)
	default:
		fmt.Fprintf(w, "%s %s %s\n", text.FgHiBlack.Sprint(timestamp), text.FgGreen.Sprint(string(ev.Reason)), ev.Message)
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
