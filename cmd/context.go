package cmd

import (
	"github.com/spf13/cobra"

	"odosync/internal/formatting"
	"odosync/internal/kubeconfig"
)

var contextOutputFormat string

// contextCmd shows the current kubeconfig context
var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Show the current cluster context",
	Long: `Show the cluster, user and namespace of the current kubeconfig context
and whether its user carries a token.

Examples:
  odosync context
  odosync context -o json
  odosync context --kubeconfig ~/.kube/other`,
	Args: cobra.NoArgs,
	RunE: runContext,
}

func runContext(cmd *cobra.Command, args []string) error {
	format, err := formatting.ParseOutputFormat(contextOutputFormat)
	if err != nil {
		return err
	}
	snapshot, err := kubeconfig.LoadFile(cfg.Kubeconfig)
	if err != nil {
		return err
	}
	return formatting.WriteContext(cmd.OutOrStdout(), snapshot, format)
}

func init() {
	rootCmd.AddCommand(contextCmd)
	contextCmd.Flags().StringVarP(&contextOutputFormat, "output", "o", "table", "output format: table, json, yaml")
}
