package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"odosync/internal/coordinator"
)

var (
	loginServer string
	loginToken  string
)

// loginCmd stores a token for the current context
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the cluster of the current context",
	Long: `Store a bearer token for the user of the current kubeconfig context.
With --server the API server of the current cluster is updated as well.

Without --token the token is read from the terminal.

Examples:
  odosync login
  odosync login --token sha256~abc
  odosync login --server https://api.example.com:6443 --token sha256~abc`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

// logoutCmd removes the token of the current context
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out of the cluster of the current context",
	Long:  `Remove the bearer token of the user of the current kubeconfig context.`,
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func runLogin(cmd *cobra.Command, args []string) error {
	token := loginToken
	if token == "" {
		var err error
		if token, err = promptToken(); err != nil {
			return err
		}
	}
	c := newCoordinator(coordinator.Config{})
	defer c.Close()

	return withSpinner(cmd, "Logging in...", func() error {
		return c.Login(cmd.Context(), loginServer, token)
	}, "Logged in")
}

func runLogout(cmd *cobra.Command, args []string) error {
	c := newCoordinator(coordinator.Config{})
	defer c.Close()

	return withSpinner(cmd, "Logging out...", func() error {
		return c.Logout(cmd.Context())
	}, "Logged out")
}

// promptToken reads the token from the terminal with the input masked.
// Without a terminal the token has to be passed with --token.
func promptToken() (string, error) {
	if !readline.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("--token is required")
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "Token: ",
		EnableMask:      true,
		MaskRune:        '*',
		InterruptPrompt: "^C",
	})
	if err != nil {
		return "", fmt.Errorf("failed to open terminal: %w", err)
	}
	defer rl.Close()

	line, err := rl.Readline()
	if err != nil {
		return "", fmt.Errorf("no token entered: %w", err)
	}
	token := strings.TrimSpace(line)
	if token == "" {
		return "", errors.New("token must not be empty")
	}
	return token, nil
}

// withSpinner runs fn while showing message and reports the outcome.
func withSpinner(cmd *cobra.Command, message string, fn func() error, success string) error {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Writer = cmd.ErrOrStderr()
	s.Suffix = " " + message
	s.Start()

	err := fn()
	s.Stop()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", text.FgRed.Sprint("❌ "+err.Error()))
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", text.FgGreen.Sprint("✅ "+success))
	return nil
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)

	loginCmd.Flags().StringVar(&loginServer, "server", "", "API server URL to store for the current cluster")
	loginCmd.Flags().StringVar(&loginToken, "token", "", "bearer token")
}
