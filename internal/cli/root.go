// Package cli wires configuration, storage and the timer into the
// focusnest command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	verbose    bool
}

// NewRootCmd builds the command tree. Running it without a subcommand
// opens the TUI.
func NewRootCmd(version string) *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "focusnest",
		Short: "Pomodoro timer that grows a forest of finished focus sessions",
		Long: `focusnest runs a focus/break timer in the terminal and keeps a durable
count of completed focus sessions, drawn as a forest of trees.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ~/.config/focusnest/config.yaml)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newStatsCmd(flags))
	root.AddCommand(newResetCmd(flags))
	root.AddCommand(newHistoryCmd(flags))
	root.AddCommand(newRunCmd(flags))
	root.AddCommand(newConfigCmd(flags))
	root.AddCommand(newVersionCmd(version))
	return root
}

// Execute runs the root command
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "focusnest %s\n", version)
		},
	}
}
