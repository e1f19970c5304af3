// Package root wires configuration, storage, the timer engine, and the TUI
// into the dailytask command tree.
package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "dailytask",
	Short:         "dailytask — daily tasks, notes, and recurring reminders",
	Long:          "dailytask is a terminal to-do app with per-day completion tracking and recurring reminders that re-arm themselves after every firing.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp()
	},
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.AddCommand(
		newMigrateCmd(),
		newSweepCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dailytask:", err)
		os.Exit(1)
	}
}
