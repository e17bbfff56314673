package main

import (
	"fmt"
	"os"

	"github.com/harakeke-dev/harakeke/cmd"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "harakeke",
	Short: "Harakeke - A CLI for managing a local encrypted secret vault.",
	Long: `Harakeke keeps API keys, OAuth client secrets, and license keys encrypted
at rest in a per-user vault, protected by the OS keychain and a machine-bound
entropy value.

Features:
  - Store, retrieve, rotate, and delete secrets
  - Export and import the full vault for backup
  - Migrate secrets out of environment variables
  - Health-check the vault end to end

Usage:
  harakeke <command> [flags]

Available Commands:
  vault    Manage the local encrypted secret vault

Run 'harakeke help <command>' for more details on a specific command.
`,
	Run: func(command *cobra.Command, args []string) {
		figure.NewFigure("harakeke", "", true).Print()
		fmt.Println("\nRun 'harakeke --help' to see available commands.")
	},
}

func main() {
	rootCmd.AddCommand(cmd.VaultCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
