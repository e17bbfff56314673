package cmd

import (
	"github.com/harakeke-dev/harakeke/internal/ui"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Remove a secret from the vault",
	Long: `Deletes the record stored under the given name.

Deleting a name that does not exist is a no-op, not an error, so delete is
safe to run in cleanup scripts.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		spinner, cleanup := startSpinner("Deleting secret...", verbose)
		defer cleanup()

		v, err := openVault()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open vault: %v", err)
		}
		defer v.Close()

		if err := v.Delete(cmd.Context(), name); err != nil {
			return Logger.ErrorfAndReturn("failed to delete %s: %v", name, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Deleted " + ui.Highlight.Sprint(name)
		return nil
	},
}
