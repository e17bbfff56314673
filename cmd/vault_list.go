package cmd

import (
	"fmt"

	"github.com/harakeke-dev/harakeke/internal/ui"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the names of stored secrets",
	Long: `Prints the sorted logical names of every secret in the vault.

Only names are shown; no values are decrypted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVault()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open vault: %v", err)
		}
		defer v.Close()

		names, err := v.ListNames(cmd.Context())
		if err != nil {
			return Logger.ErrorfAndReturn("failed to list secrets: %v", err)
		}

		if len(names) == 0 {
			fmt.Println(ui.Muted.Sprint("no secrets stored"))
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}
