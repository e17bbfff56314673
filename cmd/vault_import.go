package cmd

import (
	"io"
	"os"

	"github.com/harakeke-dev/harakeke/internal/ui"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import secrets from a JSON export",
	Long: `Reads a JSON name-to-value mapping (the format produced by
'harakeke vault export') and stores every entry.

Use '-' to read from stdin. Malformed input fails before anything is written.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read import payload: %v", err)
		}

		spinner, cleanup := startSpinner("Importing secrets...", verbose)
		defer cleanup()

		v, err := openVault()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open vault: %v", err)
		}
		defer v.Close()

		if err := v.ImportAll(cmd.Context(), string(data)); err != nil {
			return Logger.ErrorfAndReturn("failed to import secrets: %v", err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Imported secrets into the vault"
		return nil
	},
}
