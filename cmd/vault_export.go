package cmd

import (
	"fmt"
	"os"

	"github.com/harakeke-dev/harakeke/internal/ui"

	"github.com/spf13/cobra"
)

var exportOutputPath string

func init() {
	exportCmd.Flags().StringVarP(&exportOutputPath, "output", "o", "", "write the export to a file instead of stdout")
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all secrets as plaintext JSON",
	Long: `Decrypts every secret and writes the full name-to-value mapping as
indented JSON.

The output contains PLAINTEXT secrets. Treat it like the secrets themselves:
do not commit it, do not mail it, delete it after use.

Examples:
  # Print to stdout
  harakeke vault export

  # Write to a file with owner-only permissions
  harakeke vault export -o secrets-backup.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVault()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open vault: %v", err)
		}
		defer v.Close()

		exported, err := v.ExportAll(cmd.Context())
		if err != nil {
			return Logger.ErrorfAndReturn("failed to export secrets: %v", err)
		}

		if exportOutputPath == "" {
			fmt.Println(exported)
			return nil
		}

		if err := os.WriteFile(exportOutputPath, []byte(exported+"\n"), 0600); err != nil {
			return Logger.ErrorfAndReturn("failed to write export to %s: %v", exportOutputPath, err)
		}
		fmt.Println(ui.Success.Sprint("✓") + " Exported secrets to " + ui.Path.Sprint(exportOutputPath))
		fmt.Println(ui.Warning.Sprint("⚠") + " The file contains plaintext secrets; delete it after use")
		return nil
	},
}
