package cmd

import (
	"fmt"

	"github.com/harakeke-dev/harakeke/internal/ui"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the vault works end to end",
	Long: `Round-trips a throwaway secret through the vault and cleans up after
itself. Useful as a quick health probe in scripts; exits non-zero on failure.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		spinner, cleanup := startSpinner("Testing vault...", verbose)
		defer cleanup()

		v, err := openVault()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open vault: %v", err)
		}
		defer v.Close()

		if !v.TestConnection(cmd.Context()) {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " Vault round trip failed\n" +
				ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("harakeke vault doctor") + " for details"
			return Logger.ErrorfAndReturn("vault connection test failed")
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + fmt.Sprintf(" Vault at %s is healthy", ui.Path.Sprint(v.Dir()))
		return nil
	},
}
