package cmd

import (
	"errors"

	herrors "github.com/harakeke-dev/harakeke/internal/errors"
	"github.com/harakeke-dev/harakeke/internal/ui"

	"github.com/spf13/cobra"
)

var rotateCmd = &cobra.Command{
	Use:   "rotate NAME [VALUE]",
	Short: "Rotate a secret and verify the write",
	Long: `Stores a new value under the given name, then reads it back and verifies
the round trip.

If verification fails, the record may hold either the old or the new value;
run 'harakeke vault get NAME' to find out which before retrying.

When VALUE is omitted, the value is read from stdin.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		value, err := readSecretValue(args)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read secret value: %v", err)
		}

		spinner, cleanup := startSpinner("Rotating secret...", verbose)
		defer cleanup()

		v, err := openVault()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open vault: %v", err)
		}
		defer v.Close()

		if err := v.Rotate(cmd.Context(), name, value); err != nil {
			if errors.Is(err, herrors.ErrRotateVerification) {
				spinner.FinalMSG = ui.Error.Sprint("✗") + " Rotation of " + ui.Highlight.Sprint(name) + " did not verify\n" +
					ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("harakeke vault get "+name) + " to see which value the record holds"
			}
			return Logger.ErrorfAndReturn("failed to rotate %s: %v", name, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Rotated " + ui.Highlight.Sprint(name) + " and verified the new value"
		return nil
	},
}
