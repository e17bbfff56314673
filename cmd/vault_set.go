package cmd

import (
	"github.com/harakeke-dev/harakeke/internal/ui"

	"github.com/spf13/cobra"
)

var setDirect bool

func init() {
	setCmd.Flags().BoolVar(&setDirect, "direct", false, "write without the atomic replace (reduced guarantee, bootstrap use only)")
}

var setCmd = &cobra.Command{
	Use:   "set NAME [VALUE]",
	Short: "Store a secret in the vault",
	Long: `Encrypts a value and stores it under the given name.

When VALUE is omitted, the value is read from stdin, which keeps it out of
shell history:

  printf '%s' "$API_KEY" | harakeke vault set openai-api-key

Setting an existing name overwrites it; last write wins.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		value, err := readSecretValue(args)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read secret value: %v", err)
		}

		spinner, cleanup := startSpinner("Storing secret...", verbose)
		defer cleanup()

		v, err := openVault()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open vault: %v", err)
		}
		defer v.Close()

		if setDirect {
			err = v.SetSync(name, value)
		} else {
			err = v.Set(cmd.Context(), name, value)
		}
		if err != nil {
			return Logger.ErrorfAndReturn("failed to store %s: %v", name, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Stored " + ui.Highlight.Sprint(name)
		return nil
	},
}
