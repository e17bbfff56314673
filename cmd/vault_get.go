package cmd

import (
	"fmt"
	"os"

	"github.com/harakeke-dev/harakeke/internal/ui"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Retrieve a secret from the vault",
	Long: `Decrypts and prints the value stored under the given name.

The value is written to stdout with no decoration so it can be piped:

  curl -H "Authorization: Bearer $(harakeke vault get api-token)" ...

A missing or undecryptable secret exits non-zero without printing anything.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		v, err := openVault()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open vault: %v", err)
		}
		defer v.Close()

		value, ok, err := v.Get(cmd.Context(), name)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read %s: %v", name, err)
		}
		if !ok {
			fmt.Fprintln(os.Stderr, ui.Error.Sprint("✗")+" No secret named "+ui.Highlight.Sprint(name))
			os.Exit(1)
		}

		fmt.Println(value)
		return nil
	},
}
