package cmd

import (
	"fmt"

	"github.com/harakeke-dev/harakeke/internal/ui"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate secrets from environment variables",
	Long: `Reads the configured allow-list of environment-variable names (license
keys, OAuth client credentials, AI API keys, base URLs) and stores every set
value in the vault.

Unset variables and unexpanded placeholders like '${LICENSE_KEY}' are
skipped. The allow-list can be replaced via migration_aliases in
harakeke.toml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		spinner, cleanup := startSpinner("Migrating environment variables...", verbose)
		defer cleanup()

		v, err := openVault()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open vault: %v", err)
		}
		defer v.Close()

		migrated, err := v.MigrateFromEnvironment(cmd.Context())
		if err != nil {
			return Logger.ErrorfAndReturn("migration failed: %v", err)
		}

		if len(migrated) == 0 {
			spinner.FinalMSG = ui.Muted.Sprint("no allow-listed environment variables were set")
			return nil
		}

		msg := ui.Success.Sprint("✓") + fmt.Sprintf(" Migrated %d secrets from the environment\n", len(migrated))
		for _, name := range migrated {
			msg += "    - " + ui.Highlight.Sprint(name) + "\n"
		}
		spinner.FinalMSG = msg
		return nil
	},
}
