package cmd

import (
	"github.com/harakeke-dev/harakeke/internal/configs"
	logger "github.com/harakeke-dev/harakeke/internal/logging"
	"github.com/harakeke-dev/harakeke/internal/vault"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	VaultCmd = &cobra.Command{
		Use:   "vault",
		Short: "Manage the local encrypted secret vault",
		Long:  `Stores, retrieves, rotates, and migrates secrets encrypted at rest in a per-user vault directory.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing vault command with verbose=%t, debug=%t", verbose, debug)
		},
	}
)

func init() {
	VaultCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	VaultCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	VaultCmd.AddCommand(setCmd)
	VaultCmd.AddCommand(getCmd)
	VaultCmd.AddCommand(deleteCmd)
	VaultCmd.AddCommand(listCmd)
	VaultCmd.AddCommand(rotateCmd)
	VaultCmd.AddCommand(exportCmd)
	VaultCmd.AddCommand(importCmd)
	VaultCmd.AddCommand(migrateCmd)
	VaultCmd.AddCommand(doctorCmd)
	VaultCmd.AddCommand(checkCmd)
}

// openVault constructs the vault, honoring overrides from harakeke.toml when
// present.
func openVault() (*vault.Vault, error) {
	var opts []vault.Option

	settingsPath, err := configs.DefaultSettingsPath()
	if err != nil {
		Logger.Warnf("Failed to resolve settings path, using defaults: %v", err)
	} else {
		settings, loadErr := configs.LoadSettings(settingsPath)
		if loadErr != nil {
			Logger.Warnf("Failed to load settings, using defaults: %v", loadErr)
		} else {
			if settings.VaultDir != "" {
				Logger.Debugf("Using configured vault directory: %s", settings.VaultDir)
				opts = append(opts, vault.WithDirectory(settings.VaultDir))
			}
			if len(settings.MigrationAliases) > 0 {
				opts = append(opts, vault.WithMigrationAliases(settings.MigrationAliases))
			}
		}
	}

	return vault.New(Logger, opts...)
}

// GetVaultCmd returns the VaultCmd for testing.
func GetVaultCmd() *cobra.Command {
	return VaultCmd
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}
