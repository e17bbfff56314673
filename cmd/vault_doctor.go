package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/harakeke-dev/harakeke/internal/ui"
	"github.com/harakeke-dev/harakeke/internal/vault"

	"github.com/spf13/cobra"
)

var doctorJSON bool

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output the report as JSON")
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run vault health checks",
	Long: `Checks the vault directory, entropy blob, stored secret count, write
permissions, and an end-to-end round trip.

The report never contains secret values.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVault()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open vault: %v", err)
		}
		defer v.Close()

		report, err := v.Diagnose(cmd.Context())
		if err != nil {
			return Logger.ErrorfAndReturn("diagnostics failed: %v", err)
		}

		if doctorJSON {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return Logger.ErrorfAndReturn("failed to serialize report: %v", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Println("Vault directory: " + ui.Path.Sprint(report.Directory))
		failures := 0
		for _, check := range report.Checks {
			switch check.Status {
			case vault.CheckPass:
				fmt.Println(ui.Success.Sprint("✓") + " " + check.Name + ": " + check.Message)
			case vault.CheckWarning:
				fmt.Println(ui.Warning.Sprint("⚠") + " " + check.Name + ": " + check.Message)
			default:
				failures++
				fmt.Println(ui.Error.Sprint("✗") + " " + check.Name + ": " + check.Message)
			}
		}

		if failures > 0 {
			return Logger.ErrorfAndReturn("%d health checks failed", failures)
		}
		return nil
	},
}
