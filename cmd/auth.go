package cmd

import (
	"fmt"
	"os"

	"club-incentives/infrastructure/config"
	"club-incentives/infrastructure/googleauth"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorise access to Google Sheets, Slides, Drive and Gmail",
	Long: `Run the browser OAuth flow and store a fresh token in google.token_file.

Not needed when google.auth_mode is service_account.`,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded; run 'club-incentives setup' first")
	}
	if cfg.Google.AuthMode == config.AuthModeServiceAccount {
		fmt.Fprintln(os.Stdout, "google.auth_mode is service_account; no browser authorisation needed.")
		return nil
	}
	return googleauth.Authorize(cmd.Context(), googleauth.Options{
		CredentialsFile: cfg.Google.CredentialsFile,
		TokenFile:       cfg.Google.TokenFile,
		Mode:            cfg.Google.AuthMode,
		Output:          os.Stdout,
	})
}
