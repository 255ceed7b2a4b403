package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the persisted session token",
	Long: `Logout removes the session token from the local config file. The token is
not revoked server side; no network call is made.`,
	RunE: runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !cfg.HasToken() {
		fmt.Println("Not signed in.")
		return nil
	}

	cfg.ClearToken()
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	fmt.Println("Signed out.")
	return nil
}
