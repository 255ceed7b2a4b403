package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	perrors "github.com/parley-chat/parley/internal/errors"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the account the persisted session resolves to",
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !cfg.HasToken() {
		fmt.Println("Not signed in.")
		return nil
	}

	store, _ := newSession(cfg)
	if err := store.Resolve(context.Background()); err != nil {
		return fmt.Errorf("%s", perrors.UserMessage(err))
	}

	user := store.User()
	fmt.Printf("%s", user.Username)
	if user.Email != "" {
		fmt.Printf(" <%s>", user.Email)
	}
	fmt.Printf("\n  server: %s\n", cfg.GetServerURL())
	return nil
}
