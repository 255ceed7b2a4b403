package cmd

import (
	"context"
	"fmt"
	"strings"

	huh "charm.land/huh/v2"
	"github.com/spf13/cobra"

	perrors "github.com/parley-chat/parley/internal/errors"
)

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session token",
	RunE:  runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	email := strings.TrimSpace(loginEmail)
	var password string

	var fields []huh.Field
	if email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Placeholder("you@example.com").
			Value(&email))
	}
	fields = append(fields, huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Value(&password))

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return fmt.Errorf("email and password are required")
	}

	store, _ := newSession(cfg)
	if err := store.Login(context.Background(), email, password); err != nil {
		return fmt.Errorf("%s", perrors.UserMessage(err))
	}

	user := store.User()
	fmt.Printf("Signed in as %s (%s)\n", user.Username, cfg.GetServerURL())
	return nil
}
