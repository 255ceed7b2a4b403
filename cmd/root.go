// Package cmd implements the parley CLI. The root command launches the TUI;
// subcommands cover session management without a terminal UI.
package cmd

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/parley-chat/parley/internal/api"
	"github.com/parley-chat/parley/internal/app"
	"github.com/parley-chat/parley/internal/auth"
	"github.com/parley-chat/parley/internal/config"
	"github.com/parley-chat/parley/internal/logger"
)

var (
	debugMode             bool
	quietMode             bool
	serverURL             string
	version, commit, date string
)

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "TUI for chatting with AI characters",
	Long: `Parley is a terminal client for a character chat server. Create characters
with their own personality and backstory, then hold separate conversations
with each of them.`,
	RunE:          runTUI,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initLogging)
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Reduce logging to info level only")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Server URL (overrides the configured one)")
}

func initLogging() {
	if quietMode {
		logger.SetDebug(false)
	} else if debugMode {
		logger.SetDebug(true)
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())
	return rootCmd.Execute()
}

func versionTemplate() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("parley %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("parley %s\n", version)
}

// loadConfig loads the config file and applies the --server override
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if serverURL != "" {
		cfg.SetServerURL(serverURL)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newSession wires the store and client the way every command needs them:
// the client reads tokens from the store, the store issues auth calls
// through the client.
func newSession(cfg *config.Config) (*auth.Store, *api.Client) {
	store := auth.NewStore(cfg)
	client := api.New(cfg.GetServerURL(), store)
	store.AttachClient(client)
	return store, client
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	defer logger.Close()

	store, client := newSession(cfg)

	m := app.New(cfg, client, store, version)
	p := tea.NewProgram(m)

	// Any unauthorized response tears the session down globally and kicks
	// the UI back to the login screen
	client.SetUnauthorizedHandler(func() {
		store.Teardown()
		p.Send(app.SessionExpiredMsg{})
	})

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}
