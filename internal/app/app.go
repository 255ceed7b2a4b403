// Package app is the Bubble Tea orchestrator. It owns the top-level model,
// routes key presses, runs every network call as a command, and folds the
// typed result messages back into the session, roster, and conversation
// managers. All state transitions happen on the update loop.
package app

import (
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/parley-chat/parley/internal/api"
	"github.com/parley-chat/parley/internal/auth"
	"github.com/parley-chat/parley/internal/config"
	"github.com/parley-chat/parley/internal/convo"
	"github.com/parley-chat/parley/internal/roster"
	"github.com/parley-chat/parley/internal/ui"
)

// Focus represents which panel is focused
type Focus int

const (
	FocusSidebar Focus = iota
	FocusChat
)

// Screen represents which top-level surface is showing.
// An explicit state machine keeps the auth flow unambiguous: the app never
// decides between login and dashboard until session resolution completes.
type Screen int

const (
	ScreenResolving Screen = iota // Startup: validating any persisted token
	ScreenLogin
	ScreenRegister
	ScreenDashboard
)

// String returns a human-readable name for the screen
func (s Screen) String() string {
	switch s {
	case ScreenResolving:
		return "Resolving"
	case ScreenLogin:
		return "Login"
	case ScreenRegister:
		return "Register"
	case ScreenDashboard:
		return "Dashboard"
	default:
		return "Unknown"
	}
}

// Model is the main Bubble Tea model
type Model struct {
	config  *config.Config
	client  *api.Client
	store   *auth.Store
	roster  *roster.Manager
	convo   *convo.Manager
	version string // App version (injected at build time)

	header    *ui.Header
	footer    *ui.Footer
	sidebar   *ui.Sidebar
	chat      *ui.Chat
	modal     *ui.Modal
	login     *ui.LoginForm
	register  *ui.RegisterForm
	resolving spinner.Model

	width  int
	height int
	screen Screen
	focus  Focus

	// Terminal focus, tracked so reply notifications only fire when the
	// user is looking elsewhere
	terminalFocused bool

	// Guards against double-submitting the create character modal
	pendingCreate bool
}

// New creates a new app model
func New(cfg *config.Config, client *api.Client, store *auth.Store, version string) *Model {
	// Load saved theme from config, or use default
	if savedTheme := cfg.GetTheme(); savedTheme != "" {
		ui.SetThemeByName(savedTheme)
	}

	m := &Model{
		config:          cfg,
		client:          client,
		store:           store,
		roster:          roster.New(),
		convo:           convo.New(),
		version:         version,
		header:          ui.NewHeader(),
		footer:          ui.NewFooter(),
		sidebar:         ui.NewSidebar(),
		chat:            ui.NewChat(),
		modal:           ui.NewModal(),
		login:           ui.NewLoginForm(),
		register:        ui.NewRegisterForm(),
		screen:          ScreenResolving,
		focus:           FocusSidebar,
		terminalFocused: true,
	}

	m.resolving = spinner.New(spinner.WithSpinner(spinner.MiniDot))
	m.resolving.Style = ui.StatusLoadingStyle

	m.convo.SetRollbackOnFailure(cfg.GetRollbackFailedSends())
	m.sidebar.SetFocused(true)

	return m
}

// CurrentScreen returns the active top-level surface. Exposed for tests.
func (m *Model) CurrentScreen() Screen {
	return m.screen
}

// Init kicks off session resolution
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.resolveSessionCmd(), m.resolving.Tick)
}
