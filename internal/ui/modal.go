package ui

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/parley-chat/parley/internal/ui/modals"
)

// Modal is the overlay container that renders the active ModalState
// centered over the dashboard.
type Modal struct {
	state  modals.ModalState
	width  int
	height int
}

// NewModal creates a new, closed modal container
func NewModal() *Modal {
	RefreshModalStyles()
	return &Modal{}
}

// SetSize sets the terminal dimensions used for centering
func (m *Modal) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Open sets the active modal state
func (m *Modal) Open(state modals.ModalState) {
	m.state = state
}

// Close dismisses the active modal
func (m *Modal) Close() {
	m.state = nil
}

// IsOpen returns whether a modal is showing
func (m *Modal) IsOpen() bool {
	return m.state != nil
}

// State returns the active modal state, or nil
func (m *Modal) State() modals.ModalState {
	return m.state
}

// Update forwards messages to the active modal state
func (m *Modal) Update(msg tea.Msg) tea.Cmd {
	if m.state == nil {
		return nil
	}
	var cmd tea.Cmd
	m.state, cmd = m.state.Update(msg)
	return cmd
}

// View renders the modal centered in the terminal
func (m *Modal) View() string {
	if m.state == nil {
		return ""
	}

	box := ModalStyle.Render(m.state.Render())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// RefreshModalStyles pushes the current theme's styles into the modals
// package. Called on startup and whenever the theme changes.
func RefreshModalStyles() {
	modals.SetStyles(
		ModalTitleStyle, ModalHelpStyle, SidebarItemStyle, SidebarSelectedStyle, StatusErrorStyle,
		ColorPrimary, ColorSecondary, ColorText, ColorTextMuted, ColorTextInverse, ColorUser, ColorWarning,
		ModalInputWidth, ModalInputCharLimit, ModalWidth,
	)
}
