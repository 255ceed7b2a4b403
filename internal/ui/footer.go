package ui

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// FlashDuration is how long a flash message stays before auto-dismissing
const FlashDuration = 3 * time.Second

// FlashTickMsg signals that the current flash message should be dismissed
type FlashTickMsg struct{}

// FlashTick returns a command that dismisses the flash after FlashDuration
func FlashTick() tea.Cmd {
	return tea.Tick(FlashDuration, func(time.Time) tea.Msg {
		return FlashTickMsg{}
	})
}

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key  string
	Desc string
}

// Footer represents the bottom footer bar with keybindings
type Footer struct {
	width          int
	hasCharacter   bool // Whether a character is selected
	sidebarFocused bool // Whether sidebar has focus
	sending        bool // Whether a send is in flight
	modalOpen      bool // Whether a modal is showing
	searching      bool // Whether the roster filter is active
	flash          string
	flashIsError   bool
}

// NewFooter creates a new footer
func NewFooter() *Footer {
	return &Footer{}
}

// SetContext updates the footer's context for conditional bindings
func (f *Footer) SetContext(hasCharacter, sidebarFocused, sending, modalOpen, searching bool) {
	f.hasCharacter = hasCharacter
	f.sidebarFocused = sidebarFocused
	f.sending = sending
	f.modalOpen = modalOpen
	f.searching = searching
}

// SetWidth sets the footer width
func (f *Footer) SetWidth(width int) {
	f.width = width
}

// SetFlash sets a transient status message that replaces the keybinding help.
func (f *Footer) SetFlash(message string, isError bool) {
	f.flash = message
	f.flashIsError = isError
}

// ClearFlash removes the transient status message.
func (f *Footer) ClearFlash() {
	f.flash = ""
	f.flashIsError = false
}

// View renders the footer
func (f *Footer) View() string {
	if f.flash != "" {
		style := StatusSuccessStyle
		if f.flashIsError {
			style = StatusErrorStyle
		}
		return FooterStyle.Width(f.width).Render(style.Render(f.flash))
	}

	var bindings []KeyBinding
	switch {
	case f.modalOpen:
		bindings = []KeyBinding{
			{Key: "tab", Desc: "next field"},
			{Key: "enter", Desc: "confirm"},
			{Key: "esc", Desc: "cancel"},
		}
	case f.searching:
		bindings = []KeyBinding{
			{Key: "enter", Desc: "open first match"},
			{Key: "esc", Desc: "cancel"},
		}
	case f.sidebarFocused:
		bindings = []KeyBinding{
			{Key: "↑/↓", Desc: "select character"},
			{Key: "/", Desc: "search"},
			{Key: "tab", Desc: "switch pane"},
			{Key: "n", Desc: "new character"},
			{Key: "d", Desc: "delete"},
			{Key: "u", Desc: "profile"},
			{Key: "q", Desc: "quit"},
		}
	case f.sending:
		bindings = []KeyBinding{
			{Key: "enter", Desc: "queue message"},
			{Key: "tab", Desc: "switch pane"},
			{Key: "pgup/dn", Desc: "scroll"},
		}
	case f.hasCharacter:
		bindings = []KeyBinding{
			{Key: "enter", Desc: "send"},
			{Key: "tab", Desc: "switch pane"},
			{Key: "pgup/dn", Desc: "scroll"},
		}
	default:
		bindings = []KeyBinding{
			{Key: "tab", Desc: "switch pane"},
			{Key: "n", Desc: "new character"},
			{Key: "q", Desc: "quit"},
		}
	}

	var parts []string
	for _, b := range bindings {
		key := FooterKeyStyle.Render(b.Key)
		desc := FooterDescStyle.Render(": " + b.Desc)
		parts = append(parts, key+desc)
	}

	content := strings.Join(parts, "  "+lipgloss.NewStyle().Foreground(ColorBorder).Render("|")+"  ")

	return FooterStyle.Width(f.width).Render(content)
}
