package ui

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/parley-chat/parley/internal/api"
)

// sidebarSpinnerFrames uses the same shimmering spinner as the chat panel
var sidebarSpinnerFrames = []string{"·", "✺", "✹", "✸", "✷", "✶", "✵", "✴", "✳", "✲", "✱", "✧", "✦", "·"}

// SidebarTickMsg is sent to advance the spinner animation
type SidebarTickMsg time.Time

// Sidebar represents the left panel with the character roster.
//
// The sidebar is a pure view: it renders the roster and selection it is
// given and never mutates them. Selection changes go through the
// orchestrator so the roster stays the single source of truth.
type Sidebar struct {
	characters   []api.Character
	selectedID   string
	width        int
	height       int
	focused      bool
	scrollOffset int
	loading      bool
	spinnerFrame int

	searchMode  bool
	searchInput textinput.Model
}

// NewSidebar creates a new sidebar
func NewSidebar() *Sidebar {
	ti := textinput.New()
	ti.Placeholder = "Search characters"
	ti.CharLimit = 64
	ti.Prompt = "/ "
	return &Sidebar{loading: true, searchInput: ti}
}

// SetSize sets the sidebar dimensions
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Width returns the sidebar width
func (s *Sidebar) Width() int {
	return s.width
}

// SetFocused sets the focus state
func (s *Sidebar) SetFocused(focused bool) {
	s.focused = focused
}

// IsFocused returns the focus state
func (s *Sidebar) IsFocused() bool {
	return s.focused
}

// SetLoading sets whether the roster fetch is still in flight
func (s *Sidebar) SetLoading(loading bool) {
	s.loading = loading
}

// SetCharacters updates the roster view and the highlighted entry
func (s *Sidebar) SetCharacters(characters []api.Character, selectedID string) {
	s.characters = characters
	s.selectedID = selectedID
}

// SidebarTick returns a command that sends a tick message after a delay
func SidebarTick() tea.Cmd {
	return tea.Tick(300*time.Millisecond, func(t time.Time) tea.Msg {
		return SidebarTickMsg(t)
	})
}

// Update handles messages
func (s *Sidebar) Update(msg tea.Msg) (*Sidebar, tea.Cmd) {
	if _, ok := msg.(SidebarTickMsg); ok {
		if !s.loading {
			return s, nil
		}
		s.spinnerFrame = (s.spinnerFrame + 1) % len(sidebarSpinnerFrames)
		return s, SidebarTick()
	}
	return s, nil
}

// IsSearchMode reports whether the roster filter is active
func (s *Sidebar) IsSearchMode() bool {
	return s.searchMode
}

// EnterSearchMode activates the roster filter input
func (s *Sidebar) EnterSearchMode() {
	s.searchMode = true
	s.searchInput.Reset()
	s.searchInput.Focus()
}

// ExitSearchMode deactivates the roster filter
func (s *Sidebar) ExitSearchMode() {
	s.searchMode = false
	s.searchInput.Reset()
	s.searchInput.Blur()
}

// HandleSearchKey forwards a key press to the filter input
func (s *Sidebar) HandleSearchKey(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.searchInput, cmd = s.searchInput.Update(msg)
	return cmd
}

// FirstMatchID returns the id of the first character matching the filter,
// or empty string when nothing matches
func (s *Sidebar) FirstMatchID() string {
	matches := s.visibleCharacters()
	if len(matches) == 0 {
		return ""
	}
	return matches[0].ID
}

// visibleCharacters returns the roster filtered by the search query
func (s *Sidebar) visibleCharacters() []api.Character {
	if !s.searchMode {
		return s.characters
	}
	query := strings.ToLower(strings.TrimSpace(s.searchInput.Value()))
	if query == "" {
		return s.characters
	}
	var matches []api.Character
	for _, c := range s.characters {
		if strings.Contains(strings.ToLower(c.Name), query) {
			matches = append(matches, c)
		}
	}
	return matches
}

// View renders the sidebar
func (s *Sidebar) View() string {
	viewCtx := GetViewContext()

	style := PanelStyle
	if s.focused {
		style = PanelFocusedStyle
	}

	innerHeight := viewCtx.InnerHeight(s.height)
	innerWidth := viewCtx.InnerWidth(s.width)

	var search string
	if s.searchMode {
		search = s.searchInput.View()
		innerHeight--
	}

	characters := s.visibleCharacters()

	var content string

	switch {
	case s.loading:
		frame := sidebarSpinnerFrames[s.spinnerFrame%len(sidebarSpinnerFrames)]
		content = StatusLoadingStyle.Render(frame + " Loading characters...")

	case len(s.characters) == 0:
		content = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true).
			Render("No characters yet.\nPress n to create one.")

	case len(characters) == 0:
		content = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true).
			Render("No matches.")

	default:
		var lines []string
		selectedLine := 0
		selIdx := -1
		for i := range characters {
			if characters[i].ID == s.selectedID {
				selIdx = i
				break
			}
		}

		for i, c := range characters {
			// Room for the "> " marker plus the item padding
			name := runewidth.Truncate(c.Name, innerWidth-4, "…")
			if i == selIdx {
				selectedLine = len(lines)
				lines = append(lines, SidebarSelectedStyle.Width(innerWidth).Render("> "+name))
			} else {
				lines = append(lines, SidebarItemStyle.Width(innerWidth).Render("  "+name))
			}
		}

		// Keep the selected character visible
		if selectedLine < s.scrollOffset {
			s.scrollOffset = selectedLine
		} else if selectedLine >= s.scrollOffset+innerHeight {
			s.scrollOffset = selectedLine - innerHeight + 1
		}
		if s.scrollOffset < 0 {
			s.scrollOffset = 0
		}
		maxScroll := len(lines) - innerHeight
		if maxScroll < 0 {
			maxScroll = 0
		}
		if s.scrollOffset > maxScroll {
			s.scrollOffset = maxScroll
		}

		if s.scrollOffset > 0 && s.scrollOffset < len(lines) {
			lines = lines[s.scrollOffset:]
		}
		if len(lines) > innerHeight {
			lines = lines[:innerHeight]
		}
		content = strings.Join(lines, "\n")
	}

	if search != "" {
		content = search + "\n" + content
	}

	// In lipgloss v2, Width/Height include borders, so pass full panel size
	return style.Width(s.width).Height(s.height).Render(content)
}
