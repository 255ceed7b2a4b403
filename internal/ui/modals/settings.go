package modals

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	huh "charm.land/huh/v2"
	"charm.land/lipgloss/v2"

	"github.com/parley-chat/parley/internal/api"
)

// =============================================================================
// SettingsState - State for the combined profile and preferences modal
// =============================================================================

// SettingsOption bundles a theme choice for the select field
type SettingsOption struct {
	Key   string
	Label string
}

type SettingsState struct {
	form *huh.Form

	username      string
	theme         string
	notifications bool
	rollbackSends bool
	avatar        *api.ImageAttachment
	errMsg        string

	originalUsername string
}

func (*SettingsState) modalState() {}

func (s *SettingsState) Title() string { return "Settings" }

func (s *SettingsState) Help() string {
	return "Tab: next field  ctrl+v: attach avatar  Enter: save  Esc: cancel"
}

func (s *SettingsState) Render() string {
	title := ModalTitleStyle.Render(s.Title())

	parts := []string{title, s.form.View()}

	if s.avatar != nil {
		attached := lipgloss.NewStyle().
			Foreground(ColorSecondary).
			MarginTop(1).
			Render("Avatar attached: " + s.avatar.Filename)
		parts = append(parts, attached)
	}

	if s.errMsg != "" {
		parts = append(parts, StatusErrorStyle.Render(s.errMsg))
	}

	parts = append(parts, ModalHelpStyle.Render(s.Help()))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (s *SettingsState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	var cmd tea.Cmd
	s.form, cmd = huhFormUpdate(s.form, msg)
	return s, cmd
}

// SetAvatar attaches a profile image pulled from the clipboard
func (s *SettingsState) SetAvatar(image *api.ImageAttachment) {
	s.avatar = image
}

// SetError surfaces a server rejection without losing the user's input
func (s *SettingsState) SetError(msg string) {
	s.errMsg = msg
}

// Username returns the entered username
func (s *SettingsState) Username() string {
	return strings.TrimSpace(s.username)
}

// Avatar returns the attached profile image, or nil
func (s *SettingsState) Avatar() *api.ImageAttachment {
	return s.avatar
}

// Theme returns the selected theme key
func (s *SettingsState) Theme() string {
	return s.theme
}

// NotificationsEnabled returns the notification preference
func (s *SettingsState) NotificationsEnabled() bool {
	return s.notifications
}

// RollbackFailedSends returns the failed-send rollback preference
func (s *SettingsState) RollbackFailedSends() bool {
	return s.rollbackSends
}

// ProfileChanged reports whether the server-side profile needs an update
func (s *SettingsState) ProfileChanged() bool {
	return s.Username() != s.originalUsername || s.avatar != nil
}

// Valid reports whether the form can be submitted
func (s *SettingsState) Valid() bool {
	return s.Username() != ""
}

// NewSettingsState creates a new SettingsState pre-filled with current values
func NewSettingsState(username, theme string, themes []SettingsOption, notifications, rollbackSends bool) *SettingsState {
	s := &SettingsState{
		username:         username,
		theme:            theme,
		notifications:    notifications,
		rollbackSends:    rollbackSends,
		originalUsername: username,
	}

	themeOptions := make([]huh.Option[string], 0, len(themes))
	for _, t := range themes {
		themeOptions = append(themeOptions, huh.NewOption(t.Label, t.Key))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				CharLimit(64).
				Value(&s.username),
			huh.NewSelect[string]().
				Title("Theme").
				Options(themeOptions...).
				Value(&s.theme),
			huh.NewSelect[bool]().
				Title("Reply notifications").
				Options(
					huh.NewOption("Enabled", true),
					huh.NewOption("Disabled", false),
				).
				Value(&s.notifications),
			huh.NewSelect[bool]().
				Title("Failed sends").
				Description("Keep or remove your message when a send fails").
				Options(
					huh.NewOption("Keep with a warning", false),
					huh.NewOption("Remove from conversation", true),
				).
				Value(&s.rollbackSends),
		),
	).
		WithTheme(ModalTheme()).
		WithWidth(ModalInputWidth).
		WithShowHelp(false)

	initHuhForm(s.form)
	return s
}
