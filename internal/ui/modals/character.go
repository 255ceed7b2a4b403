package modals

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	huh "charm.land/huh/v2"
	"charm.land/lipgloss/v2"

	"github.com/parley-chat/parley/internal/api"
)

// =============================================================================
// CreateCharacterState - State for the New Character modal
// =============================================================================

type CreateCharacterState struct {
	form *huh.Form

	name        string
	personality string
	backstory   string
	image       *api.ImageAttachment
	errMsg      string
}

func (*CreateCharacterState) modalState() {}

func (s *CreateCharacterState) Title() string { return "New Character" }

func (s *CreateCharacterState) Help() string {
	return "Tab: next field  ctrl+v: attach image  Enter: create  Esc: cancel"
}

func (s *CreateCharacterState) Render() string {
	title := ModalTitleStyle.Render(s.Title())

	parts := []string{title, s.form.View()}

	if s.image != nil {
		attached := lipgloss.NewStyle().
			Foreground(ColorSecondary).
			MarginTop(1).
			Render("Image attached: " + s.image.Filename)
		parts = append(parts, attached)
	}

	if s.errMsg != "" {
		parts = append(parts, StatusErrorStyle.Render(s.errMsg))
	}

	parts = append(parts, ModalHelpStyle.Render(s.Help()))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (s *CreateCharacterState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	var cmd tea.Cmd
	s.form, cmd = huhFormUpdate(s.form, msg)
	return s, cmd
}

// SetImage attaches a portrait image pulled from the clipboard
func (s *CreateCharacterState) SetImage(image *api.ImageAttachment) {
	s.image = image
}

// SetError surfaces a server rejection without losing the user's input
func (s *CreateCharacterState) SetError(msg string) {
	s.errMsg = msg
}

// Draft returns the entered character fields
func (s *CreateCharacterState) Draft() api.CharacterDraft {
	return api.CharacterDraft{
		Name:        strings.TrimSpace(s.name),
		Personality: strings.TrimSpace(s.personality),
		Backstory:   strings.TrimSpace(s.backstory),
		Image:       s.image,
	}
}

// Valid reports whether the form can be submitted
func (s *CreateCharacterState) Valid() bool {
	return strings.TrimSpace(s.name) != ""
}

// NewCreateCharacterState creates a new CreateCharacterState
func NewCreateCharacterState() *CreateCharacterState {
	s := &CreateCharacterState{}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("e.g. Captain Mira Vale").
				CharLimit(64).
				Value(&s.name),
			huh.NewText().
				Title("Personality").
				Placeholder("How do they speak and behave?").
				CharLimit(ModalInputCharLimit*8).
				Lines(3).
				Value(&s.personality),
			huh.NewText().
				Title("Backstory").
				Placeholder("Where do they come from?").
				CharLimit(ModalInputCharLimit*8).
				Lines(3).
				Value(&s.backstory),
		),
	).
		WithTheme(ModalTheme()).
		WithWidth(ModalInputWidth).
		WithShowHelp(false)

	initHuhForm(s.form)
	return s
}

// =============================================================================
// ConfirmDeleteState - State for the Delete Character confirmation modal
// =============================================================================

type ConfirmDeleteState struct {
	CharacterID   string
	CharacterName string
}

func (*ConfirmDeleteState) modalState() {}

func (s *ConfirmDeleteState) Title() string { return "Delete Character" }

func (s *ConfirmDeleteState) Help() string {
	return "y/Enter: delete  Esc: cancel"
}

func (s *ConfirmDeleteState) Render() string {
	title := ModalTitleStyle.Render(s.Title())

	name := lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Bold(true).
		Render(s.CharacterName)

	warning := lipgloss.NewStyle().
		Foreground(ColorText).
		Width(ModalInputWidth).
		Render("Delete " + name + lipgloss.NewStyle().Foreground(ColorText).Render(" and its entire conversation history? This cannot be undone."))

	help := ModalHelpStyle.Render(s.Help())

	return lipgloss.JoinVertical(lipgloss.Left, title, warning, help)
}

func (s *ConfirmDeleteState) Update(msg tea.Msg) (ModalState, tea.Cmd) {
	return s, nil
}

// NewConfirmDeleteState creates a new ConfirmDeleteState
func NewConfirmDeleteState(characterID, characterName string) *ConfirmDeleteState {
	return &ConfirmDeleteState{
		CharacterID:   characterID,
		CharacterName: characterName,
	}
}
