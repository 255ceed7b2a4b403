package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	huh "charm.land/huh/v2"
	"charm.land/lipgloss/v2"

	"github.com/parley-chat/parley/internal/api"
	"github.com/parley-chat/parley/internal/keys"
	"github.com/parley-chat/parley/internal/ui/modals"
)

// authFormUpdate forwards messages to a huh form, keeping Enter and Escape
// for the app-layer handlers.
func authFormUpdate(form *huh.Form, msg tea.Msg) (*huh.Form, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyPressMsg); ok {
		switch keyMsg.String() {
		case keys.Enter, keys.Escape:
			return form, nil
		}
	}
	m, cmd := form.Update(msg)
	return m.(*huh.Form), cmd
}

// renderAuthScreen renders a titled form box centered in the terminal.
func renderAuthScreen(width, height int, title string, form *huh.Form, errMsg, hint string, busy bool) string {
	parts := []string{
		ModalTitleStyle.Render(title),
		form.View(),
	}
	if busy {
		parts = append(parts, StatusLoadingStyle.Render("Contacting server..."))
	}
	if errMsg != "" {
		parts = append(parts, StatusErrorStyle.Render(errMsg))
	}
	parts = append(parts, ModalHelpStyle.Render(hint))

	box := ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// LoginForm - the sign-in screen
// =============================================================================

type LoginForm struct {
	form     *huh.Form
	email    string
	password string
	errMsg   string
	busy     bool
	width    int
	height   int
}

// NewLoginForm creates the sign-in screen
func NewLoginForm() *LoginForm {
	f := &LoginForm{}
	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				CharLimit(ModalInputCharLimit).
				Value(&f.email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				CharLimit(ModalInputCharLimit).
				Value(&f.password),
		),
	).
		WithTheme(modals.ModalTheme()).
		WithWidth(ModalInputWidth).
		WithShowHelp(false)
	f.form.Init()
	return f
}

// SetSize sets the terminal dimensions used for centering
func (f *LoginForm) SetSize(width, height int) {
	f.width = width
	f.height = height
}

// SetError shows a server rejection under the form
func (f *LoginForm) SetError(msg string) {
	f.errMsg = msg
	f.busy = false
}

// SetBusy marks the form as waiting on the server
func (f *LoginForm) SetBusy(busy bool) {
	f.busy = busy
	if busy {
		f.errMsg = ""
	}
}

// IsBusy reports whether a login attempt is in flight
func (f *LoginForm) IsBusy() bool {
	return f.busy
}

// Email returns the entered email
func (f *LoginForm) Email() string {
	return strings.TrimSpace(f.email)
}

// Password returns the entered password
func (f *LoginForm) Password() string {
	return f.password
}

// Valid reports whether the form can be submitted
func (f *LoginForm) Valid() bool {
	return f.Email() != "" && f.password != ""
}

// Update forwards messages to the form
func (f *LoginForm) Update(msg tea.Msg) tea.Cmd {
	if f.busy {
		return nil
	}
	var cmd tea.Cmd
	f.form, cmd = authFormUpdate(f.form, msg)
	return cmd
}

// View renders the sign-in screen
func (f *LoginForm) View() string {
	return renderAuthScreen(f.width, f.height, "Sign in to Parley", f.form,
		f.errMsg, "Enter: sign in  ctrl+r: create an account", f.busy)
}

// =============================================================================
// RegisterForm - the account creation screen
// =============================================================================

type RegisterForm struct {
	form     *huh.Form
	username string
	email    string
	password string
	confirm  string
	avatar   *api.ImageAttachment
	errMsg   string
	busy     bool
	width    int
	height   int
}

// NewRegisterForm creates the account creation screen
func NewRegisterForm() *RegisterForm {
	f := &RegisterForm{}
	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				CharLimit(64).
				Value(&f.username),
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				CharLimit(ModalInputCharLimit).
				Value(&f.email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				CharLimit(ModalInputCharLimit).
				Value(&f.password),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				CharLimit(ModalInputCharLimit).
				Value(&f.confirm),
		),
	).
		WithTheme(modals.ModalTheme()).
		WithWidth(ModalInputWidth).
		WithShowHelp(false)
	f.form.Init()
	return f
}

// SetSize sets the terminal dimensions used for centering
func (f *RegisterForm) SetSize(width, height int) {
	f.width = width
	f.height = height
}

// SetError shows a rejection under the form
func (f *RegisterForm) SetError(msg string) {
	f.errMsg = msg
	f.busy = false
}

// SetBusy marks the form as waiting on the server
func (f *RegisterForm) SetBusy(busy bool) {
	f.busy = busy
	if busy {
		f.errMsg = ""
	}
}

// IsBusy reports whether a registration attempt is in flight
func (f *RegisterForm) IsBusy() bool {
	return f.busy
}

// SetAvatar attaches a profile image pulled from the clipboard
func (f *RegisterForm) SetAvatar(image *api.ImageAttachment) {
	f.avatar = image
}

// Request builds the registration payload from the entered fields
func (f *RegisterForm) Request() api.RegisterRequest {
	return api.RegisterRequest{
		Username: strings.TrimSpace(f.username),
		Email:    strings.TrimSpace(f.email),
		Password: f.password,
		Image:    f.avatar,
	}
}

// Validate checks the form locally before it goes to the server. Returns an
// empty string when the form is submittable.
func (f *RegisterForm) Validate() string {
	if strings.TrimSpace(f.username) == "" || strings.TrimSpace(f.email) == "" || f.password == "" {
		return "All fields are required"
	}
	if f.password != f.confirm {
		return "Passwords do not match"
	}
	return ""
}

// Update forwards messages to the form
func (f *RegisterForm) Update(msg tea.Msg) tea.Cmd {
	if f.busy {
		return nil
	}
	var cmd tea.Cmd
	f.form, cmd = authFormUpdate(f.form, msg)
	return cmd
}

// View renders the account creation screen
func (f *RegisterForm) View() string {
	hint := "Enter: create account  ctrl+v: attach avatar  Esc: back to sign in"
	parts := []string{
		ModalTitleStyle.Render("Create your Parley account"),
		f.form.View(),
	}
	if f.avatar != nil {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(ColorSecondary).
			MarginTop(1).
			Render("Avatar attached: "+f.avatar.Filename))
	}
	if f.busy {
		parts = append(parts, StatusLoadingStyle.Render("Contacting server..."))
	}
	if f.errMsg != "" {
		parts = append(parts, StatusErrorStyle.Render(f.errMsg))
	}
	parts = append(parts, ModalHelpStyle.Render(hint))

	box := ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	return lipgloss.Place(f.width, f.height, lipgloss.Center, lipgloss.Center, box)
}
