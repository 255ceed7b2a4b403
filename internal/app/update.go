package app

import (
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/parley-chat/parley/internal/api"
	"github.com/parley-chat/parley/internal/clipboard"
	"github.com/parley-chat/parley/internal/keys"
	"github.com/parley-chat/parley/internal/logger"
	"github.com/parley-chat/parley/internal/ui"
	"github.com/parley-chat/parley/internal/ui/modals"
)

// Update handles all messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		return m, nil

	case tea.FocusMsg:
		m.terminalFocused = true
		return m, nil

	case tea.BlurMsg:
		m.terminalFocused = false
		return m, nil

	case spinner.TickMsg:
		if m.screen != ScreenResolving {
			return m, nil
		}
		var cmd tea.Cmd
		m.resolving, cmd = m.resolving.Update(msg)
		return m, cmd

	case ui.FlashTickMsg:
		m.footer.ClearFlash()
		return m, nil

	case ui.SidebarTickMsg:
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd

	case ui.StopwatchTickMsg:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case tea.KeyPressMsg:
		return m.handleKeyPress(msg)

	case tea.MouseWheelMsg:
		if m.screen == ScreenDashboard && !m.modal.IsOpen() {
			var cmd tea.Cmd
			m.chat, cmd = m.chat.Update(msg)
			return m, cmd
		}
		return m, nil

	case SessionResolvedMsg:
		return m.handleSessionResolved(msg)
	case LoginResultMsg:
		return m.handleLoginResult(msg)
	case RegisterResultMsg:
		return m.handleRegisterResult(msg)
	case ProfileUpdatedMsg:
		return m.handleProfileUpdated(msg)
	case SessionExpiredMsg:
		return m.handleSessionExpired()
	case CharactersLoadedMsg:
		return m.handleCharactersLoaded(msg)
	case CharacterCreatedMsg:
		return m.handleCharacterCreated(msg)
	case CharacterDeletedMsg:
		return m.handleCharacterDeleted(msg)
	case HistoryLoadedMsg:
		return m.handleHistoryLoaded(msg)
	case SendResultMsg:
		return m.handleSendResult(msg)
	}

	return m, nil
}

// handleKeyPress routes key presses by screen
func (m *Model) handleKeyPress(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == keys.CtrlC {
		return m, tea.Quit
	}

	switch m.screen {
	case ScreenLogin:
		return m.handleLoginKeys(msg)
	case ScreenRegister:
		return m.handleRegisterKeys(msg)
	case ScreenDashboard:
		return m.handleDashboardKeys(msg)
	}
	return m, nil
}

func (m *Model) handleLoginKeys(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keys.Enter:
		if m.login.IsBusy() {
			return m, nil
		}
		if !m.login.Valid() {
			m.login.SetError("Email and password are required")
			return m, nil
		}
		m.login.SetBusy(true)
		return m, m.loginCmd(m.login.Email(), m.login.Password())

	case "ctrl+r":
		m.register = ui.NewRegisterForm()
		m.register.SetSize(m.width, m.height)
		m.screen = ScreenRegister
		return m, nil
	}

	return m, m.login.Update(msg)
}

func (m *Model) handleRegisterKeys(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keys.Escape:
		if m.register.IsBusy() {
			return m, nil
		}
		m.screen = ScreenLogin
		return m, nil

	case keys.Enter:
		if m.register.IsBusy() {
			return m, nil
		}
		if problem := m.register.Validate(); problem != "" {
			m.register.SetError(problem)
			return m, nil
		}
		m.register.SetBusy(true)
		return m, m.registerCmd(m.register.Request())

	case keys.CtrlV:
		if att, errMsg := clipboardAttachment(); errMsg != "" {
			m.register.SetError(errMsg)
		} else {
			m.register.SetAvatar(att)
		}
		return m, nil
	}

	return m, m.register.Update(msg)
}

func (m *Model) handleDashboardKeys(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.modal.IsOpen() {
		return m.handleModalKeys(msg)
	}

	if msg.String() == keys.Tab {
		m.toggleFocus()
		return m, nil
	}

	if m.focus == FocusSidebar {
		return m.handleSidebarKeys(msg)
	}
	return m.handleChatKeys(msg)
}

func (m *Model) handleSidebarKeys(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.sidebar.IsSearchMode() {
		return m.handleSearchKeys(msg)
	}

	switch msg.String() {
	case "/":
		m.sidebar.EnterSearchMode()
		return m, nil
	case "q":
		return m, tea.Quit
	case keys.Up, "k":
		return m, m.moveSelection(-1)
	case keys.Down, "j":
		return m, m.moveSelection(1)
	case keys.Enter:
		if m.roster.Selected() != nil {
			m.setFocus(FocusChat)
		}
		return m, nil
	case "n":
		m.modal.Open(modals.NewCreateCharacterState())
		return m, nil
	case "d":
		if sel := m.roster.Selected(); sel != nil {
			m.modal.Open(modals.NewConfirmDeleteState(sel.ID, sel.Name))
		}
		return m, nil
	case "u":
		m.openSettings()
		return m, nil
	}
	return m, nil
}

// handleSearchKeys routes keys while the roster filter is active
func (m *Model) handleSearchKeys(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keys.Escape:
		m.sidebar.ExitSearchMode()
		return m, nil
	case keys.Enter:
		id := m.sidebar.FirstMatchID()
		m.sidebar.ExitSearchMode()
		if id == "" {
			return m, nil
		}
		changed, err := m.roster.Select(id)
		if err != nil || !changed {
			return m, nil
		}
		m.syncSidebar()
		return m, m.beginHistoryLoad()
	}
	return m, m.sidebar.HandleSearchKey(msg)
}

func (m *Model) handleChatKeys(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keys.Escape:
		m.setFocus(FocusSidebar)
		return m, nil
	case keys.Enter:
		return m, m.handleSend()
	}

	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	return m, cmd
}

func (m *Model) handleModalKeys(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch state := m.modal.State().(type) {
	case *modals.CreateCharacterState:
		switch key {
		case keys.Escape:
			m.pendingCreate = false
			m.modal.Close()
			return m, nil
		case keys.Enter:
			if m.pendingCreate {
				return m, nil
			}
			if !state.Valid() {
				state.SetError("Name is required")
				return m, nil
			}
			m.pendingCreate = true
			return m, m.createCharacterCmd(state.Draft())
		case keys.CtrlV:
			if att, errMsg := clipboardAttachment(); errMsg != "" {
				state.SetError(errMsg)
			} else {
				state.SetImage(att)
			}
			return m, nil
		}

	case *modals.ConfirmDeleteState:
		switch key {
		case keys.Escape:
			m.modal.Close()
			return m, nil
		case "y", keys.Enter:
			id, name := state.CharacterID, state.CharacterName
			m.modal.Close()
			return m, m.deleteCharacterCmd(id, name)
		}
		return m, nil

	case *modals.SettingsState:
		switch key {
		case keys.Escape:
			m.modal.Close()
			return m, nil
		case keys.Enter:
			return m, m.applySettings(state)
		case keys.CtrlV:
			if att, errMsg := clipboardAttachment(); errMsg != "" {
				state.SetError(errMsg)
			} else {
				state.SetAvatar(att)
			}
			return m, nil
		}
	}

	return m, m.modal.Update(msg)
}

// handleSend pulls the input text and hands it to the conversation manager.
// Empty input is a no-op; while a send is in flight the text queues instead.
func (m *Model) handleSend() tea.Cmd {
	text := m.chat.GetInput()
	if text == "" {
		return nil
	}

	wasSending := m.convo.IsSending()
	d, ok := m.convo.Send(text, time.Now())
	m.chat.ClearInput()

	if !ok {
		if wasSending {
			m.chat.SetQueuedCount(m.convo.QueuedCount())
		}
		return nil
	}

	m.refreshConversation()
	m.chat.SetWaiting(true)
	return tea.Batch(m.sendMessageCmd(d), ui.StopwatchTick())
}

// applySettings applies local preferences immediately and dispatches a
// profile update only when the server-side fields changed
func (m *Model) applySettings(state *modals.SettingsState) tea.Cmd {
	if !state.Valid() {
		state.SetError("Username is required")
		return nil
	}

	ui.SetThemeByName(state.Theme())
	m.config.SetTheme(state.Theme())
	m.config.SetNotificationsEnabled(state.NotificationsEnabled())
	m.config.SetRollbackFailedSends(state.RollbackFailedSends())
	m.convo.SetRollbackOnFailure(state.RollbackFailedSends())
	if err := m.config.Save(); err != nil {
		logger.Error("App: failed to save settings: %v", err)
	}

	profileChanged := state.ProfileChanged()
	username, avatar := state.Username(), state.Avatar()
	m.modal.Close()

	if profileChanged {
		return m.updateProfileCmd(username, avatar)
	}
	return m.ShowFlashSuccess("Settings saved")
}

// openSettings builds the settings modal from the current session and config
func (m *Model) openSettings() {
	username := ""
	if user := m.store.User(); user != nil {
		username = user.Username
	}

	var themes []modals.SettingsOption
	for _, name := range ui.ThemeNames() {
		themes = append(themes, modals.SettingsOption{Key: string(name), Label: ui.GetTheme(name).Name})
	}

	m.modal.Open(modals.NewSettingsState(
		username,
		string(ui.CurrentThemeName()),
		themes,
		m.config.GetNotificationsEnabled(),
		m.config.GetRollbackFailedSends(),
	))
}

// moveSelection moves the sidebar selection and starts the history load for
// the newly selected character
func (m *Model) moveSelection(delta int) tea.Cmd {
	characters := m.roster.Characters()
	if len(characters) == 0 {
		return nil
	}

	idx := 0
	current := m.roster.SelectedID()
	for i := range characters {
		if characters[i].ID == current {
			idx = i
			break
		}
	}

	next := idx + delta
	if next < 0 || next >= len(characters) {
		return nil
	}

	changed, err := m.roster.Select(characters[next].ID)
	if err != nil || !changed {
		return nil
	}

	m.syncSidebar()
	return m.beginHistoryLoad()
}

func (m *Model) toggleFocus() {
	if m.focus == FocusSidebar {
		m.setFocus(FocusChat)
	} else {
		m.setFocus(FocusSidebar)
	}
}

func (m *Model) setFocus(focus Focus) {
	m.focus = focus
	m.sidebar.SetFocused(focus == FocusSidebar)
	m.chat.SetFocused(focus == FocusChat)
}

// clipboardAttachment reads an image from the clipboard and validates it
// against the upload limits. The second return is a user-facing problem
// description, empty on success.
func clipboardAttachment() (*api.ImageAttachment, string) {
	img, err := clipboard.ReadImage()
	if err != nil {
		return nil, err.Error()
	}
	if img == nil {
		return nil, "No image on the clipboard"
	}
	if err := img.Validate(); err != nil {
		return nil, err.Error()
	}
	return &api.ImageAttachment{Filename: "clipboard.png", Data: img.Data}, ""
}
