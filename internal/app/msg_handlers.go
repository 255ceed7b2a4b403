package app

import (
	"net/url"
	"time"

	tea "charm.land/bubbletea/v2"

	perrors "github.com/parley-chat/parley/internal/errors"
	"github.com/parley-chat/parley/internal/roster"
	"github.com/parley-chat/parley/internal/ui"
	"github.com/parley-chat/parley/internal/ui/modals"
)

func (m *Model) handleSessionResolved(msg SessionResolvedMsg) (tea.Model, tea.Cmd) {
	if m.store.IsAuthenticated() {
		return m, m.enterDashboard()
	}
	if msg.Err != nil {
		m.login.SetError("Session expired. Please sign in again.")
	}
	m.screen = ScreenLogin
	return m, nil
}

func (m *Model) handleLoginResult(msg LoginResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.login.SetError(perrors.UserMessage(msg.Err))
		return m, nil
	}
	// Fresh form so credentials aren't retained for a later logout
	m.login = ui.NewLoginForm()
	m.login.SetSize(m.width, m.height)
	return m, m.enterDashboard()
}

func (m *Model) handleRegisterResult(msg RegisterResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.register.SetError(perrors.UserMessage(msg.Err))
		return m, nil
	}
	m.register = ui.NewRegisterForm()
	m.register.SetSize(m.width, m.height)
	return m, m.enterDashboard()
}

func (m *Model) handleProfileUpdated(msg ProfileUpdatedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m, m.ShowFlashError(perrors.UserMessage(msg.Err))
	}
	if user := m.store.User(); user != nil {
		m.header.SetUsername(user.Username)
	}
	return m, m.ShowFlashSuccess("Profile updated")
}

// handleSessionExpired resets every dashboard surface and returns to the
// login screen. The transport already discarded the token.
func (m *Model) handleSessionExpired() (tea.Model, tea.Cmd) {
	m.roster = roster.New()
	m.convo.Clear()
	m.convo.SetRollbackOnFailure(m.config.GetRollbackFailedSends())
	m.chat.ClearConversation()
	m.sidebar.SetCharacters(nil, "")
	m.sidebar.SetLoading(false)
	m.modal.Close()
	m.pendingCreate = false
	m.footer.ClearFlash()
	m.header.SetUsername("")

	m.login = ui.NewLoginForm()
	m.login.SetSize(m.width, m.height)
	m.login.SetError("Session expired. Please sign in again.")
	m.screen = ScreenLogin
	return m, nil
}

func (m *Model) handleCharactersLoaded(msg CharactersLoadedMsg) (tea.Model, tea.Cmd) {
	m.sidebar.SetLoading(false)
	if msg.Err != nil {
		// An unauthorized result is followed by SessionExpiredMsg; the
		// login screen explains it better than a flash would
		if perrors.Is(msg.Err, perrors.KindAuth) {
			return m, nil
		}
		return m, m.ShowFlashError(perrors.UserMessage(msg.Err))
	}

	m.roster.ApplyList(msg.Characters)
	m.syncSidebar()
	return m, m.beginHistoryLoad()
}

func (m *Model) handleCharacterCreated(msg CharacterCreatedMsg) (tea.Model, tea.Cmd) {
	m.pendingCreate = false
	if msg.Err != nil {
		if state, ok := m.modal.State().(*modals.CreateCharacterState); ok {
			state.SetError(perrors.UserMessage(msg.Err))
			return m, nil
		}
		return m, m.ShowFlashError(perrors.UserMessage(msg.Err))
	}

	m.modal.Close()
	m.roster.ApplyCreated(msg.Character)
	m.syncSidebar()
	return m, tea.Batch(
		m.beginHistoryLoad(),
		m.ShowFlashSuccess("Created "+msg.Character.Name),
	)
}

func (m *Model) handleCharacterDeleted(msg CharacterDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m, m.ShowFlashError(perrors.UserMessage(msg.Err))
	}

	selectionChanged := m.roster.ApplyRemoved(msg.ID)
	m.syncSidebar()

	cmds := []tea.Cmd{m.ShowFlashSuccess("Deleted " + msg.Name)}
	if selectionChanged {
		cmds = append(cmds, m.beginHistoryLoad())
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleHistoryLoaded(msg HistoryLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if !m.convo.FailLoad(msg.Token) {
			return m, nil
		}
		m.refreshConversation()
		if perrors.Is(msg.Err, perrors.KindAuth) {
			return m, nil
		}
		return m, m.ShowFlashError(perrors.UserMessage(msg.Err))
	}

	if !m.convo.ApplyHistory(msg.Token, msg.Messages) {
		return m, nil
	}
	m.refreshConversation()
	return m, nil
}

func (m *Model) handleSendResult(msg SendResultMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if msg.Err != nil {
		applied, _ := m.convo.ApplySendFailure(msg.Dispatch)
		if !applied {
			return m, nil
		}
		m.chat.SetWaiting(false)
		m.refreshConversation()
		if !perrors.Is(msg.Err, perrors.KindAuth) {
			cmds = append(cmds, m.ShowFlashError(perrors.UserMessage(msg.Err)))
		}
	} else {
		if !m.convo.ApplySendReply(msg.Dispatch, msg.Reply) {
			return m, nil
		}
		m.chat.SetWaiting(false)
		m.refreshConversation()
		if !m.terminalFocused && m.config.GetNotificationsEnabled() {
			if c := m.roster.Get(msg.Dispatch.CharacterID); c != nil {
				cmds = append(cmds, notifyReplyCmd(c.Name))
			}
		}
	}

	// Drain the queue: the next send dispatches only now, so it can never
	// interleave with the exchange that just finished
	if d, ok := m.convo.NextQueued(time.Now()); ok {
		m.refreshConversation()
		m.chat.SetWaiting(true)
		cmds = append(cmds, m.sendMessageCmd(d), ui.StopwatchTick())
	}

	return m, tea.Batch(cmds...)
}

// enterDashboard switches to the dashboard and starts the roster fetch
func (m *Model) enterDashboard() tea.Cmd {
	m.screen = ScreenDashboard
	m.setFocus(FocusSidebar)

	if user := m.store.User(); user != nil {
		m.header.SetUsername(user.Username)
	}
	m.header.SetServer(serverHost(m.config.GetServerURL()))

	m.sidebar.SetLoading(true)
	return tea.Batch(m.loadCharactersCmd(), ui.SidebarTick())
}

// syncSidebar pushes the roster and selection into the sidebar view
func (m *Model) syncSidebar() {
	m.sidebar.SetCharacters(m.roster.Characters(), m.roster.SelectedID())
}

// beginHistoryLoad starts the history fetch for the selected character, or
// clears the conversation when nothing is selected
func (m *Model) beginHistoryLoad() tea.Cmd {
	sel := m.roster.Selected()
	if sel == nil {
		m.convo.Clear()
		m.chat.ClearConversation()
		return nil
	}

	token := m.convo.BeginLoad(sel.ID)
	m.chat.SetWaiting(false)
	m.chat.SetQueuedCount(0)
	m.chat.SetFailedSends(0)
	m.chat.SetLoading(sel.Name)
	return m.loadHistoryCmd(token)
}

// refreshConversation pushes the conversation state into the chat view
func (m *Model) refreshConversation() {
	sel := m.roster.Selected()
	if sel == nil {
		m.chat.ClearConversation()
		return
	}
	m.chat.SetConversation(sel.Name, m.convo.Messages())
	m.chat.SetQueuedCount(m.convo.QueuedCount())
	m.chat.SetFailedSends(m.convo.FailedSends())
}

// serverHost extracts the host shown in the header from the server URL
func serverHost(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		return u.Host
	}
	return raw
}
