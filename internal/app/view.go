package app

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/parley-chat/parley/internal/ui"
)

// updateSizes recalculates and applies dimensions to all UI components
func (m *Model) updateSizes() {
	ctx := ui.GetViewContext()
	ctx.UpdateTerminalSize(m.width, m.height)

	m.header.SetWidth(ctx.TerminalWidth)
	m.footer.SetWidth(ctx.TerminalWidth)
	m.sidebar.SetSize(ctx.SidebarWidth, ctx.ContentHeight)
	m.chat.SetSize(ctx.ChatWidth, ctx.ContentHeight)
	m.modal.SetSize(ctx.TerminalWidth, ctx.TerminalHeight)
	m.login.SetSize(ctx.TerminalWidth, ctx.TerminalHeight)
	m.register.SetSize(ctx.TerminalWidth, ctx.TerminalHeight)
}

// View renders the app
func (m *Model) View() tea.View {
	var v tea.View
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	v.ReportFocus = true

	if m.width == 0 || m.height == 0 {
		v.SetContent("Loading...")
		return v
	}

	switch m.screen {
	case ScreenResolving:
		v.SetContent(lipgloss.Place(
			m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			m.resolving.View()+" "+ui.StatusLoadingStyle.Render("Resolving session..."),
		))
	case ScreenLogin:
		v.SetContent(m.login.View())
	case ScreenRegister:
		v.SetContent(m.register.View())
	case ScreenDashboard:
		v.SetContent(m.dashboardView())
	}
	return v
}

// dashboardView renders the header, the two panels, and the footer. An open
// modal replaces the dashboard until it is dismissed.
func (m *Model) dashboardView() string {
	if m.modal.IsOpen() {
		return m.modal.View()
	}

	m.footer.SetContext(
		m.roster.Selected() != nil,
		m.focus == FocusSidebar,
		m.convo.IsSending(),
		m.modal.IsOpen(),
		m.sidebar.IsSearchMode(),
	)

	header := m.header.View()
	footer := m.footer.View()

	panels := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.sidebar.View(),
		m.chat.View(),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		panels,
		footer,
	)
}
