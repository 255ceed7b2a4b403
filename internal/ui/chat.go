package ui

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/parley-chat/parley/internal/api"
)

// StopwatchTickMsg is sent to update the animated waiting display
type StopwatchTickMsg time.Time

// thinkingVerbs are playful status messages that cycle while waiting for a reply
var thinkingVerbs = []string{
	"Thinking",
	"Pondering",
	"Musing",
	"Reflecting",
	"Considering",
	"Composing",
	"Imagining",
	"Daydreaming",
	"Improvising",
	"Emoting",
}

// randomThinkingVerb returns a random verb from the list
func randomThinkingVerb() string {
	return thinkingVerbs[rand.Intn(len(thinkingVerbs))]
}

// spinnerFrames are the characters used for the shimmering spinner animation
var spinnerFrames = []string{"·", "✺", "✹", "✸", "✷", "✶", "✵", "✴", "✳", "✲", "✱", "✧", "✦", "·"}

// StopwatchTick returns a command that sends a tick message after a delay
func StopwatchTick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return StopwatchTickMsg(t)
	})
}

// Chat represents the right panel with the conversation view
type Chat struct {
	viewport viewport.Model
	input    textarea.Model
	width    int
	height   int
	focused  bool

	characterName string
	hasCharacter  bool
	messages      []api.Message
	loading       bool

	waiting       bool // A send is in flight
	waitStartTime time.Time
	waitingVerb   string
	spinnerFrame  int

	queuedCount int
	failedSends int
}

// NewChat creates a new chat panel
func NewChat() *Chat {
	ti := textarea.New()
	ti.Placeholder = "Type your message..."
	ti.CharLimit = 0
	ti.SetHeight(TextareaHeight)
	ti.ShowLineNumbers = false
	ti.Prompt = ""

	vp := viewport.New()
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	c := &Chat{
		viewport: vp,
		input:    ti,
		messages: []api.Message{},
	}
	c.updateContent()
	return c
}

// SetSize sets the chat panel dimensions
func (c *Chat) SetSize(width, height int) {
	c.width = width
	c.height = height

	viewCtx := GetViewContext()

	// Chat panel height excludes the input area, which renders separately
	chatPanelHeight := height - InputTotalHeight

	innerWidth := viewCtx.InnerWidth(width)
	viewportHeight := viewCtx.InnerHeight(chatPanelHeight)
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	c.viewport.SetWidth(innerWidth)
	c.viewport.SetHeight(viewportHeight)

	inputInnerWidth := viewCtx.InnerWidth(width) - InputPaddingWidth
	c.input.SetWidth(inputInnerWidth)

	c.updateContent()
}

// SetFocused sets the focus state
func (c *Chat) SetFocused(focused bool) {
	c.focused = focused
	if focused {
		c.input.Focus()
	} else {
		c.input.Blur()
	}
}

// IsFocused returns the focus state
func (c *Chat) IsFocused() bool {
	return c.focused
}

// SetConversation replaces the displayed conversation wholesale
func (c *Chat) SetConversation(characterName string, messages []api.Message) {
	c.characterName = characterName
	c.messages = messages
	c.hasCharacter = true
	c.loading = false
	c.updateContent()
	c.viewport.GotoBottom()
}

// SetLoading marks the conversation as waiting on its history fetch
func (c *Chat) SetLoading(characterName string) {
	c.characterName = characterName
	c.messages = nil
	c.hasCharacter = true
	c.loading = true
	c.updateContent()
}

// ClearConversation empties the panel when no character is selected
func (c *Chat) ClearConversation() {
	c.characterName = ""
	c.messages = nil
	c.hasCharacter = false
	c.loading = false
	c.waiting = false
	c.queuedCount = 0
	c.failedSends = 0
	c.updateContent()
}

// SetWaiting sets the reply-pending state
func (c *Chat) SetWaiting(waiting bool) {
	c.waiting = waiting
	if waiting {
		c.waitingVerb = randomThinkingVerb()
		c.spinnerFrame = 0
		c.waitStartTime = time.Now()
	}
	c.updateContent()
}

// IsWaiting returns whether a reply is pending
func (c *Chat) IsWaiting() bool {
	return c.waiting
}

// SetQueuedCount sets the number of sends waiting behind the in-flight one
func (c *Chat) SetQueuedCount(n int) {
	c.queuedCount = n
	c.updateContent()
}

// SetFailedSends sets the count of unanswered sends shown in the flag line
func (c *Chat) SetFailedSends(n int) {
	c.failedSends = n
	c.updateContent()
}

// GetInput returns the current input text
func (c *Chat) GetInput() string {
	return strings.TrimSpace(c.input.Value())
}

// ClearInput clears the input field
func (c *Chat) ClearInput() {
	c.input.Reset()
}

// HandleStopwatchTick advances the waiting animation. Returns the next tick
// command while a reply is still pending.
func (c *Chat) HandleStopwatchTick() tea.Cmd {
	if !c.waiting {
		return nil
	}
	c.spinnerFrame = (c.spinnerFrame + 1) % len(spinnerFrames)
	c.updateContent()
	return StopwatchTick()
}

// Update handles messages
func (c *Chat) Update(msg tea.Msg) (*Chat, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case StopwatchTickMsg:
		if cmd := c.HandleStopwatchTick(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case tea.KeyPressMsg:
		if !c.focused {
			break
		}
		var vpCmd, inCmd tea.Cmd
		c.viewport, vpCmd = c.viewport.Update(msg)
		c.input, inCmd = c.input.Update(msg)
		cmds = append(cmds, vpCmd, inCmd)
	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		c.viewport, cmd = c.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return c, tea.Batch(cmds...)
}

// formatTimestamp renders an epoch-milliseconds timestamp as local clock time
func formatTimestamp(millis int64) string {
	if millis == 0 {
		return ""
	}
	return time.UnixMilli(millis).Local().Format("3:04 PM")
}

// updateContent rebuilds the viewport content from the conversation
func (c *Chat) updateContent() {
	width := c.viewport.Width()
	if width <= 0 {
		width = DefaultWrapWidth
	}

	var b strings.Builder

	switch {
	case !c.hasCharacter:
		b.WriteString(lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true).
			Render("Select a character to start chatting."))

	case c.loading:
		frame := spinnerFrames[c.spinnerFrame%len(spinnerFrames)]
		b.WriteString(StatusLoadingStyle.Render(frame + " Loading conversation..."))

	case len(c.messages) == 0 && !c.waiting:
		b.WriteString(lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true).
			Render("Start a conversation with " + c.characterName + "."))

	default:
		for i, msg := range c.messages {
			if i > 0 {
				b.WriteString("\n")
			}

			label := ChatUserStyle.Render("You")
			if msg.Role == api.RoleModel {
				label = ChatCharacterStyle.Render(c.characterName)
			}
			if ts := formatTimestamp(msg.Timestamp); ts != "" {
				label += " " + ChatTimestampStyle.Render(ts)
			}
			b.WriteString(label + "\n")

			for _, line := range renderMessageBody(msg.Content, width) {
				b.WriteString(line + "\n")
			}
		}
	}

	if c.waiting {
		b.WriteString("\n" + c.renderWaitingStatus())
	}
	if c.queuedCount > 0 {
		b.WriteString("\n" + ChatTimestampStyle.Render(fmt.Sprintf("%d message(s) queued", c.queuedCount)))
	}
	if c.failedSends > 0 {
		b.WriteString("\n" + StatusErrorStyle.Render(fmt.Sprintf("! %d message(s) failed to send", c.failedSends)))
	}

	atBottom := c.viewport.AtBottom()
	c.viewport.SetContent(b.String())
	if atBottom {
		c.viewport.GotoBottom()
	}
}

// renderWaitingStatus renders the spinner line shown while a reply is pending.
// Format: ✺ Musing... (12s)
func (c *Chat) renderWaitingStatus() string {
	frame := spinnerFrames[c.spinnerFrame%len(spinnerFrames)]

	spinnerStyle := lipgloss.NewStyle().
		Foreground(ColorUser).
		Bold(true)
	verbStyle := lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Italic(true)
	metaStyle := lipgloss.NewStyle().
		Foreground(ColorTextMuted)

	elapsed := formatElapsed(time.Since(c.waitStartTime))
	return spinnerStyle.Render(frame) + " " + verbStyle.Render(c.waitingVerb+"...") + " " + metaStyle.Render("("+elapsed+")")
}

// formatElapsed formats a duration for display (e.g., "12s", "1m30s")
func formatElapsed(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	return fmt.Sprintf("%dm%ds", secs/60, secs%60)
}

// View renders the chat panel with its input area below
func (c *Chat) View() string {
	viewCtx := GetViewContext()

	panelStyle := PanelStyle
	inputStyle := ChatInputStyle
	if c.focused {
		panelStyle = PanelFocusedStyle
		inputStyle = ChatInputFocusedStyle
	}

	chatPanelHeight := c.height - InputTotalHeight

	title := ""
	if c.hasCharacter {
		title = PanelTitleStyle.Render(c.characterName)
	}

	body := c.viewport.View()
	if title != "" {
		innerHeight := viewCtx.InnerHeight(chatPanelHeight) - 1
		if innerHeight < 1 {
			innerHeight = 1
		}
		lines := strings.Split(body, "\n")
		if len(lines) > innerHeight {
			lines = lines[:innerHeight]
		}
		body = title + "\n" + strings.Join(lines, "\n")
	}

	panel := panelStyle.Width(c.width).Height(chatPanelHeight).Render(body)
	input := inputStyle.Width(c.width).Render(c.input.View())

	return lipgloss.JoinVertical(lipgloss.Left, panel, input)
}
