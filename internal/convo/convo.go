// Package convo owns the ordered message history for the selected character.
//
// The conversation is replaced wholesale whenever the selection changes;
// histories are never merged across characters. Sends are optimistic: the
// user's message is appended before the server confirms, and by default it
// stays visible even when the send fails (configurable via
// SetRollbackOnFailure). Sends serialize per character: while one is in
// flight, further sends queue and dispatch only after the reply lands, so a
// second send can never interleave between another send's optimistic append
// and its confirmed reply.
//
// Every asynchronous result is matched against a generation token minted
// when the conversation context was established. Switching characters bumps
// the generation, so a history fetch or send reply that resolves late is
// dropped instead of writing into the wrong conversation.
package convo

import (
	"strings"
	"time"

	"github.com/parley-chat/parley/internal/api"
	"github.com/parley-chat/parley/internal/logger"
)

// LoadToken identifies an in-flight history fetch.
type LoadToken struct {
	CharacterID string
	Gen         int
}

// SendDispatch identifies a message send the orchestrator should put on the
// wire, with the context needed to drop a stale result.
type SendDispatch struct {
	CharacterID string
	Text        string
	Gen         int
}

// Manager holds the conversation state for the selected character.
type Manager struct {
	characterID string
	messages    []api.Message
	gen         int // bumped on every context switch; stale results carry an older value

	sending  bool
	queue    []string
	rollback bool // remove the optimistic message when its send fails
	loading  bool

	failedSends int // sends whose reply never arrived, kept for the UI flag
}

// New creates an empty conversation manager.
func New() *Manager {
	return &Manager{}
}

// SetRollbackOnFailure sets whether a failed send removes its optimistic
// user message. Off by default: the user's own text stays visible.
func (m *Manager) SetRollbackOnFailure(enabled bool) {
	m.rollback = enabled
}

// CharacterID returns the character this conversation belongs to.
func (m *Manager) CharacterID() string {
	return m.characterID
}

// Messages returns a copy of the conversation in append order.
func (m *Manager) Messages() []api.Message {
	out := make([]api.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Len returns the number of messages.
func (m *Manager) Len() int {
	return len(m.messages)
}

// IsSending reports whether a send is in flight.
func (m *Manager) IsSending() bool {
	return m.sending
}

// IsLoading reports whether a history fetch is in flight.
func (m *Manager) IsLoading() bool {
	return m.loading
}

// QueuedCount returns the number of sends waiting behind the in-flight one.
func (m *Manager) QueuedCount() int {
	return len(m.queue)
}

// FailedSends returns the number of sends in this conversation that never
// got a reply. Nonzero means the visible history contains user messages the
// model never answered.
func (m *Manager) FailedSends() int {
	return m.failedSends
}

// BeginLoad switches the conversation context to a character and returns the
// token its history fetch must present. The previous conversation is
// discarded immediately, and any in-flight work for it is invalidated.
func (m *Manager) BeginLoad(characterID string) LoadToken {
	m.gen++
	m.characterID = characterID
	m.messages = nil
	m.sending = false
	m.queue = nil
	m.loading = true
	m.failedSends = 0
	logger.Debug("Convo: loading history for %s (gen %d)", characterID, m.gen)
	return LoadToken{CharacterID: characterID, Gen: m.gen}
}

// Clear empties the conversation without a network call. Used when the
// selection becomes empty.
func (m *Manager) Clear() {
	m.gen++
	m.characterID = ""
	m.messages = nil
	m.sending = false
	m.queue = nil
	m.loading = false
	m.failedSends = 0
}

// ApplyHistory folds a fetched history into the conversation, replacing it
// wholesale. A result carrying a stale token is dropped: the selection moved
// on while the fetch was in flight. Returns whether the result was applied.
func (m *Manager) ApplyHistory(token LoadToken, messages []api.Message) bool {
	if token.Gen != m.gen || token.CharacterID != m.characterID {
		logger.Debug("Convo: dropping stale history for %s (gen %d, current %d)", token.CharacterID, token.Gen, m.gen)
		return false
	}
	m.messages = make([]api.Message, len(messages))
	copy(m.messages, messages)
	m.loading = false
	return true
}

// FailLoad marks a history fetch as finished unsuccessfully. Stale failures
// are ignored like stale successes.
func (m *Manager) FailLoad(token LoadToken) bool {
	if token.Gen != m.gen || token.CharacterID != m.characterID {
		return false
	}
	m.loading = false
	return true
}

// Send accepts message text for the current character. Whitespace-only text
// or an empty selection is a no-op. If no send is in flight, the user
// message is appended optimistically and a dispatch returned; otherwise the
// text queues behind the in-flight send.
func (m *Manager) Send(content string, now time.Time) (SendDispatch, bool) {
	text := strings.TrimSpace(content)
	if text == "" || m.characterID == "" {
		return SendDispatch{}, false
	}

	if m.sending {
		m.queue = append(m.queue, text)
		logger.Debug("Convo: queued send for %s (%d waiting)", m.characterID, len(m.queue))
		return SendDispatch{}, false
	}

	return m.dispatch(text, now), true
}

// NextQueued pops the next queued send, appending its optimistic message.
// Called after a send completes (successfully or not). Returns false when
// the queue is empty.
func (m *Manager) NextQueued(now time.Time) (SendDispatch, bool) {
	if m.sending || len(m.queue) == 0 {
		return SendDispatch{}, false
	}
	text := m.queue[0]
	m.queue = m.queue[1:]
	return m.dispatch(text, now), true
}

func (m *Manager) dispatch(text string, now time.Time) SendDispatch {
	m.messages = append(m.messages, api.Message{
		Content:   text,
		Role:      api.RoleUser,
		Timestamp: now.UnixMilli(),
	})
	m.sending = true
	return SendDispatch{CharacterID: m.characterID, Text: text, Gen: m.gen}
}

// ApplySendReply appends the model's confirmed reply. A reply carrying a
// stale dispatch is dropped; the optimistic message it answered was already
// discarded with its conversation. Returns whether the reply was applied.
func (m *Manager) ApplySendReply(d SendDispatch, reply api.ChatReply) bool {
	if d.Gen != m.gen || d.CharacterID != m.characterID {
		logger.Debug("Convo: dropping stale reply for %s", d.CharacterID)
		return false
	}
	m.messages = append(m.messages, api.Message{
		Content:   reply.Response,
		Role:      api.RoleModel,
		Timestamp: reply.Timestamp,
	})
	m.sending = false
	return true
}

// ApplySendFailure records a failed send. Under the default policy the
// optimistic user message stays and the failure is counted for the UI flag;
// with rollback enabled the message is removed instead. Returns whether the
// failure applied (false for stale dispatches) and whether a rollback
// happened.
func (m *Manager) ApplySendFailure(d SendDispatch) (applied, rolledBack bool) {
	if d.Gen != m.gen || d.CharacterID != m.characterID {
		return false, false
	}
	m.sending = false

	if m.rollback {
		// The optimistic message is the last user entry; nothing can have
		// appended after it while its send was in flight.
		for i := len(m.messages) - 1; i >= 0; i-- {
			if m.messages[i].Role == api.RoleUser && m.messages[i].Content == d.Text {
				m.messages = append(m.messages[:i], m.messages[i+1:]...)
				return true, true
			}
		}
		return true, false
	}

	m.failedSends++
	return true, false
}
