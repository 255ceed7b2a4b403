package app

import (
	"github.com/parley-chat/parley/internal/api"
	"github.com/parley-chat/parley/internal/convo"
)

// SessionResolvedMsg is sent when startup session resolution completes.
// The store already holds the outcome; the error is only informational.
type SessionResolvedMsg struct {
	Err error
}

// LoginResultMsg is sent when a login attempt completes
type LoginResultMsg struct {
	Err error
}

// RegisterResultMsg is sent when an account creation attempt completes
type RegisterResultMsg struct {
	Err error
}

// ProfileUpdatedMsg is sent when a profile update completes
type ProfileUpdatedMsg struct {
	Err error
}

// SessionExpiredMsg is sent from outside the update loop when any request
// comes back unauthorized. The transport has already torn the session down.
type SessionExpiredMsg struct{}

// CharactersLoadedMsg is sent when the roster fetch completes
type CharactersLoadedMsg struct {
	Characters []api.Character
	Err        error
}

// CharacterCreatedMsg is sent when a character create completes
type CharacterCreatedMsg struct {
	Character api.Character
	Err       error
}

// CharacterDeletedMsg is sent when a character delete completes
type CharacterDeletedMsg struct {
	ID   string
	Name string
	Err  error
}

// HistoryLoadedMsg is sent when a conversation history fetch completes.
// Token identifies which load this result answers; stale tokens are dropped.
type HistoryLoadedMsg struct {
	Token    convo.LoadToken
	Messages []api.Message
	Err      error
}

// SendResultMsg is sent when a message send completes. Dispatch identifies
// which send this result answers; stale dispatches are dropped.
type SendResultMsg struct {
	Dispatch convo.SendDispatch
	Reply    api.ChatReply
	Err      error
}
