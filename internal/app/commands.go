package app

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/parley-chat/parley/internal/api"
	"github.com/parley-chat/parley/internal/convo"
	"github.com/parley-chat/parley/internal/logger"
	"github.com/parley-chat/parley/internal/notification"
)

// Network calls run inside commands so the update loop never blocks. Each
// command returns a typed result message carrying whatever context the
// handler needs to drop a stale outcome.

func (m *Model) resolveSessionCmd() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		err := store.Resolve(context.Background())
		return SessionResolvedMsg{Err: err}
	}
}

func (m *Model) loginCmd(email, password string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		err := store.Login(context.Background(), email, password)
		return LoginResultMsg{Err: err}
	}
}

func (m *Model) registerCmd(req api.RegisterRequest) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		err := store.Register(context.Background(), req)
		return RegisterResultMsg{Err: err}
	}
}

func (m *Model) updateProfileCmd(username string, image *api.ImageAttachment) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		err := store.UpdateProfile(context.Background(), username, image)
		return ProfileUpdatedMsg{Err: err}
	}
}

func (m *Model) loadCharactersCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		characters, err := client.ListCharacters(context.Background())
		return CharactersLoadedMsg{Characters: characters, Err: err}
	}
}

func (m *Model) createCharacterCmd(draft api.CharacterDraft) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		character, err := client.CreateCharacter(context.Background(), draft)
		return CharacterCreatedMsg{Character: character, Err: err}
	}
}

func (m *Model) deleteCharacterCmd(id, name string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.DeleteCharacter(context.Background(), id)
		return CharacterDeletedMsg{ID: id, Name: name, Err: err}
	}
}

func (m *Model) loadHistoryCmd(token convo.LoadToken) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		messages, err := client.ChatHistory(context.Background(), token.CharacterID)
		return HistoryLoadedMsg{Token: token, Messages: messages, Err: err}
	}
}

func (m *Model) sendMessageCmd(d convo.SendDispatch) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		reply, err := client.SendMessage(context.Background(), d.CharacterID, d.Text)
		return SendResultMsg{Dispatch: d, Reply: reply, Err: err}
	}
}

// notifyReplyCmd fires a desktop notification for a reply that landed while
// the terminal was unfocused
func notifyReplyCmd(characterName string) tea.Cmd {
	return func() tea.Msg {
		if err := notification.ReplyReceived(characterName); err != nil {
			logger.Warn("App: reply notification failed: %v", err)
		}
		return nil
	}
}
