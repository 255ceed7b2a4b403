package app

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/parley-chat/parley/internal/api"
	"github.com/parley-chat/parley/internal/auth"
	"github.com/parley-chat/parley/internal/config"
)

var sendTime = time.UnixMilli(1700000000000)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	store := auth.NewStore(cfg)
	client := api.New(cfg.GetServerURL(), store)
	store.AttachClient(client)

	m := New(cfg, client, store, "test")
	m.width = 100
	m.height = 40
	return m
}

func chars(ids ...string) []api.Character {
	out := make([]api.Character, len(ids))
	for i, id := range ids {
		out[i] = api.Character{ID: id, Name: "Character " + id}
	}
	return out
}

func TestSessionResolvedWithoutUserShowsLogin(t *testing.T) {
	m := newTestModel(t)

	m.Update(SessionResolvedMsg{})

	if m.screen != ScreenLogin {
		t.Errorf("screen = %v, want %v", m.screen, ScreenLogin)
	}
}

func TestCharactersLoadedSelectsFirstAndStartsHistoryLoad(t *testing.T) {
	m := newTestModel(t)
	m.screen = ScreenDashboard

	_, cmd := m.Update(CharactersLoadedMsg{Characters: chars("a", "b")})

	if got := m.roster.SelectedID(); got != "a" {
		t.Errorf("selected = %q, want %q", got, "a")
	}
	if !m.convo.IsLoading() {
		t.Error("expected a history load to be in flight")
	}
	if got := m.convo.CharacterID(); got != "a" {
		t.Errorf("conversation character = %q, want %q", got, "a")
	}
	if cmd == nil {
		t.Error("expected a history fetch command")
	}
}

func TestCharactersLoadedEmptyClearsConversation(t *testing.T) {
	m := newTestModel(t)
	m.screen = ScreenDashboard
	m.roster.ApplyList(chars("a"))
	m.convo.BeginLoad("a")

	m.Update(CharactersLoadedMsg{Characters: nil})

	if got := m.roster.SelectedID(); got != "" {
		t.Errorf("selected = %q, want empty", got)
	}
	if got := m.convo.CharacterID(); got != "" {
		t.Errorf("conversation character = %q, want empty", got)
	}
}

func TestStaleHistoryResultDropped(t *testing.T) {
	m := newTestModel(t)
	m.screen = ScreenDashboard
	m.roster.ApplyList(chars("a", "b"))

	tokenA := m.convo.BeginLoad("a")
	m.roster.Select("b")
	tokenB := m.convo.BeginLoad("b")

	m.Update(HistoryLoadedMsg{Token: tokenA, Messages: []api.Message{
		{Content: "old", Role: api.RoleUser},
	}})

	if m.convo.Len() != 0 {
		t.Fatalf("stale history applied: %d messages", m.convo.Len())
	}

	m.Update(HistoryLoadedMsg{Token: tokenB, Messages: []api.Message{
		{Content: "hello", Role: api.RoleUser},
		{Content: "hi there", Role: api.RoleModel},
	}})

	if m.convo.Len() != 2 {
		t.Errorf("current history not applied: %d messages", m.convo.Len())
	}
	if got := m.convo.CharacterID(); got != "b" {
		t.Errorf("conversation character = %q, want %q", got, "b")
	}
}

func TestSendReplyAppendsAndFinishes(t *testing.T) {
	m := newTestModel(t)
	m.screen = ScreenDashboard
	m.roster.ApplyList(chars("a"))
	m.convo.BeginLoad("a")
	m.convo.ApplyHistory(m.convo.BeginLoad("a"), nil)

	d, ok := m.convo.Send("hello", sendTime)
	if !ok {
		t.Fatal("Send did not dispatch")
	}

	m.Update(SendResultMsg{Dispatch: d, Reply: api.ChatReply{Response: "hi", Timestamp: 42}})

	if m.convo.Len() != 2 {
		t.Fatalf("messages = %d, want 2", m.convo.Len())
	}
	if m.convo.IsSending() {
		t.Error("send still marked in flight")
	}
}

func TestQueuedSendDispatchesAfterReply(t *testing.T) {
	m := newTestModel(t)
	m.screen = ScreenDashboard
	m.roster.ApplyList(chars("a"))
	m.convo.ApplyHistory(m.convo.BeginLoad("a"), nil)

	d1, _ := m.convo.Send("first", sendTime)
	if _, ok := m.convo.Send("second", sendTime); ok {
		t.Fatal("second send should have queued")
	}

	_, cmd := m.Update(SendResultMsg{Dispatch: d1, Reply: api.ChatReply{Response: "reply one", Timestamp: 1}})

	if cmd == nil {
		t.Fatal("expected the queued send to dispatch")
	}
	msgs := m.convo.Messages()
	if len(msgs) != 3 {
		t.Fatalf("messages = %d, want 3", len(msgs))
	}
	if msgs[0].Content != "first" || msgs[1].Content != "reply one" || msgs[2].Content != "second" {
		t.Errorf("unexpected order: %q, %q, %q", msgs[0].Content, msgs[1].Content, msgs[2].Content)
	}
	if !m.convo.IsSending() {
		t.Error("queued send not marked in flight")
	}
}

func TestSendFailureKeepsOptimisticMessage(t *testing.T) {
	m := newTestModel(t)
	m.screen = ScreenDashboard
	m.roster.ApplyList(chars("a"))
	m.convo.ApplyHistory(m.convo.BeginLoad("a"), nil)

	d, _ := m.convo.Send("hello", sendTime)
	m.Update(SendResultMsg{Dispatch: d, Err: errors.New("Failed to send message")})

	if m.convo.Len() != 1 {
		t.Errorf("messages = %d, want the optimistic message kept", m.convo.Len())
	}
	if m.convo.FailedSends() != 1 {
		t.Errorf("failed sends = %d, want 1", m.convo.FailedSends())
	}
	if m.convo.IsSending() {
		t.Error("send still marked in flight")
	}
}

func TestStaleSendResultDropped(t *testing.T) {
	m := newTestModel(t)
	m.screen = ScreenDashboard
	m.roster.ApplyList(chars("a", "b"))
	m.convo.ApplyHistory(m.convo.BeginLoad("a"), nil)

	d, _ := m.convo.Send("hello", sendTime)

	// Selection moves on while the send is in flight
	m.roster.Select("b")
	m.convo.ApplyHistory(m.convo.BeginLoad("b"), nil)

	m.Update(SendResultMsg{Dispatch: d, Reply: api.ChatReply{Response: "late", Timestamp: 1}})

	if m.convo.Len() != 0 {
		t.Errorf("stale reply written into the wrong conversation: %d messages", m.convo.Len())
	}
}

func TestCharacterCreatedAppendsSelectsAndClosesModal(t *testing.T) {
	m := newTestModel(t)
	m.screen = ScreenDashboard
	m.roster.ApplyList(chars("a"))
	m.pendingCreate = true

	m.Update(CharacterCreatedMsg{Character: api.Character{ID: "b", Name: "Brand New"}})

	if m.pendingCreate {
		t.Error("pendingCreate not cleared")
	}
	if m.modal.IsOpen() {
		t.Error("modal still open")
	}
	if got := m.roster.SelectedID(); got != "b" {
		t.Errorf("selected = %q, want %q", got, "b")
	}
	if m.roster.Len() != 2 {
		t.Errorf("roster size = %d, want 2", m.roster.Len())
	}
}

func TestCharacterDeletedFallsBackToFirst(t *testing.T) {
	m := newTestModel(t)
	m.screen = ScreenDashboard
	m.roster.ApplyList(chars("a", "b"))

	_, cmd := m.Update(CharacterDeletedMsg{ID: "a", Name: "Character a"})

	if got := m.roster.SelectedID(); got != "b" {
		t.Errorf("selected = %q, want %q", got, "b")
	}
	if cmd == nil {
		t.Error("expected a history load for the fallback selection")
	}
}

func TestDeleteLastCharacterClearsConversation(t *testing.T) {
	m := newTestModel(t)
	m.screen = ScreenDashboard
	m.roster.ApplyList(chars("a"))
	m.convo.ApplyHistory(m.convo.BeginLoad("a"), []api.Message{{Content: "hi", Role: api.RoleUser}})

	m.Update(CharacterDeletedMsg{ID: "a", Name: "Character a"})

	if got := m.roster.SelectedID(); got != "" {
		t.Errorf("selected = %q, want empty", got)
	}
	if m.convo.Len() != 0 || m.convo.CharacterID() != "" {
		t.Error("conversation not cleared after deleting the last character")
	}
}

func TestSessionExpiredResetsToLogin(t *testing.T) {
	m := newTestModel(t)
	m.screen = ScreenDashboard
	m.roster.ApplyList(chars("a", "b"))
	m.convo.ApplyHistory(m.convo.BeginLoad("a"), []api.Message{{Content: "hi", Role: api.RoleUser}})

	m.Update(SessionExpiredMsg{})

	if m.screen != ScreenLogin {
		t.Errorf("screen = %v, want %v", m.screen, ScreenLogin)
	}
	if m.roster.Len() != 0 {
		t.Errorf("roster size = %d, want 0", m.roster.Len())
	}
	if m.convo.Len() != 0 || m.convo.CharacterID() != "" {
		t.Error("conversation survived session teardown")
	}
}

func TestEmptySendIsNoOp(t *testing.T) {
	m := newTestModel(t)
	m.screen = ScreenDashboard
	m.roster.ApplyList(chars("a"))
	m.convo.ApplyHistory(m.convo.BeginLoad("a"), nil)

	if cmd := m.handleSend(); cmd != nil {
		t.Error("empty input produced a send command")
	}
	if m.convo.Len() != 0 {
		t.Errorf("messages = %d, want 0", m.convo.Len())
	}
}
