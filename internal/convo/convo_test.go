package convo

import (
	"testing"
	"time"

	"github.com/parley-chat/parley/internal/api"
)

var now = time.UnixMilli(1700000000000)

func TestBeginLoad_DiscardsPreviousConversation(t *testing.T) {
	m := New()
	tok := m.BeginLoad("a")
	m.ApplyHistory(tok, []api.Message{{Content: "hi", Role: api.RoleUser}})

	m.BeginLoad("b")
	if m.Len() != 0 {
		t.Errorf("expected empty conversation after switch, got %d messages", m.Len())
	}
	if !m.IsLoading() {
		t.Error("expected loading flag set")
	}
	if m.CharacterID() != "b" {
		t.Errorf("expected character b, got %q", m.CharacterID())
	}
}

func TestApplyHistory_ReplacesWholesale(t *testing.T) {
	m := New()
	tok := m.BeginLoad("a")
	m.ApplyHistory(tok, []api.Message{{Content: "old", Role: api.RoleUser}})

	tok = m.BeginLoad("a")
	applied := m.ApplyHistory(tok, []api.Message{
		{Content: "one", Role: api.RoleUser},
		{Content: "two", Role: api.RoleModel},
	})
	if !applied {
		t.Fatal("expected fresh history applied")
	}
	msgs := m.Messages()
	if len(msgs) != 2 || msgs[0].Content != "one" {
		t.Errorf("expected wholesale replace, got %v", msgs)
	}
	if m.IsLoading() {
		t.Error("expected loading flag cleared")
	}
}

func TestApplyHistory_DropsStaleResult(t *testing.T) {
	m := New()
	stale := m.BeginLoad("a")
	m.BeginLoad("b")

	applied := m.ApplyHistory(stale, []api.Message{{Content: "from a", Role: api.RoleModel}})
	if applied {
		t.Fatal("expected stale history dropped")
	}
	if m.Len() != 0 {
		t.Errorf("expected b's conversation untouched, got %d messages", m.Len())
	}
	if !m.IsLoading() {
		t.Error("expected b's load still pending")
	}
}

func TestApplyHistory_DropsResultAfterClear(t *testing.T) {
	m := New()
	tok := m.BeginLoad("a")
	m.Clear()

	if m.ApplyHistory(tok, []api.Message{{Content: "late", Role: api.RoleModel}}) {
		t.Error("expected result dropped after clear")
	}
	if m.Len() != 0 {
		t.Error("expected conversation still empty")
	}
}

func TestSend_EmptyTextIsNoOp(t *testing.T) {
	m := New()
	tok := m.BeginLoad("a")
	m.ApplyHistory(tok, nil)

	if _, ok := m.Send("   \n\t", now); ok {
		t.Error("expected whitespace-only send rejected")
	}
	if m.Len() != 0 {
		t.Error("expected no optimistic append")
	}
	if m.IsSending() {
		t.Error("expected no send in flight")
	}
}

func TestSend_NoSelectionIsNoOp(t *testing.T) {
	m := New()
	if _, ok := m.Send("hello", now); ok {
		t.Error("expected send rejected with no character selected")
	}
}

func TestSend_AppendsOptimisticUserMessage(t *testing.T) {
	m := New()
	tok := m.BeginLoad("a")
	m.ApplyHistory(tok, nil)

	d, ok := m.Send("  hello there  ", now)
	if !ok {
		t.Fatal("expected dispatch")
	}
	if d.Text != "hello there" {
		t.Errorf("expected trimmed text, got %q", d.Text)
	}
	if d.CharacterID != "a" {
		t.Errorf("expected dispatch for a, got %q", d.CharacterID)
	}
	msgs := m.Messages()
	if len(msgs) != 1 || msgs[0].Role != api.RoleUser || msgs[0].Content != "hello there" {
		t.Errorf("expected optimistic user message, got %v", msgs)
	}
	if msgs[0].Timestamp != now.UnixMilli() {
		t.Errorf("expected local timestamp, got %d", msgs[0].Timestamp)
	}
	if !m.IsSending() {
		t.Error("expected send in flight")
	}
}

func TestSend_SecondSendQueuesBehindInFlight(t *testing.T) {
	m := New()
	tok := m.BeginLoad("a")
	m.ApplyHistory(tok, nil)

	first, _ := m.Send("first", now)
	if _, ok := m.Send("second", now); ok {
		t.Fatal("expected second send queued, not dispatched")
	}
	if m.QueuedCount() != 1 {
		t.Errorf("expected 1 queued, got %d", m.QueuedCount())
	}
	if m.Len() != 1 {
		t.Errorf("expected only first optimistic append, got %d messages", m.Len())
	}

	// Reply lands; the queued send dispatches after it.
	m.ApplySendReply(first, api.ChatReply{Response: "reply one", Timestamp: 42})
	second, ok := m.NextQueued(now)
	if !ok {
		t.Fatal("expected queued send dispatched")
	}
	if second.Text != "second" {
		t.Errorf("expected queued text, got %q", second.Text)
	}

	msgs := m.Messages()
	want := []struct {
		role    string
		content string
	}{
		{api.RoleUser, "first"},
		{api.RoleModel, "reply one"},
		{api.RoleUser, "second"},
	}
	if len(msgs) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(msgs))
	}
	for i, w := range want {
		if msgs[i].Role != w.role || msgs[i].Content != w.content {
			t.Errorf("message %d: expected %s %q, got %s %q", i, w.role, w.content, msgs[i].Role, msgs[i].Content)
		}
	}
}

func TestApplySendReply_AppendsModelMessage(t *testing.T) {
	m := New()
	tok := m.BeginLoad("a")
	m.ApplyHistory(tok, nil)

	d, _ := m.Send("hi", now)
	if !m.ApplySendReply(d, api.ChatReply{Response: "hello!", Timestamp: 99}) {
		t.Fatal("expected reply applied")
	}
	msgs := m.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[1].Role != api.RoleModel || msgs[1].Content != "hello!" || msgs[1].Timestamp != 99 {
		t.Errorf("unexpected model message: %+v", msgs[1])
	}
	if m.IsSending() {
		t.Error("expected send cleared")
	}
}

func TestApplySendReply_DropsStaleReply(t *testing.T) {
	m := New()
	tok := m.BeginLoad("a")
	m.ApplyHistory(tok, nil)
	d, _ := m.Send("hi", now)

	m.BeginLoad("b")
	if m.ApplySendReply(d, api.ChatReply{Response: "late"}) {
		t.Error("expected stale reply dropped")
	}
	if m.Len() != 0 {
		t.Error("expected b's conversation untouched")
	}
}

func TestApplySendFailure_DefaultKeepsOptimisticMessage(t *testing.T) {
	m := New()
	tok := m.BeginLoad("a")
	m.ApplyHistory(tok, nil)
	d, _ := m.Send("hi", now)

	applied, rolledBack := m.ApplySendFailure(d)
	if !applied || rolledBack {
		t.Fatalf("expected applied without rollback, got applied=%v rolledBack=%v", applied, rolledBack)
	}
	if m.Len() != 1 {
		t.Errorf("expected optimistic message kept, got %d messages", m.Len())
	}
	if m.FailedSends() != 1 {
		t.Errorf("expected failed send counted, got %d", m.FailedSends())
	}
	if m.IsSending() {
		t.Error("expected send cleared")
	}
}

func TestApplySendFailure_RollbackRemovesOptimisticMessage(t *testing.T) {
	m := New()
	m.SetRollbackOnFailure(true)
	tok := m.BeginLoad("a")
	m.ApplyHistory(tok, []api.Message{{Content: "earlier", Role: api.RoleModel}})
	d, _ := m.Send("doomed", now)

	applied, rolledBack := m.ApplySendFailure(d)
	if !applied || !rolledBack {
		t.Fatalf("expected rollback, got applied=%v rolledBack=%v", applied, rolledBack)
	}
	msgs := m.Messages()
	if len(msgs) != 1 || msgs[0].Content != "earlier" {
		t.Errorf("expected only prior history left, got %v", msgs)
	}
	if m.FailedSends() != 0 {
		t.Errorf("expected no failure flag after rollback, got %d", m.FailedSends())
	}
}

func TestApplySendFailure_DropsStaleFailure(t *testing.T) {
	m := New()
	tok := m.BeginLoad("a")
	m.ApplyHistory(tok, nil)
	d, _ := m.Send("hi", now)

	m.Clear()
	applied, _ := m.ApplySendFailure(d)
	if applied {
		t.Error("expected stale failure dropped")
	}
}

func TestNextQueued_FailedSendStillDrainsQueue(t *testing.T) {
	m := New()
	tok := m.BeginLoad("a")
	m.ApplyHistory(tok, nil)

	first, _ := m.Send("first", now)
	m.Send("second", now)

	m.ApplySendFailure(first)
	d, ok := m.NextQueued(now)
	if !ok {
		t.Fatal("expected queued send dispatched after failure")
	}
	if d.Text != "second" {
		t.Errorf("expected second queued text, got %q", d.Text)
	}
}

func TestBeginLoad_DropsQueuedSends(t *testing.T) {
	m := New()
	tok := m.BeginLoad("a")
	m.ApplyHistory(tok, nil)
	m.Send("first", now)
	m.Send("second", now)

	m.BeginLoad("b")
	if m.QueuedCount() != 0 {
		t.Errorf("expected queue dropped on switch, got %d", m.QueuedCount())
	}
	if _, ok := m.NextQueued(now); ok {
		t.Error("expected nothing to dispatch for new character")
	}
}
