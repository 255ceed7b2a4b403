package notification

import (
	"errors"
	"testing"
)

func TestSendUsesNotifier(t *testing.T) {
	var gotTitle, gotMessage string
	SetNotifier(func(title, message, appIcon string) error {
		gotTitle = title
		gotMessage = message
		return nil
	})
	defer ResetNotifier()

	if err := Send("Parley", "hello"); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if gotTitle != "Parley" {
		t.Errorf("title = %q, want %q", gotTitle, "Parley")
	}
	if gotMessage != "hello" {
		t.Errorf("message = %q, want %q", gotMessage, "hello")
	}
}

func TestSendPropagatesError(t *testing.T) {
	want := errors.New("no notification daemon")
	SetNotifier(func(title, message, appIcon string) error {
		return want
	})
	defer ResetNotifier()

	if err := Send("Parley", "hello"); !errors.Is(err, want) {
		t.Errorf("Send error = %v, want %v", err, want)
	}
}

func TestReplyReceived(t *testing.T) {
	var gotTitle, gotMessage string
	SetNotifier(func(title, message, appIcon string) error {
		gotTitle = title
		gotMessage = message
		return nil
	})
	defer ResetNotifier()

	if err := ReplyReceived("Mira"); err != nil {
		t.Fatalf("ReplyReceived returned error: %v", err)
	}
	if gotTitle != "Parley" {
		t.Errorf("title = %q, want %q", gotTitle, "Parley")
	}
	if gotMessage != "Mira replied" {
		t.Errorf("message = %q, want %q", gotMessage, "Mira replied")
	}
}
