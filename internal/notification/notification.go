// Package notification provides cross-platform desktop notifications.
// It uses the beeep library to send notifications on macOS, Linux, and Windows.
package notification

import (
	"github.com/gen2brain/beeep"

	"github.com/parley-chat/parley/internal/logger"
)

// notifyFunc is the function used to deliver notifications. Swappable in tests.
type notifyFunc func(title, message, appIcon string) error

var notify notifyFunc = beeep.Notify

// SetNotifier replaces the delivery function. Test hook.
func SetNotifier(fn func(title, message, appIcon string) error) {
	notify = fn
}

// ResetNotifier restores the default beeep delivery function.
func ResetNotifier() {
	notify = beeep.Notify
}

// Send sends a desktop notification with the given title and message.
// On macOS, it uses terminal-notifier or AppleScript.
// On Linux, it uses D-Bus or notify-send.
// On Windows, it uses the Windows Runtime COM API.
func Send(title, message string) error {
	logger.Log("Notification: Sending notification - title=%q, message=%q", title, message)
	// Empty icon - beeep handles platform defaults
	err := notify(title, message, "")
	if err != nil {
		logger.Log("Notification: Failed to send notification: %v", err)
	}
	return err
}

// ReplyReceived sends a notification that a character answered while the
// terminal was unfocused.
func ReplyReceived(characterName string) error {
	return Send("Parley", characterName+" replied")
}
