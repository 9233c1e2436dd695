package main

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

type notifier func(title, message string) error

const notificationPreviewLength = 80

// sendNotification shows a desktop notification. beeep picks the mechanism of
// the platform (D-Bus or notify-send on Linux, the notification center on
// macOS, toasts on Windows).
func sendNotification(title, message string) error {
	return beeep.Notify(title, message, "")
}

// notifyReply tells the user that a contact answered in a conversation that is
// not on screen. Failures are only logged.
func (m mainModel) notifyReply(msg replyMsg) {
	if !m.cfg.Notify || m.notify == nil {
		return
	}

	c, ok := m.store.contact(msg.contactID)
	if !ok {
		return
	}

	if err := m.notify(c.Name, notificationPreview(msg.result.content)); err != nil {
		slog.Warn("failed to send notification", "contact", c.ID, "error", err)
	}
}

func notificationPreview(content string) string {
	runes := []rune(content)
	if len(runes) <= notificationPreviewLength {
		return content
	}
	return string(runes[:notificationPreviewLength-1]) + "…"
}
