package main

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNotificationPreview(t *testing.T) {
	short := "See you at 2pm"
	if got := notificationPreview(short); got != short {
		t.Errorf("notificationPreview(%q) = %q, want it unchanged", short, got)
	}

	long := strings.Repeat("é", 200)
	got := notificationPreview(long)
	if utf8.RuneCountInString(got) != notificationPreviewLength {
		t.Errorf("notificationPreview() = %d runes, want %d", utf8.RuneCountInString(got), notificationPreviewLength)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("notificationPreview() = %q, want an ellipsis", got)
	}
}

func TestNotifyReply(t *testing.T) {
	tests := []struct {
		name      string
		enabled   bool
		contactID string
		notifyErr error
		wantCalls int
	}{
		{"Enabled", true, "1", nil, 1},
		{"Disabled", false, "1", nil, 0},
		{"Unknown contact", true, "nobody", nil, 0},
		{"Failure is swallowed", true, "2", errors.New("no dbus"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, nil)
			m.cfg.Notify = tt.enabled

			calls := 0
			m.notify = func(title, message string) error {
				calls++
				if title == "" || message != "On my way" {
					t.Errorf("notify(%q, %q), want the contact name and the reply", title, message)
				}
				return tt.notifyErr
			}

			m.notifyReply(replyMsg{contactID: tt.contactID, result: replyResult{content: "On my way"}})

			if calls != tt.wantCalls {
				t.Errorf("notify calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}
