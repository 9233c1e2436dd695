package main

import (
	"testing"
)

func TestLoadContacts(t *testing.T) {
	contacts, err := loadContacts("")
	if err != nil {
		t.Fatalf("loadContacts(\"\") error = %v", err)
	}
	if len(contacts) != len(defaultContacts) {
		t.Errorf("loadContacts(\"\") = %d contacts, want the %d built-in ones", len(contacts), len(defaultContacts))
	}

	path := writeTempFile(t, "contacts.json", []byte(`[
		{"id": "a", "name": "Alex", "status": "Online"},
		{"id": "b", "name": "Sarah", "lastMessage": "ok!", "lastMessageTime": "09:12"}
	]`))

	contacts, err = loadContacts(path)
	if err != nil {
		t.Fatalf("loadContacts() error = %v", err)
	}
	if len(contacts) != 2 || contacts[1].Name != "Sarah" || contacts[1].LastMessageTime != "09:12" {
		t.Errorf("loadContacts() = %+v, want Alex and Sarah", contacts)
	}
}

func TestLoadContactsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"Malformed JSON", `[{"id": "a"`},
		{"Empty list", `[]`},
		{"Missing id", `[{"name": "Alex"}]`},
		{"Reserved id", `[{"id": "me", "name": "Myself"}]`},
		{"Missing name", `[{"id": "a"}]`},
		{"Duplicate id", `[{"id": "a", "name": "Alex"}, {"id": "a", "name": "Sarah"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, "contacts.json", []byte(tt.data))
			if _, err := loadContacts(path); err == nil {
				t.Errorf("loadContacts() error = nil, want an error")
			}
		})
	}

	if _, err := loadContacts("/nonexistent/contacts.json"); err == nil {
		t.Errorf("loadContacts() on a missing file error = nil, want an error")
	}
}

func TestContactItem(t *testing.T) {
	tests := []struct {
		name     string
		item     contactItem
		wantDesc string
	}{
		{"Seeded preview", contactItem{contact: defaultContacts[3]}, "Alex: See you at 2pm?"},
		{"Typing", contactItem{contact: defaultContacts[3], typing: true}, "typing..."},
		{"New contact", contactItem{contact: contact{ID: "9", Name: "Sam"}}, "Tap to chat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Description(); got != tt.wantDesc {
				t.Errorf("Description() = %q, want %q", got, tt.wantDesc)
			}
		})
	}

	if got := (contactItem{contact: defaultContacts[0]}).Title(); got != "Marie (AI Assistant) · 10:30" {
		t.Errorf("Title() = %q", got)
	}
}
