package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type contact struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Avatar          string `json:"avatar"`
	Status          string `json:"status"`
	LastMessage     string `json:"lastMessage,omitempty"`
	LastMessageTime string `json:"lastMessageTime,omitempty"`
}

// contactItem is a contact as shown in the contact list.
type contactItem struct {
	contact
	typing bool
}

const contactsFooter = "Your personal messages are end-to-end encrypted (simulated)."

var defaultContacts = []contact{
	{
		ID:              "1",
		Name:            "Marie (AI Assistant)",
		Avatar:          "https://picsum.photos/200/200?random=1",
		Status:          "Online",
		LastMessage:     "Hi! How can I help you?",
		LastMessageTime: "10:30",
	},
	{
		ID:              "2",
		Name:            "Thomas (Tech)",
		Avatar:          "https://picsum.photos/200/200?random=2",
		Status:          "At work",
		LastMessage:     "I can review your code if you want.",
		LastMessageTime: "Yesterday",
	},
	{
		ID:              "3",
		Name:            "Sophie (Design)",
		Avatar:          "https://picsum.photos/200/200?random=3",
		Status:          "Available",
		LastMessage:     "Send me the logo.",
		LastMessageTime: "Monday",
	},
	{
		ID:              "4",
		Name:            "Project Group",
		Avatar:          "https://picsum.photos/200/200?random=4",
		Status:          "Alex, Sarah, You...",
		LastMessage:     "Alex: See you at 2pm?",
		LastMessageTime: "Tuesday",
	},
}

// loadContacts reads the contact seed from a JSON file. An empty path yields
// the built-in contacts.
func loadContacts(path string) ([]contact, error) {
	if path == "" {
		return defaultContacts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading contacts file: %w", err)
	}

	var contacts []contact
	if err := json.Unmarshal(data, &contacts); err != nil {
		return nil, fmt.Errorf("error decoding contacts file: %w", err)
	}

	if err := validateContacts(contacts); err != nil {
		return nil, err
	}

	return contacts, nil
}

func validateContacts(contacts []contact) error {
	if len(contacts) == 0 {
		return errors.New("contacts file has no contacts")
	}

	seen := make(map[string]bool, len(contacts))
	for i, c := range contacts {
		if c.ID == "" {
			return fmt.Errorf("contact %d has no id", i)
		}
		if c.ID == localSender {
			return fmt.Errorf("contact %d uses the reserved id %q", i, localSender)
		}
		if c.Name == "" {
			return fmt.Errorf("contact %q has no name", c.ID)
		}
		if seen[c.ID] {
			return fmt.Errorf("duplicate contact id %q", c.ID)
		}
		seen[c.ID] = true
	}

	return nil
}

func (m mainModel) initContacts() mainModel {
	m.contactsList = defaultList("WhatsChat", m.keymap, func() []key.Binding {
		return []key.Binding{
			m.keymap.options,
		}
	}, func() []key.Binding {
		return []key.Binding{
			m.keymap.options,
			m.keymap.pick,
		}
	})
	m.contactsList.SetStatusBarItemName("contact", "contacts")

	return m.refreshContactItems()
}

// refreshContactItems rebuilds the rows, so the typing state of every
// contact stays current.
func (m mainModel) refreshContactItems() mainModel {
	items := make([]list.Item, len(m.store.contacts))
	for i, c := range m.store.contacts {
		items[i] = contactItem{
			contact: c,
			typing:  m.store.awaitingReply(c.ID),
		}
	}
	m.contactsList.SetItems(items)

	return m
}

func (m mainModel) updateContactsSize() mainModel {
	height := m.height - logoHeight() - lipgloss.Height(footerStyle.Render(contactsFooter))

	if m.err != nil {
		height -= errHeight(m.width, m.err)
	}

	m.contactsList.SetSize(m.width, height)
	return m
}

func (m mainModel) handleContactsEvents(msg tea.Msg) (mainModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.updateContactsSize()
	case tea.KeyMsg:
		if m.contactsList.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keymap.options):
			m.err = nil
			return m.setViewState(viewStateOptions).updateOptionsSize(), nil
		case key.Matches(msg, m.keymap.pick):
			item, ok := m.contactsList.SelectedItem().(contactItem)
			if !ok {
				return m, nil
			}
			return m.selectContact(item.contact)
		}
	}

	var cmd tea.Cmd
	m.contactsList, cmd = m.contactsList.Update(msg)
	return m, cmd
}

func (m mainModel) contactsView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		logoView(),
		m.contactsList.View(),
		footerStyle.Render(contactsFooter),
	)
}

// selectContact opens the conversation with c.
func (m mainModel) selectContact(c contact) (mainModel, tea.Cmd) {
	sess := m.store.selectContact(c)
	m.err = nil
	m.pendingAttachment = nil
	m.chatTextArea.Reset()
	m.chatTextArea.Focus()

	m = m.setViewState(viewStateChat).syncComposerKeys().updateChatSize()

	// The spinner stopped ticking when we left a conversation that is still
	// waiting for its reply.
	if sess.awaitingReply() {
		return m, m.chatSpinner.Tick
	}
	return m, nil
}

// deselectContact goes back to the contact list. The conversation history
// and any outstanding exchange are kept.
func (m mainModel) deselectContact() mainModel {
	m.store.deselectContact()
	m.err = nil
	m.chatTextArea.Blur()

	return m.setViewState(viewStateContacts).refreshContactItems().updateContactsSize()
}

func (c contactItem) Title() string {
	if c.LastMessageTime == "" {
		return c.Name
	}
	return c.Name + " · " + c.LastMessageTime
}

func (c contactItem) Description() string {
	if c.typing {
		return "typing..."
	}
	if c.LastMessage == "" {
		return "Tap to chat"
	}
	return c.LastMessage
}

func (c contactItem) FilterValue() string {
	return c.Name
}
