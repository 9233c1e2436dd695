package main

import (
	"errors"
	"fmt"
	"slices"
)

type session struct {
	ContactID string    `json:"contactId"`
	Messages  []message `json:"messages"`

	// pending counts the exchanges that were started for this session and
	// have not produced a reply yet.
	pending int
}

// sessionStore holds every conversation of the running app. It is owned by
// mainModel and only mutated from its Update loop.
type sessionStore struct {
	contacts []contact
	byID     map[string]contact
	sessions map[string]*session

	activeID string
}

var errUnknownContact = errors.New("unknown contact")

func newSessionStore(contacts []contact) *sessionStore {
	byID := make(map[string]contact, len(contacts))
	for _, c := range contacts {
		byID[c.ID] = c
	}

	return &sessionStore{
		contacts: contacts,
		byID:     byID,
		sessions: make(map[string]*session),
	}
}

func (s *sessionStore) selectContact(c contact) *session {
	s.activeID = c.ID
	if _, ok := s.byID[c.ID]; !ok {
		s.byID[c.ID] = c
		s.contacts = append(s.contacts, c)
	}
	return s.ensureSession(c.ID)
}

func (s *sessionStore) deselectContact() {
	s.activeID = ""
}

func (s *sessionStore) activeContact() (contact, bool) {
	if s.activeID == "" {
		return contact{}, false
	}
	c, ok := s.byID[s.activeID]
	return c, ok
}

func (s *sessionStore) contact(id string) (contact, bool) {
	c, ok := s.byID[id]
	return c, ok
}

func (s *sessionStore) session(contactID string) (*session, bool) {
	sess, ok := s.sessions[contactID]
	return sess, ok
}

// messages returns a copy of the contact's history.
func (s *sessionStore) messages(contactID string) []message {
	sess, ok := s.sessions[contactID]
	if !ok {
		return nil
	}
	return slices.Clone(sess.Messages)
}

func (s *sessionStore) appendLocalMessage(contactID, text string, att *attachment) (message, error) {
	out, err := newOutgoing(text, att)
	if err != nil {
		return message{}, err
	}
	return s.append(contactID, newMessage(localSender, out.text, out.attachment))
}

func (s *sessionStore) appendRemoteMessage(contactID, text string) (message, error) {
	if _, err := newOutgoing(text, nil); err != nil {
		return message{}, err
	}
	return s.append(contactID, newMessage(contactID, text, nil))
}

func (s *sessionStore) beginExchange(contactID string) error {
	if _, ok := s.byID[contactID]; !ok {
		return fmt.Errorf("error starting exchange for %q: %w", contactID, errUnknownContact)
	}
	s.ensureSession(contactID).pending++
	return nil
}

// completeExchange clears one outstanding exchange of the contact and appends
// its reply.
func (s *sessionStore) completeExchange(contactID string, res replyResult) (message, error) {
	if _, ok := s.byID[contactID]; !ok {
		return message{}, fmt.Errorf("error completing exchange for %q: %w", contactID, errUnknownContact)
	}

	sess := s.ensureSession(contactID)
	if sess.pending > 0 {
		sess.pending--
	}

	msg := newMessage(contactID, res.content, nil)
	msg.Failed = res.failed
	return s.append(contactID, msg)
}

func (s *sessionStore) append(contactID string, msg message) (message, error) {
	if _, ok := s.byID[contactID]; !ok {
		return message{}, fmt.Errorf("error appending message for %q: %w", contactID, errUnknownContact)
	}
	sess := s.ensureSession(contactID)
	sess.Messages = append(sess.Messages, msg)
	return msg, nil
}

func (s *sessionStore) ensureSession(contactID string) *session {
	sess, ok := s.sessions[contactID]
	if !ok {
		sess = &session{
			ContactID: contactID,
			Messages:  []message{},
		}
		s.sessions[contactID] = sess
	}
	return sess
}

func (s *sessionStore) awaitingReply(contactID string) bool {
	sess, ok := s.sessions[contactID]
	return ok && sess.awaitingReply()
}

func (s *session) awaitingReply() bool {
	return s.pending > 0
}
