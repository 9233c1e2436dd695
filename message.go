package main

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type message struct {
	ID         string      `json:"id"`
	SenderID   string      `json:"senderId"`
	Text       string      `json:"text"`
	Timestamp  time.Time   `json:"timestamp"`
	Attachment *attachment `json:"attachment,omitempty"`

	// Failed marks a reply that was replaced by the fallback apology.
	Failed bool `json:"failed"`
}

type attachment struct {
	Data      string `json:"data"` // base64
	MediaType string `json:"mediaType"`
	Name      string `json:"name"`
}

// outgoing is a validated payload ready to be appended as a local message.
type outgoing struct {
	text       string
	attachment *attachment
}

// localSender is the sender id of messages written by the user of this app.
const localSender = "me"

var errEmptyMessage = errors.New("message has no text and no attachment")

func newOutgoing(text string, att *attachment) (outgoing, error) {
	if strings.TrimSpace(text) == "" && att == nil {
		return outgoing{}, errEmptyMessage
	}
	return outgoing{
		text:       text,
		attachment: att,
	}, nil
}

func newMessage(senderID, text string, att *attachment) message {
	return message{
		ID:         uuid.Must(uuid.NewV7()).String(),
		SenderID:   senderID,
		Text:       text,
		Timestamp:  time.Now(),
		Attachment: att,
	}
}

func (m message) isLocal() bool {
	return m.SenderID == localSender
}

func (a attachment) isImage() bool {
	return strings.HasPrefix(a.MediaType, "image/")
}

// subtype returns the part of the media type after the slash, e.g. "pdf".
func (a attachment) subtype() string {
	_, sub, ok := strings.Cut(a.MediaType, "/")
	if !ok || sub == "" {
		return "file"
	}
	return sub
}

// size is the decoded length of the data in bytes.
func (a attachment) size() int {
	padding := strings.Count(a.Data[max(len(a.Data)-2, 0):], "=")
	return base64.StdEncoding.DecodedLen(len(a.Data)) - padding
}

func (a attachment) dataURI() string {
	return "data:" + a.MediaType + ";base64," + a.Data
}
