package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type replyRequest struct {
	contactName string
	history     []message
	text        string
	attachment  *attachment
}

type replyResult struct {
	content string
	failed  bool
	err     error
}

// replyMsg is delivered to the Update loop when an exchange settles. It is
// handled in every view state, since the user may have left the conversation.
type replyMsg struct {
	contactID string
	result    replyResult
}

const fallbackReply = "Sorry, I can't reply right now. Please try again later."

var errNoReplyLLM = errors.New("no reply model configured")

func personaPrompt(contactName string) string {
	return fmt.Sprintf(`
You are %[1]s, chatting with a friend in a mobile messaging app.

Rules:
1. Stay in character as %[1]s for the whole conversation
2. Answer like a text message: short, warm and conversational
3. Never mention that you are an AI model unless %[1]s is an assistant
4. If an image or a document is attached, react to its content naturally
5. Answer in the language the friend writes in
`, contactName)
}

// buildChats turns a reply request into the conversation sent to the llm.
// Messages from the user become user chats, everything else is the contact
// speaking.
func buildChats(req replyRequest) []chat {
	chats := make([]chat, 0, len(req.history)+2)
	chats = append(chats, chat{
		Role:    roleSystem,
		Content: personaPrompt(req.contactName),
	})

	for _, msg := range req.history {
		role := roleAssistant
		if msg.isLocal() {
			role = roleUser
		}
		// Earlier attachments are only referenced by name.
		chats = append(chats, chat{
			Role:      role,
			Content:   historyContent(msg),
			Timestamp: msg.Timestamp,
		})
	}

	text := req.text
	if strings.TrimSpace(text) == "" && req.attachment != nil {
		text = fmt.Sprintf("[Sent %s]", req.attachment.Name)
	}
	chats = append(chats, chat{
		Role:       roleUser,
		Content:    text,
		Attachment: req.attachment,
		Timestamp:  time.Now(),
	})

	return chats
}

func historyContent(msg message) string {
	if strings.TrimSpace(msg.Text) != "" {
		return msg.Text
	}
	if msg.Attachment != nil {
		return fmt.Sprintf("[Sent %s]", msg.Attachment.Name)
	}
	return msg.Text
}

// requestReply runs one exchange. Failures never escape: they are logged and
// replaced by the fallback apology.
func requestReply(ctx context.Context, l llm, req replyRequest) replyResult {
	if l == nil {
		slog.Error("reply failed", "contact", req.contactName, "error", errNoReplyLLM)
		return replyResult{content: fallbackReply, failed: true, err: errNoReplyLLM}
	}

	start := time.Now()
	res := l.chat(ctx, buildChats(req))
	if res.err != nil {
		slog.Error("reply failed", "contact", req.contactName, "error", res.err)
		return replyResult{content: fallbackReply, failed: true, err: res.err}
	}

	content := strings.TrimSpace(res.content)
	if content == "" {
		err := errors.New("empty reply content")
		slog.Error("reply failed", "contact", req.contactName, "error", err)
		return replyResult{content: fallbackReply, failed: true, err: err}
	}

	slog.Debug("reply received",
		"contact", req.contactName,
		"historyLength", len(req.history),
		"withAttachment", req.attachment != nil,
		"elapsed", time.Since(start))

	return replyResult{content: content}
}

func (m mainModel) replyCmd(contactID string, req replyRequest) tea.Cmd {
	l := m.replyLLM
	timeout := m.cfg.ReplyTimeout

	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		return replyMsg{
			contactID: contactID,
			result:    requestReply(ctx, l, req),
		}
	}
}
