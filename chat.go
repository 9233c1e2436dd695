package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"
)

// chat is one entry of the conversation sent to an llm.
type chat struct {
	Role       string      `json:"role"`
	Content    string      `json:"content"`
	Attachment *attachment `json:"attachment,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

const (
	roleUser      = "user"
	roleAssistant = "assistant"
	roleSystem    = "system"
)

const (
	chatPlaceholder        = "Type a message"
	chatCaptionPlaceholder = "Add a caption..."
)

func (m mainModel) initChat() mainModel {
	m.chatViewport = viewport.New(0, 0)
	m.chatViewport.KeyMap = m.keymap.chatViewportKeymap

	m.chatSpinner = spinner.New(spinner.WithSpinner(spinner.Points))

	m.chatTextArea = textarea.New()
	m.chatTextArea.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return ""
	})
	m.chatTextArea.ShowLineNumbers = false
	m.chatTextArea.SetHeight(3)
	m.chatTextArea.Placeholder = chatPlaceholder
	m.chatTextArea.CharLimit = 0
	m.chatTextArea.KeyMap = m.keymap.chatTextAreaKeymap

	m.chatMDRenderer, _ = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithPreservedNewLines(),
		glamour.WithWordWrap(0),
	)

	return m
}

func (m mainModel) updateChatSize() mainModel {
	selectedContact, ok := m.store.activeContact()
	if !ok {
		return m
	}

	headerHeight := lipgloss.Height(m.chatHeaderView(selectedContact))
	pendingHeight := lipgloss.Height(m.pendingAttachmentView())
	textareaHeight := lipgloss.Height(chatTextareaStyle.Render(m.chatTextArea.View()))
	helpHeight := lipgloss.Height(m.helpModel.View(m.keymap))

	newHeight := m.height - headerHeight - pendingHeight - textareaHeight - helpHeight
	if m.err != nil {
		newHeight -= errHeight(m.width, m.err)
	}
	m.chatViewport.Width = m.width
	m.chatViewport.Height = max(newHeight, 0)

	m.chatTextArea.SetWidth(m.width - chatTextareaStyle.GetHorizontalFrameSize())

	m.chatViewport.SetContent(m.renderMessages(selectedContact))
	m.chatViewport.GotoBottom()

	return m
}

func (m mainModel) renderMessages(c contact) string {
	var sb strings.Builder

	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, chatSeparatorStyle.Render("Today")))
	sb.WriteString("\n\n")

	for _, msg := range m.store.messages(c.ID) {
		sb.WriteString(m.renderMessage(msg))
		sb.WriteString("\n")
	}

	if m.store.awaitingReply(c.ID) {
		sb.WriteString(chatRemoteBubbleStyle.Render(spinnerStyle.Render(m.chatSpinner.View())))
	}

	return sb.String()
}

func (m mainModel) renderMessage(msg message) string {
	// Bubbles take at most 80% of the screen, like on a phone.
	bubbleWidth := max(m.width*4/5, 20)
	contentWidth := bubbleWidth - chatLocalBubbleStyle.GetHorizontalFrameSize()

	var parts []string
	if msg.Attachment != nil {
		parts = append(parts, attachmentView(*msg.Attachment))
	}
	switch {
	case strings.TrimSpace(msg.Text) == "":
	case msg.isLocal():
		// What the user typed is shown as typed.
		parts = append(parts, wordwrap.String(msg.Text, max(contentWidth, 10)))
	default:
		parts = append(parts, m.renderText(msg.Text, contentWidth))
	}

	meta := msg.Timestamp.Format("15:04")
	if msg.isLocal() {
		meta += " " + chatReadMarkStyle.Render("✓✓")
	}
	parts = append(parts, chatMetaStyle.Render(meta))

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	switch {
	case msg.isLocal():
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, chatLocalBubbleStyle.Render(content))
	case msg.Failed:
		return chatFailedBubbleStyle.Render(content)
	default:
		return chatRemoteBubbleStyle.Render(content)
	}
}

func (m mainModel) renderText(text string, width int) string {
	wrapped := wordwrap.String(text, max(width, 10))
	if m.chatMDRenderer == nil {
		return wrapped
	}

	rendered, err := m.chatMDRenderer.Render(wrapped)
	if err != nil {
		return wrapped
	}
	return strings.Trim(rendered, "\n")
}

func attachmentView(a attachment) string {
	icon := "📄"
	if a.isImage() {
		icon = "🖼"
	}
	return chatAttachmentStyle.Render(fmt.Sprintf("%s %s · %s · %s",
		icon, a.Name, strings.ToUpper(a.subtype()), humanize.Bytes(uint64(a.size()))))
}

func (m mainModel) pendingAttachmentView() string {
	if m.pendingAttachment == nil {
		return ""
	}
	return chatPendingAttachmentStyle.Render(fmt.Sprintf("📎 %s (%s, %s), %s to remove",
		m.pendingAttachment.Name,
		m.pendingAttachment.MediaType,
		humanize.Bytes(uint64(m.pendingAttachment.size())),
		m.keymap.detach.Help().Key))
}

func (m mainModel) chatHeaderView(c contact) string {
	status := c.Status
	switch {
	case m.store.awaitingReply(c.ID):
		status = "typing..."
	default:
		if msgs := m.store.messages(c.ID); len(msgs) > 0 {
			status += " · last message " + humanize.Time(msgs[len(msgs)-1].Timestamp)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.MarginBottom(0).Render(c.Name),
		chatStatusStyle.Render(status),
	)
}

func (m mainModel) handleChatEvents(msg tea.Msg) (mainModel, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.updateChatSize()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.escape):
			return m.deselectContact(), nil
		case key.Matches(msg, m.keymap.submit):
			return m.sendMessage()
		case key.Matches(msg, m.keymap.attach):
			return m.setViewState(viewStateAttachForm).
				updateFormSize().
				newAttachForm()
		case key.Matches(msg, m.keymap.detach):
			m.pendingAttachment = nil
			return m.syncComposerKeys().updateChatSize(), nil
		case key.Matches(msg, m.keymap.copyLast):
			return m.copyLastMessage().updateChatSize(), nil
		case key.Matches(msg, m.keymap.openHelp):
			m.keymap.openHelp.SetEnabled(false)
			m.keymap.closeHelp.SetEnabled(true)
			m.helpModel.ShowAll = true
			return m.updateChatSize(), nil
		case key.Matches(msg, m.keymap.closeHelp):
			m.keymap.closeHelp.SetEnabled(false)
			m.keymap.openHelp.SetEnabled(true)
			m.helpModel.ShowAll = false
			return m.updateChatSize(), nil
		}
	case spinner.TickMsg:
		selectedContact, ok := m.store.activeContact()
		if !ok || !m.store.awaitingReply(selectedContact.ID) {
			// Stop the spinner if nobody is typing anymore
			return m, nil
		}
		// Updating the spinner here would cause the spinner to tick again
		m.chatSpinner, cmd = m.chatSpinner.Update(msg)
		return m.updateChatSize(), cmd
	}

	m.chatTextArea, cmd = m.chatTextArea.Update(msg)
	cmds = append(cmds, cmd)

	m.chatViewport, cmd = m.chatViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m.syncComposerKeys(), tea.Batch(cmds...)
}

func (m mainModel) chatView() string {
	selectedContact, _ := m.store.activeContact()

	return lipgloss.JoinVertical(lipgloss.Left,
		m.chatHeaderView(selectedContact),
		m.chatViewport.View(),
		m.pendingAttachmentView(),
		chatTextareaStyle.Render(m.chatTextArea.View()),
		m.helpModel.View(m.keymap),
	)
}

// canSend reports whether the composer holds something to send.
func (m mainModel) canSend() bool {
	_, err := newOutgoing(m.chatTextArea.Value(), m.pendingAttachment)
	return err == nil
}

// syncComposerKeys enables the bindings that depend on the composer state,
// which also hides the disabled ones from the help view.
func (m mainModel) syncComposerKeys() mainModel {
	m.keymap.submit.SetEnabled(m.canSend())
	m.keymap.detach.SetEnabled(m.pendingAttachment != nil)

	if m.pendingAttachment != nil {
		m.chatTextArea.Placeholder = chatCaptionPlaceholder
	} else {
		m.chatTextArea.Placeholder = chatPlaceholder
	}

	return m
}

func (m mainModel) sendMessage() (mainModel, tea.Cmd) {
	selectedContact, ok := m.store.activeContact()
	if !ok {
		return m, nil
	}

	out, err := newOutgoing(m.chatTextArea.Value(), m.pendingAttachment)
	if err != nil {
		// Nothing to send.
		return m.syncComposerKeys(), nil
	}

	req := replyRequest{
		contactName: selectedContact.Name,
		history:     m.store.messages(selectedContact.ID),
		text:        out.text,
		attachment:  out.attachment,
	}

	m.chatTextArea.Reset()
	m.pendingAttachment = nil
	m = m.syncComposerKeys()

	if _, err := m.store.appendLocalMessage(selectedContact.ID, out.text, out.attachment); err != nil {
		m.err = fmt.Errorf("error sending message: %w", err)
		return m.updateChatSize(), nil
	}

	wasAwaiting := m.store.awaitingReply(selectedContact.ID)
	if err := m.store.beginExchange(selectedContact.ID); err != nil {
		m.err = fmt.Errorf("error requesting reply: %w", err)
		return m.updateChatSize(), nil
	}
	m.err = nil

	slog.Info("message sent",
		"contact", selectedContact.ID,
		"withAttachment", out.attachment != nil,
		"historyLength", len(req.history))

	cmds := []tea.Cmd{m.replyCmd(selectedContact.ID, req)}
	if !wasAwaiting {
		cmds = append(cmds, m.chatSpinner.Tick)
	}

	return m.updateChatSize(), tea.Batch(cmds...)
}

// handleReply appends the reply of a settled exchange. The contact may not be
// the one on screen anymore.
func (m mainModel) handleReply(msg replyMsg) (mainModel, tea.Cmd) {
	if _, err := m.store.completeExchange(msg.contactID, msg.result); err != nil {
		m.err = fmt.Errorf("error receiving reply: %w", err)
		return m.refreshContactItems(), nil
	}

	selectedContact, ok := m.store.activeContact()
	inView := ok && selectedContact.ID == msg.contactID && m.viewState == viewStateChat
	if !inView {
		m.notifyReply(msg)
	}

	m = m.refreshContactItems()
	if m.viewState == viewStateChat {
		m = m.updateChatSize()
	}

	return m, nil
}

func (m mainModel) copyLastMessage() mainModel {
	selectedContact, ok := m.store.activeContact()
	if !ok {
		return m
	}

	msgs := m.store.messages(selectedContact.ID)
	for i := len(msgs) - 1; i >= 0; i-- {
		if strings.TrimSpace(msgs[i].Text) == "" {
			continue
		}
		if err := clipboard.WriteAll(msgs[i].Text); err != nil {
			m.err = fmt.Errorf("error copying message: %w", err)
		}
		return m
	}

	return m
}
