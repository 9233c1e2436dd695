package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// attachmentTypes are the extensions offered by the file picker. captureFile
// itself accepts any file.
var attachmentTypes = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".pdf"}

var errAttachmentTooLarge = errors.New("file is too large")

// captureFile reads the whole file at path and encodes it as an attachment.
func captureFile(path string, maxSize int64) (*attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file info: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", filepath.Base(path))
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, fmt.Errorf("%w: %s is %s, the limit is %s", errAttachmentTooLarge,
			filepath.Base(path), humanize.Bytes(uint64(info.Size())), humanize.Bytes(uint64(maxSize)))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return &attachment{
		Data:      base64.StdEncoding.EncodeToString(data),
		MediaType: detectMediaType(path, data),
		Name:      filepath.Base(path),
	}, nil
}

func detectMediaType(path string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		// Drop parameters such as "; charset=utf-8".
		mediaType, _, err := mime.ParseMediaType(t)
		if err == nil {
			return mediaType
		}
		return t
	}

	mediaType, _, err := mime.ParseMediaType(http.DetectContentType(data))
	if err != nil {
		return "application/octet-stream"
	}
	return mediaType
}

func (m mainModel) newAttachForm() (mainModel, tea.Cmd) {
	dir := m.attachDir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			m.err = fmt.Errorf("error getting user home directory: %w", err)
			return m.setViewState(viewStateChat).updateChatSize(), nil
		}
		dir = homeDir
	}
	path := ""

	m.attachForm = huh.NewForm(
		huh.NewGroup(
			newFormFilePicker(huh.NewFilePicker().
				Key("attachmentPath").
				Title("Attachment").
				Description("Select an image or a PDF document.").
				FileAllowed(true).
				DirAllowed(false).
				AllowedTypes(attachmentTypes).
				CurrentDirectory(dir).
				Value(&path),
				m.keymap.formKeymap.FilePicker),
			huh.NewConfirm().
				Key("attachmentConfirm").
				Title("Attach").
				Description("Attach this file to your next message?").
				Affirmative("Yes").
				Negative("Back"),
		),
	).
		WithWidth(m.formWidth).
		WithHeight(m.formHeight).
		WithTheme(huh.ThemeCatppuccin()).
		WithKeyMap(m.keymap.formKeymap).
		WithShowErrors(true).
		WithShowHelp(true)

	return m, m.attachForm.PrevField()
}

func (m mainModel) handleAttachFormEvents(msg tea.Msg) (mainModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.updateFormSize()
	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.escape) {
			return m.backToChat(), nil
		}
	}

	form, cmd := m.attachForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.attachForm = f
	}

	if m.attachForm.State != huh.StateCompleted {
		return m, cmd
	}

	path := m.attachForm.GetString("attachmentPath")
	if !m.attachForm.GetBool("attachmentConfirm") || path == "" {
		return m.backToChat(), nil
	}

	return m.attachFile(path), nil
}

// attachFile captures path as the pending attachment and returns to the chat.
// On failure the composer keeps whatever it had before.
func (m mainModel) attachFile(path string) mainModel {
	att, err := captureFile(path, m.cfg.MaxAttachmentSize)
	if err != nil {
		slog.Warn("failed to attach file", "path", path, "error", err)
		m.err = fmt.Errorf("unable to attach file: %w", err)
		return m.backToChat()
	}

	m.attachDir = filepath.Dir(path)
	m.pendingAttachment = att
	m.err = nil

	return m.backToChat()
}

func (m mainModel) backToChat() mainModel {
	m.chatTextArea.Focus()
	return m.setViewState(viewStateChat).syncComposerKeys().updateChatSize()
}

func (m mainModel) attachFormView() string {
	title := "Attach File"
	if selectedContact, ok := m.store.activeContact(); ok {
		title = "Attach File for " + selectedContact.Name
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		logoView(),
		titleStyle.Render(title),
		m.attachForm.View(),
	)
}
