package main

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/huh"
)

type keymap struct {
	listKeymap

	chatViewportKeymap viewport.KeyMap
	chatTextAreaKeymap textarea.KeyMap
	formKeymap         *huh.KeyMap

	submit    key.Binding
	attach    key.Binding
	detach    key.Binding
	copyLast  key.Binding
	openHelp  key.Binding
	closeHelp key.Binding
	quit      key.Binding
	escape    key.Binding
}

type listKeymap struct {
	options key.Binding
	pick    key.Binding // Can't use select because it's a reserved word
}

func newKeymap() keymap {
	return keymap{
		listKeymap:         newListKeymap(),
		chatViewportKeymap: newChatViewportKeymap(),
		chatTextAreaKeymap: newChatTextAreaKeymap(),
		formKeymap:         newFormKeymap(),
		submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		attach: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "attach file"),
		),
		detach: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "remove attachment"),
			key.WithDisabled(),
		),
		copyLast: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy last message"),
		),
		openHelp: key.NewBinding(
			key.WithKeys("ctrl+h"),
			key.WithHelp("ctrl+h", "more"),
		),
		closeHelp: key.NewBinding(
			key.WithKeys("ctrl+h"),
			key.WithHelp("ctrl+h", "close help"),
			key.WithDisabled(),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
	}
}

func newListKeymap() listKeymap {
	return listKeymap{
		options: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "options"),
		),
		pick: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
	}
}

func newChatViewportKeymap() viewport.KeyMap {
	km := viewport.DefaultKeyMap()

	km.HalfPageDown.SetEnabled(false)
	km.HalfPageUp.SetEnabled(false)

	km.Up.SetKeys("ctrl+p")
	km.Up.SetHelp("ctrl+p", "chatbox up")

	km.Down.SetKeys("ctrl+n")
	km.Down.SetHelp("ctrl+n", "chatbox down")

	km.PageUp.SetKeys("pgup")
	km.PageUp.SetHelp("pgup", "chatbox page up")

	km.PageDown.SetKeys("pgdn")
	km.PageDown.SetHelp("pgdn", "chatbox page down")

	return km
}

// newChatTextAreaKeymap frees plain enter for sending; the modified variants
// insert a newline instead.
func newChatTextAreaKeymap() textarea.KeyMap {
	km := textarea.DefaultKeyMap

	km.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	km.InsertNewline.SetHelp("alt+enter", "new line")

	km.LineNext.SetKeys("down")
	km.LineNext.SetHelp("down", "next line")

	km.LinePrevious.SetKeys("up")
	km.LinePrevious.SetHelp("up", "previous line")

	return km
}

func newFormKeymap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()

	km.Quit.SetKeys("ctrl+c")

	km.FilePicker.Open.SetKeys("l", "right")
	km.FilePicker.Open.SetHelp("→", "open")
	km.FilePicker.Back.SetKeys("h", "backspace", "left")
	km.FilePicker.Back.SetHelp("←", "back")

	return km
}

func (k keymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.chatViewportKeymap.Up, k.chatViewportKeymap.Down, k.chatViewportKeymap.PageUp, k.chatViewportKeymap.PageDown, k.escape},
		{k.chatTextAreaKeymap.InsertNewline, k.submit, k.attach, k.detach, k.copyLast},
		{k.quit, k.closeHelp},
	}
}

func (k keymap) ShortHelp() []key.Binding {
	return []key.Binding{k.submit, k.chatTextAreaKeymap.InsertNewline, k.attach, k.escape, k.openHelp}
}
