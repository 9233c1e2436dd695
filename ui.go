package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// formFilePicker wraps a huh.FilePicker.
//
// We need this to override the KeyBinds method which determines what keys is shown
// in the help view.
type formFilePicker struct {
	*huh.FilePicker
	km huh.FilePickerKeyMap
}

func newFormFilePicker(fp *huh.FilePicker, km huh.FilePickerKeyMap) formFilePicker {
	return formFilePicker{
		FilePicker: fp,
		km:         km,
	}
}

func defaultList(title string, km keymap, shortHelps, fullHelps func() []key.Binding) list.Model {
	l := list.New([]list.Item{}, listDelegate(), 0, 0)
	l.Title = title
	l.Styles.Title = titleStyle
	// Remove horizontal padding from the title bar for consistency.
	l.Styles.TitleBar = lipgloss.NewStyle()
	l.DisableQuitKeybindings()

	l.AdditionalShortHelpKeys = shortHelps
	l.AdditionalFullHelpKeys = fullHelps

	l.KeyMap.Quit = km.quit
	l.KeyMap.ShowFullHelp = km.openHelp
	l.KeyMap.CloseFullHelp = km.closeHelp

	return l
}

func listDelegate() list.DefaultDelegate {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = listSelectedTitleStyle
	delegate.Styles.SelectedDesc = listDescSelectedStyle
	delegate.Styles.NormalTitle = listTitleStyle
	delegate.Styles.NormalDesc = listDescStyle

	return delegate
}

func (m mainModel) updateFormSize() mainModel {
	titleHeight := lipgloss.Height(titleStyle.Render(""))
	height := m.height - logoHeight() - titleHeight

	if m.err != nil {
		height -= errHeight(m.width, m.err)
	}

	m.formWidth = m.width
	m.formHeight = height

	return m
}

func logoView() string {
	return logoStyle.Render(logo)
}

func logoHeight() int {
	return lipgloss.Height(logoView())
}

func errView(width int, err error) string {
	return errorStyle.Render(fmt.Sprintf("Error: %s%s",
		err, strings.Repeat(" ", width)))
}

func errHeight(width int, err error) int {
	return lipgloss.Height(errView(width, err))
}

const logo = `
 __      __ _         _        ___  _         _
 \ \    / /| |_  __ _| |_  ___/ __|| |_  __ _| |_
  \ \/\/ / | ' \/ _' |  _|(_-< (__ | ' \/ _' |  _|
   \_/\_/  |_||_\__,_|\__|/__/\___||_||_\__,_|\__|
`

// These styles follow the green palette of the messaging app this client
// imitates, with Catppuccin colors for the neutral tones:
// https://github.com/catppuccin/catppuccin#-palette
var (
	// General styles

	logoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#008069", Dark: "#25d366"}). // Green
			Bold(true).
			PaddingBottom(1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#008069", Dark: "#25d366"}). // Green
			Bold(true).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#179287", Dark: "#94e2d5"}). // Teal
			PaddingLeft(2).
			PaddingRight(2).
			MarginBottom(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#eff1f5", Dark: "#cdd6f4"}). // Text color (Base)
			Background(lipgloss.AdaptiveColor{Light: "#e64553", Dark: "#d20f39"}). // Red (darker variant)
			Bold(true).
			Padding(0, 1)

	// List styles

	listSelectedTitleStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), false, false, false, true).
				Foreground(lipgloss.AdaptiveColor{Light: "#008069", Dark: "#25d366"}).       // Green
				BorderForeground(lipgloss.AdaptiveColor{Light: "#179287", Dark: "#94e2d5"}). // Teal
				Padding(0, 0, 0, 1)

	listDescSelectedStyle = listSelectedTitleStyle.
				Foreground(lipgloss.AdaptiveColor{Light: "#9ca0b0", Dark: "#a6adc8"}) // Overlay0

	listTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#4c4f69", Dark: "#cdd6f4"}). // Text
			Bold(true)

	listDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9ca0b0", Dark: "#a6adc8"}). // Overlay0
			Italic(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9ca0b0", Dark: "#6c7086"}). // Overlay0
			Italic(true).
			PaddingTop(1)

	// Chat styles

	chatStatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#6c6f85", Dark: "#a6adc8"}). // Subtext0
			Italic(true)

	chatSeparatorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#4c4f69", Dark: "#cdd6f4"}). // Text
				Background(lipgloss.AdaptiveColor{Light: "#e7fce3", Dark: "#313244"}). // Surface0
				Padding(0, 1)

	chatLocalBubbleStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.AdaptiveColor{Light: "#008069", Dark: "#25d366"}). // Green
				Padding(0, 1)

	chatRemoteBubbleStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.AdaptiveColor{Light: "#9ca0b0", Dark: "#6c7086"}). // Overlay0
				Padding(0, 1)

	chatFailedBubbleStyle = chatRemoteBubbleStyle.
				BorderForeground(lipgloss.AdaptiveColor{Light: "#e64553", Dark: "#f38ba8"}) // Red

	chatMetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#6c6f85", Dark: "#a6adc8"}) // Subtext0

	chatReadMarkStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#1e66f5", Dark: "#53bdeb"}) // Blue

	chatAttachmentStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#179287", Dark: "#94e2d5"}). // Teal
				Bold(true)

	chatPendingAttachmentStyle = lipgloss.NewStyle().
					Foreground(lipgloss.AdaptiveColor{Light: "#179287", Dark: "#94e2d5"}). // Teal
					PaddingLeft(1)

	chatTextareaStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.AdaptiveColor{Light: "#179287", Dark: "#94e2d5"}). // Teal
				Padding(1)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#7287fd", Dark: "#b4befe"}). // Lavender
			Bold(true).
			PaddingLeft(1).
			PaddingRight(1)
)

func (f formFilePicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	filePicker, cmd := f.FilePicker.Update(msg)
	if fp, ok := filePicker.(*huh.FilePicker); ok {
		f.FilePicker = fp
	}

	return f, cmd
}

func (f formFilePicker) KeyBinds() []key.Binding {
	f.km.Select.SetEnabled(true)
	f.km.Back.SetEnabled(true)
	return []key.Binding{f.km.Open, f.km.Back, f.km.Select, f.km.Close, f.km.Prev, f.km.Next}
}
