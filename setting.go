package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

func (m mainModel) initReplySetting() (mainModel, error) {
	var err error
	m.replySetting, err = loadReplySetting(m.db)
	if err != nil {
		return mainModel{}, fmt.Errorf("failed to load reply setting: %w", err)
	}

	return m.refreshReplyLLM(), nil
}

// refreshReplyLLM rebuilds the llm answering for the contacts. When it can't
// be built, replies fall back to the apology message.
func (m mainModel) refreshReplyLLM() mainModel {
	l, err := newReplyLLM(m.providers, m.replySetting)
	if err != nil {
		slog.Warn("reply model unavailable", "error", err)
		m.replyLLM = nil
		return m.refreshProviderItems()
	}
	m.replyLLM = l
	return m.refreshProviderItems()
}

func (m mainModel) newReplyLLMForm() (mainModel, tea.Cmd) {
	providerName := m.replySetting.Provider
	model := m.replySetting.Model
	temperature := strconv.FormatFloat(m.replySetting.Temperature, 'f', -1, 64)

	var providerOptions []huh.Option[string]
	for _, p := range m.providers {
		if p.isConfigured() {
			providerOptions = append(providerOptions, huh.NewOption(p.name(), p.name()))
		}
	}

	providers := m.providers
	m.replyLLMForm = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("replyProvider").
				Title("Provider").
				Description("Which provider answers for your contacts.").
				Options(providerOptions...).
				Value(&providerName),
			huh.NewSelect[string]().
				Key("replyModel").
				Title("Model").
				Description("Pick the model of the provider.").
				OptionsFunc(func() []huh.Option[string] {
					for _, p := range providers {
						if p.name() == providerName {
							return huh.NewOptions(p.availableModels()...)
						}
					}
					return nil
				}, &providerName).
				Value(&model),
			huh.NewInput().
				Key("replyTemperature").
				Title("Temperature").
				Description("Between 0 and 2, higher is more creative.").
				Validate(validateTemperature).
				Value(&temperature),
			huh.NewConfirm().
				Key("replyConfirm").
				Title("Confirm").
				Description("Save this reply model?").
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

	return m, m.replyLLMForm.PrevField()
}

func validateTemperature(s string) error {
	t, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("temperature must be a number")
	}
	if t < 0 || t > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	return nil
}

func (m mainModel) handleReplyLLMFormEvents(msg tea.Msg) (mainModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.updateFormSize()
	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.escape) {
			return m.setViewState(viewStateOptions).updateOptionsSize(), nil
		}
	}

	form, cmd := m.replyLLMForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.replyLLMForm = f
	}

	if m.replyLLMForm.State != huh.StateCompleted {
		return m, cmd
	}

	if !m.replyLLMForm.GetBool("replyConfirm") {
		return m.setViewState(viewStateOptions).updateOptionsSize(), nil
	}

	// The validator already accepted the value.
	temperature, _ := strconv.ParseFloat(m.replyLLMForm.GetString("replyTemperature"), 64)
	setting := llmSetting{
		Provider:    m.replyLLMForm.GetString("replyProvider"),
		Model:       m.replyLLMForm.GetString("replyModel"),
		Temperature: temperature,
	}

	if err := saveReplySetting(m.db, setting); err != nil {
		m.err = fmt.Errorf("error saving reply setting: %w", err)
		return m.updateFormSize(), nil
	}

	m.replySetting = setting
	m.err = nil

	return m.initOptions().refreshReplyLLM().setViewState(viewStateOptions).updateOptionsSize(), nil
}

func (m mainModel) replyLLMFormView() string {
	title := "Reply Model"
	if m.replySetting.isConfigured() {
		title = "Edit Reply Model"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		logoView(),
		titleStyle.Render(title),
		m.replyLLMForm.View(),
	)
}
