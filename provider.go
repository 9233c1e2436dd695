package main

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	bolt "go.etcd.io/bbolt"
)

type llmProvider interface {
	name() string
	availableModels() []string
	isConfigured() bool

	form(int, int, *huh.KeyMap) *huh.Form
	saveForm(*bolt.DB, *huh.Form) (llmProvider, bool, error)

	Title() string
	Description() string
	list.Item

	new(llmSetting) llm
}

const (
	providerOllama    = "Ollama"
	providerAnthropic = "Anthropic"
	providerOpenAI    = "OpenAI"
)

func loadLLMProviders(db *bolt.DB, cfg config) ([]llmProvider, error) {
	o, err := loadOllamaSettings(db)
	if err != nil {
		return nil, fmt.Errorf("failed to load ollama settings: %w", err)
	}
	o.envHost = cfg.OllamaHost

	a, err := loadAnthropicSettings(db)
	if err != nil {
		return nil, fmt.Errorf("failed to load anthropic settings: %w", err)
	}
	a.envAPIKey = cfg.AnthropicAPIKey

	oa, err := loadOpenAISettings(db)
	if err != nil {
		return nil, fmt.Errorf("failed to load openai settings: %w", err)
	}
	oa.envAPIKey = cfg.OpenAIAPIKey

	return []llmProvider{o, a, oa}, nil
}

func (m mainModel) providersIsConfigured() bool {
	for _, p := range m.providers {
		if p.isConfigured() {
			return true
		}
	}
	return false
}

// providerItem is a provider row of the providers screen.
type providerItem struct {
	llmProvider

	// replying is set on the provider behind the reply model.
	replying bool
}

func (p providerItem) Description() string {
	if p.replying {
		return p.llmProvider.Description() + " · replying for your contacts"
	}
	return p.llmProvider.Description()
}

func (m mainModel) initProviders() (mainModel, error) {
	var err error
	m.providers, err = loadLLMProviders(m.db, m.cfg)
	if err != nil {
		return mainModel{}, fmt.Errorf("failed to load llm providers: %w", err)
	}

	m.providersList = defaultList("Providers", m.keymap, func() []key.Binding {
		return []key.Binding{
			m.keymap.escape,
		}
	}, func() []key.Binding {
		return []key.Binding{
			m.keymap.pick,
			m.keymap.escape,
		}
	})
	m.providersList.SetFilteringEnabled(false)
	m.providersList.SetShowStatusBar(false)

	return m.refreshProviderItems(), nil
}

// refreshProviderItems rebuilds the rows from m.providers and the reply
// setting.
func (m mainModel) refreshProviderItems() mainModel {
	items := make([]list.Item, len(m.providers))
	for i, p := range m.providers {
		items[i] = providerItem{
			llmProvider: p,
			replying:    p.name() == m.replySetting.Provider && m.replyLLM != nil,
		}
	}
	m.providersList.SetItems(items)

	return m
}

func (m mainModel) updateProvidersSize() mainModel {
	height := m.height - logoHeight()

	if m.err != nil {
		height -= errHeight(m.width, m.err)
	}

	m.providersList.SetSize(m.width, height)
	return m
}

func (m mainModel) handleProvidersEvents(msg tea.Msg) (mainModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.updateProvidersSize()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.escape):
			return m.setViewState(viewStateOptions).updateOptionsSize(), nil
		case key.Matches(msg, m.keymap.pick):
			return m.selectProvider(m.providersList.Index())
		}
	}

	var cmd tea.Cmd
	m.providersList, cmd = m.providersList.Update(msg)
	return m, cmd
}

func (m mainModel) providersView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		logoView(),
		m.providersList.View(),
	)
}

func (m mainModel) selectProvider(index int) (mainModel, tea.Cmd) {
	if index < 0 || index >= len(m.providers) {
		return m, nil
	}
	m.selectedProviderIndex = index
	m = m.setViewState(viewStateProviderForm).updateFormSize()

	selected := m.providers[index]
	m.providerForm = selected.form(m.formWidth, m.formHeight, m.keymap.formKeymap)

	return m, m.providerForm.PrevField()
}

func (m mainModel) handleProviderFormEvents(msg tea.Msg) (mainModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.updateFormSize()
	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.escape) {
			return m.setViewState(viewStateProviders).updateProvidersSize(), nil
		}
	}

	form, cmd := m.providerForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.providerForm = f
	}

	if m.providerForm.State != huh.StateCompleted {
		return m, cmd
	}

	provider, confirmed, err := m.providers[m.selectedProviderIndex].saveForm(m.db, m.providerForm)
	if err != nil {
		m.err = fmt.Errorf("error saving provider settings: %w", err)
		return m.updateFormSize(), nil
	}

	return m.applyProvider(provider, confirmed), nil
}

// applyProvider takes a provider saved from its form. New credentials may
// revive the reply model, so it is rebuilt.
func (m mainModel) applyProvider(provider llmProvider, confirmed bool) mainModel {
	if confirmed {
		m.providers[m.selectedProviderIndex] = provider
		m.err = nil
		slog.Info("provider saved", "provider", provider.name())
		m = m.initOptions().refreshReplyLLM()
	}

	return m.setViewState(viewStateProviders).updateProvidersSize()
}

func (m mainModel) providerFormView() string {
	selected := m.providers[m.selectedProviderIndex]
	title := "Connect " + selected.name()
	if selected.isConfigured() {
		title = "Edit " + selected.name()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		logoView(),
		titleStyle.Render(title),
		m.providerForm.View(),
	)
}
