package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	bolt "go.etcd.io/bbolt"
)

type mainModel struct {
	db    *bolt.DB
	cfg   config
	store *sessionStore

	replyLLM llm
	notify   notifier

	contactsList list.Model

	chatViewport   viewport.Model
	chatMDRenderer *glamour.TermRenderer
	chatSpinner    spinner.Model
	chatTextArea   textarea.Model

	attachForm *huh.Form

	optionsList list.Model

	providersList list.Model
	providerForm  *huh.Form

	replyLLMForm *huh.Form

	helpModel help.Model

	pendingAttachment     *attachment
	attachDir             string
	providers             []llmProvider
	selectedProviderIndex int
	replySetting          llmSetting

	keymap     keymap
	width      int
	height     int
	formWidth  int
	formHeight int

	viewState viewState
	err       error
}

type viewState int

const (
	viewStateContacts viewState = iota
	viewStateChat
	viewStateAttachForm
	viewStateOptions
	viewStateProviders
	viewStateProviderForm
	viewStateReplyLLMForm
)

var (
	flagContacts  string
	flagConfigDir string
	flagDebug     bool
	flagNoNotify  bool
)

var rootCmd = &cobra.Command{
	Use:   "whatschat",
	Short: "Chat with AI-played contacts from your terminal",
	Long: `WhatsChat is a terminal messaging app. Pick a contact, send text or a file,
and the contact answers through the LLM provider you configured.
Conversations live in memory only and are gone when you quit.`,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVar(&flagContacts, "contacts", "", "JSON file with the contact list (default: built-in contacts)")
	rootCmd.Flags().StringVar(&flagConfigDir, "config-dir", "", "directory for settings and logs (default: user config dir)")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&flagNoNotify, "no-notify", false, "disable desktop notifications")
}

func initLogger(cfgPath string, level slog.Level) error {
	logPath := filepath.Join(cfgPath, "whatschat.log")
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating log file: %w", err)
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	}

	handler := slog.NewJSONHandler(logFile, opts)
	logger := slog.New(handler)
	slog.SetDefault(logger)

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg = applyFlags(cmd, cfg)

	if err := os.MkdirAll(cfg.ConfigDir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	if err := initLogger(cfg.ConfigDir, cfg.LogLevel); err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}
	slog.Info("starting whatschat application")

	contacts, err := loadContacts(cfg.ContactsFile)
	if err != nil {
		return fmt.Errorf("error loading contacts: %w", err)
	}

	db, err := bolt.Open(filepath.Join(cfg.ConfigDir, "whatschat.db"), 0600, nil)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	defer db.Close()

	if err := initKVDB(db); err != nil {
		return fmt.Errorf("error initializing kvdb: %w", err)
	}

	m, err := newMainModel(db, cfg, contacts)
	if err != nil {
		return fmt.Errorf("error initializing model: %w", err)
	}

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	slog.Info("whatschat stopped")
	return nil
}

// applyFlags lets explicitly set flags win over the environment.
func applyFlags(cmd *cobra.Command, cfg config) config {
	if cmd.Flags().Changed("contacts") {
		cfg.ContactsFile = flagContacts
	}
	if cmd.Flags().Changed("config-dir") {
		cfg.ConfigDir = flagConfigDir
	}
	if flagDebug {
		cfg.LogLevel = slog.LevelDebug
	}
	if flagNoNotify {
		cfg.Notify = false
	}
	return cfg
}

func newMainModel(db *bolt.DB, cfg config, contacts []contact) (mainModel, error) {
	m := mainModel{
		db:     db,
		cfg:    cfg,
		store:  newSessionStore(contacts),
		notify: sendNotification,
	}

	var err error

	m.keymap = newKeymap()

	m, err = m.initProviders()
	if err != nil {
		return mainModel{}, fmt.Errorf("failed to load llm providers: %w", err)
	}

	m, err = m.initReplySetting()
	if err != nil {
		return mainModel{}, fmt.Errorf("failed to load reply setting: %w", err)
	}

	m = m.initContacts()
	m = m.initChat()
	m = m.initOptions()

	m.helpModel = help.New()

	// Without a provider every reply would be the fallback apology, so we start
	// where the user can fix that.
	m = m.setViewState(viewStateContacts)
	if !m.providersIsConfigured() || !m.replySetting.isConfigured() {
		m = m.setViewState(viewStateOptions)
	}

	return m, nil
}

func (mainModel) Init() tea.Cmd {
	return tea.EnterAltScreen
}

func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.quit) {
			return m, tea.Quit
		}
	case replyMsg:
		// We put this handler here because the reply might be received when
		// viewState is not viewStateChat, or for another contact.
		return m.handleReply(msg)
	}

	var cmd tea.Cmd

	switch m.viewState {
	case viewStateContacts:
		m, cmd = m.handleContactsEvents(msg)
	case viewStateChat:
		m, cmd = m.handleChatEvents(msg)
	case viewStateAttachForm:
		m, cmd = m.handleAttachFormEvents(msg)
	case viewStateOptions:
		m, cmd = m.handleOptionsEvents(msg)
	case viewStateProviders:
		m, cmd = m.handleProvidersEvents(msg)
	case viewStateProviderForm:
		m, cmd = m.handleProviderFormEvents(msg)
	case viewStateReplyLLMForm:
		m, cmd = m.handleReplyLLMFormEvents(msg)
	}

	return m, cmd
}

func (m mainModel) View() string {
	var vs []string

	switch m.viewState {
	case viewStateContacts:
		vs = append(vs, m.contactsView())
	case viewStateChat:
		vs = append(vs, m.chatView())
	case viewStateAttachForm:
		vs = append(vs, m.attachFormView())
	case viewStateOptions:
		vs = append(vs, m.optionsView())
	case viewStateProviders:
		vs = append(vs, m.providersView())
	case viewStateProviderForm:
		vs = append(vs, m.providerFormView())
	case viewStateReplyLLMForm:
		vs = append(vs, m.replyLLMFormView())
	default:
		m.err = fmt.Errorf("unknown view state %d", m.viewState)
	}

	if m.err != nil {
		vs = append(vs, errView(m.width, m.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left, vs...)
}

func (m mainModel) setViewState(state viewState) mainModel {
	m.viewState = state

	return m
}
