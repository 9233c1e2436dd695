package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/huh"
	bolt "go.etcd.io/bbolt"
)

type anthropicProvider struct {
	APIKey string `json:"apiKey"`

	envAPIKey string
}

type anthropic struct {
	apiKey      string
	model       string
	temperature float64
	endpoint    string

	client *http.Client
}

type anthropicChatRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Temperature float64            `json:"temperature"`
	Stream      bool               `json:"stream"`
}

type anthropicMessage struct {
	Role    string                  `json:"role"`
	Content []anthropicContentBlock `json:"content"`
}

type anthropicContentBlock struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicChatResponse struct {
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Text string `json:"text"`
}

const (
	anthropicAPIEndpoint = "https://api.anthropic.com/v1"
)

var anthropicModels = []string{
	"claude-3-5-sonnet-latest",
	"claude-3-5-haiku-latest",
	"claude-3-opus-latest",
}

func (a anthropic) chat(ctx context.Context, chats []chat) llmResponse {
	systemChat, cs := extractSystemChat(chats)

	msgs := make([]anthropicMessage, len(cs))
	for i, c := range cs {
		msgs[i] = anthropicMessage{
			Role:    c.Role,
			Content: anthropicBlocks(c),
		}
	}

	reqBody := anthropicChatRequest{
		Model:       a.model,
		Messages:    msgs,
		Temperature: a.temperature,
		Stream:      false,
		System:      systemChat,
		MaxTokens:   a.maxTokens(),
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return llmResponse{
			err: fmt.Errorf("error marshaling request: %w", err),
		}
	}

	endpoint := a.endpoint
	if endpoint == "" {
		endpoint = anthropicAPIEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint+"/messages", bytes.NewBuffer(jsonBody))
	if err != nil {
		return llmResponse{
			err: fmt.Errorf("error creating request: %w", err),
		}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.client.Do(req)
	if err != nil {
		return llmResponse{
			err: fmt.Errorf("error sending request: %w", err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return llmResponse{
			err: fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body)),
		}
	}

	var response anthropicChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return llmResponse{
			err: fmt.Errorf("error decoding response: %w", err),
		}
	}

	if len(response.Content) == 0 {
		return llmResponse{
			err: fmt.Errorf("empty response content"),
		}
	}

	return llmResponse{
		content: response.Content[0].Text,
	}
}

// anthropicBlocks puts the attachment first, as recommended for vision and
// document inputs, followed by the text.
func anthropicBlocks(c chat) []anthropicContentBlock {
	var blocks []anthropicContentBlock

	if c.Attachment != nil {
		blockType := "document"
		if c.Attachment.isImage() {
			blockType = "image"
		}
		blocks = append(blocks, anthropicContentBlock{
			Type: blockType,
			Source: &anthropicSource{
				Type:      "base64",
				MediaType: c.Attachment.MediaType,
				Data:      c.Attachment.Data,
			},
		})
	}

	text := c.Content
	if strings.TrimSpace(text) == "" {
		// The API rejects empty text blocks.
		text = "..."
	}
	blocks = append(blocks, anthropicContentBlock{
		Type: "text",
		Text: text,
	})

	return blocks
}

func (a anthropic) maxTokens() int {
	if strings.HasPrefix(a.model, "claude-3-5-sonnet") ||
		strings.HasPrefix(a.model, "claude-3-5-haiku") {
		return 8192
	}
	return 4096
}

func (a anthropicProvider) Title() string {
	if a.isConfigured() {
		return fmt.Sprintf("%s (configured)", providerAnthropic)
	}
	return fmt.Sprintf("%s (not configured)", providerAnthropic)
}

func (a anthropicProvider) Description() string {
	return "Configure Anthropic connection"
}

func (a anthropicProvider) FilterValue() string {
	return providerAnthropic
}

func (a anthropicProvider) name() string {
	return providerAnthropic
}

func (a anthropicProvider) availableModels() []string {
	return anthropicModels
}

func (a anthropicProvider) isConfigured() bool {
	return a.APIKey != ""
}

func (a anthropicProvider) form(width, height int, keymap *huh.KeyMap) *huh.Form {
	apiKey := a.APIKey
	if apiKey == "" {
		apiKey = a.envAPIKey
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("anthropicAPIKey").
				Title("API Key").
				Description("Enter the API key for Anthropic.").
				Placeholder("API Key").
				EchoMode(huh.EchoModePassword).
				Value(&apiKey),
			huh.NewConfirm().
				Key("anthropicConfirm").
				Title("Confirm").
				Description("Save this Anthropic settings?").
				Affirmative("Yes").
				Negative("Back"),
		),
	).
		WithWidth(width).
		WithHeight(height).
		WithTheme(huh.ThemeCatppuccin()).
		WithKeyMap(keymap).
		WithShowErrors(true).
		WithShowHelp(true)
}

func (a anthropicProvider) saveForm(db *bolt.DB, form *huh.Form) (llmProvider, bool, error) {
	if !form.GetBool("anthropicConfirm") {
		return a, false, nil
	}

	apiKey := form.GetString("anthropicAPIKey")
	if apiKey == "" {
		return a, false, nil
	}

	a.APIKey = apiKey

	if err := saveProviderSettings(db, providerAnthropic, a); err != nil {
		return a, false, fmt.Errorf("error saving anthropic settings: %w", err)
	}

	return a, true, nil
}

func (a anthropicProvider) new(setting llmSetting) llm {
	return anthropic{
		apiKey:      a.APIKey,
		model:       setting.Model,
		temperature: setting.Temperature,
		endpoint:    anthropicAPIEndpoint,
		client:      &http.Client{},
	}
}
