package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/huh"
	bolt "go.etcd.io/bbolt"
)

type ollamaProvider struct {
	Host string `json:"host"`

	envHost string
}

type ollama struct {
	host        string
	model       string
	temperature float64

	client *http.Client
}

type ollamaChatRequest struct {
	Model    string                  `json:"model"`
	Messages []ollamaChatMessage     `json:"messages"`
	Stream   bool                    `json:"stream"`
	Options  ollamaChatRequestOption `json:"options"`
}

type ollamaChatRequestOption struct {
	Temperature float64 `json:"temperature"`
}

type ollamaChatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaChatResponse struct {
	Model   string            `json:"model"`
	Message ollamaChatMessage `json:"message"`
	Done    bool              `json:"done"`
}

type ollamaModelsResponse struct {
	Models []ollamaModel `json:"models"`
}

type ollamaModel struct {
	Name string `json:"name"`
}

const (
	defaultOllamaHost = "http://127.0.0.1:11434"
)

func (o ollama) chat(ctx context.Context, chats []chat) llmResponse {
	msgs := make([]ollamaChatMessage, len(chats))
	for i, c := range chats {
		msgs[i] = ollamaMessage(c)
	}

	reqBody := ollamaChatRequest{
		Model:    o.model,
		Messages: msgs,
		Stream:   false,
		Options: ollamaChatRequestOption{
			Temperature: o.temperature,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return llmResponse{
			err: fmt.Errorf("error marshaling request: %w", err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.host+"/api/chat", bytes.NewBuffer(jsonBody))
	if err != nil {
		return llmResponse{
			err: fmt.Errorf("error creating request: %w", err),
		}
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
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

	var response ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return llmResponse{
			err: fmt.Errorf("error decoding response: %w", err),
		}
	}

	return llmResponse{
		content: response.Message.Content,
	}
}

// ollamaMessage converts a chat. Ollama only understands images, so other
// attachments are announced by name.
func ollamaMessage(c chat) ollamaChatMessage {
	msg := ollamaChatMessage{
		Role:    c.Role,
		Content: c.Content,
	}
	if c.Attachment == nil {
		return msg
	}

	if c.Attachment.isImage() {
		msg.Images = []string{c.Attachment.Data}
		return msg
	}

	msg.Content = fmt.Sprintf("%s\n\n[Attached document: %s (%s)]", c.Content, c.Attachment.Name, c.Attachment.MediaType)
	return msg
}

func (o ollamaProvider) Title() string {
	if o.isConfigured() {
		return fmt.Sprintf("%s (configured)", providerOllama)
	}
	return fmt.Sprintf("%s (not configured)", providerOllama)
}

func (o ollamaProvider) Description() string {
	return "Configure Ollama connection"
}

func (o ollamaProvider) FilterValue() string {
	return providerOllama
}

func (o ollamaProvider) name() string {
	return providerOllama
}

func (o ollamaProvider) new(setting llmSetting) llm {
	return ollama{
		host:        o.Host,
		model:       setting.Model,
		temperature: setting.Temperature,
		client:      &http.Client{},
	}
}

func (o ollamaProvider) availableModels() []string {
	models, err := o.listModels()
	if err != nil {
		return []string{}
	}
	return models
}

func (o ollamaProvider) listModels() ([]string, error) {
	req, err := http.NewRequest("GET", o.Host+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	client := &http.Client{}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var response ollamaModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}

	models := make([]string, len(response.Models))
	for i, model := range response.Models {
		models[i] = model.Name
	}

	return models, nil
}

func (o ollamaProvider) isConfigured() bool {
	return o.Host != ""
}

func (o ollamaProvider) form(width, height int, keymap *huh.KeyMap) *huh.Form {
	host := o.Host
	if host == "" {
		host = o.envHost
	}
	if host == "" {
		host = defaultOllamaHost
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("ollamaHost").
				Title("Host").
				Description("Enter the host for ollama.").
				Placeholder("Host").
				Value(&host),
			huh.NewConfirm().
				Key("ollamaConfirm").
				Title("Confirm").
				Description("Save this ollama settings?").
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

func (o ollamaProvider) saveForm(db *bolt.DB, form *huh.Form) (llmProvider, bool, error) {
	if !form.GetBool("ollamaConfirm") {
		return o, false, nil
	}

	host := form.GetString("ollamaHost")
	if host == "" {
		return o, false, nil
	}

	o.Host = host

	if err := saveProviderSettings(db, providerOllama, o); err != nil {
		return o, false, fmt.Errorf("error saving ollama settings: %w", err)
	}

	return o, true, nil
}
