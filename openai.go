package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	goopenai "github.com/sashabaranov/go-openai"
	bolt "go.etcd.io/bbolt"
)

type openaiProvider struct {
	APIKey string `json:"apiKey"`

	// envAPIKey prefills the form when nothing is stored yet.
	envAPIKey string
}

type openai struct {
	apiKey      string
	model       string
	temperature float64

	client *goopenai.Client
}

func newOpenAIClient(apiKey, baseURL string) *goopenai.Client {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return goopenai.NewClientWithConfig(cfg)
}

func (o openai) chat(ctx context.Context, chats []chat) llmResponse {
	systemChat, cs := extractSystemChat(chats)

	msgs := make([]goopenai.ChatCompletionMessage, 0, len(cs)+1)
	if systemChat != "" {
		msgs = append(msgs, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: systemChat,
		})
	}

	for _, c := range cs {
		msgs = append(msgs, openaiMessage(c))
	}

	resp, err := o.client.CreateChatCompletion(
		ctx,
		goopenai.ChatCompletionRequest{
			Model:       o.model,
			Messages:    msgs,
			Temperature: float32(o.temperature),
		},
	)
	if err != nil {
		return llmResponse{
			err: fmt.Errorf("error creating chat completion: %w", err),
		}
	}

	if len(resp.Choices) == 0 {
		return llmResponse{
			err: fmt.Errorf("no choices in response"),
		}
	}

	return llmResponse{
		content: resp.Choices[0].Message.Content,
	}
}

// openaiMessage converts a chat, sending image attachments inline as data
// URIs. Other documents are only announced by name.
func openaiMessage(c chat) goopenai.ChatCompletionMessage {
	if c.Attachment == nil {
		return goopenai.ChatCompletionMessage{
			Role:    c.Role,
			Content: c.Content,
		}
	}

	if !c.Attachment.isImage() {
		return goopenai.ChatCompletionMessage{
			Role:    c.Role,
			Content: fmt.Sprintf("%s\n\n[Attached document: %s (%s)]", c.Content, c.Attachment.Name, c.Attachment.MediaType),
		}
	}

	return goopenai.ChatCompletionMessage{
		Role: c.Role,
		MultiContent: []goopenai.ChatMessagePart{
			{
				Type: goopenai.ChatMessagePartTypeText,
				Text: c.Content,
			},
			{
				Type: goopenai.ChatMessagePartTypeImageURL,
				ImageURL: &goopenai.ChatMessageImageURL{
					URL:    c.Attachment.dataURI(),
					Detail: goopenai.ImageURLDetailAuto,
				},
			},
		},
	}
}

func (o openaiProvider) Title() string {
	if o.isConfigured() {
		return fmt.Sprintf("%s (configured)", providerOpenAI)
	}
	return fmt.Sprintf("%s (not configured)", providerOpenAI)
}

func (o openaiProvider) Description() string {
	return "Configure OpenAI connection"
}

func (o openaiProvider) FilterValue() string {
	return providerOpenAI
}

func (o openaiProvider) name() string {
	return providerOpenAI
}

func (o openaiProvider) availableModels() []string {
	client := newOpenAIClient(o.APIKey, "")

	mList, err := client.ListModels(context.Background())
	if err != nil {
		return []string{}
	}

	res := make([]string, len(mList.Models))
	for i, m := range mList.Models {
		res[i] = m.ID
	}

	return res
}

func (o openaiProvider) isConfigured() bool {
	return o.APIKey != ""
}

func (o openaiProvider) form(width, height int, keymap *huh.KeyMap) *huh.Form {
	apiKey := o.APIKey
	if apiKey == "" {
		apiKey = o.envAPIKey
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("openaiAPIKey").
				Title("API Key").
				Description("Enter the API key for OpenAI.").
				Placeholder("API Key").
				EchoMode(huh.EchoModePassword).
				Value(&apiKey),
			huh.NewConfirm().
				Key("openaiConfirm").
				Title("Confirm").
				Description("Save this OpenAI settings?").
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

func (o openaiProvider) saveForm(db *bolt.DB, form *huh.Form) (llmProvider, bool, error) {
	if !form.GetBool("openaiConfirm") {
		return o, false, nil
	}

	apiKey := form.GetString("openaiAPIKey")

	if apiKey == "" {
		return o, false, nil
	}

	o.APIKey = apiKey

	if err := saveProviderSettings(db, providerOpenAI, o); err != nil {
		return o, false, fmt.Errorf("error saving openai settings: %w", err)
	}

	return o, true, nil
}

func (o openaiProvider) new(setting llmSetting) llm {
	return openai{
		apiKey:      o.APIKey,
		model:       setting.Model,
		temperature: setting.Temperature,
		client:      newOpenAIClient(o.APIKey, ""),
	}
}
