package main

import (
	"context"
	"fmt"
)

type llmResponse struct {
	content string
	err     error
}

type llm interface {
	chat(context.Context, []chat) llmResponse
}

// llmSetting selects the provider and model that answer on behalf of the
// contacts.
type llmSetting struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

const defaultTemperature = 0.7

func (s llmSetting) isConfigured() bool {
	return s.Provider != "" && s.Model != ""
}

// newReplyLLM builds the llm described by the setting from the configured
// providers.
func newReplyLLM(providers []llmProvider, setting llmSetting) (llm, error) {
	if !setting.isConfigured() {
		return nil, fmt.Errorf("reply model is not configured")
	}

	for _, p := range providers {
		if p.name() != setting.Provider {
			continue
		}
		if !p.isConfigured() {
			return nil, fmt.Errorf("provider %s is not configured", p.name())
		}
		return p.new(setting), nil
	}

	return nil, fmt.Errorf("unknown provider %s", setting.Provider)
}

// extractSystemChat splits the leading system chats from the conversation,
// for providers that take the system prompt out of band.
func extractSystemChat(chats []chat) (string, []chat) {
	system := ""
	rest := make([]chat, 0, len(chats))
	for _, c := range chats {
		if c.Role == roleSystem {
			if system != "" {
				system += "\n"
			}
			system += c.Content
			continue
		}
		rest = append(rest, c)
	}
	return system, rest
}
