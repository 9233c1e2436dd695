package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

var testImage = &attachment{Data: "iVBORw0KGgo=", MediaType: "image/png", Name: "logo.png"}

func testChats(att *attachment) []chat {
	return []chat{
		{Role: roleSystem, Content: "You are Marie."},
		{Role: roleUser, Content: "Hi"},
		{Role: roleAssistant, Content: "Hello!"},
		{Role: roleUser, Content: "Look at this", Attachment: att},
	}
}

func TestExtractSystemChat(t *testing.T) {
	system, rest := extractSystemChat([]chat{
		{Role: roleSystem, Content: "first"},
		{Role: roleUser, Content: "hi"},
		{Role: roleSystem, Content: "second"},
	})

	if system != "first\nsecond" {
		t.Errorf("extractSystemChat() system = %q, want %q", system, "first\nsecond")
	}
	if len(rest) != 1 || rest[0].Content != "hi" {
		t.Errorf("extractSystemChat() rest = %+v, want only the user chat", rest)
	}
}

func TestNewReplyLLM(t *testing.T) {
	providers := []llmProvider{
		ollamaProvider{Host: "http://localhost:11434"},
		anthropicProvider{},
		openaiProvider{APIKey: "sk-test"},
	}

	tests := []struct {
		name    string
		setting llmSetting
		wantErr bool
	}{
		{"Not configured", llmSetting{}, true},
		{"Unknown provider", llmSetting{Provider: "Gemini", Model: "gemini-pro"}, true},
		{"Provider without credentials", llmSetting{Provider: providerAnthropic, Model: "claude-3-5-haiku-latest"}, true},
		{"Ollama", llmSetting{Provider: providerOllama, Model: "llama3.2"}, false},
		{"OpenAI", llmSetting{Provider: providerOpenAI, Model: "gpt-4o-mini"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := newReplyLLM(providers, tt.setting)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newReplyLLM() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && l == nil {
				t.Errorf("newReplyLLM() = nil, want an llm")
			}
		})
	}
}

func TestOpenAIChat(t *testing.T) {
	var body struct {
		Model    string                   `json:"model"`
		Messages []map[string]interface{} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("request path = %s, want /v1/chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q, want Bearer sk-test", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Nice logo!"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	o := openai{
		model:  "gpt-4o-mini",
		client: newOpenAIClient("sk-test", srv.URL+"/v1"),
	}

	resp := o.chat(context.Background(), testChats(testImage))
	if resp.err != nil {
		t.Fatalf("chat() error = %v", resp.err)
	}
	if resp.content != "Nice logo!" {
		t.Errorf("chat() content = %q, want %q", resp.content, "Nice logo!")
	}

	if body.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want gpt-4o-mini", body.Model)
	}
	if len(body.Messages) != 4 {
		t.Fatalf("messages = %d, want 4", len(body.Messages))
	}
	if body.Messages[0]["role"] != "system" {
		t.Errorf("first message role = %v, want system", body.Messages[0]["role"])
	}

	parts, ok := body.Messages[3]["content"].([]interface{})
	if !ok || len(parts) != 2 {
		t.Fatalf("last message content = %v, want text and image parts", body.Messages[3]["content"])
	}
	image, _ := parts[1].(map[string]interface{})
	imageURL, _ := image["image_url"].(map[string]interface{})
	if imageURL["url"] != testImage.dataURI() {
		t.Errorf("image url = %v, want %s", imageURL["url"], testImage.dataURI())
	}
}

func TestOpenAIMessageDocument(t *testing.T) {
	doc := &attachment{Data: "JVBERi0=", MediaType: "application/pdf", Name: "brief.pdf"}

	msg := openaiMessage(chat{Role: roleUser, Content: "Read this", Attachment: doc})

	if len(msg.MultiContent) != 0 {
		t.Errorf("MultiContent = %v, want plain content for documents", msg.MultiContent)
	}
	if !strings.Contains(msg.Content, "brief.pdf") || !strings.HasPrefix(msg.Content, "Read this") {
		t.Errorf("Content = %q, want the text followed by the document name", msg.Content)
	}
}

func TestAnthropicChat(t *testing.T) {
	var body anthropicChatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("request path = %s, want /messages", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "key" {
			t.Errorf("x-api-key = %q, want key", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"Love the colors"}]}`))
	}))
	defer srv.Close()

	a := anthropic{
		apiKey:   "key",
		model:    "claude-3-5-haiku-latest",
		endpoint: srv.URL,
		client:   srv.Client(),
	}

	resp := a.chat(context.Background(), testChats(testImage))
	if resp.err != nil {
		t.Fatalf("chat() error = %v", resp.err)
	}
	if resp.content != "Love the colors" {
		t.Errorf("chat() content = %q, want %q", resp.content, "Love the colors")
	}

	if body.System != "You are Marie." {
		t.Errorf("system = %q, want the persona prompt", body.System)
	}
	if body.MaxTokens != 8192 {
		t.Errorf("max_tokens = %d, want 8192", body.MaxTokens)
	}
	if len(body.Messages) != 3 {
		t.Fatalf("messages = %d, want 3", len(body.Messages))
	}

	last := body.Messages[2].Content
	if len(last) != 2 || last[0].Type != "image" || last[1].Type != "text" {
		t.Fatalf("last content = %+v, want an image block then a text block", last)
	}
	if last[0].Source == nil || last[0].Source.Data != testImage.Data || last[0].Source.MediaType != "image/png" {
		t.Errorf("image source = %+v, want the attachment data", last[0].Source)
	}
}

func TestAnthropicChatError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := anthropic{apiKey: "key", model: "claude-3-opus-latest", endpoint: srv.URL, client: srv.Client()}

	resp := a.chat(context.Background(), testChats(nil))
	if resp.err == nil {
		t.Fatalf("chat() error = nil, want an error for status 503")
	}
	if !strings.Contains(resp.err.Error(), "503") {
		t.Errorf("chat() error = %v, want the status code", resp.err)
	}
}

func TestAnthropicBlocks(t *testing.T) {
	tests := []struct {
		name      string
		chat      chat
		wantTypes []string
	}{
		{"Text only", chat{Content: "hi"}, []string{"text"}},
		{"Image", chat{Content: "hi", Attachment: testImage}, []string{"image", "text"}},
		{"Document without caption", chat{Attachment: &attachment{Data: "JVBERi0=", MediaType: "application/pdf", Name: "a.pdf"}}, []string{"document", "text"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := anthropicBlocks(tt.chat)
			if len(blocks) != len(tt.wantTypes) {
				t.Fatalf("anthropicBlocks() = %+v, want types %v", blocks, tt.wantTypes)
			}
			for i, want := range tt.wantTypes {
				if blocks[i].Type != want {
					t.Errorf("block %d type = %q, want %q", i, blocks[i].Type, want)
				}
			}
			if text := blocks[len(blocks)-1].Text; text == "" {
				t.Errorf("text block is empty, want a non-empty text")
			}
		})
	}
}

func TestOllamaChat(t *testing.T) {
	var body ollamaChatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("request path = %s, want /api/chat", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"llava","message":{"role":"assistant","content":"A green logo"},"done":true}`))
	}))
	defer srv.Close()

	o := ollama{host: srv.URL, model: "llava", temperature: 0.3, client: srv.Client()}

	resp := o.chat(context.Background(), testChats(testImage))
	if resp.err != nil {
		t.Fatalf("chat() error = %v", resp.err)
	}
	if resp.content != "A green logo" {
		t.Errorf("chat() content = %q, want %q", resp.content, "A green logo")
	}

	if body.Stream {
		t.Errorf("stream = true, want false")
	}
	if body.Options.Temperature != 0.3 {
		t.Errorf("temperature = %v, want 0.3", body.Options.Temperature)
	}
	if len(body.Messages) != 4 {
		t.Fatalf("messages = %d, want 4", len(body.Messages))
	}
	if got := body.Messages[3].Images; len(got) != 1 || got[0] != testImage.Data {
		t.Errorf("images = %v, want the attachment data", got)
	}
}

func TestOllamaListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("request path = %s, want /api/tags", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"models":[{"name":"llama3.2"},{"name":"llava"}]}`))
	}))
	defer srv.Close()

	models := ollamaProvider{Host: srv.URL}.availableModels()
	if len(models) != 2 || models[0] != "llama3.2" || models[1] != "llava" {
		t.Errorf("availableModels() = %v, want [llama3.2 llava]", models)
	}

	if models := (ollamaProvider{Host: "http://127.0.0.1:1"}).availableModels(); len(models) != 0 {
		t.Errorf("availableModels() on unreachable host = %v, want empty", models)
	}
}
