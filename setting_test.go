package main

import "testing"

func TestValidateTemperature(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"0", false},
		{"0.7", false},
		{"2", false},
		{"-0.1", true},
		{"2.5", true},
		{"warm", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if err := validateTemperature(tt.input); (err != nil) != tt.wantErr {
				t.Errorf("validateTemperature(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestRefreshReplyLLM(t *testing.T) {
	m := newTestModel(t, &fakeLLM{})

	m.replySetting = llmSetting{Provider: providerOpenAI, Model: "gpt-4o-mini"}
	m = m.refreshReplyLLM()
	if m.replyLLM != nil {
		t.Errorf("refreshReplyLLM() with unconfigured provider = %T, want nil", m.replyLLM)
	}

	m.providers = []llmProvider{openaiProvider{APIKey: "sk-test"}}
	m = m.refreshReplyLLM()
	if _, ok := m.replyLLM.(openai); !ok {
		t.Errorf("refreshReplyLLM() = %T, want openai", m.replyLLM)
	}
}
