package main

import (
	"encoding/json"

	bolt "go.etcd.io/bbolt"
)

const (
	llmSettingsBucket = "llmSettings"

	replySettingKey = "reply"
)

func initKVDB(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(llmSettingsBucket))
		return err
	})
}

// loadSetting decodes the setting stored under key into v. A missing key
// leaves v untouched.
func loadSetting(db *bolt.DB, key string, v any) error {
	return db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(llmSettingsBucket))

		data := b.Get([]byte(key))
		if data == nil {
			return nil
		}

		return json.Unmarshal(data, v)
	})
}

func saveSetting(db *bolt.DB, key string, v any) error {
	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(llmSettingsBucket))

		data, err := json.Marshal(v)
		if err != nil {
			return err
		}

		return b.Put([]byte(key), data)
	})
}

func loadOllamaSettings(db *bolt.DB) (ollamaProvider, error) {
	var o ollamaProvider
	err := loadSetting(db, providerSettingKey(providerOllama), &o)
	return o, err
}

func loadAnthropicSettings(db *bolt.DB) (anthropicProvider, error) {
	var a anthropicProvider
	err := loadSetting(db, providerSettingKey(providerAnthropic), &a)
	return a, err
}

func loadOpenAISettings(db *bolt.DB) (openaiProvider, error) {
	var o openaiProvider
	err := loadSetting(db, providerSettingKey(providerOpenAI), &o)
	return o, err
}

func saveProviderSettings(db *bolt.DB, providerName string, provider llmProvider) error {
	return saveSetting(db, providerSettingKey(providerName), provider)
}

func loadReplySetting(db *bolt.DB) (llmSetting, error) {
	s := llmSetting{Temperature: defaultTemperature}
	err := loadSetting(db, replySettingKey, &s)
	return s, err
}

func saveReplySetting(db *bolt.DB, s llmSetting) error {
	return saveSetting(db, replySettingKey, s)
}

func providerSettingKey(providerName string) string {
	switch providerName {
	case providerOllama:
		return "ollama"
	case providerAnthropic:
		return "anthropic"
	case providerOpenAI:
		return "openai"
	}
	return providerName
}
