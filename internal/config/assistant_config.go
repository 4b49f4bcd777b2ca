package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	geminiAPIKeyKey     = "gemini_api_key"
	geminiModelKey      = "gemini_model"
	geminiBaseURLKey    = "gemini_base_url"
	assistantTimeoutKey = "assistant_timeout"
)

type AssistantConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	GetGeminiBaseURL() string
	GetAssistantTimeout() time.Duration
}

type Assistant struct {
	v *viper.Viper
}

var _ AssistantConfig = Assistant{}

func (a Assistant) GetGeminiAPIKey() string {
	return a.v.GetString(geminiAPIKeyKey)
}

func (a Assistant) GetGeminiModel() string {
	return a.v.GetString(geminiModelKey)
}

func (a Assistant) GetGeminiBaseURL() string {
	return a.v.GetString(geminiBaseURLKey)
}

func (a Assistant) GetAssistantTimeout() time.Duration {
	return a.v.GetDuration(assistantTimeoutKey)
}
