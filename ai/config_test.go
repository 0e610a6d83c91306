package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, PrimaryProvider, cfg.DefaultProvider)
	assert.Equal(t, "http://localhost:11434/v1", cfg.OpenAI.Host)
	assert.Equal(t, "qwen2.5:3b", cfg.OpenAI.Model)
	assert.True(t, cfg.Enabled(ProviderOpenAI))
	assert.False(t, cfg.Enabled(ProviderAnthropic))
	assert.False(t, cfg.Enabled(ProviderOllama))
	require.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(
		WithDefaultProvider("Anthropic"),
		WithAnthropic("", "claude-3-5-haiku-latest", "sk-test"),
		WithOllama("http://ollama:11434/v1/", "llama3.1"),
		WithTemperature(0.2),
		WithMaxTokens(256),
	)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ProviderAnthropic, cfg.DefaultProvider)
	assert.True(t, cfg.Enabled(ProviderAnthropic))
	assert.Equal(t, "http://ollama:11434", cfg.Ollama.Host)
	assert.Equal(t, 0.2, cfg.Temperature)
	assert.Equal(t, 256, cfg.MaxTokens)
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		expected string
	}{
		{"adds /v1 suffix", "http://localhost:8080", "http://localhost:8080/v1"},
		{"strips trailing slash", "http://localhost:8080/", "http://localhost:8080/v1"},
		{"keeps existing suffix", "https://api.openai.com/v1", "https://api.openai.com/v1"},
		{"leaves empty host", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(WithOpenAI(tt.host, "gpt-4o-mini", ""))
			cfg.Normalize()
			assert.Equal(t, tt.expected, cfg.OpenAI.Host)
		})
	}

	cfg := &Config{OpenAI: BackendConfig{Host: "http://x/v1", Model: "m"}}
	cfg.Normalize()
	assert.Equal(t, PrimaryProvider, cfg.DefaultProvider)
	assert.Equal(t, "none", cfg.OpenAI.Token)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		errMsg string
	}{
		{
			name:   "unknown default provider",
			config: NewConfig(WithDefaultProvider("gemini")),
			errMsg: "unknown DefaultProvider",
		},
		{
			name:   "enabled backend without model",
			config: NewConfig(WithOllama("http://localhost:11434", "")),
			errMsg: "ollama Model is required",
		},
		{
			name:   "temperature out of range",
			config: NewConfig(WithTemperature(3)),
			errMsg: "Temperature",
		},
		{
			name:   "negative max tokens",
			config: NewConfig(WithMaxTokens(-1)),
			errMsg: "MaxTokens",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
