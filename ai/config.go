// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"fmt"
	"strings"
)

// Provider names known to the registry.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// PrimaryProvider is the hard-coded fallback used when a requested
// provider is missing or unavailable.
const PrimaryProvider = ProviderOpenAI

// BackendConfig holds the connection settings of one provider backend.
type BackendConfig struct {
	// Host is the base URL of the backend API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	Host string

	// Model is the model identifier used when a call does not name one.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	Model string

	// Token is the API key. Local OpenAI-compatible servers accept "none".
	Token string
}

// Config holds configuration for AI service providers.
type Config struct {
	// DefaultProvider names the provider used by ResolveDefault.
	// Default: PrimaryProvider
	DefaultProvider string

	OpenAI    BackendConfig
	Anthropic BackendConfig
	Ollama    BackendConfig

	// Temperature is the sampling temperature for classification calls.
	// Default: 0
	Temperature float64

	// MaxTokens caps the response length. Zero leaves it to the backend.
	MaxTokens int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithDefaultProvider sets the provider used by ResolveDefault.
func WithDefaultProvider(name string) ConfigOption {
	return func(c *Config) {
		c.DefaultProvider = name
	}
}

// WithOpenAI configures the OpenAI-compatible backend.
func WithOpenAI(host, model, token string) ConfigOption {
	return func(c *Config) {
		c.OpenAI = BackendConfig{Host: host, Model: model, Token: token}
	}
}

// WithAnthropic configures the Anthropic backend. An empty host uses the public API.
func WithAnthropic(host, model, token string) ConfigOption {
	return func(c *Config) {
		c.Anthropic = BackendConfig{Host: host, Model: model, Token: token}
	}
}

// WithOllama configures the Ollama backend.
func WithOllama(host, model string) ConfigOption {
	return func(c *Config) {
		c.Ollama = BackendConfig{Host: host, Model: model}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temperature float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = temperature
	}
}

// WithMaxTokens caps the response length.
func WithMaxTokens(maxTokens int) ConfigOption {
	return func(c *Config) {
		c.MaxTokens = maxTokens
	}
}

// DefaultConfig returns a Config with sensible defaults for a local
// OpenAI-compatible service. Anthropic and Ollama are left unconfigured.
func DefaultConfig() *Config {
	return &Config{
		DefaultProvider: PrimaryProvider,
		OpenAI: BackendConfig{
			Host:  "http://localhost:11434/v1",
			Model: "qwen2.5:3b",
			Token: "none",
		},
		Anthropic: BackendConfig{
			Model: "claude-3-5-haiku-latest",
		},
		Ollama: BackendConfig{
			Model: "qwen2.5:3b",
		},
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithOpenAI("https://api.openai.com/v1", "gpt-4o-mini", os.Getenv("OPENAI_API_KEY")),
//	    WithOllama("http://localhost:11434", "llama3.1"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Enabled reports whether the named backend has enough settings to be registered.
func (c *Config) Enabled(name string) bool {
	switch name {
	case ProviderOpenAI:
		return c.OpenAI.Host != ""
	case ProviderAnthropic:
		return c.Anthropic.Token != ""
	case ProviderOllama:
		return c.Ollama.Host != ""
	}
	return false
}

// Normalize ensures the configuration is in a canonical form.
// OpenAI-compatible hosts get a /v1 suffix; Ollama hosts lose it, since the
// Ollama client adds its own API path.
func (c *Config) Normalize() {
	c.DefaultProvider = strings.ToLower(strings.TrimSpace(c.DefaultProvider))
	if c.DefaultProvider == "" {
		c.DefaultProvider = PrimaryProvider
	}
	if c.OpenAI.Host != "" && !strings.HasSuffix(c.OpenAI.Host, "/v1") {
		c.OpenAI.Host = strings.TrimSuffix(c.OpenAI.Host, "/") + "/v1"
	}
	if c.OpenAI.Host != "" && c.OpenAI.Token == "" {
		c.OpenAI.Token = "none"
	}
	c.Ollama.Host = strings.TrimSuffix(strings.TrimSuffix(c.Ollama.Host, "/"), "/v1")
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.DefaultProvider {
	case ProviderOpenAI, ProviderAnthropic, ProviderOllama:
	default:
		return fmt.Errorf("ai config: unknown DefaultProvider %q", c.DefaultProvider)
	}
	for _, name := range []string{ProviderOpenAI, ProviderAnthropic, ProviderOllama} {
		if c.Enabled(name) && c.backend(name).Model == "" {
			return fmt.Errorf("ai config: %s Model is required", name)
		}
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("ai config: Temperature must be between 0 and 2")
	}
	if c.MaxTokens < 0 {
		return errors.New("ai config: MaxTokens must not be negative")
	}
	return nil
}

func (c *Config) backend(name string) BackendConfig {
	switch name {
	case ProviderAnthropic:
		return c.Anthropic
	case ProviderOllama:
		return c.Ollama
	default:
		return c.OpenAI
	}
}
