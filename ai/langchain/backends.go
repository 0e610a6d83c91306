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


package langchain

import (
	"fmt"

	"github.com/poiesic/ledgersync/ai"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewOpenAI creates a provider for an OpenAI-compatible endpoint.
func NewOpenAI(cfg ai.BackendConfig, opts ...Option) (*Provider, error) {
	// local OpenAI-compatible servers accept any token
	token := cfg.Token
	if token == "" {
		token = "none"
	}
	clientOpts := []openai.Option{
		openai.WithToken(token),
		openai.WithModel(cfg.Model),
	}
	if cfg.Host != "" {
		clientOpts = append(clientOpts, openai.WithBaseURL(cfg.Host))
	}
	client, err := openai.New(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("openai client: %w", err)
	}
	return New(ai.ProviderOpenAI, client, cfg.Model, opts...), nil
}

// NewAnthropic creates a provider for the Anthropic messages API.
func NewAnthropic(cfg ai.BackendConfig, opts ...Option) (*Provider, error) {
	clientOpts := []anthropic.Option{
		anthropic.WithToken(cfg.Token),
		anthropic.WithModel(cfg.Model),
	}
	if cfg.Host != "" {
		clientOpts = append(clientOpts, anthropic.WithBaseURL(cfg.Host))
	}
	client, err := anthropic.New(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("anthropic client: %w", err)
	}
	return New(ai.ProviderAnthropic, client, cfg.Model, opts...), nil
}

// NewOllama creates a provider for a native Ollama server.
func NewOllama(cfg ai.BackendConfig, opts ...Option) (*Provider, error) {
	clientOpts := []ollama.Option{ollama.WithModel(cfg.Model)}
	if cfg.Host != "" {
		clientOpts = append(clientOpts, ollama.WithServerURL(cfg.Host))
	}
	client, err := ollama.New(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("ollama client: %w", err)
	}
	return New(ai.ProviderOllama, client, cfg.Model, opts...), nil
}

// RegisterAll validates cfg and registers a provider for every enabled
// backend. It returns ai.ErrNoProviders when none is enabled.
func RegisterAll(registry *ai.Registry, cfg *ai.Config, opts ...Option) error {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return err
	}

	builders := []struct {
		name  string
		build func(ai.BackendConfig, ...Option) (*Provider, error)
		cfg   ai.BackendConfig
	}{
		{ai.ProviderOpenAI, NewOpenAI, cfg.OpenAI},
		{ai.ProviderAnthropic, NewAnthropic, cfg.Anthropic},
		{ai.ProviderOllama, NewOllama, cfg.Ollama},
	}

	registered := 0
	for _, b := range builders {
		if !cfg.Enabled(b.name) {
			continue
		}
		p, err := b.build(b.cfg, opts...)
		if err != nil {
			return err
		}
		if err := registry.Register(b.name, p); err != nil {
			return err
		}
		registered++
	}
	if registered == 0 {
		return ai.ErrNoProviders
	}
	return nil
}
