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
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/ledgersync/ai"
	"github.com/poiesic/ledgersync/core"
	"github.com/tmc/langchaingo/llms"
)

// Provider implements ai.Provider on top of a langchaingo model.
type Provider struct {
	name   string
	model  string
	client llms.Model
	ready  bool
	logger *slog.Logger
}

var (
	_ ai.Provider     = (*Provider)(nil)
	_ ai.Availability = (*Provider)(nil)
)

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// WithAvailable overrides the readiness reported by Available.
func WithAvailable(ready bool) Option {
	return func(p *Provider) {
		p.ready = ready
	}
}

// New wraps client under the given provider name. model is used when a
// call does not name one.
func New(name string, client llms.Model, model string, opts ...Option) *Provider {
	p := &Provider{
		name:   name,
		model:  model,
		client: client,
		ready:  client != nil,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "provider", "provider", name)
	return p
}

func (p *Provider) Name() string {
	return p.name
}

// Available reports whether the provider has a client to call.
func (p *Provider) Available() bool {
	return p.ready && p.client != nil
}

// Process sends messages to the model and returns the first choice.
func (p *Provider) Process(ctx context.Context, messages []ai.Message, opts ai.Options) (*ai.Response, error) {
	model := opts.Model
	if model == "" {
		model = p.model
	}
	if p.client == nil {
		return nil, p.wrap(model, errors.New("provider not configured"))
	}

	callOpts := []llms.CallOption{llms.WithTemperature(opts.Temperature)}
	if model != "" {
		callOpts = append(callOpts, llms.WithModel(model))
	}
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxTokens))
	}
	if opts.JSONMode {
		callOpts = append(callOpts, llms.WithJSONMode())
	}

	start := time.Now()
	resp, err := p.client.GenerateContent(ctx, toContent(messages), callOpts...)
	latency := time.Since(start)
	if err != nil {
		p.logger.Warn("generate content failed", "model", model, "latency", latency, "err", err)
		return nil, p.wrap(model, err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return nil, p.wrap(model, errors.New("no choices returned"))
	}

	choice := resp.Choices[0]
	p.logger.Debug("generated content", "model", model, "latency", latency, "stop_reason", choice.StopReason)
	return &ai.Response{
		Result:  choice.Content,
		Model:   model,
		Usage:   usageFrom(choice.GenerationInfo),
		Latency: latency,
	}, nil
}

func (p *Provider) wrap(model string, err error) error {
	return &ai.ProviderError{
		Provider: p.name,
		Model:    model,
		Err:      err,
		Timeout:  errors.Is(err, context.DeadlineExceeded),
	}
}

func toContent(messages []ai.Message) []llms.MessageContent {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		role := llms.ChatMessageTypeHuman
		switch m.Role {
		case ai.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case ai.RoleAssistant:
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, m.Content))
	}
	return content
}

// usageFrom reads token counts from generation info. Backends name the
// keys differently and report them as int, int64 or float64.
func usageFrom(info map[string]any) core.Usage {
	var u core.Usage
	u.PromptTokens = firstInt(info, "PromptTokens", "InputTokens", "prompt_eval_count")
	u.CompletionTokens = firstInt(info, "CompletionTokens", "OutputTokens", "eval_count")
	u.TotalTokens = firstInt(info, "TotalTokens")
	if u.TotalTokens == 0 {
		u.TotalTokens = u.PromptTokens + u.CompletionTokens
	}
	return u
}

func firstInt(info map[string]any, keys ...string) int {
	for _, key := range keys {
		switch v := info[key].(type) {
		case int:
			return v
		case int32:
			return int(v)
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}
