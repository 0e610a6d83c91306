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


package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/ledgersync/ai"
	"github.com/poiesic/ledgersync/cache"
	"github.com/poiesic/ledgersync/core"
)

const (
	DefaultTimeout     = 90 * time.Second
	DefaultMaxAttempts = 2
	defaultBaseDelay   = 500 * time.Millisecond
	maxRetryDelay      = 10 * time.Second
	defaultMaxTokens   = 256
)

// Resolver hands out providers. *ai.Registry implements it.
type Resolver interface {
	Resolve(name string) (ai.Provider, error)
	ResolveDefault() (ai.Provider, error)
}

// Classification is the model's answer for one record.
type Classification struct {
	Category   string  `json:"category"`
	Vendor     string  `json:"vendor"`
	Confidence float64 `json:"confidence"`
}

// Classifier produces cached classifications.
type Classifier struct {
	resolver      Resolver
	cache         *cache.Cache
	provider      string
	timeout       time.Duration
	maxAttempts   int
	baseDelay     time.Duration
	ttl           time.Duration
	minConfidence float64
	logger        *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier) error

// WithCache memoizes answers in c. Without it every call reaches a provider.
func WithCache(c *cache.Cache) Option {
	return func(cl *Classifier) error {
		cl.cache = c
		return nil
	}
}

// WithProvider asks the resolver for a named provider instead of the default.
func WithProvider(name string) Option {
	return func(cl *Classifier) error {
		cl.provider = name
		return nil
	}
}

// WithTimeout bounds a whole classification, retries included.
func WithTimeout(d time.Duration) Option {
	return func(cl *Classifier) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cl.timeout = d
		return nil
	}
}

// WithMaxAttempts sets how many provider calls a classification may make.
func WithMaxAttempts(n int) Option {
	return func(cl *Classifier) error {
		if n <= 0 {
			return ai.ErrInvalidMaxAttempts
		}
		cl.maxAttempts = n
		return nil
	}
}

// WithBaseDelay sets the first retry delay. It doubles on every retry.
func WithBaseDelay(d time.Duration) Option {
	return func(cl *Classifier) error {
		cl.baseDelay = d
		return nil
	}
}

// WithTTL sets the cache lifetime of answers. Zero uses the cache default.
func WithTTL(ttl time.Duration) Option {
	return func(cl *Classifier) error {
		cl.ttl = ttl
		return nil
	}
}

// WithMinConfidence makes Enrich ignore answers below the threshold.
func WithMinConfidence(threshold float64) Option {
	return func(cl *Classifier) error {
		if threshold < 0 || threshold > 1 {
			return errors.New("min confidence must be between 0 and 1")
		}
		cl.minConfidence = threshold
		return nil
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Classifier) error {
		cl.logger = logger
		return nil
	}
}

// NewClassifier creates a classifier that takes providers from resolver.
func NewClassifier(resolver Resolver, opts ...Option) (*Classifier, error) {
	if resolver == nil {
		return nil, errors.New("resolver is required")
	}
	c := &Classifier{
		resolver:    resolver,
		timeout:     DefaultTimeout,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "classifier")
	return c, nil
}

// Classify returns the classification of payload, which must encode to JSON.
func (c *Classifier) Classify(ctx context.Context, payload any) (*Classification, error) {
	if c.cache != nil {
		if entry, ok := c.cache.Get(ctx, payload, systemPrompt); ok {
			cls, err := parseClassification(entry.Payload)
			if err == nil {
				return cls, nil
			}
			c.logger.Warn("ignoring unreadable cached classification", "key", entry.Key, "err", err)
		}
	}

	provider, err := c.resolve()
	if err != nil {
		return nil, err
	}

	input, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode classification input: %w", err)
	}
	messages := []ai.Message{
		{Role: ai.RoleSystem, Content: systemPrompt},
		{Role: ai.RoleUser, Content: string(input)},
	}
	opts := ai.Options{JSONMode: true, MaxTokens: defaultMaxTokens}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		cls  *Classification
		resp *ai.Response
	)
	backoff := ai.Backoff{Attempts: c.maxAttempts, BaseDelay: c.baseDelay, MaxDelay: maxRetryDelay}
	err = backoff.Do(callCtx, func(attempt int) error {
		r, err := provider.Process(callCtx, messages, opts)
		if err != nil {
			c.logger.Warn("provider call failed", "provider", provider.Name(), "attempt", attempt, "err", err)
			return err
		}
		parsed, err := parseClassification([]byte(r.Result))
		if err != nil {
			c.logger.Warn("error parsing classifier response", "provider", provider.Name(),
				"attempt", attempt, "response", r.Result, "err", err)
			return err
		}
		cls, resp = parsed, r
		return nil
	})
	if err != nil {
		if callCtx.Err() != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %s: %w", ErrTimeout, c.timeout, err)
		}
		return nil, fmt.Errorf("classify with %s: %w", provider.Name(), err)
	}

	if c.cache != nil {
		encoded, err := json.Marshal(cls)
		if err == nil {
			c.cache.Put(ctx, payload, systemPrompt, encoded, resp.Model, resp.Usage, c.ttl)
		}
	}
	c.logger.Debug("classified", "provider", provider.Name(), "model", resp.Model,
		"category", cls.Category, "latency", resp.Latency, "tokens", resp.Usage.TotalTokens)
	return cls, nil
}

// ClassifyRecord classifies the business fields of rec without modifying it.
func (c *Classifier) ClassifyRecord(ctx context.Context, rec *core.IncomingRecord) (*Classification, error) {
	return c.Classify(ctx, inputFor(rec))
}

// Enrich fills an empty Category or Vendor of rec. Records that already
// carry both are left alone without a provider call.
func (c *Classifier) Enrich(ctx context.Context, rec *core.IncomingRecord) error {
	if rec.Category != "" && rec.Vendor != "" {
		return nil
	}

	cls, err := c.ClassifyRecord(ctx, rec)
	if err != nil {
		return err
	}
	if cls.Confidence < c.minConfidence {
		c.logger.Debug("classification below threshold", "source_id", rec.SourceID,
			"confidence", cls.Confidence, "min", c.minConfidence)
		return nil
	}

	if rec.Category == "" {
		rec.Category = cls.Category
	}
	if rec.Vendor == "" {
		rec.Vendor = cls.Vendor
	}
	return nil
}

func (c *Classifier) resolve() (ai.Provider, error) {
	if c.provider != "" {
		return c.resolver.Resolve(c.provider)
	}
	return c.resolver.ResolveDefault()
}

// classifyInput is what the model sees of a record. SourceID is left out
// so identical transactions from different systems share a cache entry.
type classifyInput struct {
	Description   string  `json:"description"`
	Amount        float64 `json:"amount"`
	Date          string  `json:"date,omitempty"`
	Vendor        string  `json:"vendor,omitempty"`
	PaymentMethod string  `json:"payment_method,omitempty"`
}

func inputFor(rec *core.IncomingRecord) classifyInput {
	in := classifyInput{
		Description:   rec.Description,
		Amount:        rec.Amount,
		Vendor:        rec.Vendor,
		PaymentMethod: rec.PaymentMethod,
	}
	if !rec.Date.IsZero() {
		in.Date = rec.Date.UTC().Format(time.DateOnly)
	}
	return in
}
