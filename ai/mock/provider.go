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


package mock

import (
	"context"
	"sync"

	"github.com/poiesic/ledgersync/ai"
	"github.com/poiesic/ledgersync/core"
)

// DefaultResult is returned by MockProvider when no ProcessFunc is set.
const DefaultResult = `{"category":"uncategorized","vendor":"","confidence":0.5}`

// MockProvider is a test double for ai.Provider.
// It allows custom behavior injection via function fields and is safe for
// concurrent use.
type MockProvider struct {
	// ProcessFunc is called by Process if set.
	// If nil, returns DefaultResult.
	ProcessFunc func(ctx context.Context, messages []ai.Message, opts ai.Options) (*ai.Response, error)

	name        string
	unavailable bool

	mu        sync.Mutex
	callCount int
	lastCall  []ai.Message
}

var (
	_ ai.Provider     = (*MockProvider)(nil)
	_ ai.Availability = (*MockProvider)(nil)
)

// NewMockProvider creates a mock provider registered under name.
// Note: Returns concrete type to allow test assertions.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{name: name}
}

// WithProcessFunc sets custom behavior and returns the mock for chaining.
func (m *MockProvider) WithProcessFunc(fn func(ctx context.Context, messages []ai.Message, opts ai.Options) (*ai.Response, error)) *MockProvider {
	m.ProcessFunc = fn
	return m
}

// WithResult makes Process return result for every call.
func (m *MockProvider) WithResult(result string) *MockProvider {
	return m.WithProcessFunc(func(ctx context.Context, messages []ai.Message, opts ai.Options) (*ai.Response, error) {
		return &ai.Response{Result: result, Model: m.name + "-model"}, nil
	})
}

// SetAvailable toggles the value reported by Available.
func (m *MockProvider) SetAvailable(available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unavailable = !available
}

// Name returns the name given at construction.
func (m *MockProvider) Name() string {
	return m.name
}

// Available reports whether the mock is enabled. Defaults to true.
func (m *MockProvider) Available() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.unavailable
}

// Process records the call and delegates to ProcessFunc.
func (m *MockProvider) Process(ctx context.Context, messages []ai.Message, opts ai.Options) (*ai.Response, error) {
	m.mu.Lock()
	m.callCount++
	m.lastCall = messages
	fn := m.ProcessFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages, opts)
	}
	return &ai.Response{
		Result: DefaultResult,
		Model:  m.name + "-model",
		Usage:  core.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

// CallCount returns the number of times Process was called.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastMessages returns the messages of the most recent call.
func (m *MockProvider) LastMessages() []ai.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCall
}

// Reset clears the call count and custom functions.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastCall = nil
	m.ProcessFunc = nil
	m.unavailable = false
}
