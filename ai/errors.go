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
)

var (
	// ErrProviderFailed indicates the remote backend returned an error.
	ErrProviderFailed = errors.New("provider call failed")

	// ErrProviderTimeout indicates the call exceeded its deadline.
	ErrProviderTimeout = errors.New("provider call timed out")

	// ErrNoProviders indicates that no provider is registered at all.
	// This is a startup configuration error.
	ErrNoProviders = errors.New("no AI providers registered")

	// ErrInvalidMaxAttempts indicates that maxAttempts must be greater than 0.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)

// ProviderError wraps a backend error with the provider and model that produced it.
type ProviderError struct {
	Provider string
	Model    string
	Err      error
	Timeout  bool
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Provider, e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is matches ErrProviderFailed for every ProviderError and
// ErrProviderTimeout for timeouts.
func (e *ProviderError) Is(target error) bool {
	switch target {
	case ErrProviderFailed:
		return true
	case ErrProviderTimeout:
		return e.Timeout
	}
	return false
}
