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


// Package ai defines the Provider contract for remote model backends and
// the Registry that selects between them.
//
// A Provider turns a list of messages into a single text result. Concrete
// backends live in ai/langchain; ai/mock holds test doubles.
//
// # Failover
//
// Registry.Resolve returns the requested provider when it is registered and
// available. Otherwise it logs a warning and falls back to PrimaryProvider,
// then to the first available provider by name. ErrNoProviders is only
// returned when nothing is available at all, which callers should treat as
// a startup configuration error.
//
//	registry := ai.NewRegistry(ai.WithDefault(cfg.DefaultProvider))
//	if err := langchain.RegisterAll(registry, cfg); err != nil {
//	    log.Fatal(err)
//	}
//	provider, err := registry.ResolveDefault()
//	resp, err := provider.Process(ctx, []ai.Message{
//	    {Role: ai.RoleUser, Content: "Uber *trip 4411"},
//	}, ai.Options{JSONMode: true})
//
// Provider errors are *ProviderError values. errors.Is matches
// ErrProviderFailed for all of them and ErrProviderTimeout for deadline
// expiry.
package ai
