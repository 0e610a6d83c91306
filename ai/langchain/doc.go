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


// Package langchain adapts langchaingo chat models to ai.Provider.
//
// One Provider wraps any llms.Model. Constructors are provided for the
// three backends ledgersync ships with:
//
//	openaiProvider, err := langchain.NewOpenAI(cfg.OpenAI)
//	anthropicProvider, err := langchain.NewAnthropic(cfg.Anthropic)
//	ollamaProvider, err := langchain.NewOllama(cfg.Ollama)
//
// RegisterAll builds every backend enabled in an ai.Config and registers it
// with a Registry:
//
//	registry := ai.NewRegistry(ai.WithDefault(cfg.DefaultProvider))
//	if err := langchain.RegisterAll(registry, cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// Backend errors are returned as *ai.ProviderError. Deadline expiry also
// matches ai.ErrProviderTimeout.
package langchain
