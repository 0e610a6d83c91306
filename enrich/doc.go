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


// Package enrich classifies records with a remote model and memoizes the
// answers.
//
// A Classifier looks the request up in a cache.Cache first. On a miss it
// resolves a provider from the registry, calls it under a hard timeout with
// bounded retries, parses the JSON answer and caches it. Classifier.Enrich
// fills empty category and vendor fields of an incoming record and is
// meant to be used as a soft step: callers log its error and continue.
package enrich
