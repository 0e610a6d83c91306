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


package reconcile

import "errors"

var (
	// ErrRecordRepositoryRequired is returned when a record repository is not provided.
	ErrRecordRepositoryRequired = errors.New("record repository required")

	// ErrSyncRunRepositoryRequired is returned when a sync run repository is not provided.
	ErrSyncRunRepositoryRequired = errors.New("sync run repository required")

	// ErrEngineRequired is returned when a coordinator is built without an engine.
	ErrEngineRequired = errors.New("upsert engine required")

	// ErrItemPanicked marks an item whose processing panicked.
	ErrItemPanicked = errors.New("item processing panicked")
)
