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


// Package storage defines the persistence contracts of ledgersync.
//
// Three repositories decouple reconciliation and caching from the storage
// backend:
//
//   - RecordRepository: reconciled records keyed by ID with a unique
//     (owner, source system, source id) dedup index
//   - SyncRunRepository: the audit log of reconciliation runs
//   - CacheRepository: memoized results of expensive remote calls
//
// Implementations live in subpackages:
//
//	storage/badger   records, runs and cache on an embedded BadgerDB
//	storage/sqlite   records and runs on SQLite with embedded migrations
//	storage/redis    cache entries on Redis
//
// Use in tests with in-memory storage:
//
//	stores, err := badger.NewMemoryStores()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer stores.Close()
//
// # Thread Safety
//
// All repository implementations must be safe for concurrent use.
//
// # Errors
//
// Backends translate driver errors into the sentinels in this package.
// ErrStorageClosed in particular signals that the backend is unavailable;
// reconciliation stops the run when it sees it.
package storage
