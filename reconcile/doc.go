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


// Package reconcile merges batches of external records into local storage.
//
// The Engine decides, for a single incoming record, whether to create a
// stored record, update it in place or leave it alone. The Coordinator runs
// a whole batch through the Engine in chunks on a bounded worker pool and
// records a core.SyncRun audit entry for every invocation.
//
// # Failure model
//
// Item-level errors are soft: they are logged with the record's source id,
// counted in RunStats.FailedItems and never abort the batch. A record store
// that reports storage.ErrStorageClosed, or the expiry of the run deadline
// or caller context, is a hard failure: the run stops, is saved as failed
// and the error is returned.
//
// # Usage
//
//	engine, err := reconcile.NewEngine(stores.Records)
//	coord, err := reconcile.NewCoordinator(engine, stores.Runs,
//	    reconcile.WithChunkSize(200),
//	    reconcile.WithEnricher(classifier),
//	)
//	defer coord.Release()
//
//	processed, run, err := coord.Reconcile(ctx, ownerID, "quickbooks", batch)
//
// Reconcile is idempotent: running the same batch twice creates nothing the
// second time and reports every item as unchanged.
package reconcile
