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


// Package cache memoizes results of expensive remote computations.
//
// Entries are addressed by a digest of the canonical JSON encoding of the
// input and the instruction applied to it, so logically equal requests share
// an entry. Entries expire lazily: Get deletes a stale entry it finds and
// reports a miss. Sweep and StartSweeper remove entries nobody reads again.
//
// The cache never fails its caller. Store errors are logged and turn into a
// miss on Get or a dropped write on Put.
//
//	c := cache.New(stores.Cache, cache.WithDefaultTTL(12*time.Hour))
//	if entry, ok := c.Get(ctx, payload, instruction); ok {
//	    return entry.Payload
//	}
//	// call the provider ...
//	c.Put(ctx, payload, instruction, result, resp.Model, resp.Usage, 0)
package cache
