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


package badger

import "errors"

// Stores bundles the repositories that share one Backend.
type Stores struct {
	Backend *Backend
	Records *RecordRepository
	Runs    *SyncRunRepository
	Cache   *CacheRepository
}

// NewStores creates all repositories on an open backend.
func NewStores(backend *Backend) (*Stores, error) {
	records, err := NewRecordRepository(backend)
	if err != nil {
		return nil, err
	}
	return &Stores{
		Backend: backend,
		Records: records,
		Runs:    NewSyncRunRepository(backend),
		Cache:   NewCacheRepository(backend),
	}, nil
}

// Close closes the repositories and then the backend.
func (s *Stores) Close() error {
	return errors.Join(
		s.Records.Close(),
		s.Runs.Close(),
		s.Cache.Close(),
		s.Backend.Close(),
	)
}

// NewMemoryStores creates in-memory repositories for testing.
// Caller must Close the result when done.
func NewMemoryStores() (*Stores, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}

	stores, err := NewStores(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return stores, nil
}
