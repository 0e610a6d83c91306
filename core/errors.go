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

package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidRecord indicates an IncomingRecord failed validation.
	ErrInvalidRecord = errors.New("invalid incoming record")

	// ErrMissingSourceID indicates a record without an external identifier.
	// Such records cannot be deduplicated.
	ErrMissingSourceID = errors.New("source id is required")

	// ErrInvalidAmount indicates an amount that is NaN or infinite.
	ErrInvalidAmount = errors.New("amount must be a finite number")

	// ErrMissingOwner indicates an empty owner reference.
	ErrMissingOwner = errors.New("owner id is required")

	// ErrMissingSourceSystem indicates an empty source system name.
	ErrMissingSourceSystem = errors.New("source system is required")

	// ErrUnknownField indicates a field name outside the comparable set.
	ErrUnknownField = errors.New("unknown record field")

	// ErrInvalidTransition indicates an illegal run status change.
	ErrInvalidTransition = errors.New("invalid run status transition")
)
