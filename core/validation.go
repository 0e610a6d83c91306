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

import (
	"fmt"
	"math"
	"strings"
)

// ValidateIncomingRecord validates an IncomingRecord before reconciliation.
//
// Validation rules:
//   - SourceID must not be empty or whitespace
//   - Amount must be finite
//
// NOT validated (passthrough data):
//   - Description, Category, Vendor (may be filled in by enrichment)
//   - Date (zero is allowed for sources that omit it)
//   - Extra
func ValidateIncomingRecord(record *IncomingRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if strings.TrimSpace(record.SourceID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrMissingSourceID)
	}

	if math.IsNaN(record.Amount) || math.IsInf(record.Amount, 0) {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrInvalidAmount)
	}

	return nil
}

// ValidateScope checks the owner and source system that scope a run.
func ValidateScope(ownerID, sourceSystem string) error {
	if strings.TrimSpace(ownerID) == "" {
		return ErrMissingOwner
	}
	if strings.TrimSpace(sourceSystem) == "" {
		return ErrMissingSourceSystem
	}
	return nil
}
