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


package ai

import (
	"context"
	"errors"
	"math"
	"time"
)

// Backoff retries provider calls with exponentially growing pauses.
type Backoff struct {
	// Attempts is the total number of calls, including the first.
	Attempts int
	// BaseDelay is the pause after the first failure. It doubles after
	// every further failure.
	BaseDelay time.Duration
	// MaxDelay caps a single pause. Zero means no cap.
	MaxDelay time.Duration
}

// delay is the pause that follows failed call number attempt.
func (b Backoff) delay(attempt int) time.Duration {
	d := b.BaseDelay
	for range attempt - 1 {
		if d > math.MaxInt64/2 || (b.MaxDelay > 0 && d >= b.MaxDelay) {
			break
		}
		d *= 2
	}
	if b.MaxDelay > 0 && d > b.MaxDelay {
		d = b.MaxDelay
	}
	return d
}

// Do runs call until it succeeds, Attempts calls have failed or ctx is
// done. call receives the 1-based attempt number. The last call error is
// returned; a cancelled context is reported together with it.
func (b Backoff) Do(ctx context.Context, call func(attempt int) error) error {
	if b.Attempts < 1 {
		return ErrInvalidMaxAttempts
	}

	var err error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Join(ctxErr, err)
		}
		if err = call(attempt); err == nil || attempt == b.Attempts {
			return err
		}

		pause := time.NewTimer(b.delay(attempt))
		select {
		case <-ctx.Done():
			pause.Stop()
			return errors.Join(ctx.Err(), err)
		case <-pause.C:
		}
	}
}
