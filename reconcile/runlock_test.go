package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLocks(t *testing.T) {
	locks := newRunLocks()
	ctx := context.Background()

	unlock, err := locks.acquire(ctx, "user-1\x00xero")
	require.NoError(t, err)

	other, err := locks.acquire(ctx, "user-2\x00xero")
	require.NoError(t, err)
	other()

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = locks.acquire(waitCtx, "user-1\x00xero")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	acquired := make(chan func())
	go func() {
		next, err := locks.acquire(ctx, "user-1\x00xero")
		if err == nil {
			acquired <- next
		}
	}()

	unlock()
	unlock()
	select {
	case next := <-acquired:
		next()
	case <-time.After(time.Second):
		t.Fatal("waiter was not granted the lock")
	}
	assert.Zero(t, locks.size())
}
