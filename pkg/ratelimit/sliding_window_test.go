package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hardiksavani/portfolio-backend/pkg/ratelimit"
)

func TestNewSlidingWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		store       ratelimit.SlidingWindowStore
		limit       int
		window      time.Duration
		expectError error
	}{
		{
			name:        "nil store",
			store:       nil,
			limit:       5,
			window:      time.Second,
			expectError: ratelimit.ErrStoreRequired,
		},
		{
			name:        "zero limit",
			store:       ratelimit.NewMemoryStore(),
			limit:       0,
			window:      time.Second,
			expectError: ratelimit.ErrInvalidLimit,
		},
		{
			name:        "negative window",
			store:       ratelimit.NewMemoryStore(),
			limit:       5,
			window:      -time.Second,
			expectError: ratelimit.ErrInvalidInterval,
		},
		{
			name:   "valid configuration",
			store:  ratelimit.NewMemoryStore(),
			limit:  5,
			window: time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sw, err := ratelimit.NewSlidingWindow(tt.store, tt.limit, tt.window)
			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				assert.Nil(t, sw)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, sw)
			}
		})
	}
}

func TestSlidingWindowAllow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty key", func(t *testing.T) {
		t.Parallel()

		sw, err := ratelimit.NewSlidingWindow(ratelimit.NewMemoryStore(), 5, time.Second)
		require.NoError(t, err)

		result, err := sw.Allow(ctx, "")
		assert.ErrorIs(t, err, ratelimit.ErrKeyRequired)
		assert.Nil(t, result)
	})

	t.Run("sixth request within window is denied", func(t *testing.T) {
		t.Parallel()

		sw, err := ratelimit.NewSlidingWindow(ratelimit.NewMemoryStore(), 5, time.Hour)
		require.NoError(t, err)

		for i := range 5 {
			result, err := sw.Allow(ctx, "client")
			require.NoError(t, err)
			assert.True(t, result.Allowed, "request %d should be allowed", i+1)
			assert.Equal(t, 5, result.Limit)
			assert.Equal(t, 4-i, result.Remaining)
		}

		result, err := sw.Allow(ctx, "client")
		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Equal(t, 0, result.Remaining)
		assert.Positive(t, result.RetryAfter())
	})

	t.Run("denied attempt is not recorded", func(t *testing.T) {
		t.Parallel()

		sw, err := ratelimit.NewSlidingWindow(ratelimit.NewMemoryStore(), 2, time.Hour)
		require.NoError(t, err)

		for range 2 {
			_, err := sw.Allow(ctx, "client")
			require.NoError(t, err)
		}
		for range 3 {
			result, err := sw.Allow(ctx, "client")
			require.NoError(t, err)
			assert.False(t, result.Allowed)
		}

		status, err := sw.Status(ctx, "client")
		require.NoError(t, err)
		assert.Equal(t, 0, status.Remaining, "denied attempts must not add to the window")
	})

	t.Run("allowed again after window elapses", func(t *testing.T) {
		t.Parallel()

		sw, err := ratelimit.NewSlidingWindow(ratelimit.NewMemoryStore(), 2, 100*time.Millisecond)
		require.NoError(t, err)

		for range 2 {
			result, err := sw.Allow(ctx, "client")
			require.NoError(t, err)
			assert.True(t, result.Allowed)
		}

		result, err := sw.Allow(ctx, "client")
		require.NoError(t, err)
		assert.False(t, result.Allowed)

		time.Sleep(150 * time.Millisecond)

		result, err = sw.Allow(ctx, "client")
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()

		sw, err := ratelimit.NewSlidingWindow(ratelimit.NewMemoryStore(), 1, time.Hour)
		require.NoError(t, err)

		result, err := sw.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, result.Allowed)

		result, err = sw.Allow(ctx, "b")
		require.NoError(t, err)
		assert.True(t, result.Allowed)

		result, err = sw.Allow(ctx, "a")
		require.NoError(t, err)
		assert.False(t, result.Allowed)
	})
}

func TestSlidingWindowReset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sw, err := ratelimit.NewSlidingWindow(ratelimit.NewMemoryStore(), 1, time.Hour)
	require.NoError(t, err)

	_, err = sw.Allow(ctx, "client")
	require.NoError(t, err)

	result, err := sw.Allow(ctx, "client")
	require.NoError(t, err)
	require.False(t, result.Allowed)

	require.NoError(t, sw.Reset(ctx, "client"))

	result, err = sw.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestMemoryStoreConcurrency(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := ratelimit.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	sw, err := ratelimit.NewSlidingWindow(store, 50, time.Hour)
	require.NoError(t, err)

	var wg sync.WaitGroup
	allowed := make(chan bool, 100)
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := sw.Allow(ctx, "shared")
			if err == nil {
				allowed <- result.Allowed
			}
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for ok := range allowed {
		if ok {
			count++
		}
	}
	assert.Equal(t, 50, count)
}
