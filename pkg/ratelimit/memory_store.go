package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements an in-memory sliding window store. Intended for
// tests and single-process deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	windows map[string]*slidingWindowRecord

	cleanupInterval time.Duration
	initialCapacity int
	stopCleanup     chan struct{}
	cleanupOnce     sync.Once
}

type slidingWindowRecord struct {
	mu         sync.Mutex
	timestamps []time.Time
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets the cleanup interval for expired entries.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.cleanupInterval = interval
		}
	}
}

// WithInitialCapacity sets the initial capacity for timestamp slices.
func WithInitialCapacity(capacity int) MemoryStoreOption {
	return func(s *MemoryStore) {
		if capacity > 0 {
			s.initialCapacity = capacity
		}
	}
}

// NewMemoryStore creates a new in-memory store with automatic cleanup.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		windows:         make(map[string]*slidingWindowRecord),
		cleanupInterval: time.Minute,
		initialCapacity: 16,
		stopCleanup:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	go s.cleanupLoop()

	return s
}

func (s *MemoryStore) record(key string) *slidingWindowRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.windows[key]
	if !exists {
		rec = &slidingWindowRecord{
			timestamps: make([]time.Time, 0, s.initialCapacity),
		}
		s.windows[key] = rec
	}
	return rec
}

// RecordTimestampIfAllowed atomically prunes expired timestamps, checks the
// limit, and records the new timestamps only when allowed.
func (s *MemoryStore) RecordTimestampIfAllowed(ctx context.Context, key string, timestamp time.Time, window time.Duration, limit int, n int) (bool, int64, error) {
	if n <= 0 {
		n = 1
	}

	rec := s.record(key)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	cutoff := timestamp.Add(-window)
	valid := rec.timestamps[:0]
	for _, ts := range rec.timestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}
	rec.timestamps = valid

	if len(rec.timestamps)+n > limit {
		return false, int64(len(rec.timestamps)), nil
	}

	for range n {
		rec.timestamps = append(rec.timestamps, timestamp)
	}
	return true, int64(len(rec.timestamps)), nil
}

// CountInWindow returns the number of timestamps within the sliding window,
// pruning expired entries along the way.
func (s *MemoryStore) CountInWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	s.mu.RLock()
	rec, exists := s.windows[key]
	s.mu.RUnlock()

	if !exists {
		return 0, nil
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	cutoff := time.Now().Add(-window)
	valid := rec.timestamps[:0]
	for _, ts := range rec.timestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}
	rec.timestamps = valid

	return int64(len(rec.timestamps)), nil
}

// CleanupExpired removes expired timestamps and drops empty records.
func (s *MemoryStore) CleanupExpired(ctx context.Context, key string, window time.Duration) error {
	s.mu.RLock()
	rec, exists := s.windows[key]
	s.mu.RUnlock()

	if !exists {
		return nil
	}

	rec.mu.Lock()
	cutoff := time.Now().Add(-window)
	valid := rec.timestamps[:0]
	for _, ts := range rec.timestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}
	rec.timestamps = valid
	empty := len(rec.timestamps) == 0
	rec.mu.Unlock()

	if empty {
		s.mu.Lock()
		delete(s.windows, key)
		s.mu.Unlock()
	}

	return nil
}

// Delete removes the given key from the store.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.windows, key)
	return nil
}

// cleanupLoop runs periodically to drop empty records.
func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, rec := range s.windows {
		rec.mu.Lock()
		if len(rec.timestamps) == 0 {
			delete(s.windows, key)
		}
		rec.mu.Unlock()
	}
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() error {
	s.cleanupOnce.Do(func() {
		close(s.stopCleanup)
	})
	return nil
}
