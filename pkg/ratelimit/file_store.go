package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore persists one sliding window record per key as a JSON array of
// epoch seconds, in a file named after the hashed key. The persisted record
// is the sole coordination point between independent request processes: a
// read-modify-write race between two requests from the same client can
// under-count, which is acceptable at this scale, but writes go through a
// temp file and atomic rename so a crashed or concurrent writer can never
// leave a corrupted record behind.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("ratelimit: file store dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return &FileStore{dir: dir}, nil
}

// path maps a key to its record file. Keys are hashed so arbitrary client
// identifiers never reach the filesystem.
func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, fmt.Sprintf("rate_limit_%s.json", HashKey(key)))
}

// load reads and decodes a record. A missing file is an empty record.
func (s *FileStore) load(key string) ([]int64, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	var stamps []int64
	if err := json.Unmarshal(data, &stamps); err != nil {
		// A record that cannot be decoded is discarded rather than trusted.
		return nil, nil
	}
	return stamps, nil
}

// save atomically replaces a record via temp file and rename.
func (s *FileStore) save(key string, stamps []int64) error {
	data, err := json.Marshal(stamps)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}

	tmp, err := os.CreateTemp(s.dir, "rate_limit_*.tmp")
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Join(ErrStoreUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Join(ErrStoreUnavailable, err)
	}

	if err := os.Rename(tmpName, s.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// prune drops timestamps older than the window relative to now.
func prune(stamps []int64, now time.Time, window time.Duration) []int64 {
	cutoff := now.Add(-window).Unix()
	valid := stamps[:0]
	for _, ts := range stamps {
		if ts > cutoff {
			valid = append(valid, ts)
		}
	}
	return valid
}

// RecordTimestampIfAllowed loads the record, prunes stale entries lazily,
// and records the attempt only when it stays within the limit. Denied
// attempts leave the record untouched.
func (s *FileStore) RecordTimestampIfAllowed(ctx context.Context, key string, timestamp time.Time, window time.Duration, limit int, n int) (bool, int64, error) {
	if n <= 0 {
		n = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stamps, err := s.load(key)
	if err != nil {
		return false, 0, err
	}

	stamps = prune(stamps, timestamp, window)

	if len(stamps)+n > limit {
		return false, int64(len(stamps)), nil
	}

	for range n {
		stamps = append(stamps, timestamp.Unix())
	}
	if err := s.save(key, stamps); err != nil {
		return false, 0, err
	}
	return true, int64(len(stamps)), nil
}

// CountInWindow returns the number of timestamps within the window without
// rewriting the record; stale entries are pruned on the next write.
func (s *FileStore) CountInWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamps, err := s.load(key)
	if err != nil {
		return 0, err
	}
	return int64(len(prune(stamps, time.Now(), window))), nil
}

// CleanupExpired rewrites the record without stale entries, removing the
// file entirely when the window is empty.
func (s *FileStore) CleanupExpired(ctx context.Context, key string, window time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamps, err := s.load(key)
	if err != nil {
		return err
	}
	if len(stamps) == 0 {
		return nil
	}

	stamps = prune(stamps, time.Now(), window)
	if len(stamps) == 0 {
		return s.deleteLocked(key)
	}
	return s.save(key, stamps)
}

// Delete removes the record for the given key.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(key)
}

func (s *FileStore) deleteLocked(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
