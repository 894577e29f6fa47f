package submissionlog

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"syscall"
)

// FileRecorder appends entries to a newline-delimited JSON file. Writes are
// serialized with an in-process mutex and an exclusive advisory lock on the
// file, so multiple server processes can share the same log file.
type FileRecorder struct {
	path string
	mu   sync.Mutex
}

// NewFileRecorder creates a recorder writing to path. The parent directory is
// created if it does not exist.
func NewFileRecorder(path string) (*FileRecorder, error) {
	if path == "" {
		return nil, ErrInvalidPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Join(ErrRecordFailed, err)
		}
	}
	return &FileRecorder{path: path}, nil
}

// Record appends the entry as a single JSON line.
func (r *FileRecorder) Record(ctx context.Context, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return errors.Join(ErrRecordFailed, err)
	}
	line = append(line, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errors.Join(ErrRecordFailed, err)
	}
	defer f.Close()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return errors.Join(ErrRecordFailed, err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN)

	if _, err := f.Write(line); err != nil {
		return errors.Join(ErrRecordFailed, err)
	}
	return nil
}
