package submissionlog

import "errors"

var (
	// ErrRecordFailed indicates an entry could not be persisted.
	ErrRecordFailed = errors.New("failed to record submission")
	// ErrInvalidPath indicates the recorder was configured without a log path.
	ErrInvalidPath = errors.New("log path is required")
)
