package mailer

import "errors"

var (
	// ErrFailedToSend indicates the message could not be delivered.
	ErrFailedToSend = errors.New("mailer: failed to send email")
	// ErrInvalidMessage indicates the message is missing required fields.
	ErrInvalidMessage = errors.New("mailer: invalid message")
	// ErrInvalidConfig indicates a transport was constructed with bad config.
	ErrInvalidConfig = errors.New("mailer: invalid config")
	// ErrNotImplemented marks the stub fallback transport. Production
	// deployments must inject a real fallback sender.
	ErrNotImplemented = errors.New("mailer: fallback transport not fully implemented")
)
