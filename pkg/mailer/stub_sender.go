package mailer

import (
	"context"
	"errors"
)

// StubSender is the placeholder fallback transport. It always fails with
// ErrNotImplemented so operators notice that a real fallback must be
// configured before relying on it.
type StubSender struct{}

// NewStubSender returns the always-failing fallback transport.
func NewStubSender() *StubSender {
	return &StubSender{}
}

func (s *StubSender) Send(ctx context.Context, msg Message) error {
	return errors.Join(ErrFailedToSend, ErrNotImplemented)
}
