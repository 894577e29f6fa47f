package mailer

import (
	"context"
	"errors"
)

// Failover tries a primary transport and, only when it fails, a fallback.
// There is no partial-send state: either exactly one transport delivered the
// message or the joined errors of both attempts are returned. No retries.
type Failover struct {
	primary  Sender
	fallback Sender
}

// NewFailover builds a failover sender. The fallback may be nil, in which
// case a primary failure is terminal.
func NewFailover(primary, fallback Sender) (*Failover, error) {
	if primary == nil {
		return nil, errors.New("mailer: primary sender is required")
	}
	return &Failover{primary: primary, fallback: fallback}, nil
}

// Send attempts the primary transport, then the fallback.
func (f *Failover) Send(ctx context.Context, msg Message) error {
	primaryErr := f.primary.Send(ctx, msg)
	if primaryErr == nil {
		return nil
	}

	if f.fallback == nil {
		return primaryErr
	}

	if fallbackErr := f.fallback.Send(ctx, msg); fallbackErr != nil {
		return errors.Join(primaryErr, fallbackErr)
	}
	return nil
}
