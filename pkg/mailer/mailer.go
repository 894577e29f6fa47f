// Package mailer delivers notification emails through pluggable transports.
// A Failover sender chains a primary transport with an optional fallback;
// no transport retries on its own and a failed send is surfaced, not
// re-attempted.
package mailer

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
)

// Sender is a single email transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one outbound plain-text email.
type Message struct {
	To          string
	Subject     string
	Body        string
	From        string
	FromName    string
	ReplyTo     string
	ReplyToName string
}

// Validate checks the fields every transport needs.
func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return fmt.Errorf("%w: recipient is required", ErrInvalidMessage)
	}
	if _, err := mail.ParseAddress(m.To); err != nil {
		return fmt.Errorf("%w: invalid recipient address", ErrInvalidMessage)
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	}
	if strings.TrimSpace(m.Body) == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidMessage)
	}
	return nil
}

// fromHeader renders "Name <address>" when a display name is present.
func fromHeader(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}
