// Package submissionlog records an audit trail of accepted contact form
// submissions as newline-delimited JSON. Entries carry metadata only, never
// the message body, so the log can be retained without holding correspondence
// content.
package submissionlog

import (
	"context"
	"time"
)

// Entry is a single audit record for an accepted submission.
type Entry struct {
	Timestamp     time.Time `json:"timestamp"`
	IP            string    `json:"ip"`
	UserAgent     string    `json:"user_agent"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Subject       string    `json:"subject"`
	Budget        string    `json:"budget"`
	MessageLength int       `json:"message_length"`
}

// BudgetNotSpecified is recorded when the sender left the budget field empty.
const BudgetNotSpecified = "Not specified"

// Recorder persists submission entries. Implementations must be safe for
// concurrent use. Recording is best-effort from the caller's point of view:
// a failed write must not fail the submission itself.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// NewEntry builds an entry stamped with the current time, substituting the
// BudgetNotSpecified placeholder for an empty budget.
func NewEntry(ip, userAgent, name, email, subject, budget string, messageLength int) Entry {
	if budget == "" {
		budget = BudgetNotSpecified
	}
	return Entry{
		Timestamp:     time.Now().UTC(),
		IP:            ip,
		UserAgent:     userAgent,
		Name:          name,
		Email:         email,
		Subject:       subject,
		Budget:        budget,
		MessageLength: messageLength,
	}
}
