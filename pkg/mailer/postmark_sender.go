package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/mrz1836/postmark"
)

// PostmarkConfig holds Postmark transport configuration.
type PostmarkConfig struct {
	ServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	AccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
}

// PostmarkSender delivers mail through Postmark's transactional API. Used as
// the primary transport on hosts without a local mail submission agent.
type PostmarkSender struct {
	client *postmark.Client
}

// NewPostmarkSender creates a Postmark-backed sender. Both tokens are
// required so misconfiguration fails at startup rather than at send time.
func NewPostmarkSender(cfg PostmarkConfig) (*PostmarkSender, error) {
	if cfg.ServerToken == "" {
		return nil, fmt.Errorf("%w: Postmark server token is required", ErrInvalidConfig)
	}
	if cfg.AccountToken == "" {
		return nil, fmt.Errorf("%w: Postmark account token is required", ErrInvalidConfig)
	}
	return &PostmarkSender{
		client: postmark.NewClient(cfg.ServerToken, cfg.AccountToken),
	}, nil
}

func (p *PostmarkSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	replyTo := msg.ReplyTo
	if replyTo != "" && msg.ReplyToName != "" {
		addr := mail.Address{Name: msg.ReplyToName, Address: msg.ReplyTo}
		replyTo = addr.String()
	}

	resp, err := p.client.SendEmail(ctx, postmark.Email{
		From:     fromHeader(msg.FromName, msg.From),
		ReplyTo:  replyTo,
		To:       msg.To,
		Subject:  msg.Subject,
		TextBody: msg.Body,
	})
	if err != nil {
		return errors.Join(ErrFailedToSend, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(
			ErrFailedToSend,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return nil
}
