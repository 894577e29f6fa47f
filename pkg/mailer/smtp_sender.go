package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/hardiksavani/portfolio-backend/pkg/sanitizer"
)

// SMTPConfig holds SMTP transport configuration.
// Username and Password are optional to support local mail submission
// agents that accept unauthenticated connections.
type SMTPConfig struct {
	Host     string        `env:"SMTP_HOST"`
	Port     int           `env:"SMTP_PORT" envDefault:"587"`
	Username string        `env:"SMTP_USERNAME"`
	Password string        `env:"SMTP_PASSWORD"`
	Timeout  time.Duration `env:"SMTP_TIMEOUT" envDefault:"30s"`
}

// SMTPSender delivers mail over SMTP with a bounded connect/IO deadline.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender creates an SMTP-backed sender.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: SMTP host is required", ErrInvalidConfig)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: SMTP port %d out of range", ErrInvalidConfig, cfg.Port)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPSender{cfg: cfg}, nil
}

// Send delivers the message through one SMTP session. The socket carries a
// deadline covering the whole exchange; a timeout surfaces as ErrFailedToSend
// like any other transport failure.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))

	dialer := &net.Dialer{Timeout: s.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return errors.Join(ErrFailedToSend, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(s.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return errors.Join(ErrFailedToSend, err)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return errors.Join(ErrFailedToSend, err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return errors.Join(ErrFailedToSend, err)
		}
	}

	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return errors.Join(ErrFailedToSend, err)
		}
	}

	if err := client.Mail(msg.From); err != nil {
		return errors.Join(ErrFailedToSend, err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return errors.Join(ErrFailedToSend, err)
	}

	w, err := client.Data()
	if err != nil {
		return errors.Join(ErrFailedToSend, err)
	}
	if _, err := w.Write([]byte(s.compose(msg))); err != nil {
		_ = w.Close()
		return errors.Join(ErrFailedToSend, err)
	}
	if err := w.Close(); err != nil {
		return errors.Join(ErrFailedToSend, err)
	}

	if err := client.Quit(); err != nil {
		return errors.Join(ErrFailedToSend, err)
	}
	return nil
}

// compose renders RFC 5322 headers and the plain-text body. Every header
// value is collapsed to a single line so submitted fields cannot smuggle
// extra headers into the message.
func (s *SMTPSender) compose(msg Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", sanitizer.SingleLine(fromHeader(msg.FromName, msg.From)))
	fmt.Fprintf(&b, "To: %s\r\n", sanitizer.SingleLine(msg.To))
	if msg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", sanitizer.SingleLine(fromHeader(msg.ReplyToName, msg.ReplyTo)))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", sanitizer.SingleLine(msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return b.String()
}
