package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hardiksavani/portfolio-backend/pkg/logger"
	"github.com/hardiksavani/portfolio-backend/pkg/mailer"
	"github.com/hardiksavani/portfolio-backend/pkg/ratelimit"
	"github.com/hardiksavani/portfolio-backend/pkg/sanitizer"
	"github.com/hardiksavani/portfolio-backend/pkg/spam"
	"github.com/hardiksavani/portfolio-backend/pkg/submissionlog"
	"github.com/hardiksavani/portfolio-backend/pkg/validator"
)

// successMessage is returned to the submitter on a completed pipeline run.
const successMessage = "Thank you for your message! I will get back to you soon."

// Service runs the submission pipeline for one request at a time:
// rate limit, sanitize, validate, spam check, optional verification, email
// dispatch, best-effort audit logging.
type Service struct {
	cfg      Config
	log      *slog.Logger
	limiter  ratelimit.Limiter
	detector *spam.Detector
	sender   mailer.Sender
	recorder submissionlog.Recorder
	verifier *RecaptchaVerifier
}

// Deps carries the service collaborators. Limiter and Sender are required;
// the rest default to sensible implementations.
type Deps struct {
	Log      *slog.Logger
	Limiter  ratelimit.Limiter
	Detector *spam.Detector
	Sender   mailer.Sender
	Recorder submissionlog.Recorder
	Verifier *RecaptchaVerifier
}

// NewService creates the submission pipeline service.
func NewService(cfg Config, deps Deps) (*Service, error) {
	if deps.Limiter == nil {
		return nil, errors.New("contact: rate limiter is required")
	}
	if deps.Sender == nil {
		return nil, errors.New("contact: mail sender is required")
	}
	if cfg.ToEmail == "" {
		return nil, errors.New("contact: recipient email is required")
	}

	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	detector := deps.Detector
	if detector == nil {
		detector = spam.MustNew()
	}
	verifier := deps.Verifier
	if verifier == nil {
		verifier = NewRecaptchaVerifier(cfg.RecaptchaSecret)
	}

	return &Service{
		cfg:      cfg,
		log:      log.With(logger.Component("contact")),
		limiter:  deps.Limiter,
		detector: detector,
		sender:   deps.Sender,
		recorder: deps.Recorder,
		verifier: verifier,
	}, nil
}

// CheckRateLimit consumes one slot for the client unless the window is
// exhausted. Runs before the request body is even parsed so limited clients
// never incur validation or spam-scan cost. A denied attempt is not counted
// against the window.
func (s *Service) CheckRateLimit(ctx context.Context, clientIP string) error {
	result, err := s.limiter.Allow(ctx, clientIP)
	if err != nil {
		return internalError(fmt.Errorf("rate limit check: %w", err))
	}
	if !result.Allowed {
		s.log.WarnContext(ctx, "submission rate limited",
			logger.ClientIP(clientIP),
			slog.Duration("retry_after", result.RetryAfter()),
		)
		return ErrRateLimited
	}
	return nil
}

// Submit runs the post-parse pipeline for one submission and returns the
// user-facing success message.
func (s *Service) Submit(ctx context.Context, meta RequestMeta, req SubmissionRequest) (string, error) {
	sub := sanitize(req)

	if err := validate(sub, s.detector); err != nil {
		s.log.InfoContext(ctx, "submission rejected",
			logger.ClientIP(meta.ClientIP),
			slog.Any("fields", validator.ExtractValidationErrors(err).Fields()),
		)
		return "", validationFailed(err)
	}

	if s.verifier.Enabled() {
		if err := s.verifier.Verify(ctx, sub.RecaptchaResponse, meta.ClientIP); err != nil {
			s.log.InfoContext(ctx, "submission verification failed",
				logger.ClientIP(meta.ClientIP),
				logger.Error(err),
			)
			return "", asError(err)
		}
	}

	if err := s.sender.Send(ctx, s.buildMessage(sub, meta)); err != nil {
		s.log.ErrorContext(ctx, "submission dispatch failed",
			logger.ClientIP(meta.ClientIP),
			logger.Error(err),
		)
		return "", sendFailed(err)
	}

	// The email is already out; a failed audit write must not turn the
	// submission into an error.
	if s.recorder != nil {
		entry := submissionlog.NewEntry(
			meta.ClientIP,
			meta.UserAgent,
			sub.Name,
			sub.Email,
			sub.Subject,
			sub.Budget,
			len(sub.Message),
		)
		if err := s.recorder.Record(ctx, entry); err != nil {
			s.log.WarnContext(ctx, "submission log write failed",
				logger.ClientIP(meta.ClientIP),
				logger.Error(err),
			)
		}
	}

	s.log.InfoContext(ctx, "submission accepted",
		logger.ClientIP(meta.ClientIP),
		slog.String("email", sub.Email),
	)
	return successMessage, nil
}

// buildMessage composes the notification email. The From header identifies
// the site; Reply-To carries the submitter so replies reach them directly.
func (s *Service) buildMessage(sub SanitizedSubmission, meta RequestMeta) mailer.Message {
	from := s.cfg.FromEmail
	if from == "" && meta.Host != "" {
		from = "noreply@" + meta.Host
	}

	var b strings.Builder
	b.WriteString("New contact form submission from portfolio website\n\n")
	fmt.Fprintf(&b, "Name: %s\n", sub.Name)
	fmt.Fprintf(&b, "Email: %s\n", sub.Email)
	fmt.Fprintf(&b, "Subject: %s\n", sub.Subject)
	if sub.Budget != "" {
		fmt.Fprintf(&b, "Budget: %s\n", sub.Budget)
	}
	fmt.Fprintf(&b, "Message:\n%s\n\n", sub.Message)
	b.WriteString("---\n")
	fmt.Fprintf(&b, "Sent from: %s\n", meta.Host)
	fmt.Fprintf(&b, "IP Address: %s\n", meta.ClientIP)
	fmt.Fprintf(&b, "User Agent: %s\n", meta.UserAgent)
	fmt.Fprintf(&b, "Timestamp: %s", time.Now().Format("2006-01-02 15:04:05 MST"))

	// Header-bound fields are collapsed to one line. Escaping alone leaves
	// CR and LF intact, which would let a submitter append SMTP headers.
	return mailer.Message{
		To:          s.cfg.ToEmail,
		Subject:     s.cfg.SubjectPrefix + sanitizer.SingleLine(sub.Subject),
		Body:        b.String(),
		From:        from,
		FromName:    s.cfg.FromName,
		ReplyTo:     sanitizer.SingleLine(sub.Email),
		ReplyToName: sanitizer.SingleLine(sub.Name),
	}
}
