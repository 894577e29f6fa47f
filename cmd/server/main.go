package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/hardiksavani/portfolio-backend/modules/contact"
	"github.com/hardiksavani/portfolio-backend/pkg/config"
	"github.com/hardiksavani/portfolio-backend/pkg/httpserver"
	"github.com/hardiksavani/portfolio-backend/pkg/logger"
	"github.com/hardiksavani/portfolio-backend/pkg/mailer"
	"github.com/hardiksavani/portfolio-backend/pkg/ratelimit"
	"github.com/hardiksavani/portfolio-backend/pkg/spam"
	"github.com/hardiksavani/portfolio-backend/pkg/submissionlog"
)

type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`

	Server   httpserver.Config
	Contact  contact.Config
	SMTP     mailer.SMTPConfig
	Postmark mailer.PostmarkConfig

	// MailTransport selects the primary transport: smtp or postmark.
	MailTransport string `env:"MAIL_TRANSPORT" envDefault:"smtp"`

	// RateLimitStore selects the sliding window backend: memory, file, redis.
	RateLimitStore string `env:"RATE_LIMIT_STORE" envDefault:"file"`
	RateLimitDir   string `env:"RATE_LIMIT_DIR" envDefault:"./data/ratelimit"`
	RedisURL       string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// SubmissionLogFile is the audit log path; empty disables audit logging.
	SubmissionLogFile string `env:"SUBMISSION_LOG_FILE" envDefault:"./data/contact_submissions.log"`

	// SpamRulesFile optionally extends the built-in blocklist.
	SpamRulesFile string `env:"SPAM_RULES_FILE"`

	// DevMailDir makes the primary transport write mail to disk instead of
	// SMTP. Development only.
	DevMailDir string `env:"DEV_MAIL_DIR"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.WithEnvironment(cfg.Environment, "portfolio-backend"))
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newRateLimitStore(cfg)
	if err != nil {
		return fmt.Errorf("rate limit store: %w", err)
	}
	defer closeStore()

	limiter, err := ratelimit.NewSlidingWindow(store, cfg.Contact.RateLimitRequests, cfg.Contact.RateLimitWindow)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	sender, err := newSender(cfg, log)
	if err != nil {
		return fmt.Errorf("mail transport: %w", err)
	}

	var recorder submissionlog.Recorder
	if cfg.SubmissionLogFile != "" {
		fileRecorder, err := submissionlog.NewFileRecorder(cfg.SubmissionLogFile)
		if err != nil {
			return fmt.Errorf("submission log: %w", err)
		}
		recorder = fileRecorder
	}

	detector, err := newDetector(cfg)
	if err != nil {
		return fmt.Errorf("spam detector: %w", err)
	}

	svc, err := contact.NewService(cfg.Contact, contact.Deps{
		Log:      log,
		Limiter:  limiter,
		Detector: detector,
		Sender:   sender,
		Recorder: recorder,
	})
	if err != nil {
		return fmt.Errorf("contact service: %w", err)
	}

	r := chi.NewRouter()
	r.Mount("/api/contact", svc.Handle())

	srv := httpserver.NewFromConfig(cfg.Server, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

func newRateLimitStore(cfg appConfig) (ratelimit.SlidingWindowStore, func(), error) {
	switch cfg.RateLimitStore {
	case "memory":
		store := ratelimit.NewMemoryStore()
		return store, func() { _ = store.Close() }, nil
	case "file":
		store, err := ratelimit.NewFileStore(cfg.RateLimitDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		client := redis.NewClient(opts)
		store, err := ratelimit.NewRedisStore(client)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown rate limit store %q", cfg.RateLimitStore)
	}
}

// newSender builds the failover transport chain. The fallback stays a stub
// that always fails, so a broken primary is visible instead of silently
// swallowed.
func newSender(cfg appConfig, log *slog.Logger) (mailer.Sender, error) {
	if cfg.DevMailDir != "" {
		log.Info("mail transport writes to disk", slog.String("dir", cfg.DevMailDir))
		return mailer.NewFailover(mailer.NewDevSender(cfg.DevMailDir), mailer.NewStubSender())
	}

	var primary mailer.Sender
	switch cfg.MailTransport {
	case "smtp":
		smtpSender, err := mailer.NewSMTPSender(cfg.SMTP)
		if err != nil {
			return nil, err
		}
		primary = smtpSender
	case "postmark":
		postmarkSender, err := mailer.NewPostmarkSender(cfg.Postmark)
		if err != nil {
			return nil, err
		}
		primary = postmarkSender
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.MailTransport)
	}
	return mailer.NewFailover(primary, mailer.NewStubSender())
}

func newDetector(cfg appConfig) (*spam.Detector, error) {
	if cfg.SpamRulesFile != "" {
		return spam.NewFromFile(cfg.SpamRulesFile)
	}
	return spam.New()
}
