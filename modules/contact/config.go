package contact

import "time"

// Config holds the contact form pipeline configuration.
type Config struct {
	// ToEmail is the site owner's address that receives submissions.
	ToEmail string `env:"CONTACT_TO_EMAIL,required"`

	// FromEmail is the envelope sender. When empty, "noreply@<request host>"
	// is used so replies never go to the submission address.
	FromEmail string `env:"CONTACT_FROM_EMAIL"`

	// FromName identifies the site, not the submitter, in the From header.
	FromName string `env:"CONTACT_FROM_NAME" envDefault:"Portfolio Contact Form"`

	// SubjectPrefix is prepended to the submitter's subject line.
	SubjectPrefix string `env:"CONTACT_SUBJECT_PREFIX" envDefault:"[Portfolio Contact] "`

	// AllowedOrigins is the CORS allow-list. An Origin header is echoed back
	// only when it matches exactly; otherwise no CORS header is sent.
	AllowedOrigins []string `env:"CONTACT_ALLOWED_ORIGINS" envSeparator:","`

	// RecaptchaSecret enables reCAPTCHA verification when non-empty.
	RecaptchaSecret string `env:"RECAPTCHA_SECRET"`

	// RateLimitRequests is the maximum number of submissions per client
	// within RateLimitWindow.
	RateLimitRequests int           `env:"CONTACT_RATE_LIMIT_REQUESTS" envDefault:"5"`
	RateLimitWindow   time.Duration `env:"CONTACT_RATE_LIMIT_WINDOW" envDefault:"1h"`
}
