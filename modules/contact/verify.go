package contact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const recaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// RecaptchaVerifier checks submission tokens against Google's siteverify
// endpoint. A verifier with an empty secret is disabled and passes every
// submission through.
type RecaptchaVerifier struct {
	secret   string
	endpoint string
	client   *http.Client
}

// VerifierOption configures a RecaptchaVerifier.
type VerifierOption func(*RecaptchaVerifier)

// WithVerifyEndpoint overrides the siteverify URL. Used in tests.
func WithVerifyEndpoint(endpoint string) VerifierOption {
	return func(v *RecaptchaVerifier) {
		v.endpoint = endpoint
	}
}

// WithVerifyClient overrides the HTTP client used for verification calls.
func WithVerifyClient(client *http.Client) VerifierOption {
	return func(v *RecaptchaVerifier) {
		v.client = client
	}
}

// NewRecaptchaVerifier creates a verifier. Outbound calls are bounded by a
// 30 second client timeout.
func NewRecaptchaVerifier(secret string, opts ...VerifierOption) *RecaptchaVerifier {
	v := &RecaptchaVerifier{
		secret:   secret,
		endpoint: recaptchaVerifyURL,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Enabled reports whether verification is configured.
func (v *RecaptchaVerifier) Enabled() bool {
	return v != nil && v.secret != ""
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify checks the token for the given client address. A missing token and
// a rejected token are distinct user-facing failures.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	if !v.Enabled() {
		return nil
	}
	if token == "" {
		return ErrMissingCaptcha
	}

	form := url.Values{
		"secret":   {v.secret},
		"response": {token},
		"remoteip": {remoteIP},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Join(ErrVerificationFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return errors.Join(ErrVerificationFailed, err)
	}
	defer resp.Body.Close()

	// A failing verification service is our problem, not the submitter's.
	if resp.StatusCode != http.StatusOK {
		return internalError(fmt.Errorf("siteverify returned status %d", resp.StatusCode))
	}

	var result siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return errors.Join(ErrVerificationFailed, err)
	}
	if !result.Success {
		return ErrVerificationFailed
	}
	return nil
}
