package contact

import "github.com/hardiksavani/portfolio-backend/pkg/sanitizer"

// sanitize trims and HTML-escapes every field. Total function, applied
// exactly once per request before validation. The verification token is
// trimmed but not escaped since it is forwarded to the verifier, never
// rendered.
func sanitize(req SubmissionRequest) SanitizedSubmission {
	return SanitizedSubmission{
		Name:              sanitizer.Field(req.Name),
		Email:             sanitizer.Field(req.Email),
		Subject:           sanitizer.Field(req.Subject),
		Budget:            sanitizer.Field(req.Budget),
		Message:           sanitizer.Field(req.Message),
		RecaptchaResponse: sanitizer.Trim(req.RecaptchaResponse),
	}
}
