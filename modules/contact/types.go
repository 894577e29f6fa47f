package contact

// SubmissionRequest carries the raw form fields as submitted. Populated from
// either a JSON body or urlencoded form data, discarded after the response.
type SubmissionRequest struct {
	Name              string `json:"name" form:"name"`
	Email             string `json:"email" form:"email"`
	Subject           string `json:"subject" form:"subject"`
	Budget            string `json:"budget" form:"budget"`
	Message           string `json:"message" form:"message"`
	RecaptchaResponse string `json:"recaptcha_response" form:"g-recaptcha-response"`
}

// SanitizedSubmission holds the same fields after trimming and HTML escaping.
// Only sanitized values reach validation, email composition, and logging.
type SanitizedSubmission struct {
	Name              string
	Email             string
	Subject           string
	Budget            string
	Message           string
	RecaptchaResponse string
}

// RequestMeta is per-request metadata used for rate limiting, the email
// footer, and the submission log.
type RequestMeta struct {
	Host      string
	ClientIP  string
	UserAgent string
}

// Response is the JSON envelope returned for every outcome.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
