package contact

import (
	"errors"
	"net/http"
)

// Error is a pipeline failure carrying the HTTP status and the user-visible
// message. Underlying causes stay server-side; only Message reaches clients.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Expected pipeline outcomes. The messages are shown to submitters verbatim.
var (
	ErrMethodNotAllowed = &Error{
		Status:  http.StatusMethodNotAllowed,
		Message: "Method not allowed",
	}
	ErrRateLimited = &Error{
		Status:  http.StatusTooManyRequests,
		Message: "Too many requests. Please try again later.",
	}
	ErrMissingCaptcha = &Error{
		Status:  http.StatusUnprocessableEntity,
		Message: "Please complete the reCAPTCHA verification",
	}
	ErrVerificationFailed = &Error{
		Status:  http.StatusUnprocessableEntity,
		Message: "reCAPTCHA verification failed",
	}
)

// sendFailed wraps a transport failure with the generic retry-later message
// so infrastructure detail never leaks to the submitter.
func sendFailed(err error) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Message: "Failed to send email. Please try again later.",
		Err:     err,
	}
}

// internalError is the catch-all for unexpected failures.
func internalError(err error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Message: "Internal server error. Please try again later.",
		Err:     err,
	}
}

// validationFailed wraps aggregated validation errors. The joined message is
// user-visible per field rules.
func validationFailed(err error) *Error {
	return &Error{
		Status:  http.StatusUnprocessableEntity,
		Message: err.Error(),
		Err:     err,
	}
}

// asError maps any pipeline error to its response form, defaulting unknown
// failures to an internal error.
func asError(err error) *Error {
	var pipelineErr *Error
	if errors.As(err, &pipelineErr) {
		return pipelineErr
	}
	return internalError(err)
}
