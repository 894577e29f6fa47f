package contact

import (
	"github.com/hardiksavani/portfolio-backend/pkg/spam"
	"github.com/hardiksavani/portfolio-backend/pkg/validator"
)

// Field length bounds for a submission.
const (
	nameMinLen    = 2
	nameMaxLen    = 100
	subjectMinLen = 5
	subjectMaxLen = 200
	messageMinLen = 10
	messageMaxLen = 5000
)

// validate checks every field and the spam blocklist, collecting all
// failures so the submitter sees every problem at once. Length rules only
// apply to non-empty values; an empty field reports just the required error.
func validate(sub SanitizedSubmission, detector *spam.Detector) error {
	rules := []validator.Rule{
		validator.RequiredString("name", "Name", sub.Name),
	}
	if sub.Name != "" {
		rules = append(rules,
			validator.MinLenString("name", "Name", sub.Name, nameMinLen),
			validator.MaxLenString("name", "Name", sub.Name, nameMaxLen),
		)
	}

	rules = append(rules, validator.RequiredString("email", "Email", sub.Email))
	if sub.Email != "" {
		rules = append(rules, validator.ValidEmail("email", sub.Email))
	}

	rules = append(rules, validator.RequiredString("subject", "Subject", sub.Subject))
	if sub.Subject != "" {
		rules = append(rules,
			validator.MinLenString("subject", "Subject", sub.Subject, subjectMinLen),
			validator.MaxLenString("subject", "Subject", sub.Subject, subjectMaxLen),
		)
	}

	rules = append(rules, validator.RequiredString("message", "Message", sub.Message))
	if sub.Message != "" {
		rules = append(rules,
			validator.MinLenString("message", "Message", sub.Message, messageMinLen),
			validator.MaxLenString("message", "Message", sub.Message, messageMaxLen),
		)
	}

	// Budget is optional and unchecked. Spam scan covers the free-text
	// fields concatenated, matching how a human reads the submission.
	rules = append(rules, detector.Rule("message", sub.Name+" "+sub.Subject+" "+sub.Message))

	return validator.Apply(rules...)
}
