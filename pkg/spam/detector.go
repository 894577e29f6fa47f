// Package spam provides stateless pattern matching of submitted text against
// a configurable blocklist. Detection order is not significant; the first
// matching pattern short-circuits.
package spam

import (
	"fmt"
	"regexp"

	"github.com/hardiksavani/portfolio-backend/pkg/validator"
)

// CodeSpamSuspected is the validation error code attached to spam hits.
const CodeSpamSuspected = "spam_suspected"

// Message shown to submitters whose text matches a spam pattern.
const Message = "Your message appears to be spam"

// defaultPatterns mirror the blocklist the contact form has always shipped
// with: known spam keywords and long embedded URLs.
var defaultPatterns = []string{
	`(?i)\b(viagra|cialis|casino|lottery|winner)\b`,
	`(?i)\b(click here|buy now|free money|make money fast)\b`,
	`(?i)https?://[^\s]{10,}`,
}

// defaultMaxRepeat is the maximum run of consecutive identical characters
// before the text is treated as spam.
const defaultMaxRepeat = 10

// Detector matches text against compiled blocklist patterns and a repeated
// character bound. Safe for concurrent use; it carries no mutable state.
type Detector struct {
	patterns  []*regexp.Regexp
	maxRepeat int
}

// Option configures a Detector.
type Option func(*settings)

type settings struct {
	patterns  []string
	maxRepeat int
}

// WithPatterns replaces the default pattern set.
func WithPatterns(patterns ...string) Option {
	return func(s *settings) {
		if len(patterns) > 0 {
			s.patterns = patterns
		}
	}
}

// WithExtraPatterns appends to the default pattern set.
func WithExtraPatterns(patterns ...string) Option {
	return func(s *settings) {
		s.patterns = append(s.patterns, patterns...)
	}
}

// WithMaxRepeat sets the maximum allowed run of identical characters.
// Zero disables the check.
func WithMaxRepeat(n int) Option {
	return func(s *settings) {
		s.maxRepeat = n
	}
}

// New compiles a Detector. Invalid patterns fail construction rather than
// silently matching nothing.
func New(opts ...Option) (*Detector, error) {
	s := &settings{
		patterns:  defaultPatterns,
		maxRepeat: defaultMaxRepeat,
	}
	for _, opt := range opts {
		opt(s)
	}

	compiled := make([]*regexp.Regexp, 0, len(s.patterns))
	for _, p := range s.patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, p, err)
		}
		compiled = append(compiled, re)
	}

	return &Detector{patterns: compiled, maxRepeat: s.maxRepeat}, nil
}

// MustNew panics on invalid patterns. Misconfigured blocklists should
// prevent startup, not pass requests unchecked.
func MustNew(opts ...Option) *Detector {
	d, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Match reports whether text trips any pattern and returns the pattern that
// matched. Repeated character runs are reported as "repeated_characters".
func (d *Detector) Match(text string) (string, bool) {
	for _, re := range d.patterns {
		if re.MatchString(text) {
			return re.String(), true
		}
	}

	if d.maxRepeat > 0 && hasRepeatedRun(text, d.maxRepeat) {
		return "repeated_characters", true
	}

	return "", false
}

// Rule adapts the detector to the validator's rule interface so a spam hit
// aggregates with other validation failures.
func (d *Detector) Rule(field, text string) validator.Rule {
	return validator.Rule{
		Check: func() bool {
			_, hit := d.Match(text)
			return !hit
		},
		Error: validator.ValidationError{
			Field:   field,
			Code:    CodeSpamSuspected,
			Message: Message,
		},
	}
}

// hasRepeatedRun reports whether any rune repeats consecutively more than
// maxRepeat times. Backreferences are unavailable in RE2, so the run length
// is counted directly.
func hasRepeatedRun(text string, maxRepeat int) bool {
	var prev rune
	run := 0
	for _, r := range text {
		if r == prev {
			run++
			if run > maxRepeat {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}
