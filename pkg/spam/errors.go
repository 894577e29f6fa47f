package spam

import "errors"

var (
	// ErrInvalidPattern indicates a blocklist pattern failed to compile.
	ErrInvalidPattern = errors.New("invalid spam pattern")
	// ErrInvalidRulesFile indicates the rules file could not be read or parsed.
	ErrInvalidRulesFile = errors.New("invalid spam rules file")
)
