package spam

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// rulesFile is the YAML layout for an operator-maintained blocklist:
//
//	patterns:
//	  - (?i)\b(cheap pills)\b
//	max_repeat: 10
//	replace_defaults: false
type rulesFile struct {
	Patterns        []string `yaml:"patterns"`
	MaxRepeat       *int     `yaml:"max_repeat"`
	ReplaceDefaults bool     `yaml:"replace_defaults"`
}

// NewFromFile builds a Detector from a YAML rules file. File patterns extend
// the defaults unless replace_defaults is set.
func NewFromFile(path string) (*Detector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidRulesFile, err)
	}

	var rf rulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRulesFile, err)
	}

	opts := make([]Option, 0, 2)
	if rf.ReplaceDefaults {
		opts = append(opts, WithPatterns(rf.Patterns...))
	} else {
		opts = append(opts, WithExtraPatterns(rf.Patterns...))
	}
	if rf.MaxRepeat != nil {
		opts = append(opts, WithMaxRepeat(*rf.MaxRepeat))
	}

	return New(opts...)
}
