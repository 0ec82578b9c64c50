package nepattern

import (
	"fmt"
	"strings"
)

// MatchMode selects how a Pattern turns an accepted input into its result.
// Modes are mutually exclusive.
type MatchMode int

const (
	// Keep returns the accepted input unchanged.
	Keep MatchMode = iota
	// RegexMatch returns the matched text (capture group 1 if present).
	RegexMatch
	// TypeConvert passes the input through the converter.
	TypeConvert
	// RegexConvert passes the matched text through the converter.
	RegexConvert
)

var modeNames = map[MatchMode]string{
	Keep:         "keep",
	RegexMatch:   "regex_match",
	TypeConvert:  "type_convert",
	RegexConvert: "regex_convert",
}

func (m MatchMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMatchMode is the inverse of MatchMode.String.
func ParseMatchMode(name string) (MatchMode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for mode, n := range modeNames {
		if n == name {
			return mode, nil
		}
	}
	return Keep, fmt.Errorf("%w: %q", ErrInvalidMode, name)
}

func (m MatchMode) valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ResultFlag is the state of a ValidateResult.
type ResultFlag string

const (
	FlagValid   ResultFlag = "valid"
	FlagError   ResultFlag = "error"
	FlagDefault ResultFlag = "default"
)
