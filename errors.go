package nepattern

import (
	"errors"
	"fmt"
)

///////////////////////////////////////////////////////////////////////////////
// Errors
///////////////////////////////////////////////////////////////////////////////

var (
	// ErrMatchFailed is the sentinel wrapped by every MatchFailed.
	ErrMatchFailed = errors.New("match failed")

	ErrAnchoredSource        = errors.New("pattern source must not begin with '^' or end with '$'")
	ErrNilOrigin             = errors.New("pattern origin type cannot be nil")
	ErrCyclicChain           = errors.New("pattern fallback chain contains a cycle")
	ErrInvalidMode           = errors.New("unknown match mode")
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	ErrValueAccess           = errors.New("cannot access value of a failed or empty result")
	ErrUnknownTypeTag        = errors.New("unknown type tag")
)

// Reasons carried by MatchFailed.
const (
	ReasonIncorrectType  = "incorrect type"
	ReasonIncorrectValue = "incorrect value"
)

// MatchFailed is returned by Pattern.Match when the input cannot be accepted
// or converted. Validate and friends fold it into a ValidateResult.
type MatchFailed struct {
	Input  any
	Reason string
}

// Error implements the error interface
func (mf *MatchFailed) Error() string {
	return fmt.Sprintf("%s: parameter %v has %s", ErrMatchFailed, mf.Input, mf.Reason)
}

// Unwrap returns ErrMatchFailed so callers can use errors.Is.
func (mf *MatchFailed) Unwrap() error { return ErrMatchFailed }

func incorrectType(input any) *MatchFailed {
	return &MatchFailed{Input: input, Reason: ReasonIncorrectType}
}

func incorrectValue(input any) *MatchFailed {
	return &MatchFailed{Input: input, Reason: ReasonIncorrectValue}
}
