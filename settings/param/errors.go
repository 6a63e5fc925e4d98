package param

import (
	"fmt"
	"strings"
)

// ErrorType represents error categories for option parsing.
type ErrorType string

const (
	ErrorTypeMalformedValue        ErrorType = "malformed_value"
	ErrorTypeDuplicateSupply       ErrorType = "duplicate_supply"
	ErrorTypeUnrecognizedArgument  ErrorType = "unrecognized_argument"
	ErrorTypeUnsatisfiedGroup      ErrorType = "unsatisfied_group"
	ErrorTypeArbitraryKeyCollision ErrorType = "arbitrary_key_collision"
)

// ParseError is returned for every user-facing failure of an option parse pass.
type ParseError struct {
	Type       ErrorType
	Option     string // e.g. "-rate"
	Arg        string // offending fragment, if any
	Message    string
	Suggestion string // closest known sub-parameter for unrecognized arguments
	Cause      error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Option != "" {
		b.WriteString(e.Option)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Suggestion != "" {
		b.WriteString(" (did you mean '")
		b.WriteString(e.Suggestion)
		b.WriteString("'?)")
	}
	return b.String()
}

// Unwrap exposes the underlying value error, if any.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ValueError reports text that does not follow a value grammar.
type ValueError struct {
	Value   string
	Pattern string
	Reason  string
}

func (e *ValueError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("Invalid value %s; %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("Invalid value %s; must match pattern %s", e.Value, e.Pattern)
}

func malformed(arg string, cause error) *ParseError {
	return &ParseError{
		Type:    ErrorTypeMalformedValue,
		Arg:     arg,
		Message: fmt.Sprintf("invalid argument '%s': %v", arg, cause),
		Cause:   cause,
	}
}

func duplicate(prefix, arg string) *ParseError {
	return &ParseError{
		Type:    ErrorTypeDuplicateSupply,
		Arg:     arg,
		Message: fmt.Sprintf("%s suboption has been specified more than once", displayPrefix(prefix)),
	}
}

func displayPrefix(prefix string) string {
	if prefix == "" {
		return "positional"
	}
	return prefix
}
