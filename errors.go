package cmmnparser

import (
	"errors"
	"fmt"
	"strings"

	"cmmn-parser/internal/resolve"
)

// ErrorKind classifies a ParseError.
type ErrorKind int

const (
	// ErrorStructural covers malformed documents: broken XML, missing
	// required attributes, bad boolean literals.
	ErrorStructural ErrorKind = iota
	// ErrorFormat means the content matched neither XML nor JSON.
	ErrorFormat
	// ErrorValidation means the JSON document violated the structural
	// schema; Findings carries every violation.
	ErrorValidation
	// ErrorIO covers file access failures.
	ErrorIO
	// ErrorDepth means document nesting exceeded the configured maximum.
	ErrorDepth

	ErrorKindTotal = int(iota)
)

// String returns the kind's tag.
func (k ErrorKind) String() string {
	switch k {
	case ErrorStructural:
		return "structural"
	case ErrorFormat:
		return "format"
	case ErrorValidation:
		return "validation"
	case ErrorIO:
		return "io"
	case ErrorDepth:
		return "depth"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ParseError is the single error type the package surface returns. Raw
// library errors never escape; they are wrapped and reachable via Unwrap.
type ParseError struct {
	Kind    ErrorKind
	Message string

	// Findings holds the individual violations of a validation error, one
	// string per violation. Empty for every other kind.
	Findings []string

	Cause error
}

// Error formats the error as "<kind>: <message>", appending findings when
// present.
func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if len(e.Findings) > 0 {
		msg += ": " + strings.Join(e.Findings, "; ")
	}

	return msg
}

// Unwrap exposes the underlying cause for errors.Is and errors.As.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// structuralError wraps a mapper error, promoting depth overruns to their
// own kind.
func structuralError(err error) *ParseError {
	kind := ErrorStructural
	if errors.Is(err, resolve.ErrDepthExceeded) {
		kind = ErrorDepth
	}

	return &ParseError{Kind: kind, Message: err.Error(), Cause: err}
}

func formatError(err error) *ParseError {
	return &ParseError{Kind: ErrorFormat, Message: err.Error(), Cause: err}
}

func ioError(err error) *ParseError {
	return &ParseError{Kind: ErrorIO, Message: err.Error(), Cause: err}
}
