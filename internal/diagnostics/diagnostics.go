// Package diagnostics implements the compiler's static-error tier: a
// coded, positioned error type raised by the parser and semantic
// analyzer — a struct carrying a stable code, a source position, and
// a message, rather than a bare error string.
package diagnostics

import (
	"fmt"

	"github.com/funvibe/funxyc/internal/token"
)

// Code classifies a DiagnosticError by which static rule it came from.
// The prefixes appear verbatim in rendered messages.
type Code string

const (
	STypeError          Code = "STypeError"
	SNameError          Code = "SNameError"
	SSyntaxError        Code = "SSyntaxError"
	SNotImplementedError Code = "SNotImplementedError"
)

// DiagnosticError is one static diagnostic, positioned at the token
// that triggered it.
type DiagnosticError struct {
	Code    Code
	Tok     token.Token
	Message string
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("%s: %s (line %d, col %d)", e.Code, e.Message, e.Tok.Line, e.Tok.Column)
}

// New builds a DiagnosticError positioned at tok.
func New(code Code, tok token.Token, format string, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{Code: code, Tok: tok, Message: fmt.Sprintf(format, args...)}
}

// InternalError signals an emitter-side invariant violation: a
// compiler bug rather than a user error. Callers holding one of these
// should treat it as fatal and not attempt to continue.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string { return "compiler bug: " + e.Message }

// Internalf constructs an InternalError.
func Internalf(format string, args ...interface{}) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}
