// Package errors defines the error taxonomy shared by the gift recommendation
// components. Every error carries a stable code so callers can decide whether
// to substitute a fallback or abort.
package errors

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	CodeUnknown    = "UNKNOWN"
	CodeParse      = "PARSE"
	CodeSchema     = "SCHEMA"
	CodeCompletion = "COMPLETION"
	CodeConfig     = "CONFIG"
	CodeValidation = "VALIDATION"
	CodeDatabase   = "DATABASE"
	CodeAPI        = "API"
)

// ApplicationError is implemented by every error created in this package.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

// Error is the concrete ApplicationError.
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}

	return e.message
}

func (e *Error) Code() string {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}

func newError(code, message string, cause error) error {
	return &Error{code: code, message: message, err: cause}
}

// Code returns the code of the first ApplicationError in err's chain,
// or CodeUnknown if there is none.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}

	return CodeUnknown
}

func hasCode(err error, code string) bool {
	for err != nil {
		var appErr ApplicationError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code() == code {
			return true
		}
		err = appErr.Unwrap()
	}

	return false
}

// NewParseError reports model output that holds no usable JSON.
func NewParseError(message string, cause error) error {
	return newError(CodeParse, message, cause)
}

// NewSchemaError reports JSON that parsed but misses or breaks required fields.
func NewSchemaError(message string, cause error) error {
	return newError(CodeSchema, message, cause)
}

// NewCompletionError reports a completion request that exhausted its retries.
func NewCompletionError(message string, cause error) error {
	return newError(CodeCompletion, message, cause)
}

// NewConfigError reports missing or invalid startup configuration.
func NewConfigError(message string, cause error) error {
	return newError(CodeConfig, message, cause)
}

// NewValidationError reports rejected user input.
func NewValidationError(message string, cause error) error {
	return newError(CodeValidation, message, cause)
}

func NewDatabaseError(message string, cause error) error {
	return newError(CodeDatabase, message, cause)
}

func NewAPIError(message string, cause error) error {
	return newError(CodeAPI, message, cause)
}

func IsParse(err error) bool      { return hasCode(err, CodeParse) }
func IsSchema(err error) bool     { return hasCode(err, CodeSchema) }
func IsCompletion(err error) bool { return hasCode(err, CodeCompletion) }
func IsConfig(err error) bool     { return hasCode(err, CodeConfig) }
func IsValidation(err error) bool { return hasCode(err, CodeValidation) }
func IsDatabase(err error) bool   { return hasCode(err, CodeDatabase) }
func IsAPI(err error) bool        { return hasCode(err, CodeAPI) }
