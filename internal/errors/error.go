package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryInvariant Category = "invariant"
	CategoryHost      Category = "host"
	CategoryProtocol  Category = "protocol"
	CategoryConfig    Category = "config"
)

// KinesisError is a structured error with a registered code.
type KinesisError struct {
	// Code is a unique error identifier (e.g., "K001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail describes the concrete failure (which node, which index).
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Op names the runtime operation that failed (e.g. "fragment.mount").
	Op string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *KinesisError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *KinesisError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a KinesisError with the same code.
func (e *KinesisError) Is(target error) bool {
	t, ok := target.(*KinesisError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithDetail adds a detailed explanation to the error.
func (e *KinesisError) WithDetail(format string, args ...any) *KinesisError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *KinesisError) WithSuggestion(s string) *KinesisError {
	e.Suggestion = s
	return e
}

// WithOp records the operation that failed.
func (e *KinesisError) WithOp(op string) *KinesisError {
	e.Op = op
	return e
}

// Wrap wraps another error.
func (e *KinesisError) Wrap(err error) *KinesisError {
	e.Wrapped = err
	return e
}

// New creates a KinesisError from a registered error code.
func New(code string) *KinesisError {
	template, ok := registry[code]
	if !ok {
		return &KinesisError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &KinesisError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new KinesisError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *KinesisError {
	return &KinesisError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a KinesisError. Errors that already
// carry a code are returned unchanged.
func FromError(err error, code string) *KinesisError {
	if err == nil {
		return nil
	}
	var ke *KinesisError
	if stderrors.As(err, &ke) {
		return ke
	}
	return New(code).Wrap(err)
}

// Code returns the code of the first KinesisError in err's chain, or "".
func Code(err error) string {
	var ke *KinesisError
	if stderrors.As(err, &ke) {
		return ke.Code
	}
	return ""
}

// Invariant panics with the registered invariant error for code. The
// runtime uses it for conditions that would otherwise corrupt the host tree.
func Invariant(code, op, format string, args ...any) {
	panic(New(code).WithOp(op).WithDetail(format, args...))
}
