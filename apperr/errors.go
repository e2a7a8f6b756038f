// Package apperr classifies the failures surfaced to the user.
package apperr

import (
	"errors"
	"fmt"
)

// Kind 错误类别
type Kind string

const (
	KindNotFound        Kind = "NotFoundError"
	KindSchema          Kind = "SchemaError"
	KindDeserialization Kind = "DeserializationError"
	KindValidation      Kind = "ValidationError"
	KindInference       Kind = "InferenceError"
	KindUnknown         Kind = ""
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrSchema          = &Error{Kind: KindSchema}
	ErrDeserialization = &Error{Kind: KindDeserialization}
	ErrValidation      = &Error{Kind: KindValidation}
	ErrInference       = &Error{Kind: KindInference}
)

// Error carries the kind, the operation and the user-facing message.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Msg  string
	Err  error
}

func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

func Wrap(kind Kind, op, path string, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Error returns the message shown to the user.
func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the user-facing text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}
