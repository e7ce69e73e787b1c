// Package apperr defines the error-kind taxonomy shared by every
// subsystem, wrapping underlying causes with github.com/pkg/errors so
// stack traces survive across goroutine boundaries.
package apperr

import "github.com/pkg/errors"

// Kind classifies an error by cause, not by Go type, matching the
// catalogue every ServerError broadcast is drawn from.
type Kind string

const (
	IoError             Kind = "IoError"
	ParseError          Kind = "ParseError"
	UnrecognizedCommand Kind = "UnrecognizedCommand"
	InvalidParameters   Kind = "InvalidParameters"
	NotAudioFile        Kind = "NotAudioFile"
	UnrecognizedFormat  Kind = "UnrecognizedFormat"
	DecoderError        Kind = "DecoderError"
	NoDevice            Kind = "NoDevice"
	StreamError         Kind = "StreamError"
	SendError           Kind = "SendError"
)

// Error is the concrete error type returned by every package in this
// module. Kind drives how the Hub reports failures to clients; the
// wrapped cause carries the detail.
type Error struct {
	Kind  Kind
	msg   string
	cause error
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

func Wrap(kind Kind, cause error, msg string) *Error {
	return &Error{Kind: kind, msg: msg, cause: errors.Wrap(cause, msg)}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return string(e.Kind) + ": " + e.cause.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e *Error) Unwrap() error { return e.cause }

// KindOf extracts the Kind from err if it is (or wraps) an *Error,
// defaulting to IoError for anything unrecognised — every internal
// failure still needs a kind to report over the wire.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return IoError
}
