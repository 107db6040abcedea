package core

import (
	"errors"
	"fmt"
)

// Code classifies a failure the way callers of the platform layer see it.
type Code int

const (
	NoError Code = iota
	FatalError
	UnknownError
	InternalError
	BadAlloc
	NotInitialized
	AlreadyInitialized
	BadAttribute
	BadParameter
	BadDisplayMatch
	UnsupportedOnPlatform
	BuiltWithoutSupport
)

var codeNames = [...]string{
	NoError:               "no error",
	FatalError:            "fatal error",
	UnknownError:          "unknown error",
	InternalError:         "internal error",
	BadAlloc:              "bad alloc",
	NotInitialized:        "not initialized",
	AlreadyInitialized:    "already initialized",
	BadAttribute:          "bad attribute",
	BadParameter:          "bad parameter",
	BadDisplayMatch:       "bad display match",
	UnsupportedOnPlatform: "unsupported on platform",
	BuiltWithoutSupport:   "built without support",
}

func (c Code) String() string {
	if c < 0 || int(c) >= len(codeNames) {
		return fmt.Sprintf("code(%d)", int(c))
	}
	return codeNames[c]
}

// Error is a classified failure. Msg carries the human readable detail and
// Err the underlying cause, if any.
type Error struct {
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg == "" && e.Err == nil:
		return e.Code.String()
	case e.Err == nil:
		return e.Msg
	case e.Msg == "":
		return e.Err.Error()
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a *Error carrying the same code. This lets
// callers match on the sentinels below regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Msg == "" && t.Err == nil
}

// Sentinels for errors.Is.
var (
	ErrFatal           = &Error{Code: FatalError}
	ErrUnknown         = &Error{Code: UnknownError}
	ErrInternal        = &Error{Code: InternalError}
	ErrBadAlloc        = &Error{Code: BadAlloc}
	ErrNotInitialized  = &Error{Code: NotInitialized}
	ErrBadAttribute    = &Error{Code: BadAttribute}
	ErrBadParameter    = &Error{Code: BadParameter}
	ErrBadDisplayMatch = &Error{Code: BadDisplayMatch}
	ErrUnsupported     = &Error{Code: UnsupportedOnPlatform}
	ErrBuiltWithout    = &Error{Code: BuiltWithoutSupport}
)

// Errorf returns a classified error with a formatted message.
func Errorf(code Code, format string, args ...any) error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(code Code, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, UnknownError
// for unclassified errors and NoError for nil.
func CodeOf(err error) Code {
	if err == nil {
		return NoError
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return UnknownError
}
