package artifactory

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
)

// ErrorKind classifies the failures returned by a Client.  Callers switch on
// the kind (see KindOf) rather than on error strings.
type ErrorKind int

const (
	// TransportFailure is a network or connection level failure.  No usable
	// HTTP response was received.
	TransportFailure ErrorKind = iota + 1
	// UnexpectedStatus is a response whose status code is outside the
	// success set of the operation.
	UnexpectedStatus
	// LocalIOFailure is a failure to read or stat a local file.
	LocalIOFailure
)

func (k ErrorKind) String() string {
	switch k {
	case TransportFailure:
		return "transport failure"
	case UnexpectedStatus:
		return "unexpected status"
	case LocalIOFailure:
		return "local I/O failure"
	default:
		return "internal"
	}
}

// Error is the error type returned by Client operations.  Kind is zero for
// errors which originate inside this package and fit none of the kinds, for
// example a build-info document that cannot be serialized.
type Error struct {
	Kind ErrorKind

	// StatusCode is only set for UnexpectedStatus
	StatusCode int
	msg        string
	super      error
}

func newError(super error, msg string) error {
	kind, code := classify(super)
	return &Error{
		Kind:       kind,
		StatusCode: code,
		super:      super,
		msg:        msg,
	}
}

func newErrorf(super error, format string, msg ...interface{}) error {
	return newError(super, fmt.Sprintf(format, msg...))
}

func newKindErrorf(kind ErrorKind, super error, format string, msg ...interface{}) error {
	return &Error{
		Kind:  kind,
		super: super,
		msg:   fmt.Sprintf(format, msg...),
	}
}

func newStatusErrorf(code int, format string, msg ...interface{}) error {
	return &Error{
		Kind:       UnexpectedStatus,
		StatusCode: code,
		msg:        fmt.Sprintf(format, msg...),
	}
}

// Wrapping an error keeps the kind and status of the innermost classified
// error so that a "publishing build info" wrapper around a transport failure
// is still a transport failure.
func classify(err error) (ErrorKind, int) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, 0
	}
	if e.Kind != 0 {
		return e.Kind, e.StatusCode
	}
	return classify(e.super)
}

func kindOrZero(err error) ErrorKind {
	k, _ := classify(err)
	return k
}

// KindOf returns the kind of the first classified Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	k, _ := classify(err)
	return k, k != 0
}

// StatusCodeOf returns the HTTP status of an UnexpectedStatus error, or 0
func StatusCodeOf(err error) int {
	_, code := classify(err)
	return code
}

// This has to be a seperate function because the chain may contain
// *url.Error values from net/http which carry their own cause
func magic(e error) string {
	var output bytes.Buffer

	curErr := e

	w := func(f string, a ...interface{}) {
		output.WriteString("\n" + fmt.Sprintf(f, a...))
	}

	for i := 1; curErr != nil; i++ {
		switch v := curErr.(type) {
		case *url.Error:
			w("  %d. (%T) FAIL %s %s", i, v, v.Op, v.URL)
			if _, ok := v.Err.(*Error); ok {
				curErr = v.Err
			} else {
				i++
				w("  %d. (%T) %s", i, v.Err, v.Err.Error())
				curErr = nil
			}
		case *Error:
			origin := v.Kind != 0 && kindOrZero(v.super) != v.Kind
			if origin && v.StatusCode != 0 {
				w("  %d. (%s %d) %s", i, v.Kind, v.StatusCode, v.msg)
			} else if origin {
				w("  %d. (%s) %s", i, v.Kind, v.msg)
			} else {
				w("  %d. (internal) %s", i, v.msg)
			}
			curErr = v.super
		default:
			w("  %d. (%T) %s", i, curErr, curErr.Error())
			curErr = nil
		}
	}

	return output.String()
}

func (e *Error) Error() string {
	return fmt.Sprintf("Artifactory Error:%s", magic(e))
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.super
}

// Message returns this error's own message without its causes
func (e *Error) Message() string {
	return e.msg
}
