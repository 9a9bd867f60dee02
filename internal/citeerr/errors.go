package citeerr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure.
type Kind int

const (
	// KindTransport covers network failures and unexpected HTTP responses.
	KindTransport Kind = iota + 1
	// KindServiceUnavailable means the engine never became ready.
	KindServiceUnavailable
	// KindAuthentication means the engine rejected the credentials.
	KindAuthentication
	// KindSuiteNotFound means the engine does not know the suite.
	KindSuiteNotFound
	// KindMalformedResult means a result document could not be interpreted.
	KindMalformedResult
	// KindUnsupportedFormat means an output format cannot be rendered.
	KindUnsupportedFormat
)

// String returns a short description of the kind.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport error"
	case KindServiceUnavailable:
		return "service unavailable"
	case KindAuthentication:
		return "authentication rejected"
	case KindSuiteNotFound:
		return "suite not found"
	case KindMalformedResult:
		return "malformed result"
	case KindUnsupportedFormat:
		return "unsupported format"
	default:
		return "cite-runner error"
	}
}

// Error is the root of every failure reported by cite-runner. Callers branch on
// Kind through errors.Is with the sentinels below.
type Error struct {
	Kind   Kind
	Op     string
	Detail string
	Err    error
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrTransport          = &Error{Kind: KindTransport}
	ErrServiceUnavailable = &Error{Kind: KindServiceUnavailable}
	ErrAuthentication     = &Error{Kind: KindAuthentication}
	ErrSuiteNotFound      = &Error{Kind: KindSuiteNotFound}
	ErrMalformedResult    = &Error{Kind: KindMalformedResult}
	ErrUnsupportedFormat  = &Error{Kind: KindUnsupportedFormat}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New builds an error of the given kind.
func New(kind Kind, op, detail string) *Error {
	return &Error{Kind: kind, Op: op, Detail: detail}
}

// Newf builds an error of the given kind with a formatted detail.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Detail: fmt.Sprintf(format, args...)}
}

// Wrap builds an error of the given kind around a lower-level cause.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the Kind of the first *Error in err's chain, or zero.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
