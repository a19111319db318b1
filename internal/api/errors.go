package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call. Callers may ignore it; it exists for logs.
type Kind int

const (
	// KindConnection: the endpoint could not be reached or the body could not be read.
	KindConnection Kind = iota
	// KindRemote: the service answered with a non-2xx status.
	KindRemote
	// KindDecode: the non-streaming body is not valid JSON.
	KindDecode
	// KindStream: reading the open stream failed before end of data.
	KindStream
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindRemote:
		return "remote"
	case KindDecode:
		return "decode"
	case KindStream:
		return "stream"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	// Op is the endpoint path the call targeted.
	Op         string
	StatusCode int
	// Body holds at most the first few KB of a non-2xx response.
	Body []byte
	Err  error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("api: %s %s failed (HTTP %d): %v", e.Kind, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("api: %s %s failed: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}
