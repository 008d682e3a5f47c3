package tracecontext

import (
	"errors"
	"fmt"
)

// Kind classifies a decode failure.
type Kind int

const (
	MalformedFormat Kind = iota + 1
	InvalidID
	InvalidFlags
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case MalformedFormat:
		return "malformed format"
	case InvalidID:
		return "invalid id"
	case InvalidFlags:
		return "invalid flags"
	default:
		return "unknown"
	}
}

// Sentinels matched by errors.Is against a *DecodeError of the same kind.
var (
	ErrMalformedFormat = errors.New("traceparent: malformed format")
	ErrInvalidID       = errors.New("traceparent: invalid id")
	ErrInvalidFlags    = errors.New("traceparent: invalid flags")
)

// DecodeError reports why an inherited TRACEPARENT could not be used.
type DecodeError struct {
	Kind  Kind
	Field string
	Value string
	Err   error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("decode traceparent %q: %s", e.Value, e.Kind)
	if e.Field != "" {
		msg += " in " + e.Field
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is lets callers match on the sentinel for the error's kind.
func (e *DecodeError) Is(target error) bool {
	switch target {
	case ErrMalformedFormat:
		return e.Kind == MalformedFormat
	case ErrInvalidID:
		return e.Kind == InvalidID
	case ErrInvalidFlags:
		return e.Kind == InvalidFlags
	}
	return false
}
