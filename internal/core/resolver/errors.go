package resolver

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedPlatform = errors.New(MsgUnsupportedPlatform)
	// ErrNotUsable means a response arrived but carried no media URL
	ErrNotUsable = errors.New("no usable media url")

	errNotObject = errors.New("body is not a JSON object")
)

// AttemptKind classifies why an extraction attempt was skipped
type AttemptKind string

const (
	// KindTransport covers network failures and timeouts
	KindTransport AttemptKind = "transport"
	// KindShape covers non-200 statuses, unparsable bodies and missing media
	KindShape AttemptKind = "shape"
)

// AttemptError records a failed extraction attempt. It never reaches callers;
// resolvers log it and advance to the next method.
type AttemptError struct {
	Method string
	Kind   AttemptKind
	Err    error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Method, e.Kind, e.Err)
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}
