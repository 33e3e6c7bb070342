package ai

import (
	"errors"
	"fmt"
)

// ErrNoContent is returned by backends when the response carries zero candidates.
var ErrNoContent = errors.New("no content generated")

// Kind groups generation failures by what the user should be told.
type Kind string

const (
	KindTransport  Kind = "transport"
	KindUnexpected Kind = "unexpected"
)

// TransportError describes a failure on the wire: the request could not be
// sent, the endpoint answered with a non-2xx status, or the body was not JSON.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// GenerationError is attached to a Result whose text is a fallback.
type GenerationError struct {
	Kind Kind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func classify(err error) *GenerationError {
	var transport *TransportError
	if errors.As(err, &transport) {
		return &GenerationError{Kind: KindTransport, Err: err}
	}
	return &GenerationError{Kind: KindUnexpected, Err: err}
}
