package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Find for an unknown run id.
var ErrNotFound = errors.New("not found")

// ErrorKind is a coarse classification of an OpError.
type ErrorKind string

const (
	KindNotFound ErrorKind = "not_found"
	KindInput    ErrorKind = "invalid_input"
	KindIO       ErrorKind = "io"
	KindCorrupt  ErrorKind = "corrupt"
)

// OpError wraps a file-level failure with the operation and path involved.
type OpError struct {
	Op   string
	Kind ErrorKind
	Path string // optional
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err is an OpError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}
