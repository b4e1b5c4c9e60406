package object

import (
	"errors"
	"fmt"
)

var (
	// ErrObjectNotFound is returned when no object is stored under a hash.
	ErrObjectNotFound = errors.New("object not found")
	// ErrIO marks a filesystem operation that could not complete.
	ErrIO = errors.New("i/o failure")
)

// IOError records a failed filesystem operation on a repository file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *IOError) Is(target error) bool {
	return target == ErrIO
}
