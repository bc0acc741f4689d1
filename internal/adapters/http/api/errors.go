package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrServe        = errors.New("swagger serve failed")
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
	ErrNotFound     = errors.New("not found")
)

// NewKind tags a sentinel kind with the operation that raised it.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// Wrap annotates an arbitrary error with the operation that raised it.
func Wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// WrapKind attaches both a sentinel kind and a cause so callers can
// match with errors.Is while keeping the underlying detail.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}
