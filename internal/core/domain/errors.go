package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidBounds   = errors.New("invalid viewport bounds")
	ErrInvalidLocation = errors.New("invalid location")
	ErrInvalidLevel    = errors.New("invalid hierarchy level")
	ErrMissingParent   = errors.New("missing parent reference")
)

// FetchError is returned when a progressive load could not reach the plant
// query. Held data is left untouched when it occurs.
type FetchError struct {
	Bounds ViewportBounds
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch plants in %v..%v: %v", e.Bounds.SW, e.Bounds.NE, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
