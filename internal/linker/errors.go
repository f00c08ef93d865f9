package linker

import (
	"errors"
	"fmt"
)

var (
	// ErrIncompatibleHierarchy is returned when a matched node pair has
	// different names, or the live node lacks children the template has.
	ErrIncompatibleHierarchy = errors.New("hierarchy is incompatible")

	// ErrIncompatibleComponents is returned when a matched component pair has
	// different concrete types, or the live node lacks components the
	// template has.
	ErrIncompatibleComponents = errors.New("component list is incompatible")
)

// MismatchError identifies the output node at which reconciliation stopped.
type MismatchError struct {
	Err    error
	Path   string
	Detail string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Path, e.Err, e.Detail)
}

func (e *MismatchError) Unwrap() error {
	return e.Err
}
