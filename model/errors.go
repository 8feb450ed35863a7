package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for matching with errors.Is.
var (
	// ErrNotFound is wrapped by NotFoundError.
	ErrNotFound = errors.New("model: structure not found")

	// ErrDuplicateName is wrapped by DuplicateNameError.
	ErrDuplicateName = errors.New("model: duplicate structure name")
)

// NotFoundError reports a lookup of a structure name that does not exist.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("model: structure %q not found", e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DuplicateNameError reports a second definition of a structure name.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("model: structure %q defined twice", e.Name)
}

func (e *DuplicateNameError) Is(target error) bool { return target == ErrDuplicateName }
