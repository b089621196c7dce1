package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the store layer and services. Callers use
// errors.Is to distinguish "no such document" from an actual I/O failure,
// instead of getting a silent empty result.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// StoreError wraps a failed document-store or object-storage call
// (network, permission, quota).
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ValidationError reports rejected input before any store call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
