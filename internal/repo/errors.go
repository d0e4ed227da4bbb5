package repo

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when the referenced id or date has no record.
var ErrNotFound = errors.New("article not found")

// ValidationError reports missing required fields on create.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

// StorageError wraps an underlying store failure. It is never swallowed;
// the handler layer surfaces it as a 500 with details.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
