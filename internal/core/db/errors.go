package db

import "fmt"

// StorageError marks a failed persistence transaction (quota, corruption,
// schema mismatch). Callers surface it rather than retrying: re-scrapes
// are user-initiated.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// storageErr wraps err as a StorageError, passing nil through
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
